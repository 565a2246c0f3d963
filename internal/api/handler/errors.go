package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/byliew07/CheckMeIN/internal/service"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
	"github.com/byliew07/CheckMeIN/pkg/response"
)

// handleServiceError 将 Service 错误映射为 HTTP 响应
// 业务失败返回其消息；其余按内部错误处理
func handleServiceError(c *gin.Context, err error) {
	var be *service.BizError
	if !errors.As(err, &be) {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, response.CodeInvalidCredentials, be.Message)
	case errors.Is(err, pkgerrors.ErrDuplicateKey):
		response.Error(c, http.StatusConflict, response.CodeDuplicateKey, be.Message)
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, response.CodeNotFound, be.Message)
	case errors.Is(err, pkgerrors.ErrNoData):
		response.NotFound(c, response.CodeNoData, be.Message)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		response.BadRequest(c, response.CodeInvalidArgument, be.Message)
	default:
		response.BadRequest(c, response.CodeInvalidArgument, be.Message)
	}
}
