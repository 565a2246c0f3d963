package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/pkg/response"
)

// 上下文键，由 JWT 中间件注入
const (
	CtxUsername = "username"
	CtxRole     = "role"
)

// MustGetUsername 从 Gin 上下文中安全提取 username。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUsername(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxUsername)
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (model.Role, bool) {
	s, ok := mustGetString(c, CtxRole)
	return model.Role(s), ok
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}

// canAccessStudent 管理员与讲师可查看任意学生；学生只能查看自己
func canAccessStudent(c *gin.Context, student string) bool {
	username, ok := MustGetUsername(c)
	if !ok {
		return false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return false
	}
	if role == model.RoleStudent && username != student {
		response.Forbidden(c, response.CodeForbidden, "只能访问自己的签到记录")
		return false
	}
	return true
}
