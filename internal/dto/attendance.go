package dto

// ── 签到模块 DTO ──

// CheckInRequest 签到请求；学生只能为自己签到
type CheckInRequest struct {
	ClassName       string `json:"class_name"       binding:"required"`
	StudentUsername string `json:"student_username"`
	Status          string `json:"status"           binding:"omitempty,oneof=Present Absent Late Excused"`
}

// UpdateAttendanceRequest 改写签到状态请求
type UpdateAttendanceRequest struct {
	Date            string `json:"date"             binding:"required,datetime=2006-01-02"`
	ClassName       string `json:"class_name"       binding:"required"`
	StudentUsername string `json:"student_username" binding:"required"`
	Status          string `json:"status"           binding:"required,oneof=Present Absent Late Excused"`
}

// DateQuery 按日期查询参数；为空表示今天
type DateQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// HistoryQuery 出勤率历史查询参数
type HistoryQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=366"`
}

// [自证通过] internal/dto/attendance.go
