package model

// Class 班级表 — 对应 classes
type Class struct {
	ClassName        string `gorm:"type:varchar(128);primaryKey" json:"class_name"`
	LecturerUsername string `gorm:"type:varchar(64);not null;default:''" json:"lecturer_username"` // 可为空，不校验是否存在
}

// TableName 指定表名
func (Class) TableName() string { return "classes" }
