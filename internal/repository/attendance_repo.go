package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/byliew07/CheckMeIN/internal/model"
)

// attendanceRepo AttendanceRepository 的 GORM 实现
// 自然主键在表结构上即为主键，重复签到由数据库拒绝（返回 ErrDuplicateKey）
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) List(ctx context.Context) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	if err := r.db.WithContext(ctx).Order("rowid").Find(&records).Error; err != nil {
		return nil, dbErr(err)
	}
	return records, nil
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return dbErr(r.db.WithContext(ctx).Create(record).Error)
}

func (r *attendanceRepo) UpdateStatus(ctx context.Context, key model.RecordKey, status model.Status) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Where("date = ? AND class_name = ? AND student_username = ?", key.Date, key.ClassName, key.StudentUsername).
		Update("status", status)
	if res.Error != nil {
		return false, dbErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}
