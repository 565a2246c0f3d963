package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/byliew07/CheckMeIN/internal/model"
)

// classRepo ClassRepository 的 GORM 实现
type classRepo struct {
	db *gorm.DB
}

// NewClassRepo 创建 ClassRepository 实例
func NewClassRepo(db *gorm.DB) ClassRepository {
	return &classRepo{db: db}
}

func (r *classRepo) List(ctx context.Context) ([]model.Class, error) {
	var classes []model.Class
	if err := r.db.WithContext(ctx).Order("rowid").Find(&classes).Error; err != nil {
		return nil, dbErr(err)
	}
	return classes, nil
}

func (r *classRepo) Create(ctx context.Context, class *model.Class) error {
	return dbErr(r.db.WithContext(ctx).Create(class).Error)
}

func (r *classRepo) Delete(ctx context.Context, className string) (bool, error) {
	res := r.db.WithContext(ctx).Where("class_name = ?", className).Delete(&model.Class{})
	if res.Error != nil {
		return false, dbErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}
