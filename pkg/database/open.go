package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/byliew07/CheckMeIN/config"
)

// Open 打开数据库、执行迁移并写入内置管理员
func Open(cfg *config.StorageConfig, logLevel string, logger *zap.Logger) (*gorm.DB, error) {
	db, err := NewDB(cfg, logLevel, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if err := RunMigrations(sqlDB, logger); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := SeedAdmin(db, logger); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
