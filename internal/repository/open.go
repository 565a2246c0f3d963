package repository

import (
	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/config"
	"github.com/byliew07/CheckMeIN/pkg/database"
)

// Open 按 storage.driver 创建 Repository 聚合，返回释放底层资源的函数
// csv 驱动的表在首次访问时惰性创建；sqlite 驱动在此完成迁移与管理员种子
func Open(cfg *config.Config, logger *zap.Logger) (*Repository, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := database.Open(&cfg.Storage, cfg.Log.Level, logger)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}
		logger.Info("使用 SQLite 存储", zap.String("path", cfg.Storage.SQLitePath))
		return NewGormRepository(db), closeFn, nil
	default:
		logger.Info("使用 CSV 存储", zap.String("data_dir", cfg.Storage.DataDir))
		return NewCSVRepository(cfg.Storage.DataDir), func() {}, nil
	}
}
