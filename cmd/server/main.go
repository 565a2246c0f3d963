package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/config"
	"github.com/byliew07/CheckMeIN/internal/api/handler"
	"github.com/byliew07/CheckMeIN/internal/api/middleware"
	"github.com/byliew07/CheckMeIN/internal/api/router"
	"github.com/byliew07/CheckMeIN/internal/repository"
	"github.com/byliew07/CheckMeIN/internal/service"
	"github.com/byliew07/CheckMeIN/pkg/jwt"
	applogger "github.com/byliew07/CheckMeIN/pkg/logger"
	"github.com/byliew07/CheckMeIN/pkg/redis"
)

func main() {
	// 1. 加载配置（CHECKMEIN_CONFIG 指定文件，否则查找 ./config/config.yaml）
	cfg, err := config.Load(os.Getenv("CHECKMEIN_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 打开存储
	repo, closeRepo, err := repository.Open(cfg, logger)
	if err != nil {
		logger.Fatal("存储初始化失败", zap.Error(err))
	}
	defer closeRepo()

	// 4. 连接 Redis（可选：连接失败时降级运行，签到不加锁、登录不限流）
	var (
		locker  service.Locker
		limiter middleware.Limiter
		rdb     *redis.Client
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，签到互斥锁与登录限流将不可用", zap.Error(err))
		} else {
			locker, limiter = rdb, rdb
			defer rdb.Close()
		}
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	ctx := context.Background()
	svc, err := service.NewService(ctx, cfg, repo, locker, jwtMgr, logger)
	if err != nil {
		logger.Fatal("加载数据失败", zap.Error(err))
	}
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
}
