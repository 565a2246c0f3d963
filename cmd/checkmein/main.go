// checkmein 签到管理命令行：用户与班级维护、签到、统计查询与报表导出
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/config"
	"github.com/byliew07/CheckMeIN/internal/repository"
	"github.com/byliew07/CheckMeIN/internal/service"
	applogger "github.com/byliew07/CheckMeIN/pkg/logger"
	"github.com/byliew07/CheckMeIN/pkg/redis"
)

// errFailed 业务失败：消息已输出，只需以非零状态退出
var errFailed = errors.New("操作失败")

// app 命令共享的运行时依赖，在 PersistentPreRunE 中初始化
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	svc    service.AttendanceService
	close  func()
}

func main() {
	a := &app{logger: zap.NewNop(), close: func() {}}

	err := newRootCmd(a).Execute()
	a.close()
	if err == nil {
		return
	}
	if !errors.Is(err, errFailed) {
		a.logger.Error("命令执行失败", zap.Error(err))
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(1)
}

func newRootCmd(a *app) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "checkmein",
		Short:         "Class attendance tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default ./config/config.yaml)")

	rootCmd.AddCommand(
		newLoginCmd(a),
		newUserCmd(a),
		newClassCmd(a),
		newCheckInCmd(a),
		newUpdateCmd(a),
		newTodayCmd(a),
		newStatsCmd(a),
		newHistoryCmd(a),
		newStudentHistoryCmd(a),
		newRosterCmd(a),
		newExportCmd(a),
		newTrendCmd(a),
	)
	return rootCmd
}

// init 加载配置、日志与存储，并完成首次加载
// 存储不可用时直接失败，不进入任何命令
func (a *app) init(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	a.close = func() { _ = logger.Sync() }

	repo, closeRepo, err := repository.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("存储初始化失败: %w", err)
	}

	var (
		locker service.Locker
		rdb    *redis.Client
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，签到不加锁", zap.Error(err))
		} else {
			locker = rdb
		}
	}

	a.close = func() {
		if rdb != nil {
			rdb.Close()
		}
		closeRepo()
		_ = logger.Sync()
	}

	svc, err := service.NewService(ctx, cfg, repo, locker, nil, logger)
	if err != nil {
		return fmt.Errorf("加载数据失败: %w", err)
	}
	a.svc = svc.Attendance
	return nil
}

// report 输出操作结果消息
// 业务失败输出消息并返回 errFailed；存储故障原样返回
func (a *app) report(cmd *cobra.Command, msg string, err error) error {
	if err != nil && !service.IsBizError(err) {
		return err
	}
	ok, text := service.Outcome(msg, err)
	fmt.Fprintln(cmd.OutOrStdout(), text)
	if !ok {
		return errFailed
	}
	return nil
}
