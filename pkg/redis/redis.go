package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/config"
)

// ErrLockBusy 锁已被其他持有者占用
var ErrLockBusy = errors.New("锁已被占用")

// Client Redis 客户端封装
// 提供签到互斥锁（同一 (日期, 班级, 学生) 的检查与写入在多进程间串行）与登录限流计数
type Client struct {
	rdb    goredis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return newClient(rdb, cfg.LockTTL, logger), nil
}

func newClient(rdb goredis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Client {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Client{rdb: rdb, ttl: ttl, logger: logger}
}

// ── 签到互斥锁 ──

const lockPrefix = "checkmein:lock:"

// 仅当值仍为本持有者的令牌时删除，避免误释放他人在 TTL 到期后取得的锁
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Acquire 以 SET NX PX 获取锁，返回释放函数
// 锁已被占用时返回 ErrLockBusy
func (c *Client) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, lockPrefix+key, token, c.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("获取锁失败: %w", err)
	}
	if !ok {
		return nil, ErrLockBusy
	}

	release := func() {
		// 释放不受调用方 ctx 取消影响
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, c.rdb, []string{lockPrefix + key}, token).Err(); err != nil {
			c.logger.Warn("释放锁失败", zap.String("key", key), zap.Error(err))
		}
	}
	return release, nil
}

// ── 限流计数 ──

const rateLimitPrefix = "checkmein:rate:"

// Allow 固定窗口计数：窗口内第 limit+1 次起返回 false
// 首次计数时设置窗口过期时间
func (c *Client) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := rateLimitPrefix + key
	n, err := c.rdb.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("限流计数失败: %w", err)
	}
	if n == 1 {
		if err := c.rdb.PExpire(ctx, k, window).Err(); err != nil {
			return false, fmt.Errorf("设置限流窗口失败: %w", err)
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
