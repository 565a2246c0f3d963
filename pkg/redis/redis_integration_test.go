//go:build integration

package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/byliew07/CheckMeIN/config"
)

// 需要本地 Redis：CHECKMEIN_TEST_REDIS_ADDR=localhost:6379
func setupClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("CHECKMEIN_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("未设置 CHECKMEIN_TEST_REDIS_ADDR，跳过 Redis 集成测试")
	}
	c, err := NewClient(&config.RedisConfig{Addr: addr, LockTTL: time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("连接 Redis 失败: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestAcquire_ExclusiveUntilReleased(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	key := "test:" + t.Name()

	release, err := c.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("首次获取锁应成功: %v", err)
	}

	if _, err := c.Acquire(ctx, key); !errors.Is(err, ErrLockBusy) {
		t.Errorf("锁被占用时期望 ErrLockBusy，实际: %v", err)
	}

	release()

	release2, err := c.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("释放后应可再次获取: %v", err)
	}
	release2()
}

func TestAcquire_ExpiresAfterTTL(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	key := "test:" + t.Name()

	if _, err := c.Acquire(ctx, key); err != nil {
		t.Fatalf("获取锁失败: %v", err)
	}
	time.Sleep(1200 * time.Millisecond)

	release, err := c.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("TTL 到期后应可获取: %v", err)
	}
	release()
}

func TestAllow_FixedWindow(t *testing.T) {
	c := setupClient(t)
	ctx := context.Background()
	key := "test:" + t.Name() + ":" + time.Now().Format("150405.000")

	for i := 0; i < 3; i++ {
		ok, err := c.Allow(ctx, key, 3, time.Second)
		if err != nil || !ok {
			t.Fatalf("第 %d 次应放行: ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, err := c.Allow(ctx, key, 3, time.Second)
	if err != nil || ok {
		t.Fatalf("超出限额应拒绝: ok=%v err=%v", ok, err)
	}

	time.Sleep(1200 * time.Millisecond)
	ok, err = c.Allow(ctx, key, 3, time.Second)
	if err != nil || !ok {
		t.Errorf("窗口过期后应重新放行: ok=%v err=%v", ok, err)
	}
}
