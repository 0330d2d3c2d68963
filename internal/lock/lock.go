package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/lvdashuaibi/agendavote/config"
	"go.uber.org/zap"
)

// Lock 分布式锁接口
type Lock interface {
	// AcquireLock 获取分布式锁
	// 返回值：bool表示是否成功获取锁，error表示获取过程中的错误
	AcquireLock(ctx context.Context, lockName string, ttl time.Duration) (bool, error)

	// ReleaseLock 释放分布式锁
	ReleaseLock(ctx context.Context, lockName string) error

	// ReleaseAllLocks 释放所有持有的锁
	ReleaseAllLocks()

	// Close 关闭分布式锁客户端
	Close() error
}

// NewLock 根据配置创建锁，backend 取值 etcd / redis / local
func NewLock(cfg *config.Config, logger *zap.Logger) (Lock, error) {
	switch cfg.Lock.Backend {
	case "", "local":
		return NewLocalLock(), nil
	case "etcd":
		return NewETCDLock(cfg.ETCD, logger)
	case "redis":
		return NewRedLock(cfg.Redis, cfg.Lock, logger)
	default:
		return nil, fmt.Errorf("不支持的锁类型: %s", cfg.Lock.Backend)
	}
}

// WithLock 持有锁时执行 fn，未抢到锁时不执行并返回 false
func WithLock(ctx context.Context, l Lock, lockName string, ttl time.Duration, fn func(ctx context.Context) error) (bool, error) {
	ok, err := l.AcquireLock(ctx, lockName, ttl)
	if err != nil {
		return false, fmt.Errorf("获取锁 %s 失败: %w", lockName, err)
	}
	if !ok {
		return false, nil
	}
	defer l.ReleaseLock(context.Background(), lockName)

	return true, fn(ctx)
}
