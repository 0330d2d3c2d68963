package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/lvdashuaibi/agendavote/config"
	"go.uber.org/zap"
)

// 只释放自己持有的锁
const unlockScript = `
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`

// RedLock 在多个独立 Redis 节点上实现 Redlock 算法
type RedLock struct {
	clients []*redis.Client
	addrs   []string
	logger  *zap.Logger
	mu      sync.Mutex
	locks   map[string]string // key是锁名，value是token值
	retries int
	backoff time.Duration
}

// NewRedLock 创建新的分布式锁客户端
func NewRedLock(redisCfg config.RedisConfig, lockCfg config.LockConfig, logger *zap.Logger) (*RedLock, error) {
	if len(redisCfg.LockAddresses) == 0 {
		return nil, fmt.Errorf("未配置Redis锁节点")
	}

	ctx := context.Background()
	var clients []*redis.Client
	for _, addr := range redisCfg.LockAddresses {
		client := redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     redisCfg.Password,
			DB:           redisCfg.DB,
			PoolSize:     redisCfg.PoolSize,
			MaxRetries:   redisCfg.MaxRetries,
			DialTimeout:  redisCfg.Timeout,
			ReadTimeout:  redisCfg.Timeout,
			WriteTimeout: redisCfg.Timeout,
		})

		// 测试连接
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			for _, c := range clients {
				c.Close()
			}
			return nil, fmt.Errorf("Redis锁节点 %s 连接测试失败: %w", addr, err)
		}
		clients = append(clients, client)
	}

	return NewRedLockWithClients(clients, redisCfg.LockAddresses, lockCfg.RetryCount, logger), nil
}

// NewRedLockWithClients 使用已有客户端创建锁
func NewRedLockWithClients(clients []*redis.Client, addrs []string, retries int, logger *zap.Logger) *RedLock {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retries <= 0 {
		retries = 1
	}
	return &RedLock{
		clients: clients,
		addrs:   addrs,
		logger:  logger,
		locks:   make(map[string]string),
		retries: retries,
		backoff: 100 * time.Millisecond,
	}
}

func (r *RedLock) quorum() int {
	return len(r.clients)/2 + 1
}

// AcquireLock 获取分布式锁
func (r *RedLock) AcquireLock(ctx context.Context, lockName string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()

	// Redlock算法: 尝试在多个节点上获取锁
	for attempt := 0; attempt < r.retries; attempt++ {
		success := 0
		start := time.Now()

		for i, client := range r.clients {
			ok, err := client.SetNX(ctx, lockName, token, ttl).Result()
			if err != nil {
				r.logger.Warn("在节点获取锁失败",
					zap.String("node", r.addrs[i]),
					zap.String("lock", lockName),
					zap.Error(err))
				continue
			}
			if ok {
				success++
			}
		}

		// 判断是否在多数节点获取成功
		validity := ttl - time.Since(start)
		if success >= r.quorum() && validity > 0 {
			r.mu.Lock()
			r.locks[lockName] = token
			r.mu.Unlock()
			r.logger.Debug("获取锁成功", zap.String("lock", lockName))
			return true, nil
		}

		// 获取失败，释放所有节点上的锁
		r.unlockAll(context.Background(), lockName, token)

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(r.backoff):
		}
	}

	return false, nil
}

// ReleaseLock 释放分布式锁
func (r *RedLock) ReleaseLock(ctx context.Context, lockName string) error {
	r.mu.Lock()
	token, exists := r.locks[lockName]
	delete(r.locks, lockName)
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("锁 %s 不存在或未持有", lockName)
	}
	r.unlockAll(ctx, lockName, token)
	return nil
}

// unlockAll 在所有节点上释放锁
func (r *RedLock) unlockAll(ctx context.Context, lockName string, token string) {
	for i, client := range r.clients {
		if err := client.Eval(ctx, unlockScript, []string{lockName}, token).Err(); err != nil {
			r.logger.Warn("在节点释放锁失败",
				zap.String("node", r.addrs[i]),
				zap.String("lock", lockName),
				zap.Error(err))
		}
	}
}

// ReleaseAllLocks 释放所有持有的锁
func (r *RedLock) ReleaseAllLocks() {
	r.mu.Lock()
	locks := r.locks
	r.locks = make(map[string]string)
	r.mu.Unlock()

	for name, token := range locks {
		r.unlockAll(context.Background(), name, token)
	}
}

// Close 关闭分布式锁客户端
func (r *RedLock) Close() error {
	r.ReleaseAllLocks()

	for _, client := range r.clients {
		if err := client.Close(); err != nil {
			r.logger.Warn("关闭Redis客户端失败", zap.Error(err))
		}
	}
	return nil
}
