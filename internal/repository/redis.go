package repository

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/lvdashuaibi/agendavote/config"
)

// DefaultBlocklistKey 不可投票CPF集合
const DefaultBlocklistKey = "eligibility:blocked"

// RedisRepository 基于 Redis Set 的投票资格黑名单
type RedisRepository struct {
	client *redis.Client
	key    string
}

func NewRedisRepository(ctx context.Context, cfg config.RedisConfig, key string) (*RedisRepository, error) {
	// 创建Redis客户端（普通客户端，用于数据存储）
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.DataAddress,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	// 测试连接
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redis数据节点连接测试失败: %w", err)
	}

	return NewRedisRepositoryWithClient(client, key), nil
}

// NewRedisRepositoryWithClient 使用已有客户端创建黑名单仓库
func NewRedisRepositoryWithClient(client *redis.Client, key string) *RedisRepository {
	if key == "" {
		key = DefaultBlocklistKey
	}
	return &RedisRepository{client: client, key: key}
}

// IsBlocked 判断CPF是否在黑名单中
func (r *RedisRepository) IsBlocked(ctx context.Context, nationalID string) (bool, error) {
	blocked, err := r.client.SIsMember(ctx, r.key, nationalID).Result()
	if err != nil {
		return false, fmt.Errorf("查询资格黑名单失败: %w", err)
	}
	return blocked, nil
}

// Block 将CPF加入黑名单
func (r *RedisRepository) Block(ctx context.Context, nationalID string) error {
	if err := r.client.SAdd(ctx, r.key, nationalID).Err(); err != nil {
		return fmt.Errorf("加入资格黑名单失败: %w", err)
	}
	return nil
}

// Unblock 将CPF移出黑名单
func (r *RedisRepository) Unblock(ctx context.Context, nationalID string) error {
	if err := r.client.SRem(ctx, r.key, nationalID).Err(); err != nil {
		return fmt.Errorf("移出资格黑名单失败: %w", err)
	}
	return nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close 关闭Redis连接
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
