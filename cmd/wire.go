package main

import (
	"context"
	"fmt"
	"time"

	"github.com/lvdashuaibi/agendavote/config"
	"github.com/lvdashuaibi/agendavote/internal/eligibility"
	intkafka "github.com/lvdashuaibi/agendavote/internal/kafka"
	"github.com/lvdashuaibi/agendavote/internal/lock"
	"github.com/lvdashuaibi/agendavote/internal/logger"
	"github.com/lvdashuaibi/agendavote/internal/metrics"
	"github.com/lvdashuaibi/agendavote/internal/repository"
	"github.com/lvdashuaibi/agendavote/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	MigrateLockName    = "agendavote:schema:migrate:lock"
	LockAcquireTimeout = 30 * time.Second
)

type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     repository.Store
	blocklist *repository.RedisRepository
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	producer  *intkafka.Producer
	services  *service.Services
}

// loadApp 加载配置并创建日志
func loadApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}
	return &app{cfg: cfg, logger: log}, nil
}

// openStore 创建存储
func (a *app) openStore() error {
	store, err := repository.NewStore(a.cfg.Store, a.logger)
	if err != nil {
		return fmt.Errorf("初始化存储失败: %w", err)
	}
	a.store = store
	a.logger.Info("存储初始化成功", zap.String("driver", a.cfg.Store.Driver))
	return nil
}

// openBlocklist 连接资格黑名单所在的Redis，未配置地址时返回错误
func (a *app) openBlocklist(ctx context.Context) error {
	if a.cfg.Redis.DataAddress == "" {
		return fmt.Errorf("未配置 redis.data_address")
	}
	blocklist, err := repository.NewRedisRepository(ctx, a.cfg.Redis, a.cfg.Eligibility.BlocklistKey)
	if err != nil {
		return fmt.Errorf("初始化Redis黑名单失败: %w", err)
	}
	a.blocklist = blocklist
	return nil
}

// migrate 在迁移锁保护下执行建表，未抢到锁说明其他实例正在迁移
func (a *app) migrate(ctx context.Context) (bool, error) {
	l, err := lock.NewLock(a.cfg, a.logger)
	if err != nil {
		return false, fmt.Errorf("初始化分布式锁失败: %w", err)
	}
	defer l.Close()

	ttl := a.cfg.Lock.Timeout
	if ttl <= 0 {
		ttl = LockAcquireTimeout
	}
	return lock.WithLock(ctx, l, MigrateLockName, ttl, func(ctx context.Context) error {
		a.logger.Info("获取迁移锁成功，开始执行迁移")
		return a.store.Migrate(ctx)
	})
}

// buildServices 组装资格校验、指标、Kafka生产者和业务服务
func (a *app) buildServices(ctx context.Context) error {
	var blocklist eligibility.Blocklist
	if a.cfg.Eligibility.Mode == "" || a.cfg.Eligibility.Mode == "cpf" {
		if a.cfg.Redis.DataAddress != "" {
			if err := a.openBlocklist(ctx); err != nil {
				return err
			}
			blocklist = a.blocklist
		} else {
			a.logger.Warn("未配置Redis黑名单，所有CPF校验通过后均可投票")
		}
	}
	checker, err := eligibility.NewChecker(a.cfg.Eligibility, blocklist)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.NewMetrics(a.cfg.Metrics.Namespace, a.registry)

	opts := service.Options{
		Store:   a.store,
		Checker: checker,
		Metrics: a.metrics,
		Logger:  a.logger,
	}
	if a.cfg.Kafka.Enabled {
		producer, err := intkafka.NewProducer(ctx, a.cfg.Kafka, a.logger)
		if err != nil {
			return fmt.Errorf("初始化Kafka生产者失败: %w", err)
		}
		a.producer = producer
		opts.Publisher = producer
		a.logger.Info("Kafka生产者初始化成功")
	}

	a.services = service.NewServices(opts)
	return nil
}

// Close 按创建的逆序释放资源
func (a *app) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("关闭Kafka生产者失败", zap.Error(err))
		}
	}
	if a.blocklist != nil {
		a.blocklist.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("关闭存储失败", zap.Error(err))
		}
	}
	a.logger.Sync()
}
