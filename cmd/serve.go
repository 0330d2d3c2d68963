package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lvdashuaibi/agendavote/internal/api"
	intkafka "github.com/lvdashuaibi/agendavote/internal/kafka"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var instanceID int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (REST, GraphQL, metrics)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.configPath, instanceID)
		},
	}
	cmd.Flags().IntVar(&instanceID, "instance", 1, "实例ID，用于区分多个实例")

	return cmd
}

func runServe(ctx context.Context, configPath string, instanceID int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := loadApp(configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.logger.With(zap.Int("instance", instanceID))
	log.Info("配置加载成功")

	if err := a.openStore(); err != nil {
		return err
	}

	// 只有抢到迁移锁的实例执行建表
	migrated, err := a.migrate(ctx)
	if err != nil {
		return err
	}
	if migrated {
		log.Info("数据库迁移完成")
	} else {
		log.Info("未获取到迁移锁，跳过迁移")
	}

	if err := a.buildServices(ctx); err != nil {
		return err
	}

	if a.cfg.Kafka.Enabled {
		consumer, err := intkafka.NewConsumer(ctx, a.cfg.Kafka, a.logger)
		if err != nil {
			return err
		}
		defer consumer.Stop()
		consumer.StartConsuming(a.services.Audit.ProcessVoteEvent)
		log.Info("Kafka审计消费者已启动")
	}

	server := api.NewServer(a.services, a.store, a.metrics, a.cfg.GraphQL.Path, a.logger)

	// 计算端口，支持多实例
	port := a.cfg.Server.Port + instanceID - 1

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(port)
	}()
	log.Info("Agenda Vote 服务已启动", zap.Int("port", port))

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
