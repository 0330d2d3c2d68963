package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lvdashuaibi/agendavote/config"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// MessageHandler 处理一条投票事件
type MessageHandler func(ctx context.Context, event *model.VoteEvent) error

type Consumer struct {
	readers    []messageReader
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *zap.Logger
	retryDelay time.Duration
}

// NewConsumer 配置了 GroupID 时启动 workers 个消费者组 Reader 共同分摊分区，
// 否则为每个分区创建独立的 Reader
func NewConsumer(ctx context.Context, cfg config.KafkaConfig, logger *zap.Logger) (*Consumer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("未配置Kafka broker")
	}
	numWorkers := cfg.Workers
	if numWorkers <= 0 {
		numWorkers = 1
	}

	var readers []messageReader
	if cfg.GroupID != "" {
		for i := 0; i < numWorkers; i++ {
			readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
				Brokers:  cfg.Brokers,
				Topic:    cfg.Topic,
				GroupID:  cfg.GroupID,
				MinBytes: 10e3, // 10KB
				MaxBytes: 10e6, // 10MB
			}))
		}
		logger.Info("创建消费者组Reader",
			zap.String("group_id", cfg.GroupID),
			zap.Int("workers", numWorkers))
	} else {
		partitions, err := topicPartitions(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if len(partitions) == 0 {
			return nil, fmt.Errorf("主题 %s 没有可用分区", cfg.Topic)
		}
		for _, partition := range partitions {
			readers = append(readers, kafka.NewReader(kafka.ReaderConfig{
				Brokers:   cfg.Brokers,
				Topic:     cfg.Topic,
				Partition: partition,
				MinBytes:  10e3,
				MaxBytes:  10e6,
			}))
		}
		logger.Info("按分区创建Reader",
			zap.String("topic", cfg.Topic),
			zap.Int("partitions", len(partitions)))
	}

	return newConsumer(readers, logger), nil
}

func newConsumer(readers []messageReader, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		readers:    readers,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
		retryDelay: time.Second,
	}
}

// StartConsuming 开始消费消息，每个 Reader 一个 goroutine
func (c *Consumer) StartConsuming(handler MessageHandler) {
	for i, reader := range c.readers {
		c.wg.Add(1)
		go func(workerID int, r messageReader) {
			defer c.wg.Done()
			c.consumeMessages(workerID, r, handler)
		}(i, reader)
	}
	c.logger.Info("已启动Kafka消费者工作线程", zap.Int("workers", len(c.readers)))
}

// consumeMessages 单个消费者goroutine的消费逻辑
func (c *Consumer) consumeMessages(workerID int, reader messageReader, handler MessageHandler) {
	log := c.logger.With(zap.Int("worker", workerID))
	log.Debug("消费者工作线程已启动")

	for {
		m, err := reader.ReadMessage(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil || errors.Is(err, context.Canceled) {
				log.Debug("消费者工作线程收到停止信号")
				return
			}
			log.Warn("读取消息失败", zap.Error(err))
			select {
			case <-c.ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		event, err := decodeVoteEvent(m)
		if err != nil {
			log.Warn("丢弃无法解析的消息", zap.Int64("offset", m.Offset), zap.Error(err))
			continue
		}

		if err := handler(c.ctx, event); err != nil {
			log.Error("处理投票事件失败",
				zap.String("vote_id", event.VoteID),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
		}
	}
}

// Stop 停止消费
func (c *Consumer) Stop() error {
	c.logger.Info("正在停止所有Kafka消费者工作线程")
	c.cancel()

	// 等待所有工作线程结束
	c.wg.Wait()

	var firstErr error
	for i, reader := range c.readers {
		if err := reader.Close(); err != nil {
			c.logger.Warn("关闭消费者失败", zap.Int("worker", i), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
