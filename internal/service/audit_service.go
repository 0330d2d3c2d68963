package service

import (
	"context"
	"fmt"

	"github.com/lvdashuaibi/agendavote/internal/metrics"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
)

// AuditService 将投票事件写入审计日志
type AuditService struct {
	store   repository.Store
	metrics *metrics.Metrics
}

func NewAuditService(store repository.Store, m *metrics.Metrics) *AuditService {
	return &AuditService{store: store, metrics: m}
}

// ProcessVoteEvent 处理投票事件（消费者使用），重复事件按 vote id 去重
func (s *AuditService) ProcessVoteEvent(ctx context.Context, event *model.VoteEvent) error {
	if event == nil || event.VoteID == "" {
		s.metrics.EventConsumed(false)
		return fmt.Errorf("投票事件缺少 vote id")
	}
	if err := s.store.Audit().RecordVoteEvent(ctx, event); err != nil {
		s.metrics.EventConsumed(false)
		return fmt.Errorf("处理投票事件失败: %w", err)
	}
	s.metrics.EventConsumed(true)
	return nil
}
