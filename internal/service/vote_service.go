package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/eligibility"
	"github.com/lvdashuaibi/agendavote/internal/metrics"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
	"go.uber.org/zap"
)

// PublishTimeout 投票提交后发送事件和写入审计日志的时限
const PublishTimeout = 5 * time.Second

// EventPublisher 投票事件发送方，由 Kafka 生产者实现
type EventPublisher interface {
	SendVoteEvent(ctx context.Context, event *model.VoteEvent) error
}

// CastVoteRequest 投票请求
type CastVoteRequest struct {
	SessionID  string
	NationalID string
	Name       string
	Option     string
}

type VoteService struct {
	store      repository.Store
	sessions   *SessionService
	associates *AssociateService
	audit      *AuditService
	publisher  EventPublisher
	clock      Clock
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewVoteService(
	store repository.Store,
	sessions *SessionService,
	associates *AssociateService,
	audit *AuditService,
	publisher EventPublisher,
	clock Clock,
	m *metrics.Metrics,
	logger *zap.Logger,
) *VoteService {
	if clock == nil {
		clock = SystemClock
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoteService{
		store:      store,
		sessions:   sessions,
		associates: associates,
		audit:      audit,
		publisher:  publisher,
		clock:      clock,
		metrics:    m,
		logger:     logger,
	}
}

// CastVote 投票，会话校验、会员解析、选项解析和写入投票在同一事务中完成
func (s *VoteService) CastVote(ctx context.Context, req CastVoteRequest) (model.VoteConfirmation, error) {
	started := time.Now()

	vote, err := s.castVote(ctx, req)
	if err != nil {
		s.metrics.VoteRejected(string(apperr.KindOf(err)))
		return model.VoteConfirmation{}, err
	}
	s.metrics.VoteCast(string(vote.Option), time.Since(started))

	// 投票已提交，事件发送不受请求取消影响
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()
	s.publish(publishCtx, model.NewVoteEvent(vote))

	return model.VoteConfirmation{
		AssociateID: vote.AssociateID,
		SessionID:   vote.SessionID,
		Option:      req.Option,
		Message:     apperr.MsgVoteCast,
	}, nil
}

func (s *VoteService) castVote(ctx context.Context, req CastVoteRequest) (model.Vote, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return model.Vote{}, apperr.InvalidArgument(apperr.MsgSessionIDRequired)
	}
	if strings.TrimSpace(req.NationalID) == "" {
		return model.Vote{}, apperr.InvalidArgument(apperr.MsgVoteCPFRequired)
	}
	nationalID := eligibility.NormalizeCPF(req.NationalID)

	var vote model.Vote
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		session, err := s.sessions.validateOpen(ctx, repos, sessionID)
		if err != nil {
			return err
		}

		associate, err := s.associates.ResolveForVoting(ctx, repos, req.Name, nationalID, session.ID)
		if err != nil {
			return err
		}

		option, err := ParseVoteOption(req.Option)
		if err != nil {
			return err
		}

		vote = model.Vote{
			ID:          uuid.NewString(),
			AssociateID: associate.ID,
			SessionID:   session.ID,
			Option:      option,
			VotedAt:     s.clock.Now(),
		}
		// 唯一约束冲突直接以 Conflict 返回，不重试
		return repos.Votes().Save(ctx, vote)
	})
	if err != nil {
		// 同一CPF并发首次投票时，落败方在创建会员时冲突，对调用方而言即重复投票
		if errors.Is(err, apperr.ErrConflict) && apperr.MessageOf(err) == apperr.MsgAssociateExists {
			return model.Vote{}, apperr.Wrap(apperr.KindConflict, apperr.MsgAlreadyVoted, err)
		}
		return model.Vote{}, err
	}
	return vote, nil
}

// publish 发送投票事件，发送失败时同步写入审计日志
func (s *VoteService) publish(ctx context.Context, event *model.VoteEvent) {
	if s.publisher != nil {
		err := s.publisher.SendVoteEvent(ctx, event)
		s.metrics.EventPublished(err == nil)
		if err == nil {
			return
		}
		s.logger.Warn("发送投票事件到Kafka失败，改为同步写入审计日志",
			zap.String("vote_id", event.VoteID),
			zap.Error(err))
	}

	if s.audit == nil {
		return
	}
	if err := s.audit.ProcessVoteEvent(ctx, event); err != nil {
		s.logger.Error("写入投票审计日志失败",
			zap.String("vote_id", event.VoteID),
			zap.Error(err))
	}
}
