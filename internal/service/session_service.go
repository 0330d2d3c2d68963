package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/metrics"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
)

const (
	// MinSessionMinutes 会话最短时长
	MinSessionMinutes = 1
	// MaxSessionMinutes 会话最长时长，超过后 time.Duration 会溢出
	MaxSessionMinutes = math.MaxInt64 / int64(time.Minute)
)

type SessionService struct {
	store   repository.Store
	clock   Clock
	metrics *metrics.Metrics
}

func NewSessionService(store repository.Store, clock Clock, m *metrics.Metrics) *SessionService {
	if clock == nil {
		clock = SystemClock
	}
	return &SessionService{store: store, clock: clock, metrics: m}
}

// OpenSession 为议题开启投票会话，时长不大于0时按1分钟处理，超过上限时按上限处理
func (s *SessionService) OpenSession(ctx context.Context, agendaID string, durationMinutes int64) (model.Session, error) {
	agendaID = strings.TrimSpace(agendaID)
	if agendaID == "" {
		return model.Session{}, apperr.InvalidArgument(apperr.MsgAgendaIDRequired)
	}
	if err := notFoundUnlessValid(agendaID, apperr.MsgAgendaNotFound); err != nil {
		return model.Session{}, err
	}
	if _, err := s.store.Agendas().Get(ctx, agendaID); err != nil {
		return model.Session{}, err
	}

	if durationMinutes < MinSessionMinutes {
		durationMinutes = MinSessionMinutes
	}
	if durationMinutes > MaxSessionMinutes {
		durationMinutes = MaxSessionMinutes
	}
	start := s.clock.Now()
	session := model.Session{
		ID:              uuid.NewString(),
		AgendaID:        agendaID,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(durationMinutes) * time.Minute),
		DurationMinutes: durationMinutes,
		Status:          model.SessionOpen,
	}
	if err := s.store.Sessions().Save(ctx, session); err != nil {
		return model.Session{}, err
	}

	s.metrics.SessionOpened()
	return session, nil
}

// ValidateOpenOrFail 会话不存在返回 NotFound，已结束返回 InvalidState
func (s *SessionService) ValidateOpenOrFail(ctx context.Context, sessionID string) (model.Session, error) {
	return s.validateOpen(ctx, s.store, sessionID)
}

func (s *SessionService) validateOpen(ctx context.Context, repos repository.Repositories, sessionID string) (model.Session, error) {
	if err := notFoundUnlessValid(sessionID, apperr.MsgSessionNotFound); err != nil {
		return model.Session{}, err
	}
	session, err := repos.Sessions().Get(ctx, sessionID)
	if err != nil {
		return model.Session{}, err
	}
	if !IsOpen(session, s.clock.Now()) {
		return model.Session{}, apperr.InvalidState(apperr.MsgSessionClosed)
	}
	return session, nil
}

// GetSession 返回的状态为按当前时间推导后的状态
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (model.Session, error) {
	if err := notFoundUnlessValid(sessionID, apperr.MsgSessionNotFound); err != nil {
		return model.Session{}, err
	}
	session, err := s.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return model.Session{}, err
	}
	return s.view(session, s.clock.Now()), nil
}

func (s *SessionService) ListSessions(ctx context.Context) ([]model.Session, error) {
	sessions, err := s.store.Sessions().List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range sessions {
		sessions[i] = s.view(sessions[i], now)
	}
	return sessions, nil
}

func (s *SessionService) view(session model.Session, now time.Time) model.Session {
	session.Status = DeriveStatus(session, now)
	return session
}
