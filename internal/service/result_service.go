package service

import (
	"context"

	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
)

type ResultService struct {
	store repository.Store
	clock Clock
}

func NewResultService(store repository.Store, clock Clock) *ResultService {
	if clock == nil {
		clock = SystemClock
	}
	return &ResultService{store: store, clock: clock}
}

// GetResult 统计会话票数，会话未结束时结果为 SESSION_IN_PROGRESS
func (s *ResultService) GetResult(ctx context.Context, sessionID string) (model.SessionResult, error) {
	if err := notFoundUnlessValid(sessionID, apperr.MsgSessionNotFound); err != nil {
		return model.SessionResult{}, err
	}
	session, err := s.store.Sessions().Get(ctx, sessionID)
	if err != nil {
		return model.SessionResult{}, err
	}
	agenda, err := s.store.Agendas().Get(ctx, session.AgendaID)
	if err != nil {
		return model.SessionResult{}, err
	}

	votes := s.store.Votes()
	total, err := votes.CountBySession(ctx, session.ID)
	if err != nil {
		return model.SessionResult{}, err
	}
	yes, err := votes.CountBySessionAndOption(ctx, session.ID, model.OptionAffirm)
	if err != nil {
		return model.SessionResult{}, err
	}
	no, err := votes.CountBySessionAndOption(ctx, session.ID, model.OptionReject)
	if err != nil {
		return model.SessionResult{}, err
	}

	status := DeriveStatus(session, s.clock.Now())
	return model.SessionResult{
		SessionID:   session.ID,
		AgendaID:    agenda.ID,
		AgendaTitle: agenda.Title,
		YesVotes:    yes,
		NoVotes:     no,
		TotalVotes:  total,
		Status:      status,
		Result:      Outcome(status, yes, no),
	}, nil
}

// Outcome 会话开启时为进行中，结束后按票数比较
func Outcome(status model.SessionStatus, yes, no int64) model.Outcome {
	switch {
	case status == model.SessionOpen:
		return model.OutcomeInProgress
	case yes > no:
		return model.OutcomeApproved
	case no > yes:
		return model.OutcomeRejected
	default:
		return model.OutcomeTie
	}
}
