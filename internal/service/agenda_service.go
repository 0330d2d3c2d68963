package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
)

type AgendaService struct {
	store repository.Store
	clock Clock
}

func NewAgendaService(store repository.Store, clock Clock) *AgendaService {
	if clock == nil {
		clock = SystemClock
	}
	return &AgendaService{store: store, clock: clock}
}

// CreateAgenda 创建议题，标题和描述不能为空
func (s *AgendaService) CreateAgenda(ctx context.Context, title, description string) (model.Agenda, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return model.Agenda{}, apperr.InvalidArgument(apperr.MsgTitleRequired)
	}
	if description == "" {
		return model.Agenda{}, apperr.InvalidArgument(apperr.MsgDescRequired)
	}

	agenda := model.Agenda{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.store.Agendas().Save(ctx, agenda); err != nil {
		return model.Agenda{}, err
	}
	return agenda, nil
}

func (s *AgendaService) GetAgenda(ctx context.Context, id string) (model.Agenda, error) {
	if err := notFoundUnlessValid(id, apperr.MsgAgendaNotFound); err != nil {
		return model.Agenda{}, err
	}
	return s.store.Agendas().Get(ctx, id)
}

func (s *AgendaService) ListAgendas(ctx context.Context) ([]model.Agenda, error) {
	return s.store.Agendas().List(ctx)
}
