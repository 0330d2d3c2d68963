package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/eligibility"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
)

type AssociateService struct {
	store     repository.Store
	validator *eligibility.Validator
	clock     Clock
}

func NewAssociateService(store repository.Store, validator *eligibility.Validator, clock Clock) *AssociateService {
	if clock == nil {
		clock = SystemClock
	}
	return &AssociateService{store: store, validator: validator, clock: clock}
}

// FindByNationalID 第二个返回值表示是否找到
func (s *AssociateService) FindByNationalID(ctx context.Context, nationalID string) (model.Associate, bool, error) {
	return s.store.Associates().FindByNationalID(ctx, eligibility.NormalizeCPF(nationalID))
}

// ResolveForVoting 查找或创建投票会员，顺序为：已投票检查、资格校验、创建会员
// 已投票优先于资格校验返回 Conflict，不可投票的新CPF不会被保存
func (s *AssociateService) ResolveForVoting(ctx context.Context, repos repository.Repositories, name, nationalID, sessionID string) (model.Associate, error) {
	associate, found, err := repos.Associates().FindByNationalID(ctx, nationalID)
	if err != nil {
		return model.Associate{}, err
	}

	if found {
		voted, err := repos.Votes().ExistsFor(ctx, associate.ID, sessionID)
		if err != nil {
			return model.Associate{}, err
		}
		if voted {
			return model.Associate{}, apperr.Conflict(apperr.MsgAlreadyVoted)
		}
	}

	ability, err := s.validator.ValidateForVoting(ctx, nationalID)
	if err != nil {
		return model.Associate{}, err
	}
	if ability != model.AbleToVote {
		return model.Associate{}, apperr.Forbidden(apperr.MsgNotAbleToVote)
	}

	if !found {
		associate = model.Associate{
			ID:         uuid.NewString(),
			Name:       strings.TrimSpace(name),
			NationalID: nationalID,
			CreatedAt:  s.clock.Now(),
		}
		if err := repos.Associates().Save(ctx, associate); err != nil {
			return model.Associate{}, err
		}
	}
	return associate, nil
}

// RegisterAssociate 显式登记会员
func (s *AssociateService) RegisterAssociate(ctx context.Context, name, nationalID string) (model.Associate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Associate{}, apperr.InvalidArgument(apperr.MsgNameRequired)
	}
	if strings.TrimSpace(nationalID) == "" {
		return model.Associate{}, apperr.InvalidArgument(apperr.MsgCPFRequired)
	}
	if !eligibility.ValidCPF(nationalID) {
		return model.Associate{}, apperr.InvalidArgument(apperr.MsgInvalidCPFFormat)
	}
	nationalID = eligibility.NormalizeCPF(nationalID)

	if _, found, err := s.store.Associates().FindByNationalID(ctx, nationalID); err != nil {
		return model.Associate{}, err
	} else if found {
		return model.Associate{}, apperr.Conflict(apperr.MsgAssociateExists)
	}

	associate := model.Associate{
		ID:         uuid.NewString(),
		Name:       name,
		NationalID: nationalID,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.store.Associates().Save(ctx, associate); err != nil {
		return model.Associate{}, err
	}
	return associate, nil
}

func (s *AssociateService) GetAssociate(ctx context.Context, nationalID string) (model.Associate, error) {
	associate, found, err := s.FindByNationalID(ctx, nationalID)
	if err != nil {
		return model.Associate{}, err
	}
	if !found {
		return model.Associate{}, apperr.NotFound(apperr.MsgAssociateNotFound)
	}
	return associate, nil
}

func (s *AssociateService) ListAssociates(ctx context.Context) ([]model.Associate, error) {
	return s.store.Associates().List(ctx)
}
