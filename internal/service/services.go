package service

import (
	"github.com/lvdashuaibi/agendavote/internal/eligibility"
	"github.com/lvdashuaibi/agendavote/internal/metrics"
	"github.com/lvdashuaibi/agendavote/internal/repository"
	"go.uber.org/zap"
)

// Options 组装业务服务所需的依赖，Publisher 为 nil 时投票事件直接写入审计日志
type Options struct {
	Store     repository.Store
	Checker   eligibility.Checker
	Publisher EventPublisher
	Clock     Clock
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Services 接口层使用的业务服务集合
type Services struct {
	Agendas    *AgendaService
	Associates *AssociateService
	Sessions   *SessionService
	Votes      *VoteService
	Results    *ResultService
	Audit      *AuditService
}

func NewServices(opts Options) *Services {
	s := &Services{
		Agendas:    NewAgendaService(opts.Store, opts.Clock),
		Associates: NewAssociateService(opts.Store, eligibility.NewValidator(opts.Checker), opts.Clock),
		Sessions:   NewSessionService(opts.Store, opts.Clock, opts.Metrics),
		Results:    NewResultService(opts.Store, opts.Clock),
		Audit:      NewAuditService(opts.Store, opts.Metrics),
	}
	s.Votes = NewVoteService(opts.Store, s.Sessions, s.Associates, s.Audit, opts.Publisher, opts.Clock, opts.Metrics, opts.Logger)
	return s
}
