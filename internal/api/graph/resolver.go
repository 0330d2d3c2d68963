package graph

import (
	"context"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/service"
	"go.uber.org/zap"
)

// Resolver GraphQL解析器
type Resolver struct {
	services *service.Services
	logger   *zap.Logger
}

// NewResolver 创建新的解析器
func NewResolver(services *service.Services, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{services: services, logger: logger}
}

// resolverError 在 errors[].extensions.code 中带上错误类别
type resolverError struct {
	err error
}

func (e *resolverError) Error() string {
	return apperr.MessageOf(e.err)
}

func (e *resolverError) Unwrap() error {
	return e.err
}

func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": string(apperr.KindOf(e.err))}
}

func (r *Resolver) fail(op string, err error) error {
	if apperr.KindOf(err) == apperr.KindInternal {
		r.logger.Error("GraphQL请求处理失败", zap.String("op", op), zap.Error(err))
	}
	return &resolverError{err: err}
}

func (r *Resolver) Agendas(ctx context.Context) ([]*AgendaResolver, error) {
	agendas, err := r.services.Agendas.ListAgendas(ctx)
	if err != nil {
		return nil, r.fail("agendas", err)
	}
	out := make([]*AgendaResolver, len(agendas))
	for i := range agendas {
		out[i] = &AgendaResolver{agendas[i]}
	}
	return out, nil
}

func (r *Resolver) Agenda(ctx context.Context, args struct{ ID graphql.ID }) (*AgendaResolver, error) {
	agenda, err := r.services.Agendas.GetAgenda(ctx, string(args.ID))
	if err != nil {
		return nil, r.fail("agenda", err)
	}
	return &AgendaResolver{agenda}, nil
}

func (r *Resolver) Associates(ctx context.Context) ([]*AssociateResolver, error) {
	associates, err := r.services.Associates.ListAssociates(ctx)
	if err != nil {
		return nil, r.fail("associates", err)
	}
	out := make([]*AssociateResolver, len(associates))
	for i := range associates {
		out[i] = &AssociateResolver{associates[i]}
	}
	return out, nil
}

func (r *Resolver) Associate(ctx context.Context, args struct{ CPF string }) (*AssociateResolver, error) {
	associate, err := r.services.Associates.GetAssociate(ctx, args.CPF)
	if err != nil {
		return nil, r.fail("associate", err)
	}
	return &AssociateResolver{associate}, nil
}

func (r *Resolver) Sessions(ctx context.Context) ([]*SessionResolver, error) {
	sessions, err := r.services.Sessions.ListSessions(ctx)
	if err != nil {
		return nil, r.fail("sessions", err)
	}
	out := make([]*SessionResolver, len(sessions))
	for i := range sessions {
		out[i] = &SessionResolver{sessions[i]}
	}
	return out, nil
}

func (r *Resolver) Session(ctx context.Context, args struct{ ID graphql.ID }) (*SessionResolver, error) {
	session, err := r.services.Sessions.GetSession(ctx, string(args.ID))
	if err != nil {
		return nil, r.fail("session", err)
	}
	return &SessionResolver{session}, nil
}

func (r *Resolver) Result(ctx context.Context, args struct{ SessionID graphql.ID }) (*SessionResultResolver, error) {
	result, err := r.services.Results.GetResult(ctx, string(args.SessionID))
	if err != nil {
		return nil, r.fail("result", err)
	}
	return &SessionResultResolver{result}, nil
}

func (r *Resolver) CreateAgenda(ctx context.Context, args struct {
	Title       string
	Description string
}) (*AgendaResolver, error) {
	agenda, err := r.services.Agendas.CreateAgenda(ctx, args.Title, args.Description)
	if err != nil {
		return nil, r.fail("createAgenda", err)
	}
	return &AgendaResolver{agenda}, nil
}

func (r *Resolver) RegisterAssociate(ctx context.Context, args struct {
	Name string
	CPF  string
}) (*AssociateResolver, error) {
	associate, err := r.services.Associates.RegisterAssociate(ctx, args.Name, args.CPF)
	if err != nil {
		return nil, r.fail("registerAssociate", err)
	}
	return &AssociateResolver{associate}, nil
}

func (r *Resolver) OpenSession(ctx context.Context, args struct {
	AgendaID        graphql.ID
	DurationMinutes *Long
}) (*SessionResolver, error) {
	var minutes int64
	if args.DurationMinutes != nil {
		minutes = int64(*args.DurationMinutes)
	}
	session, err := r.services.Sessions.OpenSession(ctx, string(args.AgendaID), minutes)
	if err != nil {
		return nil, r.fail("openSession", err)
	}
	return &SessionResolver{session}, nil
}

// CastVote 投票
func (r *Resolver) CastVote(ctx context.Context, args struct{ Input VoteInput }) (*VoteConfirmationResolver, error) {
	req := service.CastVoteRequest{
		SessionID:  string(args.Input.SessionID),
		NationalID: args.Input.CPF,
		Option:     args.Input.Option,
	}
	if args.Input.Name != nil {
		req.Name = *args.Input.Name
	}

	confirmation, err := r.services.Votes.CastVote(ctx, req)
	if err != nil {
		return nil, r.fail("castVote", err)
	}
	return &VoteConfirmationResolver{confirmation}, nil
}

// VoteInput 投票输入类型
type VoteInput struct {
	SessionID graphql.ID
	CPF       string
	Name      *string
	Option    string
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// AgendaResolver 议题解析器
type AgendaResolver struct {
	a model.Agenda
}

func (r *AgendaResolver) ID() graphql.ID      { return graphql.ID(r.a.ID) }
func (r *AgendaResolver) Title() string       { return r.a.Title }
func (r *AgendaResolver) Description() string { return r.a.Description }
func (r *AgendaResolver) CreatedAt() string   { return formatTime(r.a.CreatedAt) }

// AssociateResolver 会员解析器
type AssociateResolver struct {
	a model.Associate
}

func (r *AssociateResolver) ID() graphql.ID    { return graphql.ID(r.a.ID) }
func (r *AssociateResolver) Name() string      { return r.a.Name }
func (r *AssociateResolver) CPF() string       { return r.a.NationalID }
func (r *AssociateResolver) CreatedAt() string { return formatTime(r.a.CreatedAt) }

// SessionResolver 投票会话解析器
type SessionResolver struct {
	s model.Session
}

func (r *SessionResolver) ID() graphql.ID        { return graphql.ID(r.s.ID) }
func (r *SessionResolver) AgendaID() graphql.ID  { return graphql.ID(r.s.AgendaID) }
func (r *SessionResolver) StartTime() string     { return formatTime(r.s.StartTime) }
func (r *SessionResolver) EndTime() string       { return formatTime(r.s.EndTime) }
func (r *SessionResolver) DurationMinutes() Long { return Long(r.s.DurationMinutes) }
func (r *SessionResolver) Status() string        { return string(r.s.Status) }

// VoteConfirmationResolver 投票回执解析器
type VoteConfirmationResolver struct {
	c model.VoteConfirmation
}

func (r *VoteConfirmationResolver) AssociateID() graphql.ID { return graphql.ID(r.c.AssociateID) }
func (r *VoteConfirmationResolver) SessionID() graphql.ID   { return graphql.ID(r.c.SessionID) }
func (r *VoteConfirmationResolver) Option() string          { return r.c.Option }
func (r *VoteConfirmationResolver) Message() string         { return r.c.Message }

// SessionResultResolver 计票结果解析器
type SessionResultResolver struct {
	r model.SessionResult
}

func (r *SessionResultResolver) SessionID() graphql.ID { return graphql.ID(r.r.SessionID) }
func (r *SessionResultResolver) AgendaID() graphql.ID  { return graphql.ID(r.r.AgendaID) }
func (r *SessionResultResolver) AgendaTitle() string   { return r.r.AgendaTitle }
func (r *SessionResultResolver) YesVotes() Long        { return Long(r.r.YesVotes) }
func (r *SessionResultResolver) NoVotes() Long         { return Long(r.r.NoVotes) }
func (r *SessionResultResolver) TotalVotes() Long      { return Long(r.r.TotalVotes) }
func (r *SessionResultResolver) Status() string        { return string(r.r.Status) }
func (r *SessionResultResolver) Result() string        { return string(r.r.Result) }
