package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lvdashuaibi/agendavote/internal/eligibility"
	"github.com/lvdashuaibi/agendavote/internal/metrics"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
	"github.com/stretchr/testify/require"
)

const (
	cpfAna   = "52998224725"
	cpfBruno = "11144477735"
	cpfCarla = "12345678909"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: epoch} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingChecker 记录外部资格服务的调用次数
type countingChecker struct {
	inner eligibility.Checker
	calls atomic.Int32
	err   error
}

func (c *countingChecker) IsValidIdentifier(ctx context.Context, id string) (bool, error) {
	c.calls.Add(1)
	if c.err != nil {
		return false, c.err
	}
	return c.inner.IsValidIdentifier(ctx, id)
}

func (c *countingChecker) CheckEligibility(ctx context.Context, id string) (model.Eligibility, error) {
	return c.inner.CheckEligibility(ctx, id)
}

type fakePublisher struct {
	mu      sync.Mutex
	events  []*model.VoteEvent
	ctxErrs []error
	err     error
}

func (p *fakePublisher) SendVoteEvent(ctx context.Context, event *model.VoteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	store      repository.Store
	clock      *fakeClock
	checker    *countingChecker
	publisher  *fakePublisher
	metrics    *metrics.Metrics
	agendas    *AgendaService
	sessions   *SessionService
	associates *AssociateService
	votes      *VoteService
	results    *ResultService
}

func newFixture(t *testing.T, store repository.Store, ineligible ...string) *fixture {
	t.Helper()
	f := &fixture{
		store:     store,
		clock:     newFakeClock(),
		checker:   &countingChecker{inner: eligibility.NewStaticChecker([]string{"00000000000"}, ineligible)},
		publisher: &fakePublisher{},
		metrics:   metrics.NewMetrics("test", nil),
	}
	f.agendas = NewAgendaService(store, f.clock)
	f.sessions = NewSessionService(store, f.clock, f.metrics)
	f.associates = NewAssociateService(store, eligibility.NewValidator(f.checker), f.clock)
	f.results = NewResultService(store, f.clock)
	f.votes = NewVoteService(store, f.sessions, f.associates, NewAuditService(store, f.metrics), f.publisher, f.clock, f.metrics, nil)
	return f
}

func (f *fixture) openSession(t *testing.T, minutes int64) model.Session {
	t.Helper()
	ctx := context.Background()
	agenda, err := f.agendas.CreateAgenda(ctx, "Budget", "Annual budget")
	require.NoError(t, err)
	session, err := f.sessions.OpenSession(ctx, agenda.ID, minutes)
	require.NoError(t, err)
	return session
}

func (f *fixture) cast(sessionID, cpf, option string) (model.VoteConfirmation, error) {
	return f.votes.CastVote(context.Background(), CastVoteRequest{
		SessionID:  sessionID,
		NationalID: cpf,
		Name:       "Associate " + cpf,
		Option:     option,
	})
}

var errUnavailable = errors.New("eligibility service unavailable")

func newIneligible(ids ...string) eligibility.Checker {
	return eligibility.NewStaticChecker(nil, ids)
}

// racingStore 让事务内的预检查看不到已提交的数据，
// 模拟并发请求同时通过检查、只能由唯一约束拦截的情况
type racingStore struct {
	repository.Store
	hideVotes      bool
	hideAssociates bool
}

func (s *racingStore) Votes() repository.VoteRepository { return s.votes(s.Store.Votes()) }

func (s *racingStore) Associates() repository.AssociateRepository {
	return s.associates(s.Store.Associates())
}

func (s *racingStore) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return s.Store.WithinTx(ctx, func(repos repository.Repositories) error {
		return fn(racingRepos{Repositories: repos, store: s})
	})
}

func (s *racingStore) votes(v repository.VoteRepository) repository.VoteRepository {
	if s.hideVotes {
		return blindVotes{v}
	}
	return v
}

func (s *racingStore) associates(a repository.AssociateRepository) repository.AssociateRepository {
	if s.hideAssociates {
		return blindAssociates{a}
	}
	return a
}

type racingRepos struct {
	repository.Repositories
	store *racingStore
}

func (r racingRepos) Votes() repository.VoteRepository { return r.store.votes(r.Repositories.Votes()) }

func (r racingRepos) Associates() repository.AssociateRepository {
	return r.store.associates(r.Repositories.Associates())
}

type blindVotes struct{ repository.VoteRepository }

func (blindVotes) ExistsFor(ctx context.Context, associateID, sessionID string) (bool, error) {
	return false, nil
}

type blindAssociates struct{ repository.AssociateRepository }

func (blindAssociates) FindByNationalID(ctx context.Context, nationalID string) (model.Associate, bool, error) {
	return model.Associate{}, false, nil
}
