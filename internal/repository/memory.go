package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
)

type voteKey struct {
	associateID string
	sessionID   string
}

type memoryData struct {
	agendas    map[string]model.Agenda
	associates map[string]model.Associate // key: national id
	sessions   map[string]model.Session
	votes      map[voteKey]model.Vote
	audit      map[string]model.VoteEvent
}

func newMemoryData() memoryData {
	return memoryData{
		agendas:    make(map[string]model.Agenda),
		associates: make(map[string]model.Associate),
		sessions:   make(map[string]model.Session),
		votes:      make(map[voteKey]model.Vote),
		audit:      make(map[string]model.VoteEvent),
	}
}

func (d memoryData) clone() memoryData {
	c := newMemoryData()
	for k, v := range d.agendas {
		c.agendas[k] = v
	}
	for k, v := range d.associates {
		c.associates[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.votes {
		c.votes[k] = v
	}
	for k, v := range d.audit {
		c.audit[k] = v
	}
	return c
}

// MemoryStore 进程内存储，用于单机开发和测试
// 唯一约束与 SQL 实现一致。写操作与 WithinTx 共用 txMu 串行执行，事务失败时恢复快照
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data memoryData
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData()}
}

func (s *MemoryStore) Agendas() AgendaRepository       { return memoryAgendas{s, false} }
func (s *MemoryStore) Associates() AssociateRepository { return memoryAssociates{s, false} }
func (s *MemoryStore) Sessions() SessionRepository     { return memorySessions{s, false} }
func (s *MemoryStore) Votes() VoteRepository           { return memoryVotes{s, false} }
func (s *MemoryStore) Audit() AuditRepository          { return memoryAudit{s, false} }

// memoryTx 事务内的仓库视图，写操作已在 WithinTx 持有的 txMu 之下
type memoryTx struct{ s *MemoryStore }

func (t memoryTx) Agendas() AgendaRepository       { return memoryAgendas{t.s, true} }
func (t memoryTx) Associates() AssociateRepository { return memoryAssociates{t.s, true} }
func (t memoryTx) Sessions() SessionRepository     { return memorySessions{t.s, true} }
func (t memoryTx) Votes() VoteRepository           { return memoryVotes{t.s, true} }
func (t memoryTx) Audit() AuditRepository          { return memoryAudit{t.s, true} }

// lockWrite 事务外的写操作先等待进行中的事务结束，避免被快照恢复覆盖
func (s *MemoryStore) lockWrite(inTx bool) func() {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	if err := fn(memoryTx{s}); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

type memoryAgendas struct {
	s    *MemoryStore
	inTx bool
}

func (r memoryAgendas) Save(ctx context.Context, agenda model.Agenda) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.data.agendas[agenda.ID]; ok {
		return apperr.Conflict("agenda already exists")
	}
	r.s.data.agendas[agenda.ID] = agenda
	return nil
}

func (r memoryAgendas) Get(ctx context.Context, id string) (model.Agenda, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	agenda, ok := r.s.data.agendas[id]
	if !ok {
		return model.Agenda{}, apperr.NotFound(apperr.MsgAgendaNotFound)
	}
	return agenda, nil
}

func (r memoryAgendas) List(ctx context.Context) ([]model.Agenda, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	agendas := make([]model.Agenda, 0, len(r.s.data.agendas))
	for _, a := range r.s.data.agendas {
		agendas = append(agendas, a)
	}
	sort.Slice(agendas, func(i, j int) bool {
		if agendas[i].CreatedAt.Equal(agendas[j].CreatedAt) {
			return agendas[i].ID < agendas[j].ID
		}
		return agendas[i].CreatedAt.Before(agendas[j].CreatedAt)
	})
	return agendas, nil
}

type memoryAssociates struct {
	s    *MemoryStore
	inTx bool
}

func (r memoryAssociates) FindByNationalID(ctx context.Context, nationalID string) (model.Associate, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	associate, ok := r.s.data.associates[nationalID]
	return associate, ok, nil
}

func (r memoryAssociates) Save(ctx context.Context, associate model.Associate) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.data.associates[associate.NationalID]; ok {
		return apperr.Conflict(apperr.MsgAssociateExists)
	}
	r.s.data.associates[associate.NationalID] = associate
	return nil
}

func (r memoryAssociates) List(ctx context.Context) ([]model.Associate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	associates := make([]model.Associate, 0, len(r.s.data.associates))
	for _, a := range r.s.data.associates {
		associates = append(associates, a)
	}
	sort.Slice(associates, func(i, j int) bool {
		if associates[i].CreatedAt.Equal(associates[j].CreatedAt) {
			return associates[i].ID < associates[j].ID
		}
		return associates[i].CreatedAt.Before(associates[j].CreatedAt)
	})
	return associates, nil
}

type memorySessions struct {
	s    *MemoryStore
	inTx bool
}

func (r memorySessions) Save(ctx context.Context, session model.Session) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.data.agendas[session.AgendaID]; !ok {
		return apperr.NotFound(apperr.MsgAgendaNotFound)
	}
	r.s.data.sessions[session.ID] = session
	return nil
}

func (r memorySessions) Get(ctx context.Context, id string) (model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	session, ok := r.s.data.sessions[id]
	if !ok {
		return model.Session{}, apperr.NotFound(apperr.MsgSessionNotFound)
	}
	return session, nil
}

func (r memorySessions) List(ctx context.Context) ([]model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sessions := make([]model.Session, 0, len(r.s.data.sessions))
	for _, sess := range r.s.data.sessions {
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartTime.Equal(sessions[j].StartTime) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
	return sessions, nil
}

type memoryVotes struct {
	s    *MemoryStore
	inTx bool
}

func (r memoryVotes) ExistsFor(ctx context.Context, associateID, sessionID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.data.votes[voteKey{associateID, sessionID}]
	return ok, nil
}

func (r memoryVotes) Save(ctx context.Context, vote model.Vote) error {
	defer r.s.lockWrite(r.inTx)()
	key := voteKey{vote.AssociateID, vote.SessionID}
	if _, ok := r.s.data.votes[key]; ok {
		return apperr.Conflict(apperr.MsgAlreadyVoted)
	}
	r.s.data.votes[key] = vote
	return nil
}

func (r memoryVotes) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for k := range r.s.data.votes {
		if k.sessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (r memoryVotes) CountBySessionAndOption(ctx context.Context, sessionID string, option model.VoteOption) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for k, v := range r.s.data.votes {
		if k.sessionID == sessionID && v.Option == option {
			n++
		}
	}
	return n, nil
}

type memoryAudit struct {
	s    *MemoryStore
	inTx bool
}

func (r memoryAudit) RecordVoteEvent(ctx context.Context, event *model.VoteEvent) error {
	defer r.s.lockWrite(r.inTx)()
	if _, ok := r.s.data.audit[event.VoteID]; !ok {
		r.s.data.audit[event.VoteID] = *event
	}
	return nil
}

// AuditedVotes 返回已记录的审计事件数量
func (s *MemoryStore) AuditedVotes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.audit)
}
