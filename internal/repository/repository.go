package repository

import (
	"context"
	"fmt"

	"github.com/lvdashuaibi/agendavote/config"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"go.uber.org/zap"
)

type AgendaRepository interface {
	Save(ctx context.Context, agenda model.Agenda) error
	// Get 不存在时返回 apperr NotFound
	Get(ctx context.Context, id string) (model.Agenda, error)
	List(ctx context.Context) ([]model.Agenda, error)
}

type AssociateRepository interface {
	// FindByNationalID 第二个返回值表示是否找到
	FindByNationalID(ctx context.Context, nationalID string) (model.Associate, bool, error)
	// Save 违反CPF唯一约束时返回 apperr Conflict
	Save(ctx context.Context, associate model.Associate) error
	List(ctx context.Context) ([]model.Associate, error)
}

type SessionRepository interface {
	Save(ctx context.Context, session model.Session) error
	Get(ctx context.Context, id string) (model.Session, error)
	List(ctx context.Context) ([]model.Session, error)
}

type VoteRepository interface {
	ExistsFor(ctx context.Context, associateID, sessionID string) (bool, error)
	// Save 违反 (associate_id, session_id) 唯一约束时返回 apperr Conflict
	Save(ctx context.Context, vote model.Vote) error
	CountBySession(ctx context.Context, sessionID string) (int64, error)
	CountBySessionAndOption(ctx context.Context, sessionID string, option model.VoteOption) (int64, error)
}

// AuditRepository 投票事件审计日志，按 vote id 幂等
type AuditRepository interface {
	RecordVoteEvent(ctx context.Context, event *model.VoteEvent) error
}

// Repositories 一组共享同一连接或事务的仓库
type Repositories interface {
	Agendas() AgendaRepository
	Associates() AssociateRepository
	Sessions() SessionRepository
	Votes() VoteRepository
	Audit() AuditRepository
}

// Store 持久化入口
type Store interface {
	Repositories

	// WithinTx 在单个事务中执行 fn，fn 返回错误时回滚
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore 根据配置创建存储
func NewStore(cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "mysql", "postgres", "sqlite":
		return OpenSQLStore(cfg, logger)
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Driver)
	}
}
