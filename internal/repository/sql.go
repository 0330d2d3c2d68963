package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lvdashuaibi/agendavote/config"
	"go.uber.org/zap"
)

// queryer 由 *sql.DB 和 *sql.Tx 共同实现
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// conn 写操作和一致性读走 w，列表查询走 r
type conn struct {
	w queryer
	r queryer
	d *dialect
}

type sqlRepos struct {
	agendas    *sqlAgendaRepository
	associates *sqlAssociateRepository
	sessions   *sqlSessionRepository
	votes      *sqlVoteRepository
	audit      *sqlAuditRepository
}

func newSQLRepos(c conn) *sqlRepos {
	return &sqlRepos{
		agendas:    &sqlAgendaRepository{c},
		associates: &sqlAssociateRepository{c},
		sessions:   &sqlSessionRepository{c},
		votes:      &sqlVoteRepository{c},
		audit:      &sqlAuditRepository{c},
	}
}

func (r *sqlRepos) Agendas() AgendaRepository       { return r.agendas }
func (r *sqlRepos) Associates() AssociateRepository { return r.associates }
func (r *sqlRepos) Sessions() SessionRepository     { return r.sessions }
func (r *sqlRepos) Votes() VoteRepository           { return r.votes }
func (r *sqlRepos) Audit() AuditRepository          { return r.audit }

// SQLStore 基于 database/sql 的存储，支持主从分离
type SQLStore struct {
	*sqlRepos

	masterDB *sql.DB
	slaveDB  *sql.DB
	dialect  *dialect
	logger   *zap.Logger
}

// OpenSQLStore 按配置连接主从数据库
func OpenSQLStore(cfg config.StoreConfig, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d, ok := dialectFor(cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Driver)
	}
	if cfg.Master == "" {
		return nil, fmt.Errorf("未配置主数据库连接串")
	}

	masterDB, err := sql.Open(d.driverName, cfg.Master)
	if err != nil {
		return nil, fmt.Errorf("连接主数据库失败: %w", err)
	}
	configurePool(masterDB, d, cfg)

	if err = masterDB.Ping(); err != nil {
		masterDB.Close()
		return nil, fmt.Errorf("主数据库连接测试失败: %w", err)
	}

	if d.name == "sqlite" {
		if _, err := masterDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
			masterDB.Close()
			return nil, fmt.Errorf("启用外键约束失败: %w", err)
		}
	}

	slaveDB := masterDB
	if cfg.Slave != "" && d.name != "sqlite" {
		slaveDB, err = sql.Open(d.driverName, cfg.Slave)
		if err != nil {
			masterDB.Close()
			return nil, fmt.Errorf("连接从数据库失败: %w", err)
		}
		configurePool(slaveDB, d, cfg)

		if err = slaveDB.Ping(); err != nil {
			logger.Warn("从数据库连接测试失败，将使用主数据库代替", zap.Error(err))
			slaveDB.Close()
			slaveDB = masterDB
		}
	}

	return NewSQLStore(masterDB, slaveDB, cfg.Driver, logger)
}

// NewSQLStore 使用已打开的连接创建存储，slaveDB 为 nil 时读写都走主库
func NewSQLStore(masterDB, slaveDB *sql.DB, driver string, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d, ok := dialectFor(driver)
	if !ok {
		return nil, fmt.Errorf("不支持的存储驱动: %s", driver)
	}
	if slaveDB == nil {
		slaveDB = masterDB
	}
	return &SQLStore{
		sqlRepos: newSQLRepos(conn{w: masterDB, r: slaveDB, d: d}),
		masterDB: masterDB,
		slaveDB:  slaveDB,
		dialect:  d,
		logger:   logger,
	}, nil
}

func configurePool(db *sql.DB, d *dialect, cfg config.StoreConfig) {
	if d.name == "sqlite" {
		// 内存库每个连接各自独立，只保留一个长期连接
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
}

// WithinTx 在主库事务中执行 fn
func (s *SQLStore) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	tx, err := s.masterDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}

	if err := fn(newSQLRepos(conn{w: tx, r: tx, d: s.dialect})); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("回滚事务失败", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// Migrate 创建表结构，语句均为幂等
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.masterDB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("执行建表语句失败: %w", err)
		}
	}
	s.logger.Info("数据库表结构已就绪", zap.String("driver", s.dialect.name))
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.masterDB.PingContext(ctx); err != nil {
		return fmt.Errorf("主数据库不可用: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *SQLStore) Close() error {
	var firstErr error
	if s.masterDB != nil {
		firstErr = s.masterDB.Close()
	}
	if s.slaveDB != nil && s.slaveDB != s.masterDB {
		if err := s.slaveDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// dbTime 兼容不同驱动返回的时间格式
type dbTime struct {
	t *time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

func (d dbTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d.t = v.UTC()
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		*d.t = time.Time{}
		return nil
	}
	return fmt.Errorf("无法解析时间类型 %T", src)
}

func (d dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("无法解析时间 %q", s)
}
