package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
)

type sqlAgendaRepository struct {
	conn
}

// Save 保存议题
func (r *sqlAgendaRepository) Save(ctx context.Context, agenda model.Agenda) error {
	query := "INSERT INTO agendas (id, title, description, created_at) VALUES (?, ?, ?, ?)"
	_, err := r.w.ExecContext(ctx, r.d.rebind(query),
		agenda.ID,
		agenda.Title,
		agenda.Description,
		utc(agenda.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("保存议题失败: %w", err)
	}
	return nil
}

// Get 获取议题
func (r *sqlAgendaRepository) Get(ctx context.Context, id string) (model.Agenda, error) {
	query := "SELECT id, title, description, created_at FROM agendas WHERE id = ?"
	var agenda model.Agenda
	err := r.w.QueryRowContext(ctx, r.d.rebind(query), id).Scan(
		&agenda.ID,
		&agenda.Title,
		&agenda.Description,
		dbTime{&agenda.CreatedAt},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Agenda{}, apperr.NotFound(apperr.MsgAgendaNotFound)
		}
		return model.Agenda{}, fmt.Errorf("查询议题失败: %w", err)
	}
	return agenda, nil
}

// List 获取所有议题，按创建时间排序
func (r *sqlAgendaRepository) List(ctx context.Context) ([]model.Agenda, error) {
	query := "SELECT id, title, description, created_at FROM agendas ORDER BY created_at, id"
	rows, err := r.r.QueryContext(ctx, r.d.rebind(query))
	if err != nil {
		return nil, fmt.Errorf("查询议题列表失败: %w", err)
	}
	defer rows.Close()

	agendas := make([]model.Agenda, 0)
	for rows.Next() {
		var agenda model.Agenda
		if err := rows.Scan(&agenda.ID, &agenda.Title, &agenda.Description, dbTime{&agenda.CreatedAt}); err != nil {
			return nil, fmt.Errorf("扫描议题失败: %w", err)
		}
		agendas = append(agendas, agenda)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("迭代议题失败: %w", err)
	}
	return agendas, nil
}

type sqlAssociateRepository struct {
	conn
}

// FindByNationalID 按CPF查找会员
func (r *sqlAssociateRepository) FindByNationalID(ctx context.Context, nationalID string) (model.Associate, bool, error) {
	query := "SELECT id, name, national_id, created_at FROM associates WHERE national_id = ?"
	var associate model.Associate
	err := r.w.QueryRowContext(ctx, r.d.rebind(query), nationalID).Scan(
		&associate.ID,
		&associate.Name,
		&associate.NationalID,
		dbTime{&associate.CreatedAt},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Associate{}, false, nil
		}
		return model.Associate{}, false, fmt.Errorf("查询会员失败: %w", err)
	}
	return associate, true, nil
}

// Save 保存会员
func (r *sqlAssociateRepository) Save(ctx context.Context, associate model.Associate) error {
	query := "INSERT INTO associates (id, name, national_id, created_at) VALUES (?, ?, ?, ?)"
	_, err := r.w.ExecContext(ctx, r.d.rebind(query),
		associate.ID,
		associate.Name,
		associate.NationalID,
		utc(associate.CreatedAt),
	)
	if err != nil {
		if r.d.uniqueViolation(err) {
			return apperr.Wrap(apperr.KindConflict, apperr.MsgAssociateExists, err)
		}
		return fmt.Errorf("保存会员失败: %w", err)
	}
	return nil
}

// List 获取所有会员
func (r *sqlAssociateRepository) List(ctx context.Context) ([]model.Associate, error) {
	query := "SELECT id, name, national_id, created_at FROM associates ORDER BY created_at, id"
	rows, err := r.r.QueryContext(ctx, r.d.rebind(query))
	if err != nil {
		return nil, fmt.Errorf("查询会员列表失败: %w", err)
	}
	defer rows.Close()

	associates := make([]model.Associate, 0)
	for rows.Next() {
		var associate model.Associate
		if err := rows.Scan(&associate.ID, &associate.Name, &associate.NationalID, dbTime{&associate.CreatedAt}); err != nil {
			return nil, fmt.Errorf("扫描会员失败: %w", err)
		}
		associates = append(associates, associate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("迭代会员失败: %w", err)
	}
	return associates, nil
}

type sqlSessionRepository struct {
	conn
}

const sessionColumns = "id, agenda_id, start_time, end_time, duration_minutes, status"

// Save 保存投票会话
func (r *sqlSessionRepository) Save(ctx context.Context, session model.Session) error {
	query := "INSERT INTO voting_sessions (" + sessionColumns + ") VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.w.ExecContext(ctx, r.d.rebind(query),
		session.ID,
		session.AgendaID,
		utc(session.StartTime),
		utc(session.EndTime),
		session.DurationMinutes,
		string(session.Status),
	)
	if err != nil {
		return fmt.Errorf("保存投票会话失败: %w", err)
	}
	return nil
}

// Get 获取投票会话
func (r *sqlSessionRepository) Get(ctx context.Context, id string) (model.Session, error) {
	query := "SELECT " + sessionColumns + " FROM voting_sessions WHERE id = ?"
	session, err := scanSession(r.w.QueryRowContext(ctx, r.d.rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, apperr.NotFound(apperr.MsgSessionNotFound)
		}
		return model.Session{}, fmt.Errorf("查询投票会话失败: %w", err)
	}
	return session, nil
}

// List 获取所有投票会话，按开始时间排序
func (r *sqlSessionRepository) List(ctx context.Context) ([]model.Session, error) {
	query := "SELECT " + sessionColumns + " FROM voting_sessions ORDER BY start_time, id"
	rows, err := r.r.QueryContext(ctx, r.d.rebind(query))
	if err != nil {
		return nil, fmt.Errorf("查询投票会话列表失败: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("扫描投票会话失败: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("迭代投票会话失败: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (model.Session, error) {
	var (
		session model.Session
		status  string
	)
	err := row.Scan(
		&session.ID,
		&session.AgendaID,
		dbTime{&session.StartTime},
		dbTime{&session.EndTime},
		&session.DurationMinutes,
		&status,
	)
	if err != nil {
		return model.Session{}, err
	}
	session.Status = model.SessionStatus(status)
	return session, nil
}

type sqlVoteRepository struct {
	conn
}

// ExistsFor 判断会员是否已在会话中投票
func (r *sqlVoteRepository) ExistsFor(ctx context.Context, associateID, sessionID string) (bool, error) {
	query := "SELECT COUNT(*) FROM votes WHERE associate_id = ? AND session_id = ?"
	var count int64
	if err := r.w.QueryRowContext(ctx, r.d.rebind(query), associateID, sessionID).Scan(&count); err != nil {
		return false, fmt.Errorf("查询投票记录失败: %w", err)
	}
	return count > 0, nil
}

// Save 保存投票，(associate_id, session_id) 重复时返回 Conflict
func (r *sqlVoteRepository) Save(ctx context.Context, vote model.Vote) error {
	query := "INSERT INTO votes (id, associate_id, session_id, vote_option, voted_at) VALUES (?, ?, ?, ?, ?)"
	_, err := r.w.ExecContext(ctx, r.d.rebind(query),
		vote.ID,
		vote.AssociateID,
		vote.SessionID,
		string(vote.Option),
		utc(vote.VotedAt),
	)
	if err != nil {
		if r.d.uniqueViolation(err) {
			return apperr.Wrap(apperr.KindConflict, apperr.MsgAlreadyVoted, err)
		}
		return fmt.Errorf("保存投票失败: %w", err)
	}
	return nil
}

// CountBySession 统计会话总票数
func (r *sqlVoteRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	query := "SELECT COUNT(*) FROM votes WHERE session_id = ?"
	var count int64
	if err := r.w.QueryRowContext(ctx, r.d.rebind(query), sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("统计会话票数失败: %w", err)
	}
	return count, nil
}

// CountBySessionAndOption 统计会话中某个选项的票数
func (r *sqlVoteRepository) CountBySessionAndOption(ctx context.Context, sessionID string, option model.VoteOption) (int64, error) {
	query := "SELECT COUNT(*) FROM votes WHERE session_id = ? AND vote_option = ?"
	var count int64
	if err := r.w.QueryRowContext(ctx, r.d.rebind(query), sessionID, string(option)).Scan(&count); err != nil {
		return 0, fmt.Errorf("统计选项票数失败: %w", err)
	}
	return count, nil
}

type sqlAuditRepository struct {
	conn
}

// RecordVoteEvent 写入审计日志，同一投票重复投递时忽略
func (r *sqlAuditRepository) RecordVoteEvent(ctx context.Context, event *model.VoteEvent) error {
	query := `INSERT INTO vote_audit_log (vote_id, session_id, associate_id, vote_option, voted_at, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.w.ExecContext(ctx, r.d.rebind(query),
		event.VoteID,
		event.SessionID,
		event.AssociateID,
		string(event.Option),
		utc(event.VotedAt),
		utc(time.Now()),
	)
	if err != nil {
		if r.d.uniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("写入投票审计日志失败: %w", err)
	}
	return nil
}

func utc(t time.Time) time.Time {
	return t.UTC()
}
