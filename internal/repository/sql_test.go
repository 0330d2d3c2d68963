package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, driver string) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewSQLStore(db, nil, driver, nil)
	require.NoError(t, err)
	return store, mock
}

func TestAgendaGet(t *testing.T) {
	store, mock := newMockStore(t, "mysql")
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, created_at FROM agendas WHERE id = ?")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "created_at"}).
			AddRow("a-1", "Budget", "Annual budget", created))

	agenda, err := store.Agendas().Get(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "Budget", agenda.Title)
	assert.True(t, created.Equal(agenda.CreatedAt))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description, created_at FROM agendas WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "created_at"}))

	_, err = store.Agendas().Get(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, apperr.MsgAgendaNotFound, apperr.MessageOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPlaceholders(t *testing.T) {
	store, mock := newMockStore(t, "postgres")
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM votes WHERE session_id = $1 AND vote_option = $2")).
		WithArgs("s-1", "YES").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := store.Votes().CountBySessionAndOption(ctx, "s-1", model.OptionAffirm)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteSaveDuplicateIsConflict(t *testing.T) {
	cases := []struct {
		driver string
		dupErr error
	}{
		{"mysql", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}},
		{"postgres", &pgconn.PgError{Code: "23505", Message: "duplicate key value"}},
	}

	for _, tc := range cases {
		t.Run(tc.driver, func(t *testing.T) {
			store, mock := newMockStore(t, tc.driver)
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO votes")).
				WithArgs("v-1", "as-1", "s-1", "NO", sqlmock.AnyArg()).
				WillReturnError(tc.dupErr)

			err := store.Votes().Save(context.Background(), model.Vote{
				ID:          "v-1",
				AssociateID: "as-1",
				SessionID:   "s-1",
				Option:      model.OptionReject,
				VotedAt:     time.Now(),
			})
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
			assert.Equal(t, apperr.MsgAlreadyVoted, apperr.MessageOf(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFindByNationalIDAbsent(t *testing.T) {
	store, mock := newMockStore(t, "mysql")

	mock.ExpectQuery(regexp.QuoteMeta("FROM associates WHERE national_id = ?")).
		WithArgs("52998224725").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "national_id", "created_at"}))

	_, found, err := store.Associates().FindByNationalID(context.Background(), "52998224725")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t, "mysql")
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO associates")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(repos Repositories) error {
		if err := repos.Associates().Save(context.Background(), model.Associate{ID: "as-1", NationalID: "52998224725", CreatedAt: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxCommits(t *testing.T) {
	store, mock := newMockStore(t, "mysql")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM votes WHERE associate_id = ? AND session_id = ?")).
		WithArgs("as-1", "s-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(repos Repositories) error {
		exists, err := repos.Votes().ExistsFor(context.Background(), "as-1", "s-1")
		if err != nil {
			return err
		}
		assert.False(t, exists)
		return nil
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditDuplicateIgnored(t *testing.T) {
	store, mock := newMockStore(t, "mysql")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO vote_audit_log")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := store.Audit().RecordVoteEvent(context.Background(), &model.VoteEvent{VoteID: "v-1", SessionID: "s-1", Option: model.OptionAffirm})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionListScansStringTimes(t *testing.T) {
	store, mock := newMockStore(t, "mysql")

	mock.ExpectQuery(regexp.QuoteMeta("FROM voting_sessions ORDER BY start_time, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "agenda_id", "start_time", "end_time", "duration_minutes", "status"}).
			AddRow("s-1", "a-1", []byte("2024-03-01 12:00:00.000000"), []byte("2024-03-01 12:05:00.000000"), 5, "OPEN"))

	sessions, err := store.Sessions().List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, model.SessionOpen, sessions[0].Status)
	assert.Equal(t, 5*time.Minute, sessions[0].EndTime.Sub(sessions[0].StartTime))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRebind(t *testing.T) {
	d, _ := dialectFor("postgres")
	assert.Equal(t, "a = $1 AND b = $2", d.rebind("a = ? AND b = ?"))

	d, _ = dialectFor("mysql")
	assert.Equal(t, "a = ? AND b = ?", d.rebind("a = ? AND b = ?"))
}

func TestNewStoreRejectsUnknownDriver(t *testing.T) {
	_, err := NewSQLStore(nil, nil, "oracle", nil)
	assert.Error(t, err)
}
