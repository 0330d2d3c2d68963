package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreConstraints(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	session := seedSession(t, store)

	require.NoError(t, store.Associates().Save(ctx, model.Associate{ID: "as-1", NationalID: "52998224725"}))
	err := store.Associates().Save(ctx, model.Associate{ID: "as-2", NationalID: "52998224725"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	require.NoError(t, store.Votes().Save(ctx, model.Vote{ID: "v-1", AssociateID: "as-1", SessionID: session.ID, Option: model.OptionReject}))
	err = store.Votes().Save(ctx, model.Vote{ID: "v-2", AssociateID: "as-1", SessionID: session.ID, Option: model.OptionAffirm})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	no, err := store.Votes().CountBySessionAndOption(ctx, session.ID, model.OptionReject)
	require.NoError(t, err)
	assert.Equal(t, int64(1), no)

	err = store.Sessions().Save(ctx, model.Session{ID: "s-2", AgendaID: "missing"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMemoryStoreWithinTxRestoresSnapshot(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(repos Repositories) error {
		require.NoError(t, repos.Associates().Save(ctx, model.Associate{ID: "as-1", NationalID: "52998224725"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, found, err := store.Associates().FindByNationalID(ctx, "52998224725")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreListOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Agendas().Save(ctx, model.Agenda{ID: "b", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Agendas().Save(ctx, model.Agenda{ID: "a", CreatedAt: base}))

	agendas, err := store.Agendas().List(ctx)
	require.NoError(t, err)
	require.Len(t, agendas, 2)
	assert.Equal(t, "a", agendas[0].ID)
	assert.Equal(t, "b", agendas[1].ID)
}

func TestMemoryStoreWriteWaitsForFailingTx(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	started := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- store.WithinTx(ctx, func(repos Repositories) error {
			if err := repos.Associates().Save(ctx, model.Associate{ID: "as-1", NationalID: "52998224725"}); err != nil {
				return err
			}
			close(started)
			<-release
			return boom
		})
	}()
	<-started

	saved := make(chan error, 1)
	go func() {
		saved <- store.Agendas().Save(ctx, model.Agenda{ID: "a-1", Title: "Budget", Description: "Annual budget"})
	}()

	select {
	case err := <-saved:
		t.Fatalf("write finished while a transaction was open: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.ErrorIs(t, <-txDone, boom)
	require.NoError(t, <-saved)

	// 事务回滚后，事务外已确认的写入仍然存在
	_, err := store.Agendas().Get(ctx, "a-1")
	require.NoError(t, err)
	_, found, err := store.Associates().FindByNationalID(ctx, "52998224725")
	require.NoError(t, err)
	assert.False(t, found)
}
