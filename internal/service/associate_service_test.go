package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/lvdashuaibi/agendavote/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveForVotingAlreadyVotedTakesPrecedence(t *testing.T) {
	f := newFixture(t, repository.NewMemoryStore())
	ctx := context.Background()
	session := f.openSession(t, 30)

	_, err := f.cast(session.ID, cpfAna, "YES")
	require.NoError(t, err)

	// Ana 之后被列入不可投票名单
	f.checker.inner = newIneligible(cpfAna)
	before := f.checker.calls.Load()

	_, err = f.associates.ResolveForVoting(ctx, f.store, "Ana", cpfAna, session.ID)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.MsgAlreadyVoted, apperr.MessageOf(err))
	assert.Equal(t, before, f.checker.calls.Load(), "eligibility must not be consulted")
}

func TestResolveForVotingIneligibleIsNotPersisted(t *testing.T) {
	f := newFixture(t, repository.NewMemoryStore(), cpfBruno)
	ctx := context.Background()

	_, err := f.associates.ResolveForVoting(ctx, f.store, "Bruno", cpfBruno, uuid.NewString())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, apperr.MsgNotAbleToVote, apperr.MessageOf(err))

	_, found, err := f.associates.FindByNationalID(ctx, cpfBruno)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestResolveForVotingInvalidIdentifier(t *testing.T) {
	f := newFixture(t, repository.NewMemoryStore())

	_, err := f.associates.ResolveForVoting(context.Background(), f.store, "X", "00000000000", uuid.NewString())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.MsgInvalidCPF, apperr.MessageOf(err))
}

func TestResolveForVotingCreatesAndReuses(t *testing.T) {
	f := newFixture(t, repository.NewMemoryStore())
	ctx := context.Background()
	sessionID := uuid.NewString()

	created, err := f.associates.ResolveForVoting(ctx, f.store, " Carla ", cpfCarla, sessionID)
	require.NoError(t, err)
	assert.Equal(t, "Carla", created.Name)
	assert.Equal(t, cpfCarla, created.NationalID)

	again, err := f.associates.ResolveForVoting(ctx, f.store, "Other name", cpfCarla, sessionID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestResolveForVotingPropagatesExternalFailure(t *testing.T) {
	f := newFixture(t, repository.NewMemoryStore())
	f.checker.err = errUnavailable

	_, err := f.associates.ResolveForVoting(context.Background(), f.store, "Ana", cpfAna, uuid.NewString())
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestRegisterAssociate(t *testing.T) {
	f := newFixture(t, repository.NewMemoryStore())
	ctx := context.Background()

	associate, err := f.associates.RegisterAssociate(ctx, "Ana", "529.982.247-25")
	require.NoError(t, err)
	assert.Equal(t, cpfAna, associate.NationalID)

	_, err = f.associates.RegisterAssociate(ctx, "Ana again", cpfAna)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.MsgAssociateExists, apperr.MessageOf(err))

	_, err = f.associates.RegisterAssociate(ctx, "", cpfBruno)
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = f.associates.RegisterAssociate(ctx, "Bruno", "")
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = f.associates.RegisterAssociate(ctx, "Bruno", "123")
	assert.Equal(t, apperr.MsgInvalidCPFFormat, apperr.MessageOf(err))

	got, err := f.associates.GetAssociate(ctx, "529.982.247-25")
	require.NoError(t, err)
	assert.Equal(t, associate.ID, got.ID)

	_, err = f.associates.GetAssociate(ctx, cpfBruno)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.MsgAssociateNotFound, apperr.MessageOf(err))

	all, err := f.associates.ListAssociates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Associate{associate}, all)
}
