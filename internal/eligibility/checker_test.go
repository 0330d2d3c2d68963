package eligibility

import (
	"context"
	"errors"
	"testing"

	"github.com/lvdashuaibi/agendavote/config"
	"github.com/lvdashuaibi/agendavote/internal/apperr"
	"github.com/lvdashuaibi/agendavote/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCPF(t *testing.T) {
	valid := []string{"52998224725", "529.982.247-25", "11144477735", "123.456.789-09"}
	for _, cpf := range valid {
		assert.True(t, ValidCPF(cpf), cpf)
	}

	invalid := []string{"", "123", "52998224724", "11111111111", "5299822472a", "529982247250"}
	for _, cpf := range invalid {
		assert.False(t, ValidCPF(cpf), cpf)
	}
}

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "12345678909", NormalizeCPF(" 123.456.789-09 "))
	assert.Equal(t, "12345678909", NormalizeCPF("12345678909"))
}

type fakeBlocklist struct {
	blocked map[string]bool
	err     error
}

func (f *fakeBlocklist) IsBlocked(ctx context.Context, nationalID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.blocked[nationalID], nil
}

func TestValidatorInvalidIdentifierIsNotFound(t *testing.T) {
	v := NewValidator(NewCPFChecker(nil))

	_, err := v.ValidateForVoting(context.Background(), "00000000000")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, apperr.MsgInvalidCPF, apperr.MessageOf(err))
}

func TestValidatorUsesBlocklist(t *testing.T) {
	blocklist := &fakeBlocklist{blocked: map[string]bool{"52998224725": true}}
	v := NewValidator(NewCPFChecker(blocklist))
	ctx := context.Background()

	result, err := v.ValidateForVoting(ctx, "529.982.247-25")
	require.NoError(t, err)
	assert.Equal(t, model.UnableToVote, result)

	result, err = v.ValidateForVoting(ctx, "11144477735")
	require.NoError(t, err)
	assert.Equal(t, model.AbleToVote, result)
}

func TestValidatorPropagatesExternalFailure(t *testing.T) {
	down := errors.New("connection refused")
	v := NewValidator(NewCPFChecker(&fakeBlocklist{err: down}))

	_, err := v.ValidateForVoting(context.Background(), "52998224725")
	assert.ErrorIs(t, err, down)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestStaticChecker(t *testing.T) {
	c := NewStaticChecker([]string{"111"}, []string{"529.982.247-25"})
	ctx := context.Background()

	ok, _ := c.IsValidIdentifier(ctx, "111")
	assert.False(t, ok)

	result, _ := c.CheckEligibility(ctx, "52998224725")
	assert.Equal(t, model.UnableToVote, result)

	result, _ = c.CheckEligibility(ctx, "11144477735")
	assert.Equal(t, model.AbleToVote, result)
}

func TestSimulatedCheckerRates(t *testing.T) {
	ctx := context.Background()

	always := NewSimulatedChecker(0, 0, 1)
	for i := 0; i < 20; i++ {
		ok, _ := always.IsValidIdentifier(ctx, "x")
		assert.True(t, ok)
		result, _ := always.CheckEligibility(ctx, "x")
		assert.Equal(t, model.AbleToVote, result)
	}

	never := NewSimulatedChecker(1, 1, 1)
	ok, _ := never.IsValidIdentifier(ctx, "x")
	assert.False(t, ok)
	result, _ := never.CheckEligibility(ctx, "x")
	assert.Equal(t, model.UnableToVote, result)
}

func TestNewChecker(t *testing.T) {
	c, err := NewChecker(config.EligibilityConfig{Mode: "static", Ineligible: []string{"52998224725"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &StaticChecker{}, c)

	c, err = NewChecker(config.EligibilityConfig{Mode: "cpf"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &CPFChecker{}, c)

	_, err = NewChecker(config.EligibilityConfig{Mode: "oracle"}, nil)
	assert.Error(t, err)
}
