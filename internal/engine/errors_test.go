package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gsmatch/internal/ir"
)

func TestMatchError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *MatchError
		want string
	}{
		{
			name: "exhaustion names the proposer",
			err:  NewExhaustionError("A", 2),
			want: "LOGIC_EXHAUSTION: proposer is free but has proposed to every reviewer (proposer=A)",
		},
		{
			name: "quota",
			err:  NewQuotaError(5, 4),
			want: "LOGIC_EXHAUSTION: run exceeded max proposals (5 > 4)",
		},
		{
			name: "invalid input without details",
			err:  NewInvalidInputError(nil),
			want: "INVALID_INPUT: invalid instance",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNewInvalidInputError_SummarizesFirst(t *testing.T) {
	inputs := []ir.InputError{
		{Kind: ir.KindSizeMismatch, Message: "2 proposers but 1 reviewers"},
		{Kind: ir.KindMissingPreferences, Participant: "X", Message: "no preference list"},
	}

	err := NewInvalidInputError(inputs)
	assert.Equal(t, ErrCodeInvalidInput, err.Code)
	assert.Equal(t, "size_mismatch: 2 proposers but 1 reviewers (and 1 more)", err.Message)
	assert.Equal(t, inputs, err.Inputs)
}

func TestMatchError_UnwrapsInputs(t *testing.T) {
	err := fmt.Errorf("match: %w", NewInvalidInputError([]ir.InputError{
		{Kind: ir.KindInvalidRanking, Participant: "A", Message: "entry 1 (\"X\") appears twice"},
	}))

	var ie ir.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, ir.KindInvalidRanking, ie.Kind)
	assert.Equal(t, "A", ie.Participant)

	assert.Nil(t, NewQuotaError(1, 0).Unwrap())
}

func TestErrorPredicates(t *testing.T) {
	invalid := fmt.Errorf("wrapped: %w", NewInvalidInputError(nil))
	exhausted := fmt.Errorf("wrapped: %w", NewExhaustionError("B", 3))
	plain := errors.New("plain")

	assert.True(t, IsInvalidInput(invalid))
	assert.False(t, IsLogicExhaustion(invalid))

	assert.True(t, IsLogicExhaustion(exhausted))
	assert.False(t, IsInvalidInput(exhausted))

	assert.False(t, IsInvalidInput(plain))
	assert.False(t, IsLogicExhaustion(plain))
}

func TestQuotaError_Details(t *testing.T) {
	err := NewQuotaError(10, 9)
	assert.Equal(t, map[string]string{"steps": "10", "max_steps": "9"}, err.Details)
	assert.Empty(t, err.Participant)
}
