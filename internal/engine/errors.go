package engine

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/gsmatch/internal/ir"
)

// MatchError represents a failed matching run.
//
// Match errors include:
//   - Invalid input: the instance violates a precondition (see ir.Validate)
//   - Logic exhaustion: a free proposer ran out of reviewers, or the
//     proposal quota was exceeded; unreachable for valid input
//
// No partial matching is ever returned alongside a MatchError.
type MatchError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Participant names the proposer involved, if any.
	Participant string

	// Inputs lists every precondition violation (INVALID_INPUT only).
	Inputs []ir.InputError

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes match errors.
type ErrorCode string

const (
	// ErrCodeInvalidInput indicates the instance failed validation.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeLogicExhaustion indicates a broken termination invariant.
	ErrCodeLogicExhaustion ErrorCode = "LOGIC_EXHAUSTION"
)

// Error implements the error interface.
func (e *MatchError) Error() string {
	if e.Participant != "" {
		return fmt.Sprintf("%s: %s (proposer=%s)", e.Code, e.Message, e.Participant)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the individual input errors to errors.As.
func (e *MatchError) Unwrap() []error {
	if len(e.Inputs) == 0 {
		return nil
	}
	errs := make([]error, len(e.Inputs))
	for i, in := range e.Inputs {
		errs[i] = in
	}
	return errs
}

// IsInvalidInput returns true if the error is an input validation error.
// Uses errors.As to handle wrapped errors.
func IsInvalidInput(err error) bool {
	var me *MatchError
	if errors.As(err, &me) {
		return me.Code == ErrCodeInvalidInput
	}
	return false
}

// IsLogicExhaustion returns true if the error is a logic exhaustion error.
// Uses errors.As to handle wrapped errors.
func IsLogicExhaustion(err error) bool {
	var me *MatchError
	if errors.As(err, &me) {
		return me.Code == ErrCodeLogicExhaustion
	}
	return false
}

// NewInvalidInputError creates a MatchError for a failed validation.
func NewInvalidInputError(inputs []ir.InputError) *MatchError {
	msg := "invalid instance"
	if len(inputs) > 0 {
		msg = inputs[0].Error()
		if len(inputs) > 1 {
			msg = fmt.Sprintf("%s (and %d more)", msg, len(inputs)-1)
		}
	}
	return &MatchError{
		Code:    ErrCodeInvalidInput,
		Message: msg,
		Inputs:  inputs,
	}
}

// NewExhaustionError creates a MatchError for a free proposer whose
// preference list has been used up.
func NewExhaustionError(proposer string, cursor int) *MatchError {
	return &MatchError{
		Code:        ErrCodeLogicExhaustion,
		Message:     "proposer is free but has proposed to every reviewer",
		Participant: proposer,
		Details: map[string]string{
			"cursor": strconv.Itoa(cursor),
		},
	}
}

// NewQuotaError creates a MatchError for an exceeded proposal quota.
func NewQuotaError(steps, maxSteps int) *MatchError {
	return &MatchError{
		Code:    ErrCodeLogicExhaustion,
		Message: fmt.Sprintf("run exceeded max proposals (%d > %d)", steps, maxSteps),
		Details: map[string]string{
			"steps":     strconv.Itoa(steps),
			"max_steps": strconv.Itoa(maxSteps),
		},
	}
}
