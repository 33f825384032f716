package engine

import (
	"context"
	"fmt"

	"github.com/roach88/gsmatch/internal/ir"
)

// Execute runs Match and records the result as an ir.Run with a fresh ID,
// content hashes and the full proposal trace.
//
// Observers passed in opts run before the trace recorder.
func Execute(ctx context.Context, inst ir.Instance, ids RunIDGenerator, opts ...Option) (*ir.Run, error) {
	trace := []ir.Proposal{}

	record := WithObserver(func(p ir.Proposal) {
		trace = append(trace, p)
	})

	m, err := Match(ctx, inst, append(append([]Option(nil), opts...), record)...)
	if err != nil {
		return nil, err
	}

	instHash, err := ir.InstanceHash(inst)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	matchHash, err := ir.MatchingHash(*m)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	return &ir.Run{
		ID:            ids.Generate(),
		InstanceHash:  instHash,
		MatchingHash:  matchHash,
		Instance:      inst.Clone(),
		Matching:      *m,
		Trace:         trace,
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
	}, nil
}
