package store

import (
	"context"
	"fmt"

	"github.com/roach88/gsmatch/internal/ir"
)

// WriteRun stores a completed run: its instance, the run row, its pairs and
// its proposal trace, all in one transaction. A run ID that already exists
// is rejected.
//
// The instances table is keyed by the order-independent instance hash and
// keeps the first body written for it (ON CONFLICT DO NOTHING). The run row
// carries its own body so ReadRun sees this run's declaration order.
func (s *Store) WriteRun(ctx context.Context, run *ir.Run) error {
	body, err := marshalInstance(run.Instance)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO instances (hash, body)
		VALUES (?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, run.InstanceHash, body); err != nil {
		return fmt.Errorf("write run: instance: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, instance_hash, instance_body, schedule, matching_hash, proposals, engine_version, ir_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.InstanceHash,
		body,
		run.Matching.Schedule,
		run.MatchingHash,
		run.Matching.Proposals,
		run.EngineVersion,
		run.IRVersion,
	); err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for i, pair := range run.Matching.Pairs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pairs (run_id, position, proposer, reviewer)
			VALUES (?, ?, ?, ?)
		`, run.ID, i, pair.Proposer, pair.Reviewer); err != nil {
			return fmt.Errorf("write run: pair %s: %w", pair.Proposer, err)
		}
	}

	for _, prop := range run.Trace {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO proposals (run_id, seq, proposer, reviewer, outcome, displaced)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, prop.Seq, prop.Proposer, prop.Reviewer, string(prop.Outcome), prop.Displaced); err != nil {
			return fmt.Errorf("write run: proposal %d: %w", prop.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
