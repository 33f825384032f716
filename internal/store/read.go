package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/gsmatch/internal/ir"
)

// RunSummary is one row of the runs table.
type RunSummary struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	InstanceHash  string `json:"instance_hash"`
	Schedule      string `json:"schedule"`
	MatchingHash  string `json:"matching_hash"`
	Proposals     int    `json:"proposals"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// ReadInstance retrieves an instance by content hash.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadInstance(ctx context.Context, hash string) (ir.Instance, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM instances WHERE hash = ?
	`, hash).Scan(&body)
	if err != nil {
		return ir.Instance{}, err
	}
	return unmarshalInstance(body)
}

// ReadRun reassembles a stored run: instance, matching and trace. The
// instance comes from the run's own row, in the order that run declared it.
// Returns an error wrapping sql.ErrNoRows if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (*ir.Run, error) {
	var body string
	summary, err := scanRunSummary(s.db.QueryRowContext(ctx, `
		SELECT id, seq, instance_hash, schedule, matching_hash, proposals, engine_version, ir_version, instance_body
		FROM runs
		WHERE id = ?
	`, id), &body)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	inst, err := unmarshalInstance(body)
	if err != nil {
		return nil, fmt.Errorf("read run %s: instance: %w", id, err)
	}

	pairs, err := s.readPairs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	trace, err := s.ReadProposals(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read run %s: %w", id, err)
	}

	return &ir.Run{
		ID:           summary.ID,
		InstanceHash: summary.InstanceHash,
		MatchingHash: summary.MatchingHash,
		Instance:     inst,
		Matching: ir.Matching{
			Pairs:     pairs,
			Proposals: summary.Proposals,
			Schedule:  summary.Schedule,
		},
		Trace:         trace,
		EngineVersion: summary.EngineVersion,
		IRVersion:     summary.IRVersion,
	}, nil
}

// ListRuns returns stored runs ordered by seq ASC, id ASC.
// A non-empty instanceHash restricts the result to runs of that instance.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, instanceHash string) ([]RunSummary, error) {
	query := `
		SELECT id, seq, instance_hash, schedule, matching_hash, proposals, engine_version, ir_version
		FROM runs
	`
	var args []any
	if instanceHash != "" {
		query += " WHERE instance_hash = ?"
		args = append(args, instanceHash)
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		summary, err := scanRunSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadProposals returns the proposal trace of a run ordered by seq.
//
// Returns an empty slice (not nil) if the run made no proposals or does not exist.
func (s *Store) ReadProposals(ctx context.Context, runID string) ([]ir.Proposal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, proposer, reviewer, outcome, displaced
		FROM proposals
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query proposals: %w", err)
	}
	defer rows.Close()

	trace := []ir.Proposal{}
	for rows.Next() {
		var (
			p       ir.Proposal
			outcome string
		)
		if err := rows.Scan(&p.Seq, &p.Proposer, &p.Reviewer, &outcome, &p.Displaced); err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		p.Outcome = ir.Outcome(outcome)
		trace = append(trace, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return trace, nil
}

func (s *Store) readPairs(ctx context.Context, runID string) ([]ir.Pair, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT proposer, reviewer
		FROM pairs
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query pairs: %w", err)
	}
	defer rows.Close()

	pairs := []ir.Pair{}
	for rows.Next() {
		var p ir.Pair
		if err := rows.Scan(&p.Proposer, &p.Reviewer); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pairs: %w", err)
	}
	return pairs, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanRunSummary scans the summary columns followed by any extra columns.
func scanRunSummary(row scanner, extra ...any) (RunSummary, error) {
	var r RunSummary
	dest := append([]any{&r.ID, &r.Seq, &r.InstanceHash, &r.Schedule, &r.MatchingHash,
		&r.Proposals, &r.EngineVersion, &r.IRVersion}, extra...)
	err := row.Scan(dest...)
	if err == sql.ErrNoRows {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}
