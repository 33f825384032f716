package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/gsmatch/internal/engine"
	"github.com/roach88/gsmatch/internal/ir"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayResult reports whether a stored run reproduces.
type ReplayResult struct {
	RunID           string `json:"run_id"`
	Schedule        string `json:"schedule"`
	Deterministic   bool   `json:"deterministic"`
	StoredHash      string `json:"stored_matching_hash"`
	ReplayedHash    string `json:"replayed_matching_hash"`
	InstanceMatches bool   `json:"instance_matches"`
	TraceMatches    bool   `json:"trace_matches"`

	// FirstDivergence is the seq of the first differing proposal, 0 when
	// the traces agree.
	FirstDivergence int64 `json:"first_divergence,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <run-id>",
		Short: "Re-run a stored run and verify it reproduces",
		Long: `Re-execute the stored instance of a run with its recorded schedule and
compare the result with what was stored: instance hash, matching hash and
the full proposal trace.

Exit codes:
  0 - The run reproduced exactly
  1 - The replay diverged
  2 - Command error (missing database or run)`,
		Example: `  gsmatch replay 0192f6c4-... --db ./runs.db
  gsmatch replay 0192f6c4-... --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "database path (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions, runID string) error {
	formatter := newFormatter(cmd, opts.RootOptions)
	logger := newLogger(cmd, opts.RootOptions)

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	stored, err := loadRun(cmd.Context(), st, runID)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	schedule, err := engine.ParseSchedule(stored.Matching.Schedule)
	if err != nil {
		if outErr := formatter.Error(ErrCodeStoreFailed, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "stored run has an unknown schedule", err)
	}

	formatter.VerboseLog("Replaying %s with schedule %s", stored.ID, schedule)
	replayed, err := engine.Execute(cmd.Context(), stored.Instance, engine.NewFixedGenerator(stored.ID),
		engine.WithSchedule(schedule),
		engine.WithLogger(logger),
	)
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, fmt.Sprintf("replay failed: %v", err), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "replay failed", err)
	}

	result := compareRuns(stored, replayed)

	if formatter.Format == "json" {
		if err := formatter.SuccessRun(stored.ID, result); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.Deterministic {
		return NewExitError(ExitFailure, fmt.Sprintf("replay of %s diverged", stored.ID))
	}
	return nil
}

// compareRuns checks a replayed run against the stored original.
func compareRuns(stored, replayed *ir.Run) ReplayResult {
	result := ReplayResult{
		RunID:           stored.ID,
		Schedule:        stored.Matching.Schedule,
		StoredHash:      stored.MatchingHash,
		ReplayedHash:    replayed.MatchingHash,
		InstanceMatches: stored.InstanceHash == replayed.InstanceHash,
		FirstDivergence: firstDivergence(stored.Trace, replayed.Trace),
	}
	result.TraceMatches = result.FirstDivergence == 0
	result.Deterministic = result.InstanceMatches &&
		result.TraceMatches &&
		result.StoredHash == result.ReplayedHash
	return result
}

// firstDivergence returns the seq of the first step where the traces
// differ, or 0 if they are identical. When one trace is a prefix of the
// other, the first missing step counts.
func firstDivergence(a, b []ir.Proposal) int64 {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int64(i + 1)
		}
	}
	if len(a) != len(b) {
		return int64(n + 1)
	}
	return 0
}

func outputReplayText(formatter *OutputFormatter, r ReplayResult) {
	w := formatter.Writer
	if r.Deterministic {
		fmt.Fprintf(w, "✓ Replay of %s is deterministic (schedule %s)\n", r.RunID, r.Schedule)
		fmt.Fprintf(w, "  Matching hash: %s\n", r.StoredHash)
		return
	}

	fmt.Fprintf(w, "✗ Replay of %s diverged (schedule %s)\n", r.RunID, r.Schedule)
	if !r.InstanceMatches {
		fmt.Fprintln(w, "  Instance hash differs from the stored run")
	}
	if r.StoredHash != r.ReplayedHash {
		fmt.Fprintf(w, "  Stored matching hash:   %s\n", r.StoredHash)
		fmt.Fprintf(w, "  Replayed matching hash: %s\n", r.ReplayedHash)
	}
	if !r.TraceMatches {
		fmt.Fprintf(w, "  Trace diverges at seq %d\n", r.FirstDivergence)
	}
}
