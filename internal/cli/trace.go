package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gsmatch/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database    string
	Participant string
}

// TraceStats counts proposals by outcome.
type TraceStats struct {
	Total     int `json:"total"`
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Displaced int `json:"displaced"`
}

// TraceResult is the JSON payload of the trace command.
type TraceResult struct {
	RunID        string        `json:"run_id"`
	InstanceHash string        `json:"instance_hash"`
	MatchingHash string        `json:"matching_hash"`
	Schedule     string        `json:"schedule"`
	Pairs        []ir.Pair     `json:"pairs"`
	Trace        []ir.Proposal `json:"trace"`
	Stats        TraceStats    `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Show the proposal trace of a stored run",
		Long: `Print every proposal of a recorded run in sequence order, with its
outcome and, for displacements, the proposer that was released.

--participant limits the output to proposals that involve one name as
proposer, reviewer or displaced partner.`,
		Example: `  gsmatch trace 0192f6c4-... --db ./runs.db
  gsmatch trace 0192f6c4-... --db ./runs.db --participant A
  gsmatch trace 0192f6c4-... --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "database path (required)")
	cmd.Flags().StringVar(&opts.Participant, "participant", "", "only show proposals involving this participant")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(cmd *cobra.Command, opts *TraceOptions, runID string) error {
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

	run, err := loadRun(cmd.Context(), st, runID)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	trace := filterTrace(run.Trace, opts.Participant)
	result := TraceResult{
		RunID:        run.ID,
		InstanceHash: run.InstanceHash,
		MatchingHash: run.MatchingHash,
		Schedule:     run.Matching.Schedule,
		Pairs:        run.Matching.Pairs,
		Trace:        trace,
		Stats:        countOutcomes(trace),
	}

	if formatter.Format == "json" {
		return formatter.SuccessRun(run.ID, result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (schedule %s, %d proposals)\n", run.ID, result.Schedule, run.Matching.Proposals)
	if opts.Participant != "" {
		fmt.Fprintf(w, "Participant: %s\n", opts.Participant)
	}
	fmt.Fprintln(w)
	for _, p := range trace {
		fmt.Fprintf(w, "  %s\n", formatProposal(p))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Result: %s\n", formatPairs(run.Matching.Pairs))
	fmt.Fprintf(w, "Accepted: %d, Rejected: %d, Displaced: %d\n",
		result.Stats.Accepted, result.Stats.Rejected, result.Stats.Displaced)
	return nil
}

// filterTrace keeps proposals that mention name. An empty name keeps all.
func filterTrace(trace []ir.Proposal, name string) []ir.Proposal {
	if name == "" {
		return trace
	}
	out := []ir.Proposal{}
	for _, p := range trace {
		if p.Proposer == name || p.Reviewer == name || p.Displaced == name {
			out = append(out, p)
		}
	}
	return out
}

func countOutcomes(trace []ir.Proposal) TraceStats {
	stats := TraceStats{Total: len(trace)}
	for _, p := range trace {
		switch p.Outcome {
		case ir.OutcomeAccepted:
			stats.Accepted++
		case ir.OutcomeRejected:
			stats.Rejected++
		case ir.OutcomeDisplaced:
			stats.Displaced++
		}
	}
	return stats
}

// formatProposal renders one trace step as "[seq] P -> R: outcome".
func formatProposal(p ir.Proposal) string {
	s := fmt.Sprintf("[%d] %s -> %s: %s", p.Seq, p.Proposer, p.Reviewer, p.Outcome)
	if p.Displaced != "" {
		s += fmt.Sprintf(" (displaced %s)", p.Displaced)
	}
	return s
}

// formatPairs renders pairs as "{A-X, B-Y}".
func formatPairs(pairs []ir.Pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Proposer + "-" + p.Reviewer
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
