package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/gsmatch/internal/compiler"
	"github.com/roach88/gsmatch/internal/engine"
	"github.com/roach88/gsmatch/internal/ir"
)

// MatchOptions holds flags for the match command.
type MatchOptions struct {
	*RootOptions
	Schedule string
	Database string
	MaxSteps int

	// runIDs overrides the run ID source; nil means UUIDv7.
	runIDs engine.RunIDGenerator
}

// MatchResult is the JSON payload of a successful match.
type MatchResult struct {
	RunID        string        `json:"run_id"`
	InstanceHash string        `json:"instance_hash"`
	MatchingHash string        `json:"matching_hash"`
	Schedule     string        `json:"schedule"`
	Pairs        []ir.Pair     `json:"pairs"`
	Proposals    int           `json:"proposals"`
	Trace        []ir.Proposal `json:"trace"`
	Database     string        `json:"db,omitempty"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match <instance-file>",
		Short: "Compute the proposer-optimal stable matching of an instance",
		Long: `Load an instance from a CUE or YAML file and run deferred acceptance.

The matching is the same under every schedule; the schedule only changes
the order of proposals in the trace. With --db the run is recorded so it
can be inspected with trace and checked with replay.`,
		Example: `  gsmatch match ./instances/three.cue
  gsmatch match ./instances/three.cue --schedule rounds --db ./runs.db
  gsmatch match ./instances/three.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Schedule, "schedule", string(engine.ScheduleQueue), "proposal schedule (queue|stack|rounds)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "proposal quota (0 means n*n)")

	return cmd
}

func runMatch(cmd *cobra.Command, opts *MatchOptions, path string) error {
	formatter := newFormatter(cmd, opts.RootOptions)
	logger := newLogger(cmd, opts.RootOptions)

	schedule, err := engine.ParseSchedule(opts.Schedule)
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "invalid schedule", err)
	}
	if opts.MaxSteps < 0 {
		msg := fmt.Sprintf("max-steps must be non-negative, got %d", opts.MaxSteps)
		if outErr := formatter.Error(ErrCodeGeneric, msg, nil); outErr != nil {
			return outErr
		}
		return NewExitError(ExitCommandError, msg)
	}

	doc, err := loadInstance(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded %s instance with %d proposers from %s", doc.Format, doc.Instance.Size(), path)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids := opts.runIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}

	run, err := engine.Execute(ctx, doc.Instance, ids,
		engine.WithSchedule(schedule),
		engine.WithMaxSteps(opts.MaxSteps),
		engine.WithLogger(logger),
	)
	if err != nil {
		return outputMatchError(formatter, doc, err)
	}

	if opts.Database != "" {
		if err := storeRun(ctx, logger, opts.Database, run); err != nil {
			return outputLoadError(formatter, err)
		}
	}

	if formatter.Format == "json" {
		return formatter.SuccessRun(run.ID, MatchResult{
			RunID:        run.ID,
			InstanceHash: run.InstanceHash,
			MatchingHash: run.MatchingHash,
			Schedule:     run.Matching.Schedule,
			Pairs:        run.Matching.Pairs,
			Proposals:    run.Matching.Proposals,
			Trace:        run.Trace,
			Database:     opts.Database,
		})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s\n", run.ID)
	fmt.Fprintf(w, "Schedule: %s (%d proposals)\n", run.Matching.Schedule, run.Matching.Proposals)
	for _, p := range run.Matching.Pairs {
		fmt.Fprintf(w, "  %s - %s\n", p.Proposer, p.Reviewer)
	}
	if opts.Database != "" {
		fmt.Fprintf(w, "Stored in %s\n", opts.Database)
	}
	return nil
}

func storeRun(ctx context.Context, logger *slog.Logger, path string, run *ir.Run) error {
	st, err := openStore(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if err := st.WriteRun(ctx, run); err != nil {
		return &LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("failed to store run: %v", err), Err: err}
	}
	logger.Debug("run stored", "run_id", run.ID, "db", path)
	return nil
}

// outputMatchError reports an engine failure. Invalid input is reported
// with the compiler's located validation errors as details.
func outputMatchError(formatter *OutputFormatter, doc *compiler.Document, err error) error {
	var me *engine.MatchError
	if !errors.As(err, &me) {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "match aborted", err)
	}

	var details any
	if me.Code == engine.ErrCodeInvalidInput {
		details = compiler.Validate(doc)
	} else if len(me.Details) > 0 {
		details = me.Details
	}

	if formatter.Format == "json" {
		if outErr := formatter.Error(string(me.Code), me.Message, details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, string(me.Code), err)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s: %s\n", me.Code, me.Message)
	if verrs, ok := details.([]compiler.ValidationError); ok {
		for _, ve := range verrs {
			fmt.Fprintf(formatter.Writer, "  %s\n", ve.Error())
		}
	}
	return WrapExitError(ExitFailure, string(me.Code), err)
}
