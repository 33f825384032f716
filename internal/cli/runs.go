package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Instance string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored runs",
		Long: `List the runs recorded in a database, oldest first.
--instance restricts the list to runs of one instance hash and fails
when no run of that instance was ever stored.`,
		Example: `  gsmatch runs --db ./runs.db
  gsmatch runs --db ./runs.db --instance 3f1a...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "database path (required)")
	cmd.Flags().StringVar(&opts.Instance, "instance", "", "only list runs of this instance hash")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
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

	// An unknown hash is reported rather than listed as empty.
	var header string
	if opts.Instance != "" {
		inst, err := st.ReadInstance(cmd.Context(), opts.Instance)
		if errors.Is(err, sql.ErrNoRows) {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("instance not found: %s", opts.Instance), Err: err})
		}
		if err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error(), Err: err})
		}
		header = fmt.Sprintf("Instance %s (%d proposers, %d reviewers)", shortHash(opts.Instance), len(inst.Proposers), len(inst.Reviewers))
	}

	runs, err := st.ListRuns(cmd.Context(), opts.Instance)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeStoreFailed, Message: err.Error(), Err: err})
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}

	w := formatter.Writer
	if header != "" {
		fmt.Fprintln(w, header)
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%4d  %s  %-6s  %3d proposals  instance %s\n",
			r.Seq, r.ID, r.Schedule, r.Proposals, shortHash(r.InstanceHash))
	}
	fmt.Fprintf(w, "\n%d run(s)\n", len(runs))
	return nil
}

// shortHash abbreviates a content hash for tabular output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
