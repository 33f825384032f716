// Command gsmatch computes proposer-optimal stable matchings with the
// Gale-Shapley deferred acceptance algorithm.
//
// Usage:
//
//	# Match an instance and print the pairs
//	gsmatch match instance.cue
//
//	# Record the run, then inspect and replay it
//	gsmatch match instance.yaml --schedule rounds --db runs.db
//	gsmatch trace <run-id> --db runs.db
//	gsmatch replay <run-id> --db runs.db
//
//	# Check an instance file without running it
//	gsmatch validate instance.cue
//
//	# Run scenario files against their golden traces
//	gsmatch test ./testdata/scenarios
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/roach88/gsmatch/internal/cli"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code. Failures
// the commands already reported are not printed a second time.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
