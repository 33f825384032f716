package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gsmatch/internal/ir"
)

func TestTrace_Text(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	runID := matchIntoDB(t, dbPath, displacementYAML)

	out, _, err := executeCommand(t, "trace", runID, "--db", dbPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Run "+runID+" (schedule queue, 3 proposals)")
	assert.Contains(t, out, "  [1] A -> X: accepted\n")
	assert.Contains(t, out, "  [2] B -> X: displaced (displaced A)\n")
	assert.Contains(t, out, "  [3] A -> Y: accepted\n")
	assert.Contains(t, out, "Result: {A-Y, B-X}")
	assert.Contains(t, out, "Accepted: 2, Rejected: 0, Displaced: 1")
}

func TestTrace_JSONWithParticipantFilter(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	runID := matchIntoDB(t, dbPath, bothPreferXYAML)

	out, _, err := executeCommand(t, "trace", runID, "--db", dbPath, "--participant", "Y", "--format", "json")
	require.NoError(t, err)

	var result TraceResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, runID, resp.RunID)
	assert.Equal(t, runID, result.RunID)
	assert.Equal(t, []ir.Proposal{
		{Seq: 3, Proposer: "B", Reviewer: "Y", Outcome: ir.OutcomeAccepted},
	}, result.Trace)
	assert.Equal(t, TraceStats{Total: 1, Accepted: 1}, result.Stats)
	assert.Len(t, result.Pairs, 2)
}

func TestTrace_Errors(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	matchIntoDB(t, dbPath, bothPreferXYAML)

	out, _, err := executeCommand(t, "trace", "no-such-run", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run not found: no-such-run")

	out, _, err = executeCommand(t, "trace", "any", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
}

func TestFilterTrace(t *testing.T) {
	trace := []ir.Proposal{
		{Seq: 1, Proposer: "A", Reviewer: "X", Outcome: ir.OutcomeAccepted},
		{Seq: 2, Proposer: "B", Reviewer: "X", Outcome: ir.OutcomeDisplaced, Displaced: "A"},
		{Seq: 3, Proposer: "C", Reviewer: "Y", Outcome: ir.OutcomeAccepted},
	}

	assert.Equal(t, trace, filterTrace(trace, ""))
	assert.Len(t, filterTrace(trace, "A"), 2)
	assert.Len(t, filterTrace(trace, "X"), 2)
	assert.Empty(t, filterTrace(trace, "Z"))
	assert.NotNil(t, filterTrace(trace, "Z"))
}
