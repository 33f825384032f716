package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/gsmatch/internal/ir"
)

// TraceSnapshot captures what a golden file records for one scenario.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	RunID        string
	Schedule     string
	Pairs        []ir.Pair
	Proposals    int
	ErrorCode    string
	Trace        []ir.Proposal
}

// NewTraceSnapshot builds the snapshot of a scenario result.
func NewTraceSnapshot(name string, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: name,
		RunID:        result.RunID,
		Schedule:     result.Schedule,
		Pairs:        result.Pairs,
		Proposals:    result.Proposals,
		ErrorCode:    result.ErrorCode,
		Trace:        result.Trace,
	}
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
// This is required because ir.MarshalCanonical only handles primitives, string
// slices and maps.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, p := range s.Trace {
		event := map[string]any{
			"seq":      p.Seq,
			"proposer": p.Proposer,
			"reviewer": p.Reviewer,
			"outcome":  string(p.Outcome),
		}
		if p.Displaced != "" {
			event["displaced"] = p.Displaced
		}
		traceList[i] = event
	}

	pairs := make(map[string]string, len(s.Pairs))
	for _, p := range s.Pairs {
		pairs[p.Proposer] = p.Reviewer
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"schedule":      s.Schedule,
		"pairs":         pairs,
		"proposals":     s.Proposals,
		"trace":         traceList,
	}
	if s.RunID != "" {
		result["run_id"] = s.RunID
	}
	if s.ErrorCode != "" {
		result["error_code"] = s.ErrorCode
	}
	return result
}

// MarshalCanonical renders the snapshot as RFC 8785 canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// By default the golden file is stored in testdata/golden/{scenario.Name}.golden;
// opts are applied after the defaults, so goldie.WithFixtureDir moves it.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...goldie.Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result, opts...); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's snapshot against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result, opts ...goldie.Option) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenarioName, result)
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	all := append([]goldie.Option{
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	}, opts...)
	g := goldie.New(t, all...)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
