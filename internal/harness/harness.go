package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/gsmatch/internal/compiler"
	"github.com/roach88/gsmatch/internal/engine"
	"github.com/roach88/gsmatch/internal/ir"
	"github.com/roach88/gsmatch/internal/store"
	"github.com/roach88/gsmatch/internal/testutil"
)

// Harness holds the deterministic helpers shared by one scenario execution.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	runIDs *testutil.FixedRunIDGenerator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory database for isolation.
// Execution flow:
//  1. Resolve the instance (inline or instance_file)
//  2. Execute it through the engine with a deterministic clock
//  3. Write the run to the store and read it back
//  4. Check expect, then evaluate assertions against the stored run
//
// The returned error is reserved for harness failures (unreadable instance
// file, store errors). Expectation and assertion failures land in
// Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	inst, err := resolveInstance(scenario)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(),
		runIDs: testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	schedule, err := engine.ParseSchedule(scenario.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	result := NewResult()
	result.Schedule = string(schedule)

	run, err := engine.Execute(ctx, inst, h.runIDs, h.options(schedule, scenario.MaxSteps)...)
	if err != nil {
		var me *engine.MatchError
		if !errors.As(err, &me) {
			return nil, fmt.Errorf("failed to execute scenario: %w", err)
		}
		result.ErrorCode = string(me.Code)
		checkExpectedError(scenario.Expect, result, err)
		return result, nil
	}

	if err := h.store.WriteRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	stored, err := h.store.ReadRun(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read back run: %w", err)
	}

	result.RunID = stored.ID
	result.Pairs = stored.Matching.Pairs
	result.Proposals = stored.Matching.Proposals
	result.MatchingHash = stored.MatchingHash
	result.Trace = stored.Trace

	if scenario.Expect != nil {
		switch {
		case scenario.Expect.Error != "":
			result.AddError(fmt.Sprintf("expected error %s, but matching succeeded with %s",
				scenario.Expect.Error, formatPairs(result.Pairs)))
		case scenario.Expect.Pairs != nil:
			if err := assertPairsEqual(result, scenario.Expect.Pairs); err != nil {
				result.AddError(err.Error())
			}
		}
	}

	actx := &AssertionContext{
		Ctx:      ctx,
		Instance: inst,
		Harness:  h,
		MaxSteps: scenario.MaxSteps,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// options builds the engine options for one run. The clock is rewound so
// every run starts at seq 1.
func (h *Harness) options(schedule engine.Schedule, maxSteps int) []engine.Option {
	h.clock.Reset()
	return []engine.Option{
		engine.WithSchedule(schedule),
		engine.WithClock(h.clock),
		engine.WithMaxSteps(maxSteps),
		engine.WithLogger(h.logger),
	}
}

func resolveInstance(scenario *Scenario) (ir.Instance, error) {
	if scenario.Instance != nil {
		return *scenario.Instance, nil
	}
	doc, err := compiler.LoadFile(scenario.InstanceFile)
	if err != nil {
		return ir.Instance{}, fmt.Errorf("failed to load instance file: %w", err)
	}
	return doc.Instance, nil
}

func checkExpectedError(expect *Expectation, result *Result, err error) {
	switch {
	case expect == nil || expect.Error == "":
		result.AddError(fmt.Sprintf("unexpected engine error: %v", err))
	case expect.Error != result.ErrorCode:
		result.AddError(fmt.Sprintf("expected error %s, got %s: %v", expect.Error, result.ErrorCode, err))
	}
}

// formatPairs renders pairs as "{A-X, B-Y}".
func formatPairs(pairs []ir.Pair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.Proposer + "-" + p.Reviewer
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// formatPairMap renders a proposer -> reviewer map in proposer order.
func formatPairMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "-" + m[k]
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
