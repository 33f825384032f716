package harness

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/roach88/gsmatch/internal/engine"
	"github.com/roach88/gsmatch/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []ir.Proposal // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, p := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s -> %s: %s", p.Seq, p.Proposer, p.Reviewer, p.Outcome)
			if p.Displaced != "" {
				fmt.Fprintf(&buf, " (displaced %s)", p.Displaced)
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}

// AssertionContext carries what assertions need beyond the result itself.
type AssertionContext struct {
	Ctx      context.Context
	Instance ir.Instance
	Harness  *Harness
	MaxSteps int
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertStable:
			err = assertStable(result, actx.Instance)
		case AssertBijection:
			err = assertBijection(result, actx.Instance)
		case AssertPairsEqual:
			err = assertPairsEqual(result, assertion.Pairs)
		case AssertProposerOptimal:
			err = assertProposerOptimal(result, actx.Instance)
		case AssertScheduleInvariant:
			err = assertScheduleInvariant(result, actx)
		case AssertProposalCount:
			err = assertProposalCount(result, *assertion.Count)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func assertStable(result *Result, inst ir.Instance) error {
	blocking := engine.BlockingPairs(inst, result.Matching())
	if len(blocking) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertStable,
		Expected: "no blocking pairs",
		Actual:   fmt.Sprintf("blocking pairs %s in %s", formatPairs(blocking), formatPairs(result.Pairs)),
		Trace:    result.Trace,
	}
}

// assertBijection checks every proposer and every reviewer appears in
// exactly one pair.
func assertBijection(result *Result, inst ir.Instance) error {
	fail := func(actual string) error {
		return &AssertionError{
			Type:     AssertBijection,
			Expected: fmt.Sprintf("%d pairs covering every participant once", len(inst.Proposers)),
			Actual:   actual,
			Trace:    result.Trace,
		}
	}

	if len(result.Pairs) != len(inst.Proposers) {
		return fail(fmt.Sprintf("%d pairs", len(result.Pairs)))
	}

	proposers := make(map[string]int, len(result.Pairs))
	reviewers := make(map[string]int, len(result.Pairs))
	for _, p := range result.Pairs {
		proposers[p.Proposer]++
		reviewers[p.Reviewer]++
	}
	for _, p := range inst.Proposers {
		if proposers[p] != 1 {
			return fail(fmt.Sprintf("proposer %s matched %d times", p, proposers[p]))
		}
	}
	for _, r := range inst.Reviewers {
		if reviewers[r] != 1 {
			return fail(fmt.Sprintf("reviewer %s matched %d times", r, reviewers[r]))
		}
	}
	return nil
}

func assertPairsEqual(result *Result, want map[string]string) error {
	got := result.Matching().ByProposer()
	if maps.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertPairsEqual,
		Expected: formatPairMap(want),
		Actual:   formatPairs(result.Pairs),
		Trace:    result.Trace,
	}
}

func assertProposerOptimal(result *Result, inst ir.Instance) error {
	ok, err := engine.IsProposerOptimal(inst, result.Matching())
	if err != nil {
		return fmt.Errorf("%s: %w", AssertProposerOptimal, err)
	}
	if ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertProposerOptimal,
		Expected: "no stable matching better for any proposer",
		Actual:   fmt.Sprintf("%s is dominated for some proposer", formatPairs(result.Pairs)),
		Trace:    result.Trace,
	}
}

// assertScheduleInvariant re-runs the instance under every schedule and
// compares matching hashes with the stored run.
func assertScheduleInvariant(result *Result, actx *AssertionContext) error {
	var diverged []string
	for _, s := range engine.ValidSchedules {
		m, err := engine.Match(actx.Ctx, actx.Instance, actx.Harness.options(s, actx.MaxSteps)...)
		if err != nil {
			return fmt.Errorf("%s: schedule %s: %w", AssertScheduleInvariant, s, err)
		}
		h, err := ir.MatchingHash(*m)
		if err != nil {
			return fmt.Errorf("%s: %w", AssertScheduleInvariant, err)
		}
		if h != result.MatchingHash {
			diverged = append(diverged, fmt.Sprintf("%s gave %s", s, formatPairs(m.Pairs)))
		}
	}
	if len(diverged) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertScheduleInvariant,
		Expected: fmt.Sprintf("every schedule gives %s", formatPairs(result.Pairs)),
		Actual:   strings.Join(diverged, "; "),
		Trace:    result.Trace,
	}
}

func assertProposalCount(result *Result, want int) error {
	if result.Proposals == want && len(result.Trace) == want {
		return nil
	}
	return &AssertionError{
		Type:     AssertProposalCount,
		Expected: fmt.Sprintf("%d proposals", want),
		Actual:   fmt.Sprintf("%d proposals (%d in trace)", result.Proposals, len(result.Trace)),
		Trace:    result.Trace,
	}
}
