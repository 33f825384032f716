// Package harness runs matching scenarios as executable contract tests.
//
// A scenario names an instance, a schedule and what must hold afterwards.
// The harness executes it through the real engine, persists the run to an
// in-memory store, reads it back, and checks the stored result.
//
// # Scenario Format
//
//	name: displacement
//	description: "X prefers B, so A is displaced and settles for Y"
//	instance:
//	  proposers: [A, B]
//	  reviewers: [X, Y]
//	  preferences:
//	    A: [X, Y]
//	    B: [X, Y]
//	    X: [B, A]
//	    Y: [A, B]
//	schedule: queue
//	expect:
//	  pairs: { A: Y, B: X }
//	assertions:
//	  - type: stable
//	  - type: proposal_count
//	    count: 3
//
// instance_file may replace instance; it is resolved relative to the
// scenario file and may be CUE or YAML. expect.error names an engine error
// code (INVALID_INPUT, LOGIC_EXHAUSTION) instead of pairs.
//
// # Assertion Types
//
//   - stable: no blocking pair
//   - bijection: every participant matched exactly once
//   - pairs_equal: the matching equals the given proposer->reviewer map
//   - proposer_optimal: no stable matching is better for any proposer
//   - schedule_invariant: every schedule produces the same matching
//   - proposal_count: exactly count proposals were made
//
// # Deterministic Testing
//
// Every run uses a testutil.DeterministicClock and a fixed run ID
// (scenario.run_id or testutil.DefaultRunID), so traces are byte-identical
// across executions and can be compared against golden files.
package harness
