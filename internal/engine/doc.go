// Package engine implements the gsmatch deferred-acceptance matcher.
//
// The matcher computes the proposer-optimal stable matching of an
// ir.Instance using the Gale-Shapley proposal/rejection loop.
//
// ARCHITECTURE:
//
// Single-Call Ownership:
// Every call to Match validates its input, clones it, and builds private
// state (cursors, engagements, reviewer rank tables). Nothing survives the
// call and nothing is shared with the caller or with other calls.
//
// Proposal Loop:
//  1. Input validated with ir.Validate (INVALID_INPUT before any proposal)
//  2. Free proposers are drawn from a schedule (queue, stack or rounds)
//  3. Each proposal advances the proposer's cursor exactly once
//  4. The reviewer keeps whichever suitor ranks earlier in HER OWN list
//  5. A displaced proposer becomes free again with its cursor unchanged
//
// The engagement relation is stored as two maps (proposer -> reviewer and
// reviewer -> proposer) that are always updated together, so looking up a
// reviewer's current partner is O(1).
//
// CRITICAL PATTERNS:
//
// Termination:
// Each proposer proposes at most once to each reviewer, so a run makes at
// most |P| x |R| proposals. A QuotaEnforcer holds the loop to that bound; a
// breach, or a free proposer with an exhausted list, is LOGIC_EXHAUSTION.
//
// Logical Clock:
// Proposals are stamped with a monotonic seq from Clock.Next(), never with
// wall-clock time, so traces are reproducible.
//
// Schedule Invariance:
// Every schedule produces the same matching. Only the trace differs.
package engine
