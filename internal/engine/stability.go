package engine

import (
	"fmt"

	"github.com/roach88/gsmatch/internal/ir"
)

// MaxEnumerationSize bounds StableMatchings, which visits all n! perfect
// matchings.
const MaxEnumerationSize = 8

// BlockingPairs returns every pair (p, r) that are not matched to each other
// but each prefer the other over their assigned partner. A matching is stable
// iff the result is empty. Pairs are listed in proposer declaration order,
// then in p's preference order.
//
// A participant missing from m is treated as preferring anyone to nobody.
func BlockingPairs(inst ir.Instance, m *ir.Matching) []ir.Pair {
	partnerOf := m.ByProposer()
	fianceOf := m.ByReviewer()

	var blocking []ir.Pair
	for _, p := range inst.Proposers {
		current, hasPartner := partnerOf[p]
		for _, r := range inst.Preferences[p] {
			if hasPartner && r == current {
				break // everyone after current is worse for p
			}
			rival, taken := fianceOf[r]
			if !taken || indexOf(inst.Preferences[r], p) < indexOf(inst.Preferences[r], rival) {
				blocking = append(blocking, ir.Pair{Proposer: p, Reviewer: r})
			}
		}
	}
	return blocking
}

// IsStable reports whether m has no blocking pair.
func IsStable(inst ir.Instance, m *ir.Matching) bool {
	return len(BlockingPairs(inst, m)) == 0
}

// StableMatchings enumerates every stable matching of a valid instance by
// brute force. Matchings are returned in lexicographic order of the
// reviewer assigned to each proposer (declaration order).
//
// Returns an error if the instance is invalid or larger than
// MaxEnumerationSize.
func StableMatchings(inst ir.Instance) ([]ir.Matching, error) {
	if errs := ir.Validate(inst); len(errs) > 0 {
		return nil, NewInvalidInputError(errs)
	}
	n := len(inst.Proposers)
	if n > MaxEnumerationSize {
		return nil, fmt.Errorf("instance too large to enumerate: %d > %d", n, MaxEnumerationSize)
	}

	var out []ir.Matching
	used := make([]bool, n)
	pairs := make([]ir.Pair, n)

	var walk func(i int)
	walk = func(i int) {
		if i == n {
			m := ir.Matching{Pairs: append([]ir.Pair(nil), pairs...)}
			if IsStable(inst, &m) {
				out = append(out, m)
			}
			return
		}
		for j, r := range inst.Reviewers {
			if used[j] {
				continue
			}
			used[j] = true
			pairs[i] = ir.Pair{Proposer: inst.Proposers[i], Reviewer: r}
			walk(i + 1)
			used[j] = false
		}
	}
	walk(0)

	return out, nil
}

// IsProposerOptimal reports whether every proposer weakly prefers its
// partner in m to its partner in every stable matching of inst.
func IsProposerOptimal(inst ir.Instance, m *ir.Matching) (bool, error) {
	stable, err := StableMatchings(inst)
	if err != nil {
		return false, err
	}

	mine := m.ByProposer()
	for _, other := range stable {
		for _, pair := range other.Pairs {
			prefs := inst.Preferences[pair.Proposer]
			if indexOf(prefs, pair.Reviewer) < indexOf(prefs, mine[pair.Proposer]) {
				return false, nil
			}
		}
	}
	return true, nil
}

// indexOf returns the position of name in list, or len(list) if absent.
func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return len(list)
}
