package testutil

import (
	"fmt"
	"math/rand"

	"github.com/roach88/gsmatch/internal/ir"
)

// BothPreferX is the 2x2 instance where every proposer wants X and X
// prefers A. Stable matching: {A-X, B-Y}.
func BothPreferX() ir.Instance {
	return ir.Instance{
		Proposers: []string{"A", "B"},
		Reviewers: []string{"X", "Y"},
		Preferences: map[string][]string{
			"A": {"X", "Y"},
			"B": {"X", "Y"},
			"X": {"A", "B"},
			"Y": {"A", "B"},
		},
	}
}

// Displacement is BothPreferX with X preferring B, so A is dumped.
// Stable matching: {A-Y, B-X}.
func Displacement() ir.Instance {
	inst := BothPreferX()
	inst.Preferences["X"] = []string{"B", "A"}
	return inst
}

// TwoStable has two stable matchings: {A-X, B-Y} (proposer-optimal) and
// {A-Y, B-X}.
func TwoStable() ir.Instance {
	return ir.Instance{
		Proposers: []string{"A", "B"},
		Reviewers: []string{"X", "Y"},
		Preferences: map[string][]string{
			"A": {"X", "Y"},
			"B": {"Y", "X"},
			"X": {"B", "A"},
			"Y": {"A", "B"},
		},
	}
}

// RandomInstance builds a valid n x n instance with proposers p0..p(n-1),
// reviewers r0..r(n-1) and shuffled preferences.
func RandomInstance(rng *rand.Rand, n int) ir.Instance {
	inst := ir.Instance{
		Proposers:   make([]string, 0, n),
		Reviewers:   make([]string, 0, n),
		Preferences: make(map[string][]string, 2*n),
	}
	for i := 0; i < n; i++ {
		inst.Proposers = append(inst.Proposers, fmt.Sprintf("p%d", i))
		inst.Reviewers = append(inst.Reviewers, fmt.Sprintf("r%d", i))
	}
	shuffled := func(names []string) []string {
		out := append([]string(nil), names...)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	for _, p := range inst.Proposers {
		inst.Preferences[p] = shuffled(inst.Reviewers)
	}
	for _, r := range inst.Reviewers {
		inst.Preferences[r] = shuffled(inst.Proposers)
	}
	return inst
}
