package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoByTwo() Instance {
	return Instance{
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

func TestInstanceHashDeterminism(t *testing.T) {
	h1, err := InstanceHash(twoByTwo())
	require.NoError(t, err)
	h2, err := InstanceHash(twoByTwo())
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "InstanceHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestInstanceHashIgnoresDeclarationOrder(t *testing.T) {
	reordered := twoByTwo()
	reordered.Proposers = []string{"B", "A"}
	reordered.Reviewers = []string{"Y", "X"}

	assert.Equal(t, MustInstanceHash(twoByTwo()), MustInstanceHash(reordered))
}

func TestInstanceHashChangesWithPreferenceOrder(t *testing.T) {
	changed := twoByTwo()
	changed.Preferences["X"] = []string{"B", "A"}

	assert.NotEqual(t, MustInstanceHash(twoByTwo()), MustInstanceHash(changed))
}

func TestInstanceHashDoesNotMutateInput(t *testing.T) {
	inst := twoByTwo()
	inst.Proposers = []string{"B", "A"}
	_ = MustInstanceHash(inst)
	assert.Equal(t, []string{"B", "A"}, inst.Proposers)
}

func TestMatchingHash(t *testing.T) {
	m1 := Matching{Pairs: []Pair{{"A", "X"}, {"B", "Y"}}, Proposals: 3, Schedule: "queue"}
	m2 := Matching{Pairs: []Pair{{"B", "Y"}, {"A", "X"}}, Proposals: 5, Schedule: "rounds"}
	m3 := Matching{Pairs: []Pair{{"A", "Y"}, {"B", "X"}}}

	assert.Equal(t, MustMatchingHash(m1), MustMatchingHash(m2), "pair order, count and schedule are not identity")
	assert.NotEqual(t, MustMatchingHash(m1), MustMatchingHash(m3))
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{}`)
	assert.NotEqual(t, hashWithDomain(DomainInstance, data), hashWithDomain(DomainMatching, data))
}
