package ir

import "slices"

// Instance is a complete stable-matching problem.
//
// Proposers and Reviewers are disjoint sets of equal size. Preferences maps
// every participant to a strict ranking (most preferred first) over the whole
// opposite set. Declaration order of Proposers is significant only for the
// order in which free proposers are scheduled; it never changes the result.
type Instance struct {
	Proposers   []string            `json:"proposers" yaml:"proposers"`
	Reviewers   []string            `json:"reviewers" yaml:"reviewers"`
	Preferences map[string][]string `json:"preferences" yaml:"preferences"`
}

// Clone returns a deep copy of the instance.
// The matcher works on a clone so callers' slices and maps are never aliased.
func (inst Instance) Clone() Instance {
	out := Instance{
		Proposers: slices.Clone(inst.Proposers),
		Reviewers: slices.Clone(inst.Reviewers),
	}
	if inst.Preferences != nil {
		out.Preferences = make(map[string][]string, len(inst.Preferences))
		for name, prefs := range inst.Preferences {
			out.Preferences[name] = slices.Clone(prefs)
		}
	}
	return out
}

// Size returns the number of proposers.
func (inst Instance) Size() int {
	return len(inst.Proposers)
}

// Pair is one engagement in a final matching.
type Pair struct {
	Proposer string `json:"proposer" yaml:"proposer"`
	Reviewer string `json:"reviewer" yaml:"reviewer"`
}

// Matching is the result of a completed run.
type Matching struct {
	// Pairs holds one pair per proposer, in proposer declaration order.
	Pairs []Pair `json:"pairs"`

	// Proposals is the number of proposals made before termination.
	Proposals int `json:"proposals"`

	// Schedule names the proposal schedule that produced the matching.
	Schedule string `json:"schedule,omitempty"`
}

// ByProposer returns the matching as a proposer -> reviewer map.
func (m *Matching) ByProposer() map[string]string {
	out := make(map[string]string, len(m.Pairs))
	for _, p := range m.Pairs {
		out[p.Proposer] = p.Reviewer
	}
	return out
}

// ByReviewer returns the matching as a reviewer -> proposer map.
func (m *Matching) ByReviewer() map[string]string {
	out := make(map[string]string, len(m.Pairs))
	for _, p := range m.Pairs {
		out[p.Reviewer] = p.Proposer
	}
	return out
}

// Outcome is the result of a single proposal.
type Outcome string

const (
	// OutcomeAccepted means the reviewer was free and accepted.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeRejected means the reviewer kept its current partner.
	OutcomeRejected Outcome = "rejected"
	// OutcomeDisplaced means the reviewer accepted and released its previous partner.
	OutcomeDisplaced Outcome = "displaced"
)

// Proposal is one step of the deferred-acceptance loop.
type Proposal struct {
	Seq       int64   `json:"seq"`
	Proposer  string  `json:"proposer"`
	Reviewer  string  `json:"reviewer"`
	Outcome   Outcome `json:"outcome"`
	Displaced string  `json:"displaced,omitempty"` // previous partner, set only for OutcomeDisplaced
}
