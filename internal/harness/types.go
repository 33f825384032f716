package harness

import "github.com/roach88/gsmatch/internal/ir"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall scenario success.
	Pass bool `json:"pass"`

	// RunID is the fixed run ID the run was stored under.
	RunID string `json:"run_id,omitempty"`

	// Schedule is the schedule the run used.
	Schedule string `json:"schedule"`

	// Pairs is the stored matching in proposer declaration order.
	// Empty when the engine failed.
	Pairs []ir.Pair `json:"pairs"`

	// Proposals is the number of proposals made.
	Proposals int `json:"proposals"`

	// MatchingHash is the content hash of Pairs.
	MatchingHash string `json:"matching_hash,omitempty"`

	// ErrorCode is the engine error code when the run failed.
	ErrorCode string `json:"error_code,omitempty"`

	// Trace contains every proposal in seq order, as read back from the store.
	Trace []ir.Proposal `json:"trace"`

	// Errors contains expectation and assertion failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Pairs:  []ir.Pair{},
		Trace:  []ir.Proposal{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Matching returns the result's pairs as an ir.Matching.
func (r *Result) Matching() *ir.Matching {
	return &ir.Matching{Pairs: r.Pairs, Proposals: r.Proposals, Schedule: r.Schedule}
}
