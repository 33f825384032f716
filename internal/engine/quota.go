package engine

// QuotaEnforcer bounds the number of proposals a single run may make.
//
// Deferred acceptance never proposes twice to the same reviewer, so a valid
// run makes at most |P| x |R| proposals. Exceeding that means an invariant
// was broken upstream; the run fails with LOGIC_EXHAUSTION instead of
// looping.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps}
}

// Check counts one proposal and validates it against the limit.
func (q *QuotaEnforcer) Check() error {
	q.current++
	if q.current > q.maxSteps {
		return NewQuotaError(q.current, q.maxSteps)
	}
	return nil
}

// Current returns the number of proposals counted so far.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the proposal limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}
