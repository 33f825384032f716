package ir

// Run is a recorded matching run: the instance, its result, and the
// proposal trace that produced it. Runs are what the store persists and
// what replay re-executes.
type Run struct {
	ID            string     `json:"id"`
	InstanceHash  string     `json:"instance_hash"`
	MatchingHash  string     `json:"matching_hash"`
	Instance      Instance   `json:"instance"`
	Matching      Matching   `json:"matching"`
	Trace         []Proposal `json:"trace"`
	EngineVersion string     `json:"engine_version"`
	IRVersion     string     `json:"ir_version"`
}
