package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gsmatch/internal/engine"
	"github.com/roach88/gsmatch/internal/ir"
)

// Scenario defines a matching conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Instance is the inline instance to match.
	Instance *ir.Instance `yaml:"instance,omitempty"`

	// InstanceFile points at a CUE or YAML instance document.
	// Relative paths are resolved against the scenario file's directory.
	InstanceFile string `yaml:"instance_file,omitempty"`

	// Schedule is queue, stack or rounds. Empty means queue.
	Schedule string `yaml:"schedule,omitempty"`

	// MaxSteps overrides the proposal quota (0 keeps |P| x |R|).
	MaxSteps int `yaml:"max_steps,omitempty"`

	// RunID is the fixed run ID recorded in the trace.
	// If empty, defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Expect is checked before the assertions.
	Expect *Expectation `yaml:"expect,omitempty"`

	// Assertions validate the stored run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expectation states the outcome of the run: either the exact pairs or the
// error code the engine must fail with.
type Expectation struct {
	Pairs map[string]string `yaml:"pairs,omitempty"`
	Error string            `yaml:"error,omitempty"`
}

// Assertion validates a property of the stored run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Pairs is the expected proposer -> reviewer map (pairs_equal).
	Pairs map[string]string `yaml:"pairs,omitempty"`

	// Count is the expected number of proposals (proposal_count).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertStable            = "stable"
	AssertBijection         = "bijection"
	AssertPairsEqual        = "pairs_equal"
	AssertProposerOptimal   = "proposer_optimal"
	AssertScheduleInvariant = "schedule_invariant"
	AssertProposalCount     = "proposal_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// A relative instance_file is rewritten to an absolute path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.InstanceFile != "" && !filepath.IsAbs(scenario.InstanceFile) {
		scenario.InstanceFile = filepath.Join(filepath.Dir(path), scenario.InstanceFile)
	}
	if scenario.InstanceFile != "" {
		if _, err := os.Stat(scenario.InstanceFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: instance file not found: %s", scenario.InstanceFile)
		}
	}

	return scenario, nil
}

// ParseScenario decodes and validates scenario YAML. instance_file is left
// as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Instance == nil && s.InstanceFile == "":
		return fmt.Errorf("one of instance or instance_file is required")
	case s.Instance != nil && s.InstanceFile != "":
		return fmt.Errorf("instance and instance_file are mutually exclusive")
	}

	if _, err := engine.ParseSchedule(s.Schedule); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	if s.Expect == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or a non-empty assertions list is required")
	}

	if s.Expect != nil {
		if err := validateExpectation(s.Expect); err != nil {
			return err
		}
		if s.Expect.Error != "" && len(s.Assertions) > 0 {
			return fmt.Errorf("assertions cannot be combined with expect.error")
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateExpectation(e *Expectation) error {
	switch {
	case e.Pairs == nil && e.Error == "":
		return fmt.Errorf("expect: one of pairs or error is required")
	case e.Pairs != nil && e.Error != "":
		return fmt.Errorf("expect: pairs and error are mutually exclusive")
	}

	switch engine.ErrorCode(e.Error) {
	case "", engine.ErrCodeInvalidInput, engine.ErrCodeLogicExhaustion:
		return nil
	default:
		return fmt.Errorf("expect: unknown error code %q", e.Error)
	}
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStable, AssertBijection, AssertProposerOptimal, AssertScheduleInvariant:
	case AssertPairsEqual:
		if a.Pairs == nil {
			return fmt.Errorf("assertions[%d]: pairs is required for pairs_equal", index)
		}
	case AssertProposalCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for proposal_count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for proposal_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
