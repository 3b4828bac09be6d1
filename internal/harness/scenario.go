package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// Scenario is one circuit, one analysis, and what it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Circuit is an inline circuit in the line format.
	Circuit string `yaml:"circuit,omitempty"`

	// CircuitFile is a path to a .txt or .cue circuit, relative to the
	// scenario file. Exactly one of Circuit and CircuitFile is set.
	CircuitFile string `yaml:"circuit_file,omitempty"`

	// Mode selects the analysis: tally, period or first_low.
	Mode string `yaml:"mode"`

	// Presses is the tally press count, or the press cap for the other
	// modes. Zero means the analysis default.
	Presses int `yaml:"presses,omitempty"`

	// Target is the sink watched by period and first_low. Defaults to rx.
	Target string `yaml:"target,omitempty"`

	// Confirm turns on second-occurrence checking in period mode.
	Confirm bool `yaml:"confirm,omitempty"`

	// MaxSignals overrides the per-press signal quota.
	MaxSignals int `yaml:"max_signals,omitempty"`

	// Expect holds the expected analysis outcome.
	Expect Expect `yaml:"expect"`

	// TracePresses is how many presses to record for assertions and
	// golden comparison.
	TracePresses int `yaml:"trace_presses,omitempty"`

	// Assertions check the recorded trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// RunID is a fixed run id for deterministic output. If empty,
	// defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Expect lists expected outcome fields. Nil fields are not checked.
type Expect struct {
	Low     *int64         `yaml:"low,omitempty"`
	High    *int64         `yaml:"high,omitempty"`
	Product *int64         `yaml:"product,omitempty"`
	Period  *int64         `yaml:"period,omitempty"`
	Press   *int           `yaml:"press,omitempty"`
	Feeders map[string]int `yaml:"feeders,omitempty"`
	Error   string         `yaml:"error,omitempty"`
}

func (e Expect) empty() bool {
	return e.Low == nil && e.High == nil && e.Product == nil &&
		e.Period == nil && e.Press == nil && len(e.Feeders) == 0 && e.Error == ""
}

// Assertion checks the recorded trace.
type Assertion struct {
	// Type is trace_contains, trace_order or trace_count.
	Type string `yaml:"type"`

	// From, To and Pulse select signals; empty fields match anything.
	// Used by trace_contains and trace_count.
	From  string `yaml:"from,omitempty"`
	To    string `yaml:"to,omitempty"`
	Pulse string `yaml:"pulse,omitempty"`

	// Count is the expected number of matches (trace_count).
	Count int `yaml:"count,omitempty"`

	// Steps are rendered signals ("a -high-> b") that must appear in
	// this order, not necessarily adjacent (trace_order).
	Steps []string `yaml:"steps,omitempty"`
}

// Mode constants.
const (
	ModeTally    = "tally"
	ModePeriod   = "period"
	ModeFirstLow = "first_low"
)

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file. circuit_file is
// resolved relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.CircuitFile != "" && !filepath.IsAbs(scenario.CircuitFile) {
		scenario.CircuitFile = filepath.Join(filepath.Dir(path), scenario.CircuitFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
// If filter is non-empty, only scenarios whose name matches the glob
// pattern are returned.
func LoadScenarios(dir, filter string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	sort.Strings(paths)

	var scenarios []*Scenario
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		if filter != "" {
			ok, err := filepath.Match(filter, s.Name)
			if err != nil {
				return nil, fmt.Errorf("bad filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
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
	case s.Circuit == "" && s.CircuitFile == "":
		return fmt.Errorf("one of circuit or circuit_file is required")
	case s.Circuit != "" && s.CircuitFile != "":
		return fmt.Errorf("circuit and circuit_file are mutually exclusive")
	}

	if s.CircuitFile != "" {
		if _, err := os.Stat(s.CircuitFile); os.IsNotExist(err) {
			return fmt.Errorf("circuit file not found: %s", s.CircuitFile)
		}
	}

	switch s.Mode {
	case ModeTally:
		if s.Target != "" {
			return fmt.Errorf("target is not used in tally mode")
		}
	case ModePeriod, ModeFirstLow:
		if s.Target == "" {
			s.Target = string(ir.DefaultTarget)
		}
	case "":
		return fmt.Errorf("mode is required")
	default:
		return fmt.Errorf("unknown mode %q", s.Mode)
	}

	if s.Confirm && s.Mode != ModePeriod {
		return fmt.Errorf("confirm is only valid in period mode")
	}

	if s.Presses < 0 || s.TracePresses < 0 || s.MaxSignals < 0 {
		return fmt.Errorf("presses, trace_presses and max_signals must be non-negative")
	}

	if s.Expect.Error != "" {
		switch engine.RuntimeErrorCode(s.Expect.Error) {
		case engine.ErrCodeNonTermination, engine.ErrCodeStructureViolation, engine.ErrCodePressLimit:
		default:
			return fmt.Errorf("expect.error: unknown error code %q", s.Expect.Error)
		}
	}

	if s.Expect.empty() && len(s.Assertions) == 0 {
		return fmt.Errorf("expect or assertions is required")
	}

	if len(s.Assertions) > 0 && s.TracePresses == 0 {
		return fmt.Errorf("assertions need trace_presses > 0")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Pulse != "" {
		if _, err := ir.ParsePulse(a.Pulse); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
	}

	switch a.Type {
	case AssertTraceContains:
		if a.From == "" && a.To == "" && a.Pulse == "" {
			return fmt.Errorf("assertions[%d]: trace_contains needs from, to or pulse", index)
		}
	case AssertTraceOrder:
		if len(a.Steps) == 0 {
			return fmt.Errorf("assertions[%d]: steps list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
