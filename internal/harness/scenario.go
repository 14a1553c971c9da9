package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tollsim/internal/ir"
)

// Scenario defines a reproducible plaza run and the properties its outcome
// must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is the plaza configuration the engine is built from.
	Config ir.Config `yaml:"config"`

	// Seed seeds the engine's random source. Nil means engine.DefaultSeed.
	Seed *uint64 `yaml:"seed,omitempty"`

	// Ticks is the number of steps to run.
	Ticks int `yaml:"ticks"`

	// Layout overrides the standard 90-column layout.
	Layout *ir.Layout `yaml:"layout,omitempty"`

	// Assertions validate the trace and the final counters.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of a run.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected number (completed_min, completed_exact,
	// event_count).
	Count int64 `yaml:"count,omitempty"`

	// Vehicle and Tick are used by exit_tick.
	Vehicle ir.VehicleID `yaml:"vehicle,omitempty"`
	Tick    int64        `yaml:"tick,omitempty"`

	// Kind is the event kind counted by event_count.
	Kind ir.EventKind `yaml:"kind,omitempty"`

	// Lane and Booths are used by booth_range: every vehicle spawned in
	// Lane must target one of Booths.
	Lane   *int  `yaml:"lane,omitempty"`
	Booths []int `yaml:"booths,omitempty"`
}

// Assertion type constants.
const (
	AssertCompletedMin        = "completed_min"
	AssertCompletedExact      = "completed_exact"
	AssertExitTick            = "exit_tick"
	AssertEventCount          = "event_count"
	AssertNoRoutingLaneChange = "no_routing_lane_change"
	AssertConservation        = "conservation"
	AssertBoothRange          = "booth_range"
)

var eventKinds = map[ir.EventKind]bool{
	ir.EventSpawned:        true,
	ir.EventFannedOut:      true,
	ir.EventLaneChanged:    true,
	ir.EventMerged:         true,
	ir.EventServiceStarted: true,
	ir.EventServed:         true,
	ir.EventCompleted:      true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
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
// Plaza-level constraints (B >= L, probability ranges) are left to the
// engine and internal/config.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive")
	}
	if s.Layout != nil && !s.Layout.Valid() {
		return fmt.Errorf("layout zones out of order: %+v", *s.Layout)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
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

	switch a.Type {
	case AssertCompletedMin, AssertCompletedExact:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertExitTick:
		if a.Vehicle <= 0 {
			return fmt.Errorf("assertions[%d]: vehicle is required for exit_tick", index)
		}
		if a.Tick <= 0 {
			return fmt.Errorf("assertions[%d]: tick is required for exit_tick", index)
		}
	case AssertEventCount:
		if !eventKinds[a.Kind] {
			return fmt.Errorf("assertions[%d]: unknown event kind %q", index, a.Kind)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertNoRoutingLaneChange, AssertConservation:
	case AssertBoothRange:
		if a.Lane == nil {
			return fmt.Errorf("assertions[%d]: lane is required for booth_range", index)
		}
		if len(a.Booths) == 0 {
			return fmt.Errorf("assertions[%d]: booths list is required for booth_range", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
