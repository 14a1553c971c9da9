package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tollsim/internal/ir"
)

// MarshalTrace renders a trace for golden comparison: a header line naming
// the scenario followed by one canonical JSON object per event.
// The output is byte-identical for identical traces.
func MarshalTrace(name string, trace []ir.Event) ([]byte, error) {
	var buf bytes.Buffer

	header, err := ir.MarshalCanonical(map[string]any{
		"scenario": name,
		"events":   len(trace),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal trace header: %w", err)
	}
	buf.Write(header)
	buf.WriteByte('\n')

	for i, ev := range trace {
		line, err := ir.MarshalCanonical(map[string]any{
			"kind":      string(ev.Kind),
			"tick":      ev.Tick,
			"vehicle":   int64(ev.Vehicle),
			"from_lane": ev.FromLane,
			"to_lane":   ev.ToLane,
			"pos":       ev.Position,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal trace event %d: %w", i, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalTrace(scenarioName, result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
