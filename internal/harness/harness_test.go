package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tollsim/internal/engine"
	"github.com/roach88/tollsim/internal/ir"
	"github.com/roach88/tollsim/internal/testutil"
)

const scenariosDir = "../../testdata/scenarios"

func loadRepoScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join(scenariosDir, name+".yaml"))
	require.NoError(t, err)
	return s
}

// TestRepoScenarios runs every scenario shipped under testdata/scenarios.
func TestRepoScenarios(t *testing.T) {
	for _, name := range []string{
		"scenario_a_single_booth",
		"scenario_b_quota_targets",
		"scenario_c_degenerate",
		"single_lane_service",
	} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadRepoScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_ScenarioA_ExitTick(t *testing.T) {
	result, err := Run(loadRepoScenario(t, "scenario_a_single_booth"))
	require.NoError(t, err)

	l := ir.DefaultLayout()
	ev, ok := result.Find(ir.EventCompleted, 1)
	require.True(t, ok)
	assert.Equal(t, int64(l.BoothX+3+(l.Cols-l.BoothX)), ev.Tick)
	assert.Equal(t, int64(93), result.Stats.ElapsedTicks)
}

func TestRun_ScenarioC_NoRoutedLaneChanges(t *testing.T) {
	result, err := Run(loadRepoScenario(t, "scenario_c_degenerate"))
	require.NoError(t, err)

	assert.Zero(t, result.RoutingLaneChanges)
	assert.Zero(t, result.UnexplainedLaneChanges)
	assert.Zero(t, result.ConservationViolations)
}

func TestRun_RecordsAssignments(t *testing.T) {
	result, err := Run(loadRepoScenario(t, "scenario_b_quota_targets"))
	require.NoError(t, err)

	require.Len(t, result.Assignments, int(result.Stats.VehiclesSpawned))
	for id, a := range result.Assignments {
		assert.GreaterOrEqual(t, a.Booth, 0, "vehicle %d", id)
		assert.Less(t, a.Booth, 4, "vehicle %d", id)
	}
}

func TestRun_Deterministic(t *testing.T) {
	s := loadRepoScenario(t, "scenario_b_quota_targets")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.FinalDigest, second.FinalDigest)
	assert.Equal(t, first.Trace, second.Trace)
}

func TestRun_SeedChangesOutcome(t *testing.T) {
	s := loadRepoScenario(t, "scenario_b_quota_targets")
	first, err := Run(s)
	require.NoError(t, err)

	seed := uint64(99)
	s.Seed = &seed
	second, err := Run(s)
	require.NoError(t, err)

	assert.NotEqual(t, first.FinalDigest, second.FinalDigest)
}

func TestRun_InvalidTopology(t *testing.T) {
	s := &Scenario{
		Name:        "bad",
		Description: "more lanes than booths",
		Config:      ir.Config{Lanes: 3, Booths: 2, Lambda: 0.5, Accel: 0.5, Mu: 2, PMin: 0.1},
		Ticks:       5,
		Assertions:  []Assertion{{Type: AssertConservation}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.True(t, engine.IsConfigError(err))
}

func TestRun_FailingAssertion(t *testing.T) {
	s := loadRepoScenario(t, "single_lane_service")
	s.Assertions = []Assertion{
		{Type: AssertCompletedExact, Count: 4},
		{Type: AssertConservation},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "exactly 4 completed vehicles")
}

func TestRun_ScriptedSourceOverridesSeed(t *testing.T) {
	// Every draw is 0.99: no arrival passes lambda=0.5.
	s := &Scenario{
		Name:        "quiet",
		Description: "no arrivals",
		Config:      ir.Config{Lanes: 1, Booths: 2, Lambda: 0.5, Accel: 0.5, Mu: 2, PMin: 0.1},
		Ticks:       20,
		Assertions: []Assertion{
			{Type: AssertEventCount, Kind: ir.EventSpawned, Count: 0},
		},
	}

	result, err := run(s, engine.WithRandomSource(testutil.NewConstantSource(0.99)))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Trace)
}
