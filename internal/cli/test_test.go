package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../../testdata/scenarios"

func newTest(format string, args ...string) (*bytes.Buffer, func() error) {
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute
}

// copyScenario copies a repository scenario into dir.
func copyScenario(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(scenariosDir, name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestTest_RequiresDirectory(t *testing.T) {
	_, exec := newTest("text")

	err := exec()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, exec := newTest("text", filepath.Join(t.TempDir(), "nope"))

	err := exec()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTest_EmptyDirectory(t *testing.T) {
	buf, exec := newTest("text", t.TempDir())

	require.NoError(t, exec())
	assert.Contains(t, buf.String(), "No scenarios found.")
}

func TestTest_RepositoryScenariosPass(t *testing.T) {
	buf, exec := newTest("text", scenariosDir)

	require.NoError(t, exec())
	out := buf.String()
	assert.Contains(t, out, "✓ single_lane_service")
	assert.Contains(t, out, "✓ scenario_a_single_booth")
	assert.Contains(t, out, "Test Summary: 4 passed, 0 failed, 4 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_Filter(t *testing.T) {
	buf, exec := newTest("json", scenariosDir, "--filter", "scenario_*")

	require.NoError(t, exec())
	var res TestResult
	assert.Equal(t, "ok", decodeData(t, buf.Bytes(), &res))
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Passed)
	for _, s := range res.Scenarios {
		assert.NotEqual(t, "single_lane_service", s.Name)
	}
}

func TestTest_UpdateWritesGolden(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "single_lane_service.yaml")

	buf, exec := newTest("text", dir, "--update")
	require.NoError(t, exec())
	assert.Contains(t, buf.String(), "✓ single_lane_service (golden updated)")

	written, err := os.ReadFile(filepath.Join(dir, "golden", "single_lane_service.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(scenariosDir, "golden", "single_lane_service.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	// The regenerated golden file is not picked up as a scenario.
	buf, exec = newTest("text", dir)
	require.NoError(t, exec())
	assert.Contains(t, buf.String(), "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTest_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "single_lane_service.yaml")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	writeFile(t, filepath.Join(dir, "golden"), "single_lane_service.golden", "{}\n")

	buf, exec := newTest("text", dir)
	err := exec()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "trace does not match golden file")
}

func TestTest_FailingAssertion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "too_many.yaml", `name: too_many
description: "Expects more completions than a short run allows"
config:
  lanes: 1
  booths: 1
  lambda: 1.0
  accel: 1.0
  mu: 2
  p_min: 0.1
ticks: 5
assertions:
  - type: completed_min
    count: 1
`)

	buf, exec := newTest("json", dir)
	err := exec()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var res TestResult
	assert.Equal(t, "error", decodeData(t, buf.Bytes(), &res))
	require.Len(t, res.Scenarios, 1)
	assert.False(t, res.Scenarios[0].Pass)
	assert.Contains(t, res.Scenarios[0].Errors[0], "Assertion failed: completed_min")
	assert.Contains(t, buf.String(), "E_TEST_FAILED")
}

func TestTest_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.yaml", "name: broken\nticks: 10\n")

	buf, exec := newTest("text", dir)
	err := exec()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗ broken.yaml")
	assert.Contains(t, buf.String(), "failed to load scenario")
}

func TestFindScenarioFiles_SkipsGolden(t *testing.T) {
	files, err := findScenarioFiles(scenariosDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 4)
	for _, f := range files {
		assert.NotContains(t, f, "golden")
	}
}

func TestGoldenFilePath(t *testing.T) {
	got := goldenFilePath(filepath.Join("a", "b", "plaza.yaml"))
	assert.Equal(t, filepath.Join("a", "b", "golden", "plaza.golden"), got)
}
