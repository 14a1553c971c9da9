package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tollsim/internal/config"
)

const configTestdata = "../config/testdata"

func newValidate(format string, args ...string) (*bytes.Buffer, func() error) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute
}

func TestValidate_RequiresFile(t *testing.T) {
	_, exec := newValidate("text")

	err := exec()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestValidate_ValidFiles(t *testing.T) {
	buf, exec := newValidate("text",
		filepath.Join(configTestdata, "plaza.yaml"),
		filepath.Join(configTestdata, "plaza.cue"),
	)

	require.NoError(t, exec())
	assert.Contains(t, buf.String(), "✓ 2 file(s) valid")
}

func TestValidate_InvalidFile(t *testing.T) {
	good := filepath.Join(configTestdata, "plaza.yaml")
	bad := filepath.Join(configTestdata, "bad_booths.yaml")
	buf, exec := newValidate("text", good, bad)

	err := exec()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out := buf.String()
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, config.ErrSchemaViolation)
}

func TestValidate_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	buf, exec := newValidate("json", missing)

	err := exec()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var res ValidationResult
	assert.Equal(t, "error", decodeData(t, buf.Bytes(), &res))
	require.Len(t, res.Files, 1)
	require.Len(t, res.Files[0].Errors, 1)
	assert.Equal(t, ErrCodeGeneric, res.Files[0].Errors[0].Code)
}

func TestValidate_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plaza.toml", "lanes = 1\n")
	buf, exec := newValidate("json", path)

	require.Error(t, exec())
	assert.Contains(t, buf.String(), config.ErrUnsupportedFormat)
}

func TestValidate_JSONSuccess(t *testing.T) {
	buf, exec := newValidate("json", filepath.Join(configTestdata, "plaza.yaml"))

	require.NoError(t, exec())
	var res ValidationResult
	assert.Equal(t, "ok", decodeData(t, buf.Bytes(), &res))
	assert.True(t, res.Valid)
	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].Valid)
}

func TestValidate_JSONErrorEnvelope(t *testing.T) {
	bad := filepath.Join(configTestdata, "bad_booths.yaml")
	buf, exec := newValidate("json", filepath.Join(configTestdata, "plaza.yaml"), bad)

	require.Error(t, exec())

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, config.ErrSchemaViolation, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 2)
	assert.True(t, resp.Data.Files[0].Valid)
	assert.False(t, resp.Data.Files[1].Valid)
}

func TestValidate_VerboseListsFilesOnStderr(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json", Verbose: true})
	cmd.SetOut(out)
	cmd.SetErr(diag)
	path := filepath.Join(configTestdata, "plaza.cue")
	cmd.SetArgs([]string{path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, diag.String(), "Validating "+path)
	assert.Equal(t, "ok", decodeData(t, out.Bytes(), nil))
}
