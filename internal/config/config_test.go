package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tollsim/internal/ir"
)

func TestDefault_IsValid(t *testing.T) {
	assert.Empty(t, Validate(Default()))
}

func TestLoad_YAML(t *testing.T) {
	cfg, err := Load("testdata/plaza.yaml")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Lanes)
	assert.Equal(t, 6, cfg.Booths)
	assert.Equal(t, ir.ServiceExponential, cfg.ServiceMode)
	require.NotNil(t, cfg.Sigma)
	assert.Equal(t, 1.2, *cfg.Sigma)
	assert.Nil(t, cfg.Alpha, "absent optional fields stay unset")
}

func TestLoad_CUE(t *testing.T) {
	cfg, err := Load("testdata/plaza.cue")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Lanes)
	assert.Equal(t, 4, cfg.Booths)
	assert.True(t, cfg.Adaptive)
	require.NotNil(t, cfg.AMax)
	assert.Equal(t, 0.95, *cfg.AMax)
	assert.Equal(t, 0.05, cfg.PMin)
}

func TestLoad_BoothsBelowLanes(t *testing.T) {
	_, err := Load("testdata/bad_booths.yaml")
	require.Error(t, err)

	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	require.NotEmpty(t, ve)
	assert.Equal(t, ErrSchemaViolation, ve[0].Code)
	assert.Contains(t, ve[0].Field, "booths")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("plaza.toml")
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, ErrUnsupportedFormat, ve[0].Code)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseYAML_UnknownKeyRejected(t *testing.T) {
	data := []byte("lanes: 1\nbooths: 1\nlambda: 0.5\naccel: 0.9\nmu: 3\np_min: 0.1\nlamda: 0.4\n")
	_, err := Parse(data, FormatYAML)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, ErrDecode, ve[0].Code)
	assert.Contains(t, ve[0].Message, "lamda")
}

func TestParseYAML_Empty(t *testing.T) {
	_, err := Parse(nil, FormatYAML)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, "empty document", ve[0].Message)
}

func TestParseCUE_UnknownFieldRejected(t *testing.T) {
	data := []byte("lanes: 1\nbooths: 1\nlambda: 0.5\naccel: 0.9\nmu: 3\np_min: 0.1\nspeed: 4\n")
	_, err := Parse(data, FormatCUE)
	ve, ok := AsValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, ErrSchemaViolation, ve[0].Code)
}

func TestParseCUE_ServiceModeEnum(t *testing.T) {
	data := []byte(`lanes: 1, booths: 1, lambda: 0.5, accel: 0.9, mu: 3, p_min: 0.1, service_mode: "erlang"`)
	_, err := Parse(data, FormatCUE)
	require.Error(t, err)
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*ir.Config)
		field string
	}{
		{"lambda above one", func(c *ir.Config) { c.Lambda = 1.5 }, "lambda"},
		{"negative accel", func(c *ir.Config) { c.Accel = -0.1 }, "accel"},
		{"zero lanes", func(c *ir.Config) { c.Lanes = 0 }, "lanes"},
		{"zero sigma", func(c *ir.Config) { c.Sigma = ir.Float(0) }, "sigma"},
		{"negative cooldown", func(c *ir.Config) { c.LaneChangeCooldown = ir.Int(-1) }, "lane_change_cooldown"},
		{"etc ratio", func(c *ir.Config) { c.ETCRatio = ir.Float(2) }, "etc_ratio"},
		{"p_min", func(c *ir.Config) { c.PMin = 1.1 }, "p_min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(&cfg)
			errs := Validate(cfg)
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.HasSuffix(e.Field, tt.field) {
					found = true
				}
			}
			assert.True(t, found, "no error for %s in %v", tt.field, errs)
		})
	}
}

func TestValidate_AccelBounds(t *testing.T) {
	cfg := Default()
	cfg.Adaptive = true
	cfg.AMin = ir.Float(0.8)
	cfg.AMax = ir.Float(0.3)

	errs := Validate(cfg)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrAccelBounds, errs[0].Code)
}

func TestValidationErrors_Error(t *testing.T) {
	ve := ValidationErrors{
		{Field: "lanes", Message: "too small", Code: ErrSchemaViolation},
		{Field: "a_min", Message: "too big", Code: ErrAccelBounds, Line: 4},
	}
	assert.Equal(t, "[E201] lanes: too small; [E202] line 4: a_min: too big", ve.Error())
}

func TestFormatFor(t *testing.T) {
	f, ok := FormatFor("x/plaza.YML")
	assert.True(t, ok)
	assert.Equal(t, FormatYAML, f)

	_, ok = FormatFor("plaza.json")
	assert.False(t, ok)
}
