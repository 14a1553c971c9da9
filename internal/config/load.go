package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/tollsim/internal/ir"
)

// Format is a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cue":
		return FormatCUE, true
	default:
		return "", false
	}
}

// Default returns the standard plaza: three highway lanes fanning out to
// six booths.
func Default() ir.Config {
	return ir.Config{
		Lanes:       3,
		Booths:      6,
		Lambda:      0.6,
		Accel:       0.9,
		Mu:          15,
		ServiceMode: ir.ServiceFixed,
		PMin:        0.1,
	}
}

// Load reads, decodes and validates a configuration file.
// An invalid file yields ValidationErrors.
func Load(path string) (ir.Config, error) {
	format, ok := FormatFor(path)
	if !ok {
		return ir.Config{}, ValidationErrors{{
			Field:   "path",
			Message: fmt.Sprintf("unsupported config extension %q (want .yaml, .yml or .cue)", filepath.Ext(path)),
			Code:    ErrUnsupportedFormat,
		}}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return ir.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte, format Format) (ir.Config, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatCUE:
		return parseCUE(data)
	default:
		return ir.Config{}, ValidationErrors{{
			Field:   "format",
			Message: fmt.Sprintf("unsupported format %q", format),
			Code:    ErrUnsupportedFormat,
		}}
	}
}

func parseYAML(data []byte) (ir.Config, error) {
	var cfg ir.Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return ir.Config{}, ValidationErrors{{Field: "config", Message: "empty document", Code: ErrDecode}}
		}
		return ir.Config{}, ValidationErrors{{Field: "config", Message: err.Error(), Code: ErrDecode}}
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return ir.Config{}, ValidationErrors(errs)
	}
	return cfg, nil
}

func parseCUE(data []byte) (ir.Config, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename("plaza.cue"))
	if errs := checkSchema(ctx, v); len(errs) > 0 {
		return ir.Config{}, ValidationErrors(errs)
	}

	var cfg ir.Config
	if err := plazaSchema(ctx).Unify(v).Decode(&cfg); err != nil {
		return ir.Config{}, ValidationErrors{{Field: "config", Message: err.Error(), Code: ErrDecode}}
	}
	if errs := checkCrossField(cfg); len(errs) > 0 {
		return ir.Config{}, ValidationErrors(errs)
	}
	return cfg, nil
}
