package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/tollsim/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrSchemaViolation   = "E201" // value rejected by #Plaza
	ErrAccelBounds       = "E202" // a_min > a_max
	ErrDecode            = "E203" // malformed file or unknown key
	ErrUnsupportedFormat = "E204" // unknown file extension
)

//go:embed schema.cue
var schemaSource string

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors collects every problem found in one file.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// AsValidationErrors extracts ValidationErrors from err.
// Uses errors.As to handle wrapped errors.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Validate checks cfg against the schema and the cross-field rules.
// Returns all errors found (does not fail-fast).
func Validate(cfg ir.Config) []ValidationError {
	data, err := json.Marshal(cfg)
	if err != nil {
		return []ValidationError{{Field: "config", Message: err.Error(), Code: ErrDecode}}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename("config.json"))
	errs := checkSchema(ctx, v)
	return append(errs, checkCrossField(cfg)...)
}

// plazaSchema compiles the embedded #Plaza definition in ctx.
func plazaSchema(ctx *cue.Context) cue.Value {
	return ctx.CompileString(schemaSource, cue.Filename("schema.cue")).
		LookupPath(cue.ParsePath("#Plaza"))
}

// checkSchema unifies v with #Plaza and reports every violation.
func checkSchema(ctx *cue.Context, v cue.Value) []ValidationError {
	if err := v.Err(); err != nil {
		return fromCUE(err, ErrDecode)
	}
	unified := plazaSchema(ctx).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fromCUE(err, ErrSchemaViolation)
	}
	return nil
}

func checkCrossField(cfg ir.Config) []ValidationError {
	var errs []ValidationError
	p := cfg.Resolve()
	if p.AMin > p.AMax {
		errs = append(errs, ValidationError{
			Field:   "a_min",
			Message: fmt.Sprintf("a_min (%g) must not exceed a_max (%g)", p.AMin, p.AMax),
			Code:    ErrAccelBounds,
		})
	}
	return errs
}

// fromCUE flattens a CUE error list into ValidationErrors.
func fromCUE(err error, code string) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(e.Path(), ".")
		if field == "" {
			field = "config"
		}
		format, args := e.Msg()
		ve := ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Field: "config", Message: err.Error(), Code: code})
	}
	return out
}
