// Package config loads and validates plaza configuration files.
//
// Files are YAML (.yaml, .yml) or CUE (.cue). Both are checked against the
// embedded CUE schema (#Plaza in schema.cue) and a handful of cross-field
// Go checks. YAML is decoded strictly: unknown keys are errors.
//
// A valid file yields an ir.Config ready for engine.New.
package config
