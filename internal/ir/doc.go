// Package ir provides the shared domain types of tollsim.
//
// This package contains type definitions plus canonical serialization and
// digests. All other internal packages import ir; ir imports nothing
// internal, which keeps it the foundational layer with no cycles.
//
// Key design constraints:
//   - Vehicles are plain records; ownership stays with the engine arena
//   - Config carries optional fields as pointers, Params is always resolved
//   - Digests use canonical JSON (RFC 8785) with domain separation
//   - Floats never enter canonical documents directly (see FormatFloat)
package ir
