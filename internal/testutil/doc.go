// Package testutil provides deterministic doubles shared by tests:
// a scripted random source and a predictable run ID generator.
package testutil
