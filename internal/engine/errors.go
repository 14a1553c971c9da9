package engine

import (
	"errors"
	"fmt"
)

// ConfigError is returned when a configuration cannot drive an engine.
//
// Config errors include:
//   - Invalid topology: fewer than one highway lane, or B < L
//   - Invalid layout: zones out of order
//   - Topology changed: UpdateParams tried to resize the grid
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidTopology indicates L < 1 or B < L.
	ErrCodeInvalidTopology ConfigErrorCode = "INVALID_TOPOLOGY"

	// ErrCodeInvalidLayout indicates the longitudinal zones are not ordered.
	ErrCodeInvalidLayout ConfigErrorCode = "INVALID_LAYOUT"

	// ErrCodeTopologyChanged indicates an update changed L or B.
	ErrCodeTopologyChanged ConfigErrorCode = "TOPOLOGY_CHANGED"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError returns true if err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsTopologyChanged returns true if err is a rejected resize.
// Uses errors.As to handle wrapped errors.
func IsTopologyChanged(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeTopologyChanged
	}
	return false
}

// NewTopologyError creates a ConfigError for an unusable lane count.
func NewTopologyError(lanes, booths int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidTopology,
		Message: fmt.Sprintf("need 1 <= lanes <= booths, got lanes=%d booths=%d", lanes, booths),
		Details: map[string]string{
			"lanes":  fmt.Sprintf("%d", lanes),
			"booths": fmt.Sprintf("%d", booths),
		},
	}
}

// NewLayoutError creates a ConfigError for an unordered layout.
func NewLayoutError(cols, divStart, lockStart, boothX, mergeStart int) *ConfigError {
	return &ConfigError{
		Code: ErrCodeInvalidLayout,
		Message: fmt.Sprintf("need 0 < div_start < lock_start <= booth_x < merge_start < cols, got %d/%d/%d/%d/%d",
			divStart, lockStart, boothX, mergeStart, cols),
	}
}

// NewTopologyChangedError creates a ConfigError for a rejected resize.
func NewTopologyChangedError(fromLanes, fromBooths, toLanes, toBooths int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeTopologyChanged,
		Message: fmt.Sprintf("cannot change topology from %dx%d to %dx%d between ticks", fromLanes, fromBooths, toLanes, toBooths),
		Details: map[string]string{
			"from": fmt.Sprintf("%dx%d", fromLanes, fromBooths),
			"to":   fmt.Sprintf("%dx%d", toLanes, toBooths),
		},
	}
}
