package harness

import "github.com/roach88/tollsim/internal/ir"

// Assignment records the routing decision made for a vehicle at spawn.
type Assignment struct {
	Origin int `json:"origin"`
	Booth  int `json:"booth"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held.
	Pass bool `json:"pass"`

	// Trace contains every lifecycle event in emission order.
	Trace []ir.Event `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Stats are the engine counters after the last tick.
	Stats ir.Stats `json:"stats"`

	// FinalDigest is the snapshot digest after the last tick.
	FinalDigest string `json:"final_digest"`

	// Assignments maps every spawned vehicle to its origin and booth.
	Assignments map[ir.VehicleID]Assignment `json:"assignments"`

	// Per-tick checks, counted over the whole run.
	ConservationViolations int `json:"conservation_violations"`
	RoutingLaneChanges     int `json:"routing_lane_changes"`
	UnexplainedLaneChanges int `json:"unexplained_lane_changes"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []ir.Event{},
		Errors:      []string{},
		Assignments: make(map[ir.VehicleID]Assignment),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Observe appends ev to the trace. It makes *Result an engine observer.
func (r *Result) Observe(ev ir.Event) {
	r.Trace = append(r.Trace, ev)
}

// Count returns the number of trace events of the given kind.
func (r *Result) Count(kind ir.EventKind) int64 {
	var n int64
	for _, ev := range r.Trace {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Find returns the first event of kind for vehicle id.
func (r *Result) Find(kind ir.EventKind, id ir.VehicleID) (ir.Event, bool) {
	for _, ev := range r.Trace {
		if ev.Kind == kind && ev.Vehicle == id {
			return ev, true
		}
	}
	return ir.Event{}, false
}
