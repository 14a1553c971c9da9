package ir

// Class is the payment class of a vehicle.
// Only two classes exist: ETC vehicles pass the booth without stopping,
// MANUAL vehicles dwell at the booth column for a service period.
type Class string

const (
	ClassETC    Class = "ETC"
	ClassManual Class = "MANUAL"
)

// ServiceMode selects how a MANUAL vehicle's dwell time is drawn.
type ServiceMode string

const (
	// ServiceFixed dwells exactly Mu ticks.
	ServiceFixed ServiceMode = "fixed"

	// ServiceExponential dwells ceil(-Mu * ln(1-U)) ticks.
	ServiceExponential ServiceMode = "exponential"
)

// VehicleID identifies a vehicle for its whole lifetime.
// IDs are assigned monotonically per engine instance, starting at 1.
type VehicleID int64

// ServiceState is the booth state machine of a vehicle.
type ServiceState string

const (
	NotServed ServiceState = "NOT_SERVED"
	InService ServiceState = "IN_SERVICE"
	Served    ServiceState = "SERVED"
)

// Vehicle is the per-car state record.
//
// INVARIANTS:
//   - OriginLane and AssignedBoothLane never change after spawn
//   - ETC vehicles never set InService or HasBeenServed
//   - HasBeenServed and HasPassedFanOut are set at most once
type Vehicle struct {
	ID    VehicleID `json:"id"`
	Class Class     `json:"class"`

	// OriginLane is the highway lane the vehicle spawned in.
	OriginLane int `json:"origin_lane"`

	InService             bool `json:"in_service"`
	RemainingServiceTicks int  `json:"remaining_service_ticks"`
	HasBeenServed         bool `json:"has_been_served"`

	// LaneChangeCooldown is the number of ticks before the vehicle may
	// change lane again. 0 means eligible.
	LaneChangeCooldown int `json:"lane_change_cooldown"`

	AssignedBoothLane int  `json:"assigned_booth_lane"`
	HasPassedFanOut   bool `json:"has_passed_fan_out"`

	// IsTeleporting is true only for the tick in which the vehicle crossed
	// the fan-out junction into a different lane. Presentation only.
	IsTeleporting bool `json:"is_teleporting"`
}

// ServiceState reports where the vehicle is in the booth state machine.
func (v *Vehicle) ServiceState() ServiceState {
	switch {
	case v.InService:
		return InService
	case v.HasBeenServed:
		return Served
	default:
		return NotServed
	}
}

// RandomSource is the ordered source of randomness consumed by the engine
// and the probabilistic rules. *rand.Rand from math/rand/v2 satisfies it.
//
// Float64 must return values in [0, 1). IntN must return values in [0, n).
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

// Stats are the counters exposed to collaborators.
type Stats struct {
	ElapsedTicks      int64 `json:"elapsed_ticks"`
	VehiclesCompleted int64 `json:"vehicles_completed"`
	VehiclesSpawned   int64 `json:"vehicles_spawned"`
	OnGrid            int   `json:"on_grid"`
}

// EventKind names a vehicle lifecycle event.
type EventKind string

const (
	EventSpawned        EventKind = "spawned"
	EventFannedOut      EventKind = "fanned_out"
	EventLaneChanged    EventKind = "lane_changed"
	EventMerged         EventKind = "merged"
	EventServiceStarted EventKind = "service_started"
	EventServed         EventKind = "served"
	EventCompleted      EventKind = "completed"
)

// Event is a vehicle lifecycle notification emitted during a tick.
// FromLane and ToLane are equal for events that do not move a vehicle
// between lanes.
type Event struct {
	Kind     EventKind `json:"kind"`
	Tick     int64     `json:"tick"`
	Vehicle  VehicleID `json:"vehicle"`
	FromLane int       `json:"from_lane"`
	ToLane   int       `json:"to_lane"`
	Position int       `json:"position"`
}
