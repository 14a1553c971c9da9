package rules

import (
	"math"

	"github.com/roach88/tollsim/internal/ir"
)

// ServiceOutcome reports what the service rule did to a vehicle this tick.
type ServiceOutcome struct {
	// Hold is true when the vehicle must keep its cell and attempt no
	// movement this tick.
	Hold bool

	Started  bool
	Finished bool
}

// UpdateService advances the booth state machine of a vehicle at pos.
//
// A MANUAL vehicle that reaches boothX unserved begins service. While in
// service the countdown is decremented once per tick and the vehicle is
// held, including the tick in which the countdown reaches zero. It becomes
// SERVED at zero and may move from the next tick on. ETC vehicles are
// never affected.
func UpdateService(v *ir.Vehicle, pos, boothX int, p ir.Params, src ir.RandomSource) ServiceOutcome {
	var out ServiceOutcome
	if v.Class != ir.ClassManual {
		return out
	}

	if pos == boothX && !v.InService && !v.HasBeenServed {
		v.InService = true
		v.RemainingServiceTicks = DrawServiceTicks(p, src)
		out.Started = true
	}

	if v.InService {
		v.RemainingServiceTicks--
		if v.RemainingServiceTicks <= 0 {
			v.RemainingServiceTicks = 0
			v.InService = false
			v.HasBeenServed = true
			out.Finished = true
		}
		out.Hold = true
	}
	return out
}

// DrawServiceTicks returns the dwell time of a vehicle starting service.
// Fixed mode consumes no randomness; exponential mode consumes one draw.
// The result is at least 1.
func DrawServiceTicks(p ir.Params, src ir.RandomSource) int {
	var ticks float64
	switch p.ServiceMode {
	case ir.ServiceExponential:
		u := src.Float64()
		if u >= 1 {
			u = math.Nextafter(1, 0)
		}
		ticks = math.Ceil(-p.Mu * math.Log(1-u))
	default:
		ticks = math.Ceil(p.Mu)
	}
	if !(ticks >= 1) {
		return 1
	}
	return int(ticks)
}
