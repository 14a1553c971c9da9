package rules

import (
	"math"

	"github.com/roach88/tollsim/internal/ir"
)

// ForwardProbability is the raw advance probability of a vehicle with the
// given forward gap: the base probability a, or the adaptive sigmoid when
// adaptive acceleration is on.
func ForwardProbability(p ir.Params, gap int) float64 {
	if !p.Adaptive {
		return p.Accel
	}
	return AdaptiveAccel(gap, p.AMin, p.AMax, p.D0, p.Beta)
}

// AdaptiveAccel computes a_min + (a_max-a_min) * sigmoid(beta*(gap-d0)).
// Larger gaps push the probability toward a_max.
func AdaptiveAccel(gap int, aMin, aMax, d0, beta float64) float64 {
	sigmoid := 1 / (1 + math.Exp(-beta*(float64(gap)-d0)))
	return aMin + (aMax-aMin)*sigmoid
}

// EffectiveForwardProbability applies the p_min floor, which keeps every
// unblocked vehicle's advance probability above zero.
func EffectiveForwardProbability(p ir.Params, gap int) float64 {
	return math.Max(ForwardProbability(p, gap), p.PMin)
}
