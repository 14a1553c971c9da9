package rules

import (
	"math"

	"github.com/roach88/tollsim/internal/ir"
)

// BoothCenter maps a highway lane onto the booth index space.
// With a single highway lane the centre is the middle booth.
func BoothCenter(originLane, lanes, booths int) float64 {
	if lanes <= 1 {
		return float64(booths-1) / 2
	}
	return float64(originLane) / float64(lanes-1) * float64(booths-1)
}

// AssignTargetBooth samples the lifetime target booth of a spawning vehicle.
//
// Booth j gets weight exp(-(j-c)^2 / (2 sigma^2)) around c = BoothCenter.
// Exactly one value is drawn from src. The result is always in [0, booths-1]:
// cumulative rounding falls back to the last booth, and weights that
// underflow (sigma near zero) fall back to the booth nearest the centre.
func AssignTargetBooth(originLane, lanes, booths int, sigma float64, src ir.RandomSource) int {
	u := src.Float64()
	if booths <= 1 {
		return 0
	}

	center := BoothCenter(originLane, lanes, booths)
	weights := make([]float64, booths)
	sum := 0.0
	for j := range weights {
		d := float64(j) - center
		weights[j] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += weights[j]
	}
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nearestIndex(center, booths)
	}

	r := u * sum
	acc := 0.0
	for j, w := range weights {
		acc += w
		if r < acc {
			return j
		}
	}
	return booths - 1
}

func nearestIndex(x float64, n int) int {
	i := int(math.Floor(x + 0.5))
	return min(max(i, 0), n-1)
}
