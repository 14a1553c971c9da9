package rules

import "math"

// FanOutIdeal is the booth lane a highway lane maps onto:
// round((origin+0.5)*B/L - 0.5).
func FanOutIdeal(originLane, lanes, booths int) int {
	x := (float64(originLane)+0.5)*float64(booths)/float64(lanes) - 0.5
	return int(math.Floor(x + 0.5))
}

// FanOutCandidates ranks the booth lanes a vehicle from originLane may be
// routed into at the divergence column. When lanes == booths the result is
// exactly [{originLane, 1}].
func FanOutCandidates(originLane, lanes, booths int) []Candidate {
	ideal := FanOutIdeal(originLane, lanes, booths)
	return rank(booths, float64(ideal), QuotaRadius(lanes, booths))
}
