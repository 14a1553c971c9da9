package rules

import "math"

// MergeBaseProbability is the merge acceptance with an empty queue behind.
const MergeBaseProbability = 0.3

// MergeIdeal is the fractional highway lane a booth lane maps back onto:
// (boothLane+0.5)/B*L - 0.5.
func MergeIdeal(boothLane, lanes, booths int) float64 {
	ratio := (float64(boothLane) + 0.5) / float64(booths)
	return ratio*float64(lanes) - 0.5
}

// MergeCandidates ranks the highway lanes a vehicle in boothLane may merge
// into at the merge wall. The engine attempts only the first feasible one.
func MergeCandidates(boothLane, lanes, booths int) []Candidate {
	return rank(lanes, MergeIdeal(boothLane, lanes, booths), QuotaRadius(lanes, booths))
}

// MergeProbability is min(1, p0 + alpha*queue). A longer queue behind the
// merging vehicle makes the receiving lane yield more readily.
func MergeProbability(queue int, alpha float64) float64 {
	return math.Min(1, MergeBaseProbability+alpha*float64(queue))
}
