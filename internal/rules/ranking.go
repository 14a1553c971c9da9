package rules

import (
	"math"
	"slices"
)

// scoreEpsilon treats scores closer than this as tied.
const scoreEpsilon = 1e-6

// Candidate is a ranked destination lane.
type Candidate struct {
	Lane  int
	Score float64
}

// Lanes returns the candidate lane indices in rank order.
func Lanes(cs []Candidate) []int {
	out := make([]int, len(cs))
	for i, c := range cs {
		out[i] = c.Lane
	}
	return out
}

// QuotaRadius is the influence radius ceil(booths/lanes).
func QuotaRadius(lanes, booths int) float64 {
	return math.Ceil(float64(booths) / float64(lanes))
}

// rank scores lanes [0, n) around ideal and keeps those with a positive
// score, best first, ties by ascending lane.
func rank(n int, ideal, radius float64) []Candidate {
	var out []Candidate
	for lane := 0; lane < n; lane++ {
		score := math.Max(0, 1-math.Abs(float64(lane)-ideal)/radius)
		if score > 0 {
			out = append(out, Candidate{Lane: lane, Score: score})
		}
	}
	slices.SortStableFunc(out, func(a, b Candidate) int {
		if math.Abs(a.Score-b.Score) > scoreEpsilon {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return a.Lane - b.Lane
	})
	return out
}
