// Package rules holds the per-vehicle decision rules of the toll plaza
// automaton: booth assignment, forward movement, booth service, and the
// quota-ranked fan-out and fan-in routing.
//
// Rules are pure functions of their inputs plus an explicitly passed
// ir.RandomSource. They never touch the grid; arbitration of contested cells
// belongs to the engine.
//
// Routing uses one deterministic quota ranking for both junctions. A lane's
// score is max(0, 1 - |lane - ideal| / R) with R = ceil(B/L); candidates are
// ordered by descending score, ties by ascending lane index.
package rules
