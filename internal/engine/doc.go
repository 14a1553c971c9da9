// Package engine implements the toll plaza cellular automaton.
//
// The engine owns the grid and every vehicle record. Collaborators drive it
// with Step and observe it through Snapshot, Stats and an optional Observer.
//
// TICK ORDER:
//
//  1. The tick clock advances.
//  2. Spawn: with probability lambda a vehicle enters a random highway lane
//     at position 0, if that cell is empty.
//  3. Sweep: cells are visited lanes ascending, positions descending. Each
//     vehicle is evaluated exactly once: cooldown, service, fan-out,
//     forward, lateral escape, fan-in, hold.
//  4. Commit: the next grid becomes the current grid.
//
// DOUBLE BUFFERING:
//
// Rules read the current grid and write only into the next grid. A cell of
// the next grid is taken by the first vehicle that claims it; later
// contenders fail and retry on the following tick. Every claim also
// requires the destination to be empty in the current grid (or to hold the
// claimant itself), so a vehicle holding its own cell never collides with
// a claim made earlier in the sweep.
//
// DETERMINISM:
//
// All randomness comes from one injected ir.RandomSource, consumed in this
// order each tick:
//
//   - spawn: Float64 (arrival); on arrival IntN(L) (lane); if the entry cell
//     is empty, Float64 (class) then Float64 (booth sample)
//   - sweep, per vehicle in scan order: Float64 when exponential service
//     starts, when a forward move is attempted, when a lateral escape has
//     a feasible target, and when a fan-in has a feasible candidate
//
// Two engines built from the same Config, Layout and seed produce identical
// snapshots at every tick.
//
// Thread-safety: Engine is not safe for concurrent use. Callers serialize
// Step, UpdateParams, Snapshot and Stats.
package engine
