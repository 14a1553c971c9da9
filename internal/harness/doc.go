// Package harness runs toll plaza scenarios as executable contract tests.
//
// A scenario fixes a plaza configuration, a seed and a tick count, runs a
// fresh engine, and checks the outcome against a list of assertions. The
// full lifecycle event trace is kept for golden comparison.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: single_lane_service
//	description: "One lane, one booth, deterministic motion"
//	config:
//	  lanes: 1
//	  booths: 1
//	  lambda: 1.0
//	  accel: 1.0
//	  mu: 3
//	  service_mode: fixed
//	  p_min: 0.1
//	  etc_ratio: 0
//	seed: 7
//	ticks: 93
//	layout:            # optional, defaults to the 90-column plaza
//	  cols: 20
//	  div_start: 4
//	  lock_start: 8
//	  booth_x: 10
//	  merge_start: 14
//	assertions:
//	  - type: exit_tick
//	    vehicle: 1
//	    tick: 93
//	  - type: conservation
//
// # Assertion Types
//
//   - completed_min: at least count vehicles completed
//   - completed_exact: exactly count vehicles completed
//   - exit_tick: vehicle left the grid in tick
//   - event_count: exactly count events of kind were emitted
//   - no_routing_lane_change: every lane change was a lateral escape
//   - conservation: spawned == completed + on_grid after every tick, with
//     no vehicle in two cells
//   - booth_range: every vehicle spawned in lane targets one of booths
//
// # Deterministic Testing
//
// The engine draws from a PCG source seeded from the scenario (default
// engine.DefaultSeed), so identical scenarios produce identical traces.
// Engine logs are discarded.
package harness
