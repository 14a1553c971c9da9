// Package store provides SQLite-backed storage for simulation runs.
//
// The store keeps:
//   - Runs: configuration, seed, layout, and the final outcome of a run
//   - Samples: periodic counter snapshots of a run, keyed by tick
//
// A stored run carries everything needed to re-execute it: the engine is
// deterministic given config, layout and seed, so replaying a run must
// reproduce its final snapshot digest exactly.
//
// # Ordering
//
// All list queries are deterministic: runs ORDER BY id (UUIDv7 sorts by
// creation time), samples ORDER BY tick ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Samples must reference an existing run
package store
