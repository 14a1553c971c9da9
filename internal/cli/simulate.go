package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/tollsim/internal/engine"
	"github.com/roach88/tollsim/internal/ir"
	"github.com/roach88/tollsim/internal/store"
)

// simulation describes one reproducible engine run.
type simulation struct {
	Config      ir.Config
	Layout      ir.Layout
	Seed        uint64
	Ticks       int64
	SampleEvery int64          // 0 disables periodic sampling
	SampleTicks map[int64]bool // extra ticks to sample
	Logger      *slog.Logger
}

// outcome is what a simulation produced.
type outcome struct {
	Stats       ir.Stats
	FinalDigest string
	Samples     []store.Sample // RunID left empty
	Interrupted bool
}

// simulate steps a fresh engine until Ticks or until ctx is cancelled.
// A cancelled run stops at a tick boundary and reports Interrupted.
func simulate(ctx context.Context, sim simulation) (outcome, error) {
	eng, err := engine.New(sim.Config,
		engine.WithSeed(sim.Seed),
		engine.WithLayout(sim.Layout),
		engine.WithLogger(sim.Logger),
	)
	if err != nil {
		return outcome{}, err
	}

	var out outcome
	for eng.Stats().ElapsedTicks < sim.Ticks {
		if ctx.Err() != nil {
			out.Interrupted = true
			break
		}
		eng.Step()
		stats := eng.Stats()
		if sim.samples(stats.ElapsedTicks) {
			out.Samples = append(out.Samples, store.SampleFromStats("", stats))
		}
	}

	out.Stats = eng.Stats()
	out.FinalDigest, err = ir.SnapshotDigest(eng.Snapshot())
	if err != nil {
		return outcome{}, fmt.Errorf("digest final snapshot: %w", err)
	}
	return out, nil
}

func (sim simulation) samples(tick int64) bool {
	if sim.SampleEvery > 0 && tick%sim.SampleEvery == 0 {
		return true
	}
	return sim.SampleTicks[tick]
}

// throughput is completed vehicles per tick.
func throughput(st ir.Stats) float64 {
	if st.ElapsedTicks == 0 {
		return 0
	}
	return float64(st.VehiclesCompleted) / float64(st.ElapsedTicks)
}
