package store

import "github.com/roach88/tollsim/internal/ir"

// Run is one stored simulation run.
//
// The outcome fields (Ticks through FinalDigest) are zero until the run
// is finished with WriteRun.
type Run struct {
	ID            string
	Config        ir.Config
	ConfigHash    string
	Layout        ir.Layout
	Seed          uint64
	EngineVersion string

	Ticks       int64
	Completed   int64
	Spawned     int64
	FinalDigest string
}

// Sample is the engine counters at one tick of a run.
type Sample struct {
	RunID     string
	Tick      int64
	Completed int64
	Spawned   int64
	OnGrid    int
}

// SampleFromStats builds a Sample from engine counters.
func SampleFromStats(runID string, st ir.Stats) Sample {
	return Sample{
		RunID:     runID,
		Tick:      st.ElapsedTicks,
		Completed: st.VehiclesCompleted,
		Spawned:   st.VehiclesSpawned,
		OnGrid:    st.OnGrid,
	}
}
