package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tollsim/internal/ir"
	"github.com/roach88/tollsim/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
}

// TraceSample is one row of the trace timeline.
type TraceSample struct {
	Tick       int64   `json:"tick"`
	Spawned    int64   `json:"spawned"`
	Completed  int64   `json:"completed"`
	OnGrid     int     `json:"on_grid"`
	Throughput float64 `json:"throughput"`
}

// TraceRun describes the stored run.
type TraceRun struct {
	ID            string    `json:"id"`
	ConfigHash    string    `json:"config_hash"`
	Config        ir.Config `json:"config"`
	Layout        ir.Layout `json:"layout"`
	Seed          uint64    `json:"seed"`
	EngineVersion string    `json:"engine_version"`
}

// TraceStats holds the final counters of the run.
type TraceStats struct {
	Ticks       int64   `json:"ticks"`
	Spawned     int64   `json:"spawned"`
	Completed   int64   `json:"completed"`
	Throughput  float64 `json:"throughput"`
	FinalDigest string  `json:"final_digest"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Run      TraceRun      `json:"run"`
	Timeline []TraceSample `json:"timeline"`
	Stats    TraceStats    `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Show the stored samples of a run",
		Long: `Show a stored run: its configuration, the per-tick samples recorded
with --sample-every, and the final counters.

Examples:
  tollsim trace --db ./runs.db 0192f0c4-...
  tollsim trace --db ./runs.db 0192f0c4-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("run %s not found", runID), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	samples, err := st.ReadSamples(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read samples", err)
	}

	result := buildTrace(run, samples)

	if f := newFormatter(opts.RootOptions, cmd); f.JSON() {
		return f.Success(result)
	}
	return outputTraceText(cmd, result, opts.Verbose)
}

// buildTrace converts stored rows into the trace output.
func buildTrace(run store.Run, samples []store.Sample) TraceResult {
	timeline := make([]TraceSample, len(samples))
	for i, sm := range samples {
		timeline[i] = TraceSample{
			Tick:      sm.Tick,
			Spawned:   sm.Spawned,
			Completed: sm.Completed,
			OnGrid:    sm.OnGrid,
			Throughput: throughput(ir.Stats{
				ElapsedTicks:      sm.Tick,
				VehiclesCompleted: sm.Completed,
			}),
		}
	}

	return TraceResult{
		Run: TraceRun{
			ID:            run.ID,
			ConfigHash:    run.ConfigHash,
			Config:        run.Config,
			Layout:        run.Layout,
			Seed:          run.Seed,
			EngineVersion: run.EngineVersion,
		},
		Timeline: timeline,
		Stats: TraceStats{
			Ticks:     run.Ticks,
			Spawned:   run.Spawned,
			Completed: run.Completed,
			Throughput: throughput(ir.Stats{
				ElapsedTicks:      run.Ticks,
				VehiclesCompleted: run.Completed,
			}),
			FinalDigest: run.FinalDigest,
		},
	}
}

// outputTraceText outputs the trace result as text.
func outputTraceText(cmd *cobra.Command, result TraceResult, verbose bool) error {
	w := cmd.OutOrStdout()
	r := result.Run

	fmt.Fprintf(w, "Trace for Run: %s\n", r.ID)
	fmt.Fprintf(w, "Plaza: %d lanes, %d booths, seed %d\n", r.Config.Lanes, r.Config.Booths, r.Seed)
	if verbose {
		fmt.Fprintf(w, "Config: %s\n", r.ConfigHash)
		fmt.Fprintf(w, "Layout: cols=%d div=%d lock=%d booth=%d merge=%d\n",
			r.Layout.Cols, r.Layout.DivStart, r.Layout.LockStart, r.Layout.BoothX, r.Layout.MergeStart)
		fmt.Fprintf(w, "Engine: %s\n", r.EngineVersion)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no samples)")
	} else {
		fmt.Fprintf(w, "  %8s %8s %9s %7s %10s\n", "tick", "spawned", "completed", "on_grid", "throughput")
		for _, sm := range result.Timeline {
			fmt.Fprintf(w, "  %8d %8d %9d %7d %10.4f\n", sm.Tick, sm.Spawned, sm.Completed, sm.OnGrid, sm.Throughput)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Ticks:      %d\n", result.Stats.Ticks)
	fmt.Fprintf(w, "  Spawned:    %d\n", result.Stats.Spawned)
	fmt.Fprintf(w, "  Completed:  %d\n", result.Stats.Completed)
	fmt.Fprintf(w, "  Throughput: %.4f vehicles/tick\n", result.Stats.Throughput)
	fmt.Fprintf(w, "  Digest:     %s\n", truncateID(result.Stats.FinalDigest))

	return nil
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
