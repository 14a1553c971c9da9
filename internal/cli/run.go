package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/tollsim/internal/config"
	"github.com/roach88/tollsim/internal/engine"
	"github.com/roach88/tollsim/internal/ir"
	"github.com/roach88/tollsim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath  string
	Ticks       int64
	Seed        uint64
	Database    string
	SampleEvery int64

	// IDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.RunIDGenerator
}

// RunSummary is the output of the run command.
type RunSummary struct {
	RunID       string  `json:"run_id,omitempty"`
	ConfigHash  string  `json:"config_hash"`
	Seed        uint64  `json:"seed"`
	Ticks       int64   `json:"ticks"`
	Spawned     int64   `json:"spawned"`
	Completed   int64   `json:"completed"`
	OnGrid      int     `json:"on_grid"`
	Throughput  float64 `json:"throughput"`
	FinalDigest string  `json:"final_digest"`
	Samples     int     `json:"samples"`
	Interrupted bool    `json:"interrupted,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a plaza simulation",
		Long: `Run the toll plaza simulation for a fixed number of ticks and print
the throughput summary.

Without --config the standard plaza is used (3 lanes, 6 booths). With
--db the run and its periodic samples are stored in SQLite and can be
re-verified later with "tollsim replay".

Ctrl-C stops the run at the next tick boundary; the partial run is still
reported and stored.

Examples:
  tollsim run --ticks 5000
  tollsim run --config plaza.yaml --seed 42 --db ./runs.db --sample-every 100
  tollsim run --config plaza.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "plaza configuration file (.yaml, .yml or .cue)")
	cmd.Flags().Int64Var(&opts.Ticks, "ticks", 1000, "number of ticks to simulate")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", engine.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for storing the run")
	cmd.Flags().Int64Var(&opts.SampleEvery, "sample-every", 0, "store counters every N ticks (requires --db)")

	return cmd
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	logger := f.Logger()

	if opts.Ticks <= 0 {
		return NewExitError(ExitCommandError, "--ticks must be positive")
	}
	if opts.SampleEvery < 0 {
		return NewExitError(ExitCommandError, "--sample-every must not be negative")
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	cfgHash, err := ir.ConfigHash(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash config", err)
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	sim := simulation{
		Config:      cfg,
		Layout:      ir.DefaultLayout(),
		Seed:        opts.Seed,
		Ticks:       opts.Ticks,
		SampleEvery: opts.SampleEvery,
		Logger:      logger,
	}

	var (
		st    *store.Store
		runID string
	)
	if opts.Database != "" {
		logger.Info("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()

		gen := opts.IDGenerator
		if gen == nil {
			gen = store.UUIDv7Generator{}
		}
		runID = gen.Generate()
	} else if opts.SampleEvery > 0 {
		logger.Warn("--sample-every has no effect without --db")
		sim.SampleEvery = 0
	}

	logger.Info("run starting",
		"run_id", runID,
		"lanes", cfg.Lanes,
		"booths", cfg.Booths,
		"seed", opts.Seed,
		"ticks", opts.Ticks,
	)
	out, err := simulate(ctx, sim)
	if err != nil {
		if engine.IsConfigError(err) {
			return WrapExitError(ExitCommandError, "invalid plaza", err)
		}
		return WrapExitError(ExitFailure, "simulation failed", err)
	}
	logger.Info("run finished",
		"run_id", runID,
		"ticks", out.Stats.ElapsedTicks,
		"completed", out.Stats.VehiclesCompleted,
		"interrupted", out.Interrupted,
	)

	if st != nil {
		if err := persistRun(context.Background(), st, runID, cfgHash, sim, out); err != nil {
			return WrapExitError(ExitFailure, "failed to store run", err)
		}
		logger.Info("run stored", "run_id", runID, "samples", len(out.Samples))
	}

	summary := RunSummary{
		RunID:       runID,
		ConfigHash:  cfgHash,
		Seed:        opts.Seed,
		Ticks:       out.Stats.ElapsedTicks,
		Spawned:     out.Stats.VehiclesSpawned,
		Completed:   out.Stats.VehiclesCompleted,
		OnGrid:      out.Stats.OnGrid,
		Throughput:  throughput(out.Stats),
		FinalDigest: out.FinalDigest,
		Samples:     len(out.Samples),
		Interrupted: out.Interrupted,
	}

	if f.JSON() {
		return f.Success(summary)
	}
	return outputRunText(cmd, summary)
}

// persistRun stores the run and its samples. The run row is written first
// so the samples' foreign key holds.
func persistRun(ctx context.Context, st *store.Store, runID, cfgHash string, sim simulation, out outcome) error {
	run := store.Run{
		ID:            runID,
		Config:        sim.Config,
		ConfigHash:    cfgHash,
		Layout:        sim.Layout,
		Seed:          sim.Seed,
		EngineVersion: ir.EngineVersion,
		Ticks:         out.Stats.ElapsedTicks,
		Completed:     out.Stats.VehiclesCompleted,
		Spawned:       out.Stats.VehiclesSpawned,
		FinalDigest:   out.FinalDigest,
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return err
	}

	samples := make([]store.Sample, len(out.Samples))
	for i, sm := range out.Samples {
		sm.RunID = runID
		samples[i] = sm
	}
	return st.WriteSamples(ctx, samples)
}

func outputRunText(cmd *cobra.Command, s RunSummary) error {
	w := cmd.OutOrStdout()

	if s.RunID != "" {
		fmt.Fprintf(w, "Run: %s\n", s.RunID)
	}
	fmt.Fprintf(w, "Config: %s\n", truncateID(s.ConfigHash))
	fmt.Fprintf(w, "Seed: %d\n", s.Seed)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Ticks:      %d\n", s.Ticks)
	fmt.Fprintf(w, "  Spawned:    %d\n", s.Spawned)
	fmt.Fprintf(w, "  Completed:  %d\n", s.Completed)
	fmt.Fprintf(w, "  On grid:    %d\n", s.OnGrid)
	fmt.Fprintf(w, "  Throughput: %.4f vehicles/tick\n", s.Throughput)
	if s.Samples > 0 {
		fmt.Fprintf(w, "  Samples:    %d\n", s.Samples)
	}
	if s.Interrupted {
		fmt.Fprintln(w, "\nRun interrupted before the last tick.")
	}
	return nil
}
