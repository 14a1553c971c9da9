package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/tollsim/internal/ir"
	"github.com/roach88/tollsim/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database   string
	RunID      string // optional - specific run only
	ConfigHash string // optional - runs of one configuration only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID          string   `json:"run_id"`
	Ticks          int64    `json:"ticks"`
	Completed      int64    `json:"completed"`
	Samples        int      `json:"samples"`
	ExpectedDigest string   `json:"expected_digest"`
	ActualDigest   string   `json:"actual_digest"`
	VersionDrift   bool     `json:"version_drift,omitempty"`
	Mismatches     []string `json:"mismatches,omitempty"`
	Deterministic  bool     `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-execute stored runs and verify determinism",
		Long: `Re-execute stored runs from their configuration, layout and seed, and
verify that the final snapshot digest, the counters and every stored
sample are reproduced exactly.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, etc.)

Examples:
  tollsim replay --db ./runs.db
  tollsim replay --db ./runs.db --run 0192f0c4-...
  tollsim replay --db ./runs.db --config-hash 3fa9... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")
	cmd.Flags().StringVar(&opts.ConfigHash, "config-hash", "", "replay runs of one configuration only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	f := newFormatter(opts.RootOptions, cmd)
	logger := f.Logger()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runIDs []string
	if opts.RunID != "" {
		runIDs = []string{opts.RunID}
	} else {
		runIDs, err = st.ListRunIDs(ctx, opts.ConfigHash)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	if len(runIDs) == 0 {
		if f.JSON() {
			return outputReplayJSON(f, ReplayResult{
				Runs:             []ReplayRunResult{},
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(f.Writer, "No runs found in database.")
		return nil
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	for _, id := range runIDs {
		runResult, err := replayAndVerifyRun(ctx, st, id, logger)
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("run %s not found", id), err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}

		result.Runs = append(result.Runs, runResult)
		if !runResult.Deterministic {
			result.AllDeterministic = false
		}
	}

	if f.JSON() {
		return outputReplayJSON(f, result)
	}
	return outputReplayText(f, result)
}

// replayAndVerifyRun re-executes a stored run and compares the outcome.
func replayAndVerifyRun(ctx context.Context, st *store.Store, id string, logger *slog.Logger) (ReplayRunResult, error) {
	run, err := st.ReadRun(ctx, id)
	if err != nil {
		return ReplayRunResult{}, err
	}
	stored, err := st.ReadSamples(ctx, id)
	if err != nil {
		return ReplayRunResult{}, err
	}

	sampleTicks := make(map[int64]bool, len(stored))
	for _, sm := range stored {
		sampleTicks[sm.Tick] = true
	}

	logger.Debug("replaying run", "run_id", id, "ticks", run.Ticks, "seed", run.Seed)
	out, err := simulate(ctx, simulation{
		Config:      run.Config,
		Layout:      run.Layout,
		Seed:        run.Seed,
		Ticks:       run.Ticks,
		SampleTicks: sampleTicks,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return ReplayRunResult{}, err
	}

	res := ReplayRunResult{
		RunID:          id,
		Ticks:          out.Stats.ElapsedTicks,
		Completed:      out.Stats.VehiclesCompleted,
		Samples:        len(stored),
		ExpectedDigest: run.FinalDigest,
		ActualDigest:   out.FinalDigest,
		VersionDrift:   run.EngineVersion != ir.EngineVersion,
	}
	res.Mismatches = compareOutcome(run, stored, out)
	res.Deterministic = len(res.Mismatches) == 0
	return res, nil
}

// compareOutcome lists every difference between a stored run and its
// re-execution.
func compareOutcome(run store.Run, stored []store.Sample, out outcome) []string {
	var diffs []string
	if out.Interrupted {
		diffs = append(diffs, "replay interrupted")
	}
	if out.Stats.ElapsedTicks != run.Ticks {
		diffs = append(diffs, fmt.Sprintf("ticks: stored %d, replayed %d", run.Ticks, out.Stats.ElapsedTicks))
	}
	if out.Stats.VehiclesCompleted != run.Completed {
		diffs = append(diffs, fmt.Sprintf("completed: stored %d, replayed %d", run.Completed, out.Stats.VehiclesCompleted))
	}
	if out.Stats.VehiclesSpawned != run.Spawned {
		diffs = append(diffs, fmt.Sprintf("spawned: stored %d, replayed %d", run.Spawned, out.Stats.VehiclesSpawned))
	}
	if out.FinalDigest != run.FinalDigest {
		diffs = append(diffs, "final snapshot digest differs")
	}

	replayed := make(map[int64]store.Sample, len(out.Samples))
	for _, sm := range out.Samples {
		replayed[sm.Tick] = sm
	}
	for _, want := range stored {
		got, ok := replayed[want.Tick]
		got.RunID = want.RunID
		if !ok || got != want {
			diffs = append(diffs, fmt.Sprintf("sample at tick %d differs", want.Tick))
		}
	}
	return diffs
}

// outputReplayJSON writes the replay report; a diverged run turns it into
// an E_DETERMINISM error response.
func outputReplayJSON(f *OutputFormatter, result ReplayResult) error {
	if result.AllDeterministic {
		return f.Success(result)
	}
	if err := f.Error(CodeDeterminism, "determinism verification failed", result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, "determinism verification failed")
}

// outputReplayText outputs the replay result as text.
func outputReplayText(f *OutputFormatter, result ReplayResult) error {
	w := f.Writer

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		status := "✓"
		if !run.Deterministic {
			status = "✗"
		}

		fmt.Fprintf(w, "%s Run: %s\n", status, run.RunID)
		fmt.Fprintf(w, "  Ticks: %d, completed: %d, samples: %d\n", run.Ticks, run.Completed, run.Samples)
		if f.Verbose {
			fmt.Fprintf(w, "  Expected digest: %s\n", run.ExpectedDigest)
			fmt.Fprintf(w, "  Actual digest:   %s\n", run.ActualDigest)
		}
		if run.VersionDrift {
			fmt.Fprintln(w, "  Note: stored by a different engine version")
		}
		for _, m := range run.Mismatches {
			fmt.Fprintf(w, "  Mismatch: %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
