package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// WriteRun inserts a run, or records the outcome of an existing one.
//
// On conflict only the outcome columns are updated: configuration, layout
// and seed are immutable once a run has been created.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	cfgJSON, err := json.Marshal(run.Config)
	if err != nil {
		return fmt.Errorf("write run: marshal config: %w", err)
	}
	layoutJSON, err := json.Marshal(run.Layout)
	if err != nil {
		return fmt.Errorf("write run: marshal layout: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, config_json, config_hash, layout_json, seed, ticks, completed, spawned, final_digest, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ticks = excluded.ticks,
			completed = excluded.completed,
			spawned = excluded.spawned,
			final_digest = excluded.final_digest
	`,
		run.ID,
		string(cfgJSON),
		run.ConfigHash,
		string(layoutJSON),
		int64(run.Seed),
		run.Ticks,
		run.Completed,
		run.Spawned,
		run.FinalDigest,
		run.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteSample records one sample. Writing the same (run, tick) twice is a
// no-op. The run must already exist (foreign key constraint).
func (s *Store) WriteSample(ctx context.Context, sample Sample) error {
	return insertSample(ctx, s.db, sample)
}

// WriteSamples records a batch of samples in one transaction. Either all
// samples are written or none.
func (s *Store) WriteSamples(ctx context.Context, samples []Sample) error {
	return s.InTx(ctx, func(tx *sql.Tx) error {
		for _, sm := range samples {
			if err := insertSample(ctx, tx, sm); err != nil {
				return err
			}
		}
		return nil
	})
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSample(ctx context.Context, ex execer, sample Sample) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO samples (run_id, tick, completed, spawned, on_grid)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, tick) DO NOTHING
	`,
		sample.RunID,
		sample.Tick,
		sample.Completed,
		sample.Spawned,
		sample.OnGrid,
	)
	if err != nil {
		return fmt.Errorf("write sample %s@%d: %w", sample.RunID, sample.Tick, err)
	}
	return nil
}
