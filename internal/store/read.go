package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the run with the given ID.
// Returns an error wrapping ErrRunNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, config_json, config_hash, layout_json, seed, ticks, completed, spawned, final_digest, engine_version
		FROM runs
		WHERE id = ?
	`, id)

	var (
		run        Run
		cfgJSON    string
		layoutJSON string
		seed       int64
	)
	err := row.Scan(
		&run.ID,
		&cfgJSON,
		&run.ConfigHash,
		&layoutJSON,
		&seed,
		&run.Ticks,
		&run.Completed,
		&run.Spawned,
		&run.FinalDigest,
		&run.EngineVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	run.Seed = uint64(seed)

	if err := json.Unmarshal([]byte(cfgJSON), &run.Config); err != nil {
		return Run{}, fmt.Errorf("read run %s: unmarshal config: %w", id, err)
	}
	if err := json.Unmarshal([]byte(layoutJSON), &run.Layout); err != nil {
		return Run{}, fmt.Errorf("read run %s: unmarshal layout: %w", id, err)
	}
	return run, nil
}

// ListRunIDs returns stored run IDs ordered by id. A non-empty configHash
// restricts the result to runs of that configuration.
//
// Returns an empty slice (not nil) if there are no runs.
func (s *Store) ListRunIDs(ctx context.Context, configHash string) ([]string, error) {
	query := `SELECT id FROM runs ORDER BY id COLLATE BINARY ASC`
	args := []any{}
	if configHash != "" {
		query = `SELECT id FROM runs WHERE config_hash = ? ORDER BY id COLLATE BINARY ASC`
		args = append(args, configHash)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return ids, nil
}

// ReadSamples returns the samples of a run ordered by tick.
//
// Returns an empty slice (not nil) if the run has no samples.
func (s *Store) ReadSamples(ctx context.Context, runID string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, tick, completed, spawned, on_grid
		FROM samples
		WHERE run_id = ?
		ORDER BY tick ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var sm Sample
		if err := rows.Scan(&sm.RunID, &sm.Tick, &sm.Completed, &sm.Spawned, &sm.OnGrid); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}
