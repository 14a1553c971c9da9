package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// pragma is a connection setting applied on Open and read back to confirm
// SQLite accepted it. want is the value PRAGMA name reports.
type pragma struct {
	name  string
	value string
	want  string
}

// runStorePragmas keep run and sample writes durable across a crash of the
// CLI while letting replay read while a run is being stored.
var runStorePragmas = []pragma{
	{name: "journal_mode", value: "WAL", want: "wal"},
	{name: "synchronous", value: "NORMAL", want: "1"},
	{name: "busy_timeout", value: "5000", want: "5000"},
	{name: "foreign_keys", value: "ON", want: "1"},
}

// migrations upgrade a database one user_version at a time; migrations[i]
// moves version i to i+1. schema.sql holds the version 0 tables.
var migrations = []func(tx *sql.Tx) error{
	indexRunsByConfigHash,
}

// currentSchemaVersion is the user_version of a fully migrated store.
var currentSchemaVersion = len(migrations)

// Store holds stored simulation runs and their periodic samples.
// Runs are keyed by run ID; samples by (run ID, tick).
type Store struct {
	db *sql.DB
}

// Open creates or opens the run store at path. It creates the runs and
// samples tables when missing, applies pending migrations and confirms the
// connection settings (WAL journal, NORMAL sync, 5s busy timeout, foreign
// keys so a sample cannot outlive its run). Opening an existing store
// leaves its runs untouched.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run store %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open run store %s: %w", path, err)
	}

	// One connection: SQLite has a single writer, and PRAGMA settings are
	// per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.configure(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open run store %s: %w", path, err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open run store %s: %w", path, err)
	}
	return s, nil
}

// Close closes the store. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying connection for ad hoc queries over runs and
// samples.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InTx runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// configure applies runStorePragmas and reads each one back.
func (s *Store) configure() error {
	for _, p := range runStorePragmas {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("set %s: %w", p.name, err)
		}
		if err := s.verifyPragma(p.name, p.want); err != nil {
			return err
		}
	}
	return nil
}

// migrate creates the base tables and applies every migration above the
// stored user_version, each in its own transaction together with the
// version bump.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	version, err := s.schemaVersion()
	if err != nil {
		return err
	}
	for v := version; v < len(migrations); v++ {
		err := s.InTx(context.Background(), func(tx *sql.Tx) error {
			if err := migrations[v](tx); err != nil {
				return err
			}
			_, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1))
			return err
		})
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	return nil
}

func (s *Store) schemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}

// indexRunsByConfigHash backs ListRunIDs filtered by plaza configuration.
func indexRunsByConfigHash(tx *sql.Tx) error {
	_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_config_hash ON runs(config_hash)`)
	return err
}

// verifyPragma checks that a pragma reports the expected value.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
