package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"loom/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped on schema changes; stale databases are rejected
// rather than migrated since the ledger is an operational record, not an
// archive.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store persists run and record progress in SQLite. Only the owner rank
// opens a store; peer ranks run without one.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "ledger.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun inserts a running run row.
func (s *Store) BeginRun(ctx context.Context, id, modality string, worldSize int) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, modality, world_size, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, modality, worldSize, RunRunning, now)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the run's terminal status.
func (s *Store) FinishRun(ctx context.Context, id string, status RunStatus) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`, status, now, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// StartRecord inserts a pending record row and returns its identifier.
func (s *Store) StartRecord(ctx context.Context, runID, name, saveName string) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO run_records (run_id, name, save_name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, name, saveName, RecordPending, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// SetRecordStatus advances a record's stage.
func (s *Store) SetRecordStatus(ctx context.Context, id int64, status RecordStatus) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE run_records SET status = ?, updated_at = ? WHERE id = ?`, status, now, id)
	if err != nil {
		return fmt.Errorf("update record status: %w", err)
	}
	return nil
}

// CompleteRecord marks a record completed with its artifact path.
func (s *Store) CompleteRecord(ctx context.Context, id int64, artifactPath string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE run_records SET status = ?, artifact_path = ?, error_message = NULL, updated_at = ? WHERE id = ?`,
		RecordCompleted, artifactPath, now, id)
	if err != nil {
		return fmt.Errorf("complete record: %w", err)
	}
	return nil
}

// FailRecord marks a record failed or skipped with its error message.
func (s *Store) FailRecord(ctx context.Context, id int64, status RecordStatus, message string) error {
	if status != RecordFailed && status != RecordSkipped {
		return fmt.Errorf("invalid failure status %q", status)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`UPDATE run_records SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		status, message, now, id)
	if err != nil {
		return fmt.Errorf("fail record: %w", err)
	}
	return nil
}

// ListRuns returns all runs, newest first.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, modality, world_size, status, started_at, finished_at FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started string
		var finished sql.NullString
		if err := rows.Scan(&run.ID, &run.Modality, &run.WorldSize, &run.Status, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if finished.Valid {
			ts, err := time.Parse(time.RFC3339Nano, finished.String)
			if err != nil {
				return nil, fmt.Errorf("parse finished_at: %w", err)
			}
			run.FinishedAt = &ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListRecords returns a run's records in processing order.
func (s *Store) ListRecords(ctx context.Context, runID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, name, save_name, status, error_message, artifact_path, created_at, updated_at
		 FROM run_records WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var errMsg, artifact sql.NullString
		var created, updated string
		if err := rows.Scan(&record.ID, &record.RunID, &record.Name, &record.SaveName,
			&record.Status, &errMsg, &artifact, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		record.ErrorMessage = errMsg.String
		record.ArtifactPath = artifact.String
		if record.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if record.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
