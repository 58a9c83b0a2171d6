package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MrSatan/Code-Guardian/internal/store"
)

// Store implements the store.Store interface using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite store at the given path.
// Use ":memory:" for in-memory database (useful for testing).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db}

	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return s, nil
}

// createSchema creates all tables and indexes if they don't exist.
func (s *Store) createSchema() error {
	schema := `
	-- Stores metadata about each review run
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		repository TEXT NOT NULL,
		base_ref TEXT NOT NULL,
		target_ref TEXT NOT NULL,
		pr_number INTEGER DEFAULT 0,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		chunks_total INTEGER DEFAULT 0,
		chunks_failed INTEGER DEFAULT 0,
		accepted INTEGER DEFAULT 0,
		rejected INTEGER DEFAULT 0
	);

	-- Accepted review comments from each run
	CREATE TABLE IF NOT EXISTS feedback (
		feedback_id TEXT NOT NULL,
		run_id TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		comment TEXT NOT NULL,
		diff_hunk TEXT,
		chunk_index INTEGER DEFAULT 0,
		chunk_label TEXT,
		PRIMARY KEY (run_id, feedback_id),
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Validator rejections from each run
	CREATE TABLE IF NOT EXISTS rejections (
		rejection_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		reason TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_feedback_run ON feedback(run_id);
	CREATE INDEX IF NOT EXISTS idx_rejections_run ON rejections(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateRun stores a new review run.
func (s *Store) CreateRun(ctx context.Context, run store.Run) error {
	query := `
		INSERT INTO runs (run_id, timestamp, repository, base_ref, target_ref, pr_number, provider, model, chunks_total, chunks_failed, accepted, rejected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.RunID,
		run.Timestamp.Unix(),
		run.Repository,
		run.BaseRef,
		run.TargetRef,
		run.PRNumber,
		run.Provider,
		run.Model,
		run.ChunksTotal,
		run.ChunksFailed,
		run.Accepted,
		run.Rejected,
	)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// UpdateRunCounts updates the outcome counters for a run once validation
// has completed.
func (s *Store) UpdateRunCounts(ctx context.Context, runID string, accepted, rejected, failedChunks int) error {
	query := `UPDATE runs SET accepted = ?, rejected = ?, chunks_failed = ? WHERE run_id = ?`

	result, err := s.db.ExecContext(ctx, query, accepted, rejected, failedChunks, runID)
	if err != nil {
		return fmt.Errorf("failed to update run counts: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}

	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (store.Run, error) {
	query := `
		SELECT run_id, timestamp, repository, base_ref, target_ref, pr_number, provider, model, chunks_total, chunks_failed, accepted, rejected
		FROM runs
		WHERE run_id = ?
	`

	var run store.Run
	var timestamp int64

	err := s.db.QueryRowContext(ctx, query, runID).Scan(
		&run.RunID,
		&timestamp,
		&run.Repository,
		&run.BaseRef,
		&run.TargetRef,
		&run.PRNumber,
		&run.Provider,
		&run.Model,
		&run.ChunksTotal,
		&run.ChunksFailed,
		&run.Accepted,
		&run.Rejected,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return store.Run{}, fmt.Errorf("run not found: %s", runID)
		}
		return store.Run{}, fmt.Errorf("failed to get run: %w", err)
	}

	run.Timestamp = time.Unix(timestamp, 0)
	return run, nil
}

// ListRuns retrieves the most recent runs, limited by the given count.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	query := `
		SELECT run_id, timestamp, repository, base_ref, target_ref, pr_number, provider, model, chunks_total, chunks_failed, accepted, rejected
		FROM runs
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var run store.Run
		var timestamp int64

		if err := rows.Scan(
			&run.RunID,
			&timestamp,
			&run.Repository,
			&run.BaseRef,
			&run.TargetRef,
			&run.PRNumber,
			&run.Provider,
			&run.Model,
			&run.ChunksTotal,
			&run.ChunksFailed,
			&run.Accepted,
			&run.Rejected,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = time.Unix(timestamp, 0)
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// SaveFeedback stores multiple feedback records in a single transaction.
func (s *Store) SaveFeedback(ctx context.Context, items []store.FeedbackRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO feedback (feedback_id, run_id, file, line, comment, diff_hunk, chunk_index, chunk_label)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.FeedbackID,
			item.RunID,
			item.File,
			item.Line,
			item.Comment,
			item.DiffHunk,
			item.ChunkIndex,
			item.ChunkLabel,
		); err != nil {
			return fmt.Errorf("failed to insert feedback: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetFeedbackByRun retrieves all feedback for a given run, ordered by file
// and line.
func (s *Store) GetFeedbackByRun(ctx context.Context, runID string) ([]store.FeedbackRecord, error) {
	query := `
		SELECT feedback_id, run_id, file, line, comment, diff_hunk, chunk_index, chunk_label
		FROM feedback
		WHERE run_id = ?
		ORDER BY file ASC, line ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback by run: %w", err)
	}
	defer rows.Close()

	var items []store.FeedbackRecord
	for rows.Next() {
		var item store.FeedbackRecord
		var diffHunk sql.NullString
		var chunkLabel sql.NullString

		if err := rows.Scan(
			&item.FeedbackID,
			&item.RunID,
			&item.File,
			&item.Line,
			&item.Comment,
			&diffHunk,
			&item.ChunkIndex,
			&chunkLabel,
		); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}

		item.DiffHunk = diffHunk.String
		item.ChunkLabel = chunkLabel.String
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return items, nil
}

// SaveRejections stores validator rejections for a run in a single
// transaction.
func (s *Store) SaveRejections(ctx context.Context, runID string, items []store.RejectionRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rejections (run_id, file, line, reason)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, runID, item.File, item.Line, item.Reason); err != nil {
			return fmt.Errorf("failed to insert rejection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRejectionsByRun retrieves all rejections for a given run.
func (s *Store) GetRejectionsByRun(ctx context.Context, runID string) ([]store.RejectionRecord, error) {
	query := `
		SELECT run_id, file, line, reason
		FROM rejections
		WHERE run_id = ?
		ORDER BY rejection_id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rejections by run: %w", err)
	}
	defer rows.Close()

	var items []store.RejectionRecord
	for rows.Next() {
		var item store.RejectionRecord

		if err := rows.Scan(&item.RunID, &item.File, &item.Line, &item.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan rejection: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rejections: %w", err)
	}

	return items, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
