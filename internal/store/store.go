package store

import (
	"context"
	"time"
)

// Store defines the persistence layer interface for review run history.
type Store interface {
	// Run management
	CreateRun(ctx context.Context, run Run) error
	UpdateRunCounts(ctx context.Context, runID string, accepted, rejected, failedChunks int) error
	GetRun(ctx context.Context, runID string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Feedback persistence
	SaveFeedback(ctx context.Context, items []FeedbackRecord) error
	GetFeedbackByRun(ctx context.Context, runID string) ([]FeedbackRecord, error)

	// Rejection persistence
	SaveRejections(ctx context.Context, runID string, items []RejectionRecord) error
	GetRejectionsByRun(ctx context.Context, runID string) ([]RejectionRecord, error)

	// Utility
	Close() error
}

// Run represents a single review execution.
type Run struct {
	RunID        string
	Timestamp    time.Time
	Repository   string
	BaseRef      string
	TargetRef    string
	PRNumber     int
	Provider     string
	Model        string
	ChunksTotal  int
	ChunksFailed int
	Accepted     int
	Rejected     int
}

// FeedbackRecord is one accepted review comment tied to its run.
type FeedbackRecord struct {
	FeedbackID string
	RunID      string
	File       string
	Line       int
	Comment    string
	DiffHunk   string
	ChunkIndex int
	ChunkLabel string
}

// RejectionRecord is one validator rejection tied to its run.
type RejectionRecord struct {
	RunID  string
	File   string
	Line   int
	Reason string
}
