package store

import (
	"context"

	"github.com/MrSatan/Code-Guardian/internal/domain"
	"github.com/MrSatan/Code-Guardian/internal/store"
	"github.com/MrSatan/Code-Guardian/internal/usecase/review"
)

// Bridge adapts store.Store to the review.Store interface.
// This avoids circular dependencies between packages.
type Bridge struct {
	store store.Store
}

// NewBridge creates a new store adapter.
func NewBridge(s store.Store) *Bridge {
	return &Bridge{store: s}
}

// CreateRun converts and saves a run record.
func (b *Bridge) CreateRun(ctx context.Context, run review.StoreRun) error {
	storeRun := store.Run{
		RunID:       run.RunID,
		Timestamp:   run.Timestamp,
		Repository:  run.Repository,
		BaseRef:     run.BaseRef,
		TargetRef:   run.TargetRef,
		PRNumber:    run.PRNumber,
		Provider:    run.Provider,
		Model:       run.Model,
		ChunksTotal: run.ChunksTotal,
	}
	return b.store.CreateRun(ctx, storeRun)
}

// UpdateRunCounts updates the outcome counters for a run.
func (b *Bridge) UpdateRunCounts(ctx context.Context, runID string, accepted, rejected, failedChunks int) error {
	return b.store.UpdateRunCounts(ctx, runID, accepted, rejected, failedChunks)
}

// SaveFeedback converts and saves accepted feedback records.
func (b *Bridge) SaveFeedback(ctx context.Context, runID string, items []domain.Feedback) error {
	if len(items) == 0 {
		return nil
	}
	records := make([]store.FeedbackRecord, len(items))
	for i, item := range items {
		records[i] = store.FeedbackRecord{
			FeedbackID: item.ID,
			RunID:      runID,
			File:       item.File,
			Line:       item.Line,
			Comment:    item.Comment,
			DiffHunk:   item.DiffHunk,
			ChunkIndex: item.ChunkIndex,
			ChunkLabel: item.ChunkLabel,
		}
	}
	return b.store.SaveFeedback(ctx, records)
}

// SaveRejections converts and saves rejection records.
func (b *Bridge) SaveRejections(ctx context.Context, runID string, items []domain.Rejection) error {
	if len(items) == 0 {
		return nil
	}
	records := make([]store.RejectionRecord, len(items))
	for i, item := range items {
		records[i] = store.RejectionRecord{
			RunID:  runID,
			File:   item.File,
			Line:   item.Line,
			Reason: item.Reason,
		}
	}
	return b.store.SaveRejections(ctx, runID, records)
}

// Close closes the underlying store.
func (b *Bridge) Close() error {
	return b.store.Close()
}
