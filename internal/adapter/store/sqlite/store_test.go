package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSatan/Code-Guardian/internal/adapter/store/sqlite"
	"github.com/MrSatan/Code-Guardian/internal/store"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	// Use in-memory database for testing
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err, "failed to create test store")

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func testRun(id string, ts time.Time) store.Run {
	return store.Run{
		RunID:       id,
		Timestamp:   ts,
		Repository:  "acme/widgets",
		BaseRef:     "main",
		TargetRef:   "feature",
		PRNumber:    42,
		Provider:    "openai",
		Model:       "gpt-4o",
		ChunksTotal: 5,
	}
}

func TestStore_CreateRun_GetRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := testRun("run-123", time.Now().Truncate(time.Second))

	err := s.CreateRun(ctx, run)
	require.NoError(t, err)

	retrieved, err := s.GetRun(ctx, run.RunID)
	require.NoError(t, err)

	assert.Equal(t, run.RunID, retrieved.RunID)
	assert.Equal(t, run.Repository, retrieved.Repository)
	assert.Equal(t, run.BaseRef, retrieved.BaseRef)
	assert.Equal(t, run.TargetRef, retrieved.TargetRef)
	assert.Equal(t, run.PRNumber, retrieved.PRNumber)
	assert.Equal(t, run.Provider, retrieved.Provider)
	assert.Equal(t, run.Model, retrieved.Model)
	assert.Equal(t, run.ChunksTotal, retrieved.ChunksTotal)
	assert.True(t, run.Timestamp.Equal(retrieved.Timestamp))
}

func TestStore_GetRun_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.ErrorContains(t, err, "run not found")
}

func TestStore_UpdateRunCounts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Now().Truncate(time.Second))
	require.NoError(t, s.CreateRun(ctx, run))

	err := s.UpdateRunCounts(ctx, "run-1", 7, 3, 1)
	require.NoError(t, err)

	retrieved, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, 7, retrieved.Accepted)
	assert.Equal(t, 3, retrieved.Rejected)
	assert.Equal(t, 1, retrieved.ChunksFailed)
}

func TestStore_UpdateRunCounts_MissingRun(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateRunCounts(context.Background(), "missing", 1, 0, 0)
	assert.ErrorContains(t, err, "run not found")
}

func TestStore_ListRuns_NewestFirst(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second)
	require.NoError(t, s.CreateRun(ctx, testRun("run-old", now.Add(-2*time.Hour))))
	require.NoError(t, s.CreateRun(ctx, testRun("run-mid", now.Add(-1*time.Hour))))
	require.NoError(t, s.CreateRun(ctx, testRun("run-new", now)))

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "run-mid", runs[1].RunID)
}

func TestStore_SaveFeedback_GetFeedbackByRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, testRun("run-1", time.Now())))

	items := []store.FeedbackRecord{
		{
			FeedbackID: "fb-2",
			RunID:      "run-1",
			File:       "src/app.py",
			Line:       20,
			Comment:    "second",
			DiffHunk:   "@@ -18,3 +18,4 @@",
			ChunkIndex: 1,
			ChunkLabel: "src/app.py",
		},
		{
			FeedbackID: "fb-1",
			RunID:      "run-1",
			File:       "src/app.py",
			Line:       11,
			Comment:    "first",
		},
	}

	require.NoError(t, s.SaveFeedback(ctx, items))

	retrieved, err := s.GetFeedbackByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, retrieved, 2)

	// Ordered by file then line.
	assert.Equal(t, "fb-1", retrieved[0].FeedbackID)
	assert.Equal(t, "fb-2", retrieved[1].FeedbackID)
	assert.Equal(t, "@@ -18,3 +18,4 @@", retrieved[1].DiffHunk)
	assert.Equal(t, 1, retrieved[1].ChunkIndex)
}

func TestStore_SaveFeedback_DuplicateIDFailsWholeBatch(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, testRun("run-1", time.Now())))

	items := []store.FeedbackRecord{
		{FeedbackID: "fb-1", RunID: "run-1", File: "a.go", Line: 1, Comment: "x"},
		{FeedbackID: "fb-1", RunID: "run-1", File: "a.go", Line: 2, Comment: "y"},
	}

	err := s.SaveFeedback(ctx, items)
	assert.Error(t, err)

	// Transaction rolled back: nothing persisted.
	retrieved, err := s.GetFeedbackByRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, retrieved)
}

func TestStore_SaveRejections_GetRejectionsByRun(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateRun(ctx, testRun("run-1", time.Now())))

	items := []store.RejectionRecord{
		{File: "src/app.py", Line: 9, Reason: "line not in diff"},
		{File: "ghost.py", Line: 1, Reason: "file not in diff"},
	}

	require.NoError(t, s.SaveRejections(ctx, "run-1", items))

	retrieved, err := s.GetRejectionsByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, retrieved, 2)
	assert.Equal(t, "src/app.py", retrieved[0].File)
	assert.Equal(t, "line not in diff", retrieved[0].Reason)
	assert.Equal(t, "run-1", retrieved[0].RunID)
}

func TestStore_DeleteCascade(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// Feedback for an unknown run violates the foreign key.
	err := s.SaveFeedback(ctx, []store.FeedbackRecord{
		{FeedbackID: "fb-1", RunID: "no-such-run", File: "a.go", Line: 1, Comment: "x"},
	})
	assert.Error(t, err)
}
