package chunk_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSatan/Code-Guardian/internal/domain"
	"github.com/MrSatan/Code-Guardian/internal/usecase/chunk"
)

func TestPlan_SmallFilesMergeExcludedFilesDrop(t *testing.T) {
	files := []domain.FileDiff{
		{Path: "a.go", Content: repeatLines(60, 20)},
		{Path: "package-lock.json", Content: repeatLines(100, 20)},
		{Path: "b.go", Content: repeatLines(60, 20)},
	}

	chunks := chunk.Plan(files, chunk.DefaultThresholds(), chunk.DefaultMergeConfig())

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Label, "a.go")
	assert.Contains(t, chunks[0].Label, "b.go")
	assert.NotContains(t, chunks[0].Label, "package-lock.json")
}

func TestPlan_LargeSourceFileSubChunked(t *testing.T) {
	th := chunk.DefaultThresholds()
	// Above the source byte bound so the classifier orders a split at
	// 120-line windows.
	big := domain.FileDiff{Path: "big.go", Content: repeatLines(500, 60)}

	chunks := chunk.Plan([]domain.FileDiff{big}, th, chunk.DefaultMergeConfig())

	require.NotEmpty(t, chunks)
	foundPart := false
	for _, c := range chunks {
		if strings.Contains(c.Label, "big.go [part") {
			foundPart = true
		}
	}
	assert.True(t, foundPart, "expected sub-chunk labels for big.go, got %+v", chunks)
}

func TestPlan_UnknownSegmentStillPlanned(t *testing.T) {
	files := []domain.FileDiff{{Path: "", Content: repeatLines(20, 10)}}

	chunks := chunk.Plan(files, chunk.DefaultThresholds(), chunk.DefaultMergeConfig())

	require.Len(t, chunks, 1)
	assert.Equal(t, "unknown", chunks[0].Label)
}

func TestPlan_EmptyInput(t *testing.T) {
	assert.Empty(t, chunk.Plan(nil, chunk.DefaultThresholds(), chunk.DefaultMergeConfig()))
}
