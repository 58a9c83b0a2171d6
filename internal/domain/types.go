package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// FileDiff is one file's segment of a multi-file unified diff.
// Path is empty when the per-file header could not be parsed; such
// segments are still analyzable but cannot be excluded or classified
// by extension.
type FileDiff struct {
	Path    string
	Content string
}

// LineCount returns the number of lines in the segment.
func (fd FileDiff) LineCount() int {
	if fd.Content == "" {
		return 0
	}
	return strings.Count(fd.Content, "\n") + 1
}

// ByteSize returns the segment size in bytes.
func (fd FileDiff) ByteSize() int {
	return len(fd.Content)
}

// Chunk is the unit of work sent to the model: a whole file diff, a
// fragment of one, or several merged fragments. Chunks exist only for
// the duration of a single review run.
type Chunk struct {
	Content       string
	Label         string
	SequenceIndex int
}

// LineCount returns the number of lines in the chunk content.
func (c Chunk) LineCount() int {
	if c.Content == "" {
		return 0
	}
	return strings.Count(c.Content, "\n") + 1
}

// Feedback is a single review comment produced by the model. File and
// Line are untrusted until the validator has checked them against the
// diff.
type Feedback struct {
	ID         string `json:"id"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Comment    string `json:"comment"`
	DiffHunk   string `json:"diffHunk,omitempty"`
	ChunkIndex int    `json:"chunkIndex"`
	ChunkLabel string `json:"chunkLabel,omitempty"`
}

// FeedbackInput captures the information required to create a Feedback.
type FeedbackInput struct {
	File       string
	Line       int
	Comment    string
	ChunkIndex int
	ChunkLabel string
}

// NewFeedback constructs a Feedback with a deterministic ID.
func NewFeedback(input FeedbackInput) Feedback {
	return Feedback{
		ID:         hashFeedback(input),
		File:       input.File,
		Line:       input.Line,
		Comment:    input.Comment,
		ChunkIndex: input.ChunkIndex,
		ChunkLabel: input.ChunkLabel,
	}
}

func hashFeedback(input FeedbackInput) string {
	payload := fmt.Sprintf("%s|%d|%s", input.File, input.Line, input.Comment)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Rejection records a feedback item the validator refused, with enough
// information for a complete per-run summary.
type Rejection struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ChunkFailure records one chunk whose analysis errored. The run
// continues; the chunk contributes no feedback.
type ChunkFailure struct {
	ChunkIndex int
	ChunkLabel string
	Err        error
}

func (f ChunkFailure) Error() string {
	return fmt.Sprintf("chunk %d (%s): %v", f.ChunkIndex, f.ChunkLabel, f.Err)
}

// Unwrap exposes the underlying analysis error to errors.Is/As.
func (f ChunkFailure) Unwrap() error {
	return f.Err
}

// RunSummary aggregates the outcome of one review run.
type RunSummary struct {
	RunID        string
	Repository   string
	PRNumber     int
	ChunksTotal  int
	ChunksFailed int
	Accepted     int
	Rejected     int
}
