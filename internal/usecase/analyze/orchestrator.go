// Package analyze drives bounded-concurrency model calls over the
// final chunk list and aggregates the raw feedback.
package analyze

import (
	"context"
	"sync"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

// Analyzer is the outbound port for the model call: chunk text in,
// structured feedback out. Implementations must be safe for concurrent
// use; a timeout, if any, is theirs to impose and surfaces here as a
// per-chunk error.
type Analyzer interface {
	AnalyzeChunk(ctx context.Context, chunk domain.Chunk) ([]domain.Feedback, error)
}

// Logger receives structured progress and warning messages. Optional.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}

// Orchestrator fans analysis calls out over chunks in fixed-size
// concurrency groups.
type Orchestrator struct {
	analyzer Analyzer
	logger   Logger
	limit    int
}

// NewOrchestrator wires an orchestrator. A limit below 1 is coerced
// to 1 (fully sequential). The logger may be nil.
func NewOrchestrator(analyzer Analyzer, logger Logger, limit int) *Orchestrator {
	if limit < 1 {
		limit = 1
	}
	return &Orchestrator{analyzer: analyzer, logger: logger, limit: limit}
}

// Analyze processes chunks in groups of the concurrency limit. Within a
// group all chunk analyses run concurrently; group N+1 does not start
// until every analysis in group N has settled. A failing chunk
// contributes zero feedback and is recorded as a ChunkFailure; one
// chunk's failure never aborts the run.
//
// Output ordering is deterministic: feedback follows input chunk order,
// then within-chunk order, regardless of completion order inside a
// group. Results are collected by chunk index, not by arrival.
func (o *Orchestrator) Analyze(ctx context.Context, chunks []domain.Chunk) ([]domain.Feedback, []domain.ChunkFailure) {
	if len(chunks) == 0 {
		return nil, nil
	}

	perChunk := make([][]domain.Feedback, len(chunks))
	errs := make([]error, len(chunks))

	for start := 0; start < len(chunks); start += o.limit {
		end := start + o.limit
		if end > len(chunks) {
			end = len(chunks)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				perChunk[idx], errs[idx] = o.analyzer.AnalyzeChunk(ctx, chunks[idx])
			}(i)
		}
		wg.Wait()
	}

	var feedback []domain.Feedback
	var failures []domain.ChunkFailure

	for i, c := range chunks {
		if errs[i] != nil {
			failures = append(failures, domain.ChunkFailure{
				ChunkIndex: c.SequenceIndex,
				ChunkLabel: c.Label,
				Err:        errs[i],
			})
			if o.logger != nil {
				o.logger.LogWarning(ctx, "chunk analysis failed", map[string]interface{}{
					"chunkIndex": c.SequenceIndex,
					"chunkLabel": c.Label,
					"error":      errs[i].Error(),
				})
			}
			continue
		}

		for _, fb := range perChunk[i] {
			fb.ChunkIndex = c.SequenceIndex
			fb.ChunkLabel = c.Label
			feedback = append(feedback, fb)
		}
	}

	if o.logger != nil {
		o.logger.LogInfo(ctx, "analysis completed", map[string]interface{}{
			"chunks":   len(chunks),
			"failed":   len(failures),
			"feedback": len(feedback),
		})
	}

	return feedback, failures
}
