package observability

import (
	"context"

	llmhttp "github.com/MrSatan/Code-Guardian/internal/adapter/llm/http"
	"github.com/MrSatan/Code-Guardian/internal/usecase/analyze"
)

// AnalysisLogger adapts llmhttp.Logger to the analyze.Logger interface so
// the batch orchestrator shares the same structured logging infrastructure
// as the LLM HTTP clients.
type AnalysisLogger struct {
	logger llmhttp.Logger
}

// NewAnalysisLogger creates a new analysis logger adapter.
func NewAnalysisLogger(logger llmhttp.Logger) analyze.Logger {
	return &AnalysisLogger{logger: logger}
}

// LogWarning logs a warning message with structured fields.
func (l *AnalysisLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}

// LogInfo logs an informational message with structured fields.
func (l *AnalysisLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}
