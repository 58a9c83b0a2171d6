package observability_test

import (
	"bytes"
	"context"
	"log"
	"os"
	"testing"

	llmhttp "github.com/MrSatan/Code-Guardian/internal/adapter/llm/http"
	"github.com/MrSatan/Code-Guardian/internal/adapter/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalysisLogger(t *testing.T) {
	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	analysisLogger := observability.NewAnalysisLogger(llmLogger)

	require.NotNil(t, analysisLogger)
}

func TestAnalysisLogger_LogWarning(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	analysisLogger := observability.NewAnalysisLogger(llmLogger)

	ctx := context.Background()
	analysisLogger.LogWarning(ctx, "chunk analysis failed", map[string]interface{}{
		"chunkIndex": 2,
		"chunkLabel": "src/app.py",
		"error":      "service unavailable",
	})

	output := buf.String()
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "chunk analysis failed")
	assert.Contains(t, output, "chunkIndex=2")
	assert.Contains(t, output, "chunkLabel=src/app.py")
	assert.Contains(t, output, "error=service unavailable")
}

func TestAnalysisLogger_LogInfo(t *testing.T) {
	// Capture log output
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	llmLogger := llmhttp.NewDefaultLogger(llmhttp.LogLevelInfo, llmhttp.LogFormatHuman, true)
	analysisLogger := observability.NewAnalysisLogger(llmLogger)

	ctx := context.Background()
	analysisLogger.LogInfo(ctx, "analysis completed", map[string]interface{}{
		"chunks":   5,
		"feedback": 12,
	})

	output := buf.String()
	assert.Contains(t, output, "[INFO]")
	assert.Contains(t, output, "analysis completed")
	assert.Contains(t, output, "chunks=5")
	assert.Contains(t, output, "feedback=12")
}
