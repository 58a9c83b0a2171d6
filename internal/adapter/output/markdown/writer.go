package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/MrSatan/Code-Guardian/internal/usecase/review"
)

type clock func() string

// Writer renders review runs into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown artifact to disk and returns its path.
func (w *Writer) Write(ctx context.Context, artifact review.ReportArtifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.md",
		sanitise(artifact.Repository),
		sanitise(artifact.TargetRef),
		w.now(),
	)
	path := filepath.Join(artifact.OutputDir, filename)

	content := buildContent(artifact)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(artifact review.ReportArtifact) string {
	var builder strings.Builder
	caser := cases.Title(language.English)
	builder.WriteString("# Review Report\n\n")
	builder.WriteString(fmt.Sprintf("- Provider: %s (%s)\n", artifact.Provider, artifact.Model))
	builder.WriteString(fmt.Sprintf("- Base: %s\n", artifact.BaseRef))
	builder.WriteString(fmt.Sprintf("- Target: %s\n", artifact.TargetRef))
	builder.WriteString(fmt.Sprintf("- Chunks: %d analyzed, %d failed\n\n",
		artifact.Summary.ChunksTotal, artifact.Summary.ChunksFailed))

	if len(artifact.Accepted) == 0 {
		builder.WriteString("No comments reported.\n")
	} else {
		builder.WriteString("## Comments\n\n")
		for _, item := range artifact.Accepted {
			builder.WriteString(fmt.Sprintf("### %s:%d\n", item.File, item.Line))
			builder.WriteString(item.Comment)
			builder.WriteString("\n")
			if item.DiffHunk != "" {
				builder.WriteString("\n```diff\n")
				builder.WriteString(item.DiffHunk)
				if !strings.HasSuffix(item.DiffHunk, "\n") {
					builder.WriteString("\n")
				}
				builder.WriteString("```\n")
			}
			builder.WriteString("\n")
		}
	}

	if len(artifact.Rejected) > 0 {
		builder.WriteString("## Rejected\n\n")
		for _, rejection := range artifact.Rejected {
			builder.WriteString(fmt.Sprintf("- %s:%d %s\n",
				rejection.File, rejection.Line, caser.String(rejection.Reason)))
		}
		builder.WriteString("\n")
	}

	if len(artifact.Failures) > 0 {
		builder.WriteString("## Failed Chunks\n\n")
		for _, failure := range artifact.Failures {
			builder.WriteString(fmt.Sprintf("- chunk %d (%s): %v\n",
				failure.ChunkIndex, failure.ChunkLabel, failure.Err))
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
