package static

import (
	"context"

	"github.com/MrSatan/Code-Guardian/internal/diff"
	"github.com/MrSatan/Code-Guardian/internal/domain"
)

const providerName = "static"

// Provider is a deterministic analyzer used for tests and dry runs: no
// network, no cost. For each file segment in the chunk it emits one
// canned comment on the first added line, so the output always survives
// validation.
type Provider struct{}

// NewProvider constructs a static Provider.
func NewProvider() *Provider {
	return &Provider{}
}

// AnalyzeChunk scans the chunk's own diff text and fabricates feedback
// anchored on real added lines.
func (p *Provider) AnalyzeChunk(ctx context.Context, chunk domain.Chunk) ([]domain.Feedback, error) {
	var items []domain.Feedback

	for _, fd := range diff.Split(chunk.Content) {
		if fd.Path == "" {
			continue
		}
		parsed := diff.Parse(fd.Content)
		if line, ok := firstAddedLine(parsed); ok {
			items = append(items, domain.Feedback{
				File:    fd.Path,
				Line:    line,
				Comment: "Static review note: change acknowledged at this line.",
			})
		}
	}

	return items, nil
}

func firstAddedLine(parsed diff.ParsedSegment) (int, bool) {
	for _, h := range parsed.Hunks {
		for _, l := range h.Lines {
			if l.Type == diff.LineAddition && l.NewLine != nil {
				return *l.NewLine, true
			}
		}
	}
	return 0, false
}
