package openai

import (
	"context"
	"fmt"

	llmhttp "github.com/MrSatan/Code-Guardian/internal/adapter/llm/http"
	"github.com/MrSatan/Code-Guardian/internal/domain"
)

const systemPrompt = `You are a code review assistant. You receive a fragment of a unified diff.
Respond with a JSON array of feedback objects. Each object has:
  "file": the path of the file the comment is about,
  "line": the line number in the post-change version of the file,
  "comment": the review comment.
Only reference lines that are added (+) or unchanged context in the diff.
Respond with the JSON array only.`

// Provider implements the analyzer port on top of the OpenAI client.
type Provider struct {
	client *HTTPClient
	rules  string
}

// NewProvider wires a chunk analyzer. rules are appended to every
// prompt as review instructions; empty is fine.
func NewProvider(client *HTTPClient, rules string) *Provider {
	return &Provider{client: client, rules: rules}
}

// AnalyzeChunk sends one chunk of diff text to the model and parses the
// returned feedback list. A response that is not a feedback list is an
// error; the orchestrator isolates it to this chunk.
func (p *Provider) AnalyzeChunk(ctx context.Context, chunk domain.Chunk) ([]domain.Feedback, error) {
	prompt := buildPrompt(chunk, p.rules)

	resp, err := p.client.Call(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze chunk %d: %w", chunk.SequenceIndex, err)
	}

	return llmhttp.ParseFeedbackResponse(providerName, resp.Text)
}

func buildPrompt(chunk domain.Chunk, rules string) string {
	var prompt string
	if rules != "" {
		prompt = "Review instructions:\n" + rules + "\n\n"
	}
	prompt += fmt.Sprintf("Diff (%s):\n\n%s", chunk.Label, chunk.Content)
	return prompt
}
