package http

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

var (
	// Greedy match from the first ``` fence to the LAST one, so JSON
	// containing example code fences still extracts whole.
	jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*([\\s\\S]*)```")
)

// ExtractJSONFromMarkdown extracts JSON from markdown code blocks.
// Returns extracted JSON or the original text if no code block is found
// (the response might be raw JSON already).
func ExtractJSONFromMarkdown(text string) string {
	matches := jsonBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	return strings.TrimSpace(text)
}

// rawFeedback is the loose, untrusted shape the model returns. Field
// presence is never assumed; the validator makes the final call.
type rawFeedback struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Comment string `json:"comment"`
}

// ParseFeedbackResponse parses model output into feedback items. It
// accepts either a top-level JSON array or an object with a "feedback"
// array, with or without a markdown fence. Anything else is a
// malformed-response error, which the orchestrator treats the same as
// a failed call.
func ParseFeedbackResponse(provider, text string) ([]domain.Feedback, error) {
	jsonText := ExtractJSONFromMarkdown(text)

	var raw []rawFeedback
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		var wrapper struct {
			Feedback []rawFeedback `json:"feedback"`
		}
		if err := json.Unmarshal([]byte(jsonText), &wrapper); err != nil || wrapper.Feedback == nil {
			return nil, NewMalformedResponseError(provider, "response is not a feedback list")
		}
		raw = wrapper.Feedback
	}

	items := make([]domain.Feedback, 0, len(raw))
	for _, r := range raw {
		items = append(items, domain.Feedback{
			File:    r.File,
			Line:    r.Line,
			Comment: r.Comment,
		})
	}
	return items, nil
}
