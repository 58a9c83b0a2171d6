// Package validate gates model feedback against the diff's validation
// index before any side effect is allowed.
package validate

import (
	"fmt"
	"strings"

	"github.com/MrSatan/Code-Guardian/internal/diff"
	"github.com/MrSatan/Code-Guardian/internal/domain"
)

// Rejection reasons surfaced to the caller. Every rejected item retains
// file, line, and reason so a complete per-run summary can be logged.
const (
	ReasonMissingFile    = "malformed: missing file"
	ReasonMissingComment = "malformed: missing comment"
	ReasonInvalidLine    = "malformed: non-positive line"
	ReasonUnknownFile    = "file not part of the diff"
	ReasonUnknownLine    = "line not part of the diff"
	ReasonLowRelevance   = "comment not relevant to the code at that line"
)

// Options configures validation. The zero value checks structure and
// line membership only.
type Options struct {
	// RelevanceEnabled turns on the textual-overlap check between the
	// comment and the code at the referenced line.
	RelevanceEnabled bool
	// MinRelevance is the score below which a positionally valid item
	// is still rejected. Ignored unless RelevanceEnabled.
	MinRelevance float64
	// Scorer computes the relevance score. Defaults to the heuristic
	// scorer when nil.
	Scorer Scorer
}

// Report is the validator's outcome: accepted items in input order plus
// every rejection with its reason. Rejections are reported, never
// silently dropped.
type Report struct {
	Accepted []domain.Feedback
	Rejected []domain.Rejection
}

// Validate checks each feedback item against the validation index.
// Structural checks run first, then file and line membership, then the
// optional relevance heuristic. Accepted items pass through unchanged
// except for attachment of hunk context when available.
func Validate(items []domain.Feedback, index diff.ValidationIndex, opts Options) Report {
	scorer := opts.Scorer
	if scorer == nil {
		scorer = NewHeuristicScorer()
	}

	var report Report
	for _, item := range items {
		if reason, ok := check(item, index, scorer, opts); !ok {
			report.Rejected = append(report.Rejected, domain.Rejection{
				File:   item.File,
				Line:   item.Line,
				Reason: reason,
			})
			continue
		}

		if item.ID == "" {
			item.ID = domain.NewFeedback(domain.FeedbackInput{
				File:    item.File,
				Line:    item.Line,
				Comment: item.Comment,
			}).ID
		}
		if hunk := index.HunkFor(item.File, item.Line); hunk != nil {
			item.DiffHunk = hunk.Text()
		}
		report.Accepted = append(report.Accepted, item)
	}
	return report
}

func check(item domain.Feedback, index diff.ValidationIndex, scorer Scorer, opts Options) (string, bool) {
	if strings.TrimSpace(item.File) == "" {
		return ReasonMissingFile, false
	}
	if strings.TrimSpace(item.Comment) == "" {
		return ReasonMissingComment, false
	}
	if item.Line <= 0 {
		return ReasonInvalidLine, false
	}

	if !index.HasFile(item.File) {
		return ReasonUnknownFile, false
	}
	code, ok := index.LineText(item.File, item.Line)
	if !ok {
		return ReasonUnknownLine, false
	}

	if opts.RelevanceEnabled {
		if score := scorer.Score(code, item.Comment); score < opts.MinRelevance {
			return fmt.Sprintf("%s (score %.2f below %.2f)", ReasonLowRelevance, score, opts.MinRelevance), false
		}
	}

	return "", true
}
