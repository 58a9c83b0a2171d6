package validate_test

import (
	"testing"

	"github.com/MrSatan/Code-Guardian/internal/usecase/validate"
)

func TestHeuristicScorer_IdentifierOverlap(t *testing.T) {
	s := validate.NewHeuristicScorer()

	code := "result := computeTotal(orderCount)"
	onTopic := "computeTotal should validate orderCount before summing"
	offTopic := "consider renaming the database connection pool"

	high := s.Score(code, onTopic)
	low := s.Score(code, offTopic)

	if high <= low {
		t.Errorf("on-topic comment (%.2f) should outscore off-topic (%.2f)", high, low)
	}
	if high < 0.5 {
		t.Errorf("comment naming both identifiers should score high, got %.2f", high)
	}
}

func TestHeuristicScorer_StringLiteralWeighsLess(t *testing.T) {
	s := validate.NewHeuristicScorer()

	code := `log.Error("connection refused", attempt)`
	literalOnly := `the message "connection refused" is misleading`

	score := s.Score(code, literalOnly)
	if score <= 0 {
		t.Errorf("literal match should contribute, got %.2f", score)
	}
	if score >= 1 {
		t.Errorf("literal-only match should not saturate, got %.2f", score)
	}
}

func TestHeuristicScorer_KeywordPairs(t *testing.T) {
	s := validate.NewHeuristicScorer()

	// "err" in code maps to "error" vocabulary in the comment.
	score := s.Score("if err != nil {", "the error is swallowed here, and nil is returned")
	if score <= 0 {
		t.Errorf("keyword pairs should contribute, got %.2f", score)
	}
}

func TestHeuristicScorer_NothingScoreable(t *testing.T) {
	s := validate.NewHeuristicScorer()

	// A line with no identifiers, literals, or keywords cannot
	// contradict any comment.
	if got := s.Score("}", "closing brace placement"); got != 1 {
		t.Errorf("unscoreable line should yield 1, got %.2f", got)
	}
}

func TestHeuristicScorer_RangeBounds(t *testing.T) {
	s := validate.NewHeuristicScorer()

	cases := []struct{ code, comment string }{
		{"total := a + b", "total"},
		{"total := alpha + beta", ""},
		{`name := "x"`, "something else entirely"},
	}
	for _, c := range cases {
		got := s.Score(c.code, c.comment)
		if got < 0 || got > 1 {
			t.Errorf("Score(%q, %q) = %.2f outside [0,1]", c.code, c.comment, got)
		}
	}
}
