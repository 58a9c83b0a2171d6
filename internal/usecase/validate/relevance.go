package validate

import (
	"regexp"
	"strings"
)

// Scorer measures textual overlap between a line of code and a review
// comment about it. Implementations return a score in [0, 1]; higher
// means more plausible. The scorer is pluggable so it can be swapped or
// disabled without touching the validator's control flow.
type Scorer interface {
	Score(code, comment string) float64
}

var (
	identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]{2,}`)
	stringLiteral     = regexp.MustCompile(`"[^"]+"|'[^']+'` + "|`[^`]+`")
)

// keywordPairs map code tokens to comment vocabulary that commonly
// refers to them. Matching a pair is weak evidence of relevance.
var keywordPairs = map[string][]string{
	"nil":    {"nil", "null", "none"},
	"err":    {"error", "err", "failure"},
	"return": {"return", "returns", "returned"},
	"func":   {"function", "method", "func"},
	"for":    {"loop", "iteration", "iterate"},
	"if":     {"condition", "branch", "check"},
	"go":     {"goroutine", "concurrent", "concurrency"},
	"defer":  {"defer", "cleanup", "close"},
}

// HeuristicScorer scores by weighted token overlap: identifiers from
// the code weigh highest, quoted string literals and keyword pairs
// lower. This is explicitly approximate; it guards against comments
// that are positionally correct but content-hallucinated.
type HeuristicScorer struct {
	IdentifierWeight float64
	LiteralWeight    float64
	KeywordWeight    float64
}

// NewHeuristicScorer returns the default-weighted scorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{
		IdentifierWeight: 1.0,
		LiteralWeight:    0.5,
		KeywordWeight:    0.25,
	}
}

// Score returns matched weight over total weight for the tokens found
// in the code line. A line with nothing scoreable (no identifiers,
// literals, or known keywords) yields 1: there is nothing to contradict
// the comment.
func (s *HeuristicScorer) Score(code, comment string) float64 {
	commentLower := strings.ToLower(comment)

	total := 0.0
	matched := 0.0

	seen := map[string]bool{}
	for _, ident := range identifierPattern.FindAllString(code, -1) {
		key := strings.ToLower(ident)
		if seen[key] {
			continue
		}
		seen[key] = true
		total += s.IdentifierWeight
		if strings.Contains(commentLower, key) {
			matched += s.IdentifierWeight
		}
	}

	for _, lit := range stringLiteral.FindAllString(code, -1) {
		inner := strings.ToLower(strings.Trim(lit, "\"'`"))
		if inner == "" {
			continue
		}
		total += s.LiteralWeight
		if strings.Contains(commentLower, inner) {
			matched += s.LiteralWeight
		}
	}

	codeLower := strings.ToLower(code)
	for token, vocabulary := range keywordPairs {
		if !containsWord(codeLower, token) {
			continue
		}
		total += s.KeywordWeight
		for _, word := range vocabulary {
			if strings.Contains(commentLower, word) {
				matched += s.KeywordWeight
				break
			}
		}
	}

	if total == 0 {
		return 1
	}
	return matched / total
}

// containsWord reports whether token appears in text bounded by
// non-identifier characters.
func containsWord(text, token string) bool {
	idx := 0
	for {
		found := strings.Index(text[idx:], token)
		if found < 0 {
			return false
		}
		start := idx + found
		end := start + len(token)
		beforeOK := start == 0 || !isIdentChar(text[start-1])
		afterOK := end == len(text) || !isIdentChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isIdentChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
