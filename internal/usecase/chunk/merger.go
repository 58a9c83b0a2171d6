package chunk

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

// Candidate is one mergeable unit entering the merger: a whole file
// diff or one sub-chunk of a file. Path is empty for segments whose
// header could not be parsed; such candidates are never excludable.
type Candidate struct {
	Path    string
	Content string
	Label   string
}

// MergeConfig bounds the greedy bin-packing merge.
type MergeConfig struct {
	OptimalLines int // flush a batch once it reaches this many lines
	MaxLines     int // a batch never exceeds this many lines
	MinLines     int // a trailing batch below this joins the previous chunk when it fits
	BytesPerLine int // derives byte bounds from the line bounds

	// ExcludePatterns are user globs checked against candidate paths,
	// in addition to the built-in pattern set.
	ExcludePatterns []string
}

// DefaultMergeConfig returns the tuned merge bounds.
func DefaultMergeConfig() MergeConfig {
	return MergeConfig{
		OptimalLines: 300,
		MaxLines:     500,
		MinLines:     50,
		BytesPerLine: 60,
	}
}

func (c MergeConfig) optimalBytes() int { return c.OptimalLines * c.BytesPerLine }
func (c MergeConfig) maxBytes() int     { return c.MaxLines * c.BytesPerLine }

// Built-in exclusions: generated artifacts and metadata that waste
// model budget and never produce postable feedback.
var (
	excludedNames = map[string]bool{
		"package-lock.json": true,
		"yarn.lock":         true,
		"pnpm-lock.yaml":    true,
		"Gemfile.lock":      true,
		"Cargo.lock":        true,
		"composer.lock":     true,
		"poetry.lock":       true,
		"go.sum":            true,
		".DS_Store":         true,
		"Thumbs.db":         true,
	}

	excludedPrefixes = []string{
		"dist/",
		"build/",
		"out/",
		"node_modules/",
		"vendor/",
		".git/",
		".idea/",
		".vscode/",
		"coverage/",
	}

	excludedSuffixes = []string{
		".min.js",
		".min.css",
		".map",
		".log",
		".snap",
	}
)

// Excluded reports whether a path matches the built-in exclusion set or
// one of the configured glob patterns. Unknown (empty) paths are never
// excluded: they cannot be matched by name.
func Excluded(filePath string, patterns []string) bool {
	if filePath == "" {
		return false
	}

	if excludedNames[baseName(filePath)] {
		return true
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(filePath, prefix) {
			return true
		}
	}
	for _, suffix := range excludedSuffixes {
		if strings.HasSuffix(filePath, suffix) {
			return true
		}
	}
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, filePath); err == nil && ok {
			return true
		}
	}
	return false
}

func baseName(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// Merge drops excluded candidates, then recombines the rest into as few
// chunks as the bounds allow: a single greedy pass that preserves input
// order. A candidate that alone exceeds the optimal size is emitted
// unmerged; otherwise candidates accumulate until adding one would
// exceed the hard maximum, or the running total reaches the optimal
// threshold. Merging an empty list returns nil; merging one compliant
// candidate returns it unchanged.
func Merge(candidates []Candidate, cfg MergeConfig) []domain.Chunk {
	var chunks []domain.Chunk
	var batch []Candidate
	batchLines, batchBytes := 0, 0

	// Candidates behind the most recently emitted chunk; nil when that
	// chunk is an oversize standalone, which must stay unmerged.
	var lastBatch []Candidate

	flush := func() {
		if len(batch) == 0 {
			return
		}
		chunks = append(chunks, fuse(batch, len(chunks)))
		lastBatch = batch
		batch = nil
		batchLines, batchBytes = 0, 0
	}

	for _, cand := range candidates {
		if Excluded(cand.Path, cfg.ExcludePatterns) {
			continue
		}

		lines := countLines(cand.Content)
		size := len(cand.Content)

		// Oversize candidates go out alone, unmerged.
		if lines > cfg.OptimalLines || size > cfg.optimalBytes() {
			flush()
			chunks = append(chunks, domain.Chunk{
				Content:       cand.Content,
				Label:         cand.Label,
				SequenceIndex: len(chunks),
			})
			lastBatch = nil
			continue
		}

		// Each element after the first costs an extra blank-line joint
		// when the batch is fused; charge it here so the totals match
		// the fused chunk exactly.
		joinLines, joinBytes := 0, 0
		if len(batch) > 0 {
			joinLines, joinBytes = 1, 2
		}

		if len(batch) > 0 &&
			(batchLines+joinLines+lines > cfg.MaxLines || batchBytes+joinBytes+size > cfg.maxBytes()) {
			flush()
			joinLines, joinBytes = 0, 0
		}

		batch = append(batch, cand)
		batchLines += lines + joinLines
		batchBytes += size + joinBytes

		// Greedy: flush as soon as the batch is big enough, without
		// looking ahead for a better-fitting combination.
		if batchLines >= cfg.OptimalLines {
			flush()
		}
	}

	// A trailing batch below the minimum joins the previous fused chunk
	// when the combined size stays within the hard maximum.
	if len(batch) > 0 && batchLines < cfg.MinLines && len(lastBatch) > 0 {
		prev := chunks[len(chunks)-1]
		prevLines := countLines(prev.Content)
		if prevLines+1+batchLines <= cfg.MaxLines && len(prev.Content)+2+batchBytes <= cfg.maxBytes() {
			combined := append(append([]Candidate{}, lastBatch...), batch...)
			chunks[len(chunks)-1] = fuse(combined, prev.SequenceIndex)
			batch = nil
		}
	}

	flush()
	return chunks
}

// fuse turns an accumulated batch into one chunk. A single-element
// batch passes through unchanged; multi-element batches join with a
// blank line and get a synthesized label.
func fuse(batch []Candidate, sequenceIndex int) domain.Chunk {
	if len(batch) == 1 {
		return domain.Chunk{
			Content:       batch[0].Content,
			Label:         batch[0].Label,
			SequenceIndex: sequenceIndex,
		}
	}

	contents := make([]string, 0, len(batch))
	labels := make([]string, 0, len(batch))
	for _, cand := range batch {
		contents = append(contents, cand.Content)
		labels = append(labels, cand.Label)
	}

	return domain.Chunk{
		Content:       strings.Join(contents, "\n\n"),
		Label:         fmt.Sprintf("merged(%d): %s", len(batch), strings.Join(labels, ", ")),
		SequenceIndex: sequenceIndex,
	}
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
