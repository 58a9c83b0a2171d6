// Package chunk turns per-file diff segments into a bounded set of
// model-sized chunks: classification, sub-chunking, exclusion filtering,
// and greedy merging of undersized pieces.
package chunk

import (
	"fmt"
	"path"
	"strings"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

// Thresholds configures the per-category split decision table. All
// values have working defaults; see DefaultThresholds.
type Thresholds struct {
	SmallFileBytes int // below this, never split, regardless of category

	DenseFloorBytes int // dense (structured data / lock) files split above this
	DenseChunkLines int

	SourceMaxLines  int // source files split above either bound
	SourceMaxBytes  int
	SourceChunkLines int

	ProseFloorBytes int // prose (docs / markup / config) files split above this
	ProseChunkLines int

	FallbackMaxLines  int // everything else
	FallbackMaxBytes  int
	DefaultChunkLines int
}

// DefaultThresholds returns the tuned defaults. Code is denser in
// meaningful content per line than JSON or markup, so it gets smaller
// windows; these are heuristics and stay configurable.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SmallFileBytes:    15 * 1024,
		DenseFloorBytes:   30 * 1024,
		DenseChunkLines:   150,
		SourceMaxLines:    400,
		SourceMaxBytes:    20 * 1024,
		SourceChunkLines:  120,
		ProseFloorBytes:   25 * 1024,
		ProseChunkLines:   100,
		FallbackMaxLines:  300,
		FallbackMaxBytes:  25 * 1024,
		DefaultChunkLines: 150,
	}
}

// Decision is the outcome of classifying one file segment.
type Decision struct {
	NeedsSplit bool
	Reason     string
	ChunkLines int
}

var denseExtensions = map[string]bool{
	".json": true,
	".lock": true,
	".yaml": true,
	".yml":  true,
	".toml": true,
	".sum":  true,
}

var denseBasenames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Gemfile.lock":      true,
	"Cargo.lock":        true,
	"composer.lock":     true,
	"go.sum":            true,
}

var sourceExtensions = map[string]bool{
	".go":    true,
	".py":    true,
	".js":    true,
	".jsx":   true,
	".ts":    true,
	".tsx":   true,
	".java":  true,
	".c":     true,
	".cc":    true,
	".cpp":   true,
	".h":     true,
	".hpp":   true,
	".rb":    true,
	".rs":    true,
	".php":   true,
	".cs":    true,
	".kt":    true,
	".swift": true,
	".scala": true,
	".sh":    true,
}

var proseExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".rst":      true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".xml":      true,
	".css":      true,
	".ini":      true,
	".cfg":      true,
	".conf":     true,
}

// Classify decides whether a file's diff segment is small enough to
// send whole or must be sub-chunked, and at what window size. The
// decision table is ordered; the first matching rule wins.
func Classify(fd domain.FileDiff, t Thresholds) Decision {
	size := fd.ByteSize()
	lines := fd.LineCount()

	if size < t.SmallFileBytes {
		return Decision{Reason: "below small-file floor"}
	}

	base := path.Base(fd.Path)
	ext := strings.ToLower(path.Ext(fd.Path))

	if denseBasenames[base] || denseExtensions[ext] {
		if size > t.DenseFloorBytes {
			return Decision{
				NeedsSplit: true,
				Reason:     fmt.Sprintf("dense file above %d bytes", t.DenseFloorBytes),
				ChunkLines: t.DenseChunkLines,
			}
		}
		return Decision{Reason: "dense file within floor"}
	}

	if sourceExtensions[ext] {
		if lines > t.SourceMaxLines || size > t.SourceMaxBytes {
			return Decision{
				NeedsSplit: true,
				Reason:     fmt.Sprintf("source file above %d lines or %d bytes", t.SourceMaxLines, t.SourceMaxBytes),
				ChunkLines: t.SourceChunkLines,
			}
		}
		return Decision{Reason: "source file within bounds"}
	}

	if proseExtensions[ext] {
		if size > t.ProseFloorBytes {
			return Decision{
				NeedsSplit: true,
				Reason:     fmt.Sprintf("prose file above %d bytes", t.ProseFloorBytes),
				ChunkLines: t.ProseChunkLines,
			}
		}
		return Decision{Reason: "prose file within floor"}
	}

	if lines > t.FallbackMaxLines || size > t.FallbackMaxBytes {
		return Decision{
			NeedsSplit: true,
			Reason:     fmt.Sprintf("above %d lines or %d bytes", t.FallbackMaxLines, t.FallbackMaxBytes),
			ChunkLines: t.DefaultChunkLines,
		}
	}
	return Decision{Reason: "within fallback bounds"}
}

// SplitIntoSubChunks slices a segment into consecutive windows of
// chunkLines lines (the last window may be shorter). Whitespace-only
// windows are dropped; the remaining windows do not overlap and their
// concatenation reproduces the parent's lines in order.
//
// A window can split a hunk header from its body. Re-parsing such a
// window yields only the hunks whose headers it contains; feedback on
// the disconnected remainder fails validation downstream. That is a
// tolerated approximation, not something to stitch back together here.
func SplitIntoSubChunks(fd domain.FileDiff, chunkLines int) []string {
	if chunkLines <= 0 || fd.Content == "" {
		return nil
	}

	lines := strings.Split(fd.Content, "\n")
	var out []string

	for start := 0; start < len(lines); start += chunkLines {
		end := start + chunkLines
		if end > len(lines) {
			end = len(lines)
		}
		window := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(window) == "" {
			continue
		}
		out = append(out, window)
	}

	return out
}
