package diff

import (
	"strings"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

// fileHeaderPrefix marks the start of a per-file segment in git's
// unified diff output.
const fileHeaderPrefix = "diff --git"

// Split partitions a multi-file unified diff into one segment per file.
//
// Lines before the first file header (commit metadata and the like) are
// attached to the first segment; if the input contains no file header at
// all, Split returns nil. Every input line lands in exactly one segment,
// so concatenating the returned contents in order reproduces the input.
//
// The path is extracted from the header's "a/<path> b/<path>" tokens,
// preferring the post-change side. A header whose tokens cannot be
// parsed yields a segment with an empty Path; it is still analyzable
// but cannot be matched by name downstream.
func Split(diffText string) []domain.FileDiff {
	if strings.TrimSpace(diffText) == "" {
		return nil
	}

	lines := strings.Split(diffText, "\n")

	var files []domain.FileDiff
	var current []string
	var currentPath string
	var preamble []string
	started := false

	flush := func() {
		if len(current) == 0 {
			return
		}
		files = append(files, domain.FileDiff{
			Path:    currentPath,
			Content: strings.Join(current, "\n"),
		})
		current = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, fileHeaderPrefix) {
			flush()
			currentPath = parseHeaderPath(line)
			if !started {
				// Attach the preamble to the first segment so no
				// input line is lost.
				current = append(current, preamble...)
				preamble = nil
				started = true
			}
			current = append(current, line)
			continue
		}

		if !started {
			preamble = append(preamble, line)
			continue
		}
		current = append(current, line)
	}
	flush()

	return files
}

// parseHeaderPath extracts the file path from a "diff --git a/x b/x"
// header line. Returns "" when the tokens cannot be parsed.
func parseHeaderPath(header string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(header, fileHeaderPrefix))
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return ""
	}

	// Prefer the b/ side: it names the post-change file, which is the
	// numbering space feedback references.
	last := fields[len(fields)-1]
	if strings.HasPrefix(last, "b/") {
		return strings.TrimPrefix(last, "b/")
	}
	if strings.HasPrefix(fields[0], "a/") {
		return strings.TrimPrefix(fields[0], "a/")
	}
	return ""
}
