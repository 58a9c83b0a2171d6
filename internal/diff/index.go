package diff

import (
	"github.com/MrSatan/Code-Guardian/internal/domain"
)

// FileIndex holds the validation data for one file: the set of valid
// new-file line numbers, the literal code text per line, and the raw
// hunk texts for feedback enrichment.
type FileIndex struct {
	Lines    map[int]string
	Hunks    []Hunk
	HunkText []string
}

// ValidationIndex answers "is line N of file F part of this diff" in
// O(1) without re-fetching anything from the host. It is built once per
// review run and is read-only afterwards.
type ValidationIndex map[string]FileIndex

// BuildValidationIndex parses every named file segment and collects the
// per-file valid-line sets. Segments without a parseable path are
// skipped: feedback cannot name them, so they are never validatable.
func BuildValidationIndex(files []domain.FileDiff) ValidationIndex {
	index := make(ValidationIndex, len(files))
	for _, fd := range files {
		if fd.Path == "" {
			continue
		}

		parsed := Parse(fd.Content)
		fi := FileIndex{
			Lines:    parsed.LineMap,
			Hunks:    parsed.Hunks,
			HunkText: make([]string, 0, len(parsed.Hunks)),
		}
		for _, h := range parsed.Hunks {
			fi.HunkText = append(fi.HunkText, h.Text())
		}
		index[fd.Path] = fi
	}
	return index
}

// HasFile reports whether the file was part of the diff.
func (vi ValidationIndex) HasFile(path string) bool {
	_, ok := vi[path]
	return ok
}

// HasLine reports whether the given new-file line of the file is an
// added or context line of the diff.
func (vi ValidationIndex) HasLine(path string, line int) bool {
	fi, ok := vi[path]
	if !ok {
		return false
	}
	_, ok = fi.Lines[line]
	return ok
}

// LineText returns the literal code text at the given new-file line,
// or "" and false when the line is not part of the diff.
func (vi ValidationIndex) LineText(path string, line int) (string, bool) {
	fi, ok := vi[path]
	if !ok {
		return "", false
	}
	text, ok := fi.Lines[line]
	return text, ok
}

// HunkFor returns the hunk containing the given new-file line, or nil.
func (vi ValidationIndex) HunkFor(path string, line int) *Hunk {
	fi, ok := vi[path]
	if !ok {
		return nil
	}
	return FindHunkForLine(fi.Hunks, line)
}
