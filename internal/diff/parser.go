package diff

import (
	"strconv"
	"strings"
)

// LineType represents the type of a line in a diff hunk.
type LineType int

const (
	// LineContext represents an unchanged context line (starts with ' ').
	LineContext LineType = iota
	// LineAddition represents an added line (starts with '+').
	LineAddition
	// LineDeletion represents a deleted line (starts with '-').
	LineDeletion
)

// Line represents a single line in a diff hunk.
type Line struct {
	Type     LineType // The type of change
	Content  string   // The line content (without the prefix)
	NewLine  *int     // Line number in new file (nil for deletions)
	Position int      // Position in diff (1-indexed from first @@)
}

// Hunk represents a single @@ hunk in a unified diff.
type Hunk struct {
	Header   string // Raw @@ header line
	OldStart int    // Starting line in old file
	OldLines int    // Number of lines from old file
	NewStart int    // Starting line in new file
	NewLines int    // Number of lines in new file
	EndLine  int    // Last new-file line occupied by this hunk
	Lines    []Line // The lines in this hunk
}

// ParsedSegment is the parsed form of one file's diff segment: its
// hunks in order plus a map from new-file line number to the literal
// code text at that line. Only added and context lines appear in the
// map; removed lines never consume a new-file line number.
type ParsedSegment struct {
	Hunks   []Hunk
	LineMap map[int]string
}

// Parse parses a unified diff segment into hunks and a new-file line map.
// It handles standard git diff output including file headers. Malformed
// hunk headers are skipped and content lines outside any recognized
// header are ignored; parsing never fails on loose input.
func Parse(segment string) ParsedSegment {
	result := ParsedSegment{LineMap: make(map[int]string)}
	if segment == "" {
		return result
	}

	lines := strings.Split(segment, "\n")

	var currentHunk *Hunk
	position := 0
	currentNewLine := 0

	closeHunk := func() {
		if currentHunk == nil {
			return
		}
		currentHunk.EndLine = currentNewLine - 1
		result.Hunks = append(result.Hunks, *currentHunk)
		currentHunk = nil
	}

	for _, line := range lines {
		// Skip empty lines (artifacts of trailing newlines; real empty
		// context lines carry a leading space)
		if line == "" {
			continue
		}

		// Skip file headers (diff --git, index, ---, +++) and mode lines
		if strings.HasPrefix(line, "diff --git") ||
			strings.HasPrefix(line, "index ") ||
			strings.HasPrefix(line, "--- ") ||
			strings.HasPrefix(line, "+++ ") ||
			strings.HasPrefix(line, "old mode") ||
			strings.HasPrefix(line, "new mode") ||
			strings.HasPrefix(line, "new file mode") ||
			strings.HasPrefix(line, "deleted file mode") ||
			strings.HasPrefix(line, "similarity index") ||
			strings.HasPrefix(line, "rename from") ||
			strings.HasPrefix(line, "rename to") {
			continue
		}

		// Skip "\ No newline at end of file" markers
		if strings.HasPrefix(line, "\\ ") {
			continue
		}

		if strings.HasPrefix(line, "@@") {
			closeHunk()

			hunk, ok := parseHunkHeader(line)
			if !ok {
				// Malformed header: content until the next valid
				// header is ignored.
				continue
			}

			currentHunk = &hunk
			currentNewLine = hunk.NewStart
			continue
		}

		// Content found outside any recognized hunk header.
		if currentHunk == nil {
			continue
		}

		position++
		diffLine := Line{Position: position}

		switch line[0] {
		case '+':
			diffLine.Type = LineAddition
			diffLine.Content = line[1:]
			diffLine.NewLine = intPtr(currentNewLine)
			currentNewLine++
		case '-':
			diffLine.Type = LineDeletion
			diffLine.Content = line[1:]
			// Deletions don't have new-side line numbers
			diffLine.NewLine = nil
		case ' ':
			diffLine.Type = LineContext
			diffLine.Content = line[1:]
			diffLine.NewLine = intPtr(currentNewLine)
			currentNewLine++
		default:
			// Treat unknown as context (handles loose input)
			diffLine.Type = LineContext
			diffLine.Content = line
			diffLine.NewLine = intPtr(currentNewLine)
			currentNewLine++
		}

		if diffLine.NewLine != nil {
			result.LineMap[*diffLine.NewLine] = diffLine.Content
		}
		currentHunk.Lines = append(currentHunk.Lines, diffLine)
	}

	closeHunk()

	return result
}

// FindHunkForLine returns the first hunk whose new-file range contains
// the target line, or nil. Used to enrich accepted feedback with hunk
// context; acceptance itself is gated by the ValidationIndex.
func FindHunkForLine(hunks []Hunk, targetLine int) *Hunk {
	for i := range hunks {
		h := &hunks[i]
		if targetLine >= h.NewStart && targetLine <= h.EndLine {
			return h
		}
	}
	return nil
}

// FindPosition returns the diff position for a given new-side line
// number, or nil if the line is not in the segment. Position is
// 1-indexed from the first @@ hunk header, counting content lines only.
func (ps ParsedSegment) FindPosition(newLineNumber int) *int {
	if newLineNumber <= 0 {
		return nil
	}

	for _, hunk := range ps.Hunks {
		for _, line := range hunk.Lines {
			if line.NewLine != nil && *line.NewLine == newLineNumber {
				return intPtr(line.Position)
			}
		}
	}

	return nil
}

// Text reconstructs the raw hunk text: header line followed by the
// content lines with their original +/-/space prefixes.
func (h Hunk) Text() string {
	var sb strings.Builder
	sb.WriteString(h.Header)
	for _, line := range h.Lines {
		sb.WriteByte('\n')
		switch line.Type {
		case LineAddition:
			sb.WriteByte('+')
		case LineDeletion:
			sb.WriteByte('-')
		case LineContext:
			sb.WriteByte(' ')
		}
		sb.WriteString(line.Content)
	}
	return sb.String()
}

// parseHunkHeader parses a hunk header line like
// "@@ -10,7 +10,8 @@ optional context". Returns ok=false when the range
// tokens are missing or unparseable.
func parseHunkHeader(line string) (Hunk, bool) {
	hunk := Hunk{Header: line}

	parts := strings.Split(line, "@@")
	if len(parts) < 3 {
		return hunk, false
	}

	rangeInfo := strings.TrimSpace(parts[1])
	sawOld, sawNew := false, false

	for _, part := range strings.Fields(rangeInfo) {
		switch {
		case strings.HasPrefix(part, "-"):
			start, count, ok := parseRange(strings.TrimPrefix(part, "-"))
			if !ok {
				return hunk, false
			}
			hunk.OldStart = start
			hunk.OldLines = count
			sawOld = true
		case strings.HasPrefix(part, "+"):
			start, count, ok := parseRange(strings.TrimPrefix(part, "+"))
			if !ok {
				return hunk, false
			}
			hunk.NewStart = start
			hunk.NewLines = count
			sawNew = true
		}
	}

	return hunk, sawOld && sawNew
}

// parseRange parses "start,count" or "start" format.
func parseRange(s string) (start, count int, ok bool) {
	var err error
	if idx := strings.Index(s, ","); idx >= 0 {
		start, err = strconv.Atoi(s[:idx])
		if err != nil {
			return 0, 0, false
		}
		count, err = strconv.Atoi(s[idx+1:])
		if err != nil {
			return 0, 0, false
		}
	} else {
		start, err = strconv.Atoi(s)
		if err != nil {
			return 0, 0, false
		}
		count = 1
	}
	return start, count, true
}

func intPtr(n int) *int {
	return &n
}
