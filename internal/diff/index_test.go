package diff_test

import (
	"strings"
	"testing"

	"github.com/MrSatan/Code-Guardian/internal/diff"
)

func buildTestIndex(t *testing.T) diff.ValidationIndex {
	t.Helper()
	files := diff.Split(twoFileDiff)
	if len(files) != 2 {
		t.Fatalf("fixture: expected 2 files, got %d", len(files))
	}
	return diff.BuildValidationIndex(files)
}

func TestValidationIndex_FileMembership(t *testing.T) {
	index := buildTestIndex(t)

	if !index.HasFile("app.py") {
		t.Error("app.py should be in the index")
	}
	if !index.HasFile("README.md") {
		t.Error("README.md should be in the index")
	}
	if index.HasFile("other.py") {
		t.Error("other.py was not part of the diff")
	}
}

func TestValidationIndex_LineMembership(t *testing.T) {
	index := buildTestIndex(t)

	// app.py hunk @@ -10,3 +10,4 @@ with the removal first: valid new
	// lines are 10 (context), 11 and 12 (added).
	for _, line := range []int{10, 11, 12} {
		if !index.HasLine("app.py", line) {
			t.Errorf("app.py line %d should be valid", line)
		}
	}
	for _, line := range []int{9, 13, 0, -1} {
		if index.HasLine("app.py", line) {
			t.Errorf("app.py line %d should not be valid", line)
		}
	}
	if index.HasLine("missing.py", 10) {
		t.Error("lines of unknown files are never valid")
	}
}

func TestValidationIndex_Soundness(t *testing.T) {
	// Every accepted (file, line) must correspond to an added or
	// context line found by a direct re-scan of the raw diff.
	index := buildTestIndex(t)
	files := diff.Split(twoFileDiff)

	for _, fd := range files {
		rescan := make(map[int]bool)
		parsed := diff.Parse(fd.Content)
		for _, h := range parsed.Hunks {
			for _, l := range h.Lines {
				if l.NewLine != nil {
					rescan[*l.NewLine] = true
				}
			}
		}

		fi := index[fd.Path]
		for line := range fi.Lines {
			if !rescan[line] {
				t.Errorf("%s line %d accepted by index but absent from re-scan", fd.Path, line)
			}
		}
		for line := range rescan {
			if !index.HasLine(fd.Path, line) {
				t.Errorf("%s line %d present in re-scan but rejected by index", fd.Path, line)
			}
		}
	}
}

func TestValidationIndex_LineText(t *testing.T) {
	index := buildTestIndex(t)

	text, ok := index.LineText("app.py", 11)
	if !ok {
		t.Fatal("expected line 11 to resolve")
	}
	if text != "    new = compute_safe()" {
		t.Errorf("got %q", text)
	}

	if _, ok := index.LineText("app.py", 9); ok {
		t.Error("line 9 must not resolve")
	}
}

func TestValidationIndex_HunkFor(t *testing.T) {
	index := buildTestIndex(t)

	h := index.HunkFor("app.py", 11)
	if h == nil {
		t.Fatal("expected a hunk for app.py line 11")
	}
	if !strings.HasPrefix(h.Header, "@@ -10,3 +10,4 @@") {
		t.Errorf("unexpected hunk header %q", h.Header)
	}
	if index.HunkFor("app.py", 99) != nil {
		t.Error("line 99 is outside every hunk")
	}
}

func TestBuildValidationIndex_SkipsUnknownSegments(t *testing.T) {
	input := "diff --git\n@@ -1 +1 @@\n-a\n+b"
	index := diff.BuildValidationIndex(diff.Split(input))

	if len(index) != 0 {
		t.Errorf("segments without a path must not be indexed, got %v", index)
	}
}
