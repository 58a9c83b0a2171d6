package domain_test

import (
	"testing"

	"github.com/MrSatan/Code-Guardian/internal/domain"
)

func TestNewFeedback_DeterministicID(t *testing.T) {
	input := domain.FeedbackInput{
		File:    "app.py",
		Line:    11,
		Comment: "possible nil dereference",
	}

	a := domain.NewFeedback(input)
	b := domain.NewFeedback(input)

	if a.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if a.ID != b.ID {
		t.Errorf("expected identical IDs for identical input, got %s and %s", a.ID, b.ID)
	}
}

func TestNewFeedback_IDChangesWithLine(t *testing.T) {
	a := domain.NewFeedback(domain.FeedbackInput{File: "app.py", Line: 11, Comment: "x"})
	b := domain.NewFeedback(domain.FeedbackInput{File: "app.py", Line: 12, Comment: "x"})

	if a.ID == b.ID {
		t.Error("expected different IDs for different lines")
	}
}

func TestFileDiff_LineCount(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"single line", "one", 1},
		{"three lines", "one\ntwo\nthree", 3},
		{"trailing newline", "one\ntwo\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fd := domain.FileDiff{Content: tt.content}
			if got := fd.LineCount(); got != tt.want {
				t.Errorf("LineCount() = %d, want %d", got, tt.want)
			}
		})
	}
}
