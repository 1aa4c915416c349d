package gemini

import (
	"errors"
	"testing"

	"github.com/spigell/mock-interviewer/internal/ai"
)

func TestParseScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{name: "plain integer", raw: "7", want: 7},
		{name: "plain float with spaces", raw: "  6.5\n", want: 6.5},
		{name: "out of range is returned as is", raw: "12", want: 12},
		{name: "fraction", raw: "8/10", want: 8},
		{name: "labeled", raw: "Score: 9.", want: 9},
		{name: "code block json", raw: "```json\n{\"score\": \"4\"}\n```", want: 4},
		{name: "json number", raw: `{"score": 3, "reason": "vague"}`, want: 3},
		{name: "json without score", raw: `{"reason": "vague"}`, wantErr: true},
		{name: "prose", raw: "Pretty good answer", wantErr: true},
		{name: "nan", raw: "NaN", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseScore(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ai.ErrUnparsableScore) {
					t.Fatalf("expected ErrUnparsableScore, got %v (score %v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseQuestionList(t *testing.T) {
	t.Parallel()

	got := parseQuestionList("```\n1) First?\n2. Second?\n\n   \n• Third?\n```")
	want := []string{"First?", "Second?", "Third?"}

	if len(got) != len(want) {
		t.Fatalf("expected %d questions, got %d: %q", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("question %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestExtractJSONHandlesCodeBlock(t *testing.T) {
	t.Parallel()

	if got := extractJSON("```json\n{\"score\": 1}\n```"); got != `{"score": 1}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}
