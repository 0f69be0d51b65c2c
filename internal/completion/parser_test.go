package completion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "block until EOF",
			text: "I refactored the parser.\n\nSUMMARY:\nRewrote the tokenizer.\nAll tests pass.",
			want: "Rewrote the tokenizer.\nAll tests pass.",
		},
		{
			name: "block stops at next label",
			text: "SUMMARY:\nMigrated the schema.\nINSIGHT: db_path = data.db\nTrailing prose.",
			want: "Migrated the schema.",
		},
		{
			name: "inline text after the label",
			text: "SUMMARY: Fixed the race in the watcher.",
			want: "Fixed the race in the watcher.",
		},
		{
			name: "stops at arbitrary caps label",
			text: "SUMMARY:\nDone with part one.\nNEXT_STEPS:\nDo part two.",
			want: "Done with part one.",
		},
		{
			name: "fallback last long paragraph",
			text: "Short.\n\nThis closing paragraph is comfortably longer than fifty characters in total.",
			want: "This closing paragraph is comfortably longer than fifty characters in total.",
		},
		{
			name: "fallback skips short trailing paragraph",
			text: "This opening paragraph is comfortably longer than fifty characters in total.\n\nOk.",
			want: "This opening paragraph is comfortably longer than fifty characters in total.",
		},
		{
			name: "nothing usable",
			text: "Ok.\n\nDone.",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseSummary(tt.text))
		})
	}
}

func TestParseSummary_GreedyMultiParagraph(t *testing.T) {
	t.Parallel()

	text := "SUMMARY:\nFirst paragraph.\n\nSecond paragraph, still part of the summary."
	got := ParseSummary(text)
	assert.True(t, strings.Contains(got, "First paragraph."))
	assert.True(t, strings.Contains(got, "Second paragraph"))
}

func TestExtractInsights(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"INSIGHT: build_cmd = make all",
		"some prose",
		"INSIGHT: a = 1",
		"INSIGHT: b = 2",
		"INSIGHT: a = 3",
	}, "\n")

	got := ExtractInsights(text)
	assert.Equal(t, []Insight{
		{Key: "build_cmd", Value: "make all"},
		{Key: "a", Value: "3"},
		{Key: "b", Value: "2"},
	}, got)
}

func TestExtractInsights_ValueWithEquals(t *testing.T) {
	t.Parallel()

	got := ExtractInsights("INSIGHT: flag = --mode=fast")
	assert.Equal(t, []Insight{{Key: "flag", Value: "--mode=fast"}}, got)
}

func TestExtractInsights_None(t *testing.T) {
	t.Parallel()
	assert.Nil(t, ExtractInsights("no insights here"))
}
