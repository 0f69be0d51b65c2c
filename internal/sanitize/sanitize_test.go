package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_StripsANSIColors(t *testing.T) {
	raw := "\x1b[1;32mdone\x1b[0m building"
	assert.Equal(t, "done building", Clean(raw))
}

func TestClean_StripsOSCSequences(t *testing.T) {
	raw := "\x1b]0;window title\x07actual output"
	assert.Equal(t, "actual output", Clean(raw))
}

func TestClean_StripsSpinners(t *testing.T) {
	raw := "⠋ thinking...\nresult: 42"
	got := Clean(raw)
	assert.NotContains(t, got, "⠋")
	assert.Contains(t, got, "result: 42")
}

func TestClean_DropsBoxDrawingLines(t *testing.T) {
	raw := "────────────\nreal content\n│────│"
	assert.Equal(t, "real content", Clean(raw))
}

func TestClean_DropsKeyboardHints(t *testing.T) {
	raw := "esc to interrupt\nthe answer\nctrl+c to quit"
	assert.Equal(t, "the answer", Clean(raw))
}

func TestClean_CarriageReturnOverwrite(t *testing.T) {
	// A spinner redrawing its line; only the final render counts.
	raw := "loading 10%\rloading 50%\rloading 100%"
	assert.Equal(t, "loading 100%", Clean(raw))
}

func TestClean_CollapsesBlankRuns(t *testing.T) {
	raw := "first\n\n\n\nsecond"
	assert.Equal(t, "first\n\nsecond", Clean(raw))
}

func TestClean_EmptyInput(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("\x1b[2J\x1b[H"))
}

func TestClean_PlainTextUntouched(t *testing.T) {
	raw := "func main() {\n\tfmt.Println(\"hi\")\n}"
	assert.Equal(t, raw, Clean(raw))
}
