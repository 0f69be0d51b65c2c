// Package sanitize strips terminal control sequences and UI chrome from raw
// subprocess output so only semantic content remains.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	// CSI sequences (colors, cursor movement) and OSC sequences (titles,
	// hyperlinks), plus stray single-character escapes.
	ansiCSI = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)
	ansiOSC = regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)
	ansiEsc = regexp.MustCompile(`\x1b[@-_]`)

	// Spinner glyphs used by CLI progress indicators.
	spinnerGlyphs = regexp.MustCompile(`[\x{2800}-\x{28ff}◐◓◑◒◴◷◶◵⣾⣽⣻⢿⡿⣟⣯⣷]+`)

	// Lines that are pure box-drawing chrome.
	boxDrawingLine = regexp.MustCompile(`^[\s\x{2500}-\x{257f}]+$`)

	// Keyboard hint lines rendered by interactive CLIs.
	keyboardHint = regexp.MustCompile(`(?i)^\s*(press\s+)?(esc|ctrl\+[a-z]|\?|q)\s+(to|for)\s+\w+.*$`)
)

// Clean strips control sequences and UI chrome from a raw output buffer.
// Carriage-return overwrites collapse to the final rendering of the line.
func Clean(raw string) string {
	s := ansiOSC.ReplaceAllString(raw, "")
	s = ansiCSI.ReplaceAllString(s, "")
	s = ansiEsc.ReplaceAllString(s, "")
	s = spinnerGlyphs.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\x08", "")
	s = strings.ReplaceAll(s, "\x07", "")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = lastOverwrite(line)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Keep blank lines between content but drop chrome-only lines
			out = append(out, "")
			continue
		}
		if boxDrawingLine.MatchString(line) || keyboardHint.MatchString(line) {
			continue
		}
		out = append(out, strings.TrimRight(line, " \t"))
	}

	return collapseBlank(strings.Join(out, "\n"))
}

// lastOverwrite resolves in-line carriage returns to the last write, the
// same way a terminal would render a spinner redrawing its line.
func lastOverwrite(line string) string {
	if !strings.Contains(line, "\r") {
		return line
	}
	parts := strings.Split(line, "\r")
	return parts[len(parts)-1]
}

// collapseBlank reduces runs of blank lines to a single blank line and trims
// leading/trailing whitespace.
func collapseBlank(s string) string {
	var b strings.Builder
	blanks := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			blanks++
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
			if blanks > 0 {
				b.WriteString("\n")
			}
		}
		blanks = 0
		b.WriteString(line)
	}
	return b.String()
}
