// Package completion extracts structured results from a backend's final
// reply: the task summary and any recorded insights.
package completion

import (
	"regexp"
	"strings"
)

const fallbackMinLength = 50

var (
	labelRe   = regexp.MustCompile(`^[A-Z][A-Z_]*:`)
	insightRe = regexp.MustCompile(`(?m)^INSIGHT:\s*(.+?)\s*=\s*(.+)$`)
)

// Insight is one key/value fact recorded by the backend.
type Insight struct {
	Key   string
	Value string
}

// ParseSummary extracts the task summary from reply text. A SUMMARY: block
// runs greedily until the next ALL-CAPS label line or end of input. Without
// one, the last paragraph longer than 50 characters is used.
func ParseSummary(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "SUMMARY:") {
			continue
		}
		var block []string
		if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "SUMMARY:")); rest != "" {
			block = append(block, rest)
		}
		for _, next := range lines[i+1:] {
			nt := strings.TrimSpace(next)
			if labelRe.MatchString(nt) {
				break
			}
			block = append(block, next)
		}
		return strings.TrimSpace(strings.Join(block, "\n"))
	}
	return fallbackSummary(text)
}

// fallbackSummary returns the last paragraph longer than the minimum, so a
// reply without an explicit block still yields something useful.
func fallbackSummary(text string) string {
	paragraphs := strings.Split(text, "\n\n")
	for i := len(paragraphs) - 1; i >= 0; i-- {
		p := strings.TrimSpace(paragraphs[i])
		if len(p) > fallbackMinLength {
			return p
		}
	}
	return ""
}

// ExtractInsights collects INSIGHT: key = value lines in order. A repeated
// key keeps its first position but takes the last value.
func ExtractInsights(text string) []Insight {
	matches := insightRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	index := make(map[string]int)
	var out []Insight
	for _, m := range matches {
		key := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		if key == "" || value == "" {
			continue
		}
		if i, ok := index[key]; ok {
			out[i].Value = value
			continue
		}
		index[key] = len(out)
		out = append(out, Insight{Key: key, Value: value})
	}
	return out
}
