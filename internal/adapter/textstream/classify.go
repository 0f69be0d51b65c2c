package textstream

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ProjectAI00/relay/internal/domain"
)

// Substring heuristics for failure classification. These are fragile across
// backend version changes, so they live behind this single function per
// backend family; swap for a structured signal if a backend ever exposes one.
var (
	authTokens = []string{
		"unauthorized",
		"not logged in",
		"not authenticated",
		"authentication",
		"login required",
		"please log in",
		"please login",
		"api key",
		"invalid credentials",
		"credentials",
	}
	rateTokens = []string{
		"rate limit",
		"too many requests",
		"429",
		"quota exceeded",
	}
	overloadTokens = []string{
		"overloaded",
		"service unavailable",
		"503",
		"temporarily unavailable",
		"try again later",
	}
)

// classify buckets a non-zero exit into the error taxonomy using the
// accumulated output. Unmatched failures are process crashes.
func classify(cfg *Config, output string, waitErr error) (domain.ErrorKind, string) {
	lower := strings.ToLower(output)

	if matchesAny(lower, authTokens) || matchesAny(lower, cfg.AuthTokens) {
		return domain.ErrorKindAuthRequired, trimForMessage(output, waitErr)
	}
	if matchesAny(lower, rateTokens) || matchesAny(lower, cfg.RateTokens) {
		return domain.ErrorKindRateLimited, trimForMessage(output, waitErr)
	}
	if matchesAny(lower, overloadTokens) {
		return domain.ErrorKindOverloaded, trimForMessage(output, waitErr)
	}
	return domain.ErrorKindProcessCrash, trimForMessage(output, waitErr)
}

func matchesAny(lower string, tokens []string) bool {
	for _, tok := range tokens {
		if tok != "" && strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}

// trimForMessage bounds the diagnostic carried on the error chunk.
const messageCap = 2000

func trimForMessage(output string, waitErr error) string {
	msg := strings.TrimSpace(output)
	if len(msg) > messageCap {
		// Back off to a rune boundary so the cut never leaves a partial
		// UTF-8 sequence on the chunk.
		cut := messageCap
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "…"
	}
	if msg == "" && waitErr != nil {
		return fmt.Sprintf("backend exited: %v", waitErr)
	}
	return msg
}
