package config

// builtinBackends is the out-of-the-box backend table. Config files can
// override any entry by name or disable it.
func builtinBackends() map[string]Backend {
	return map[string]Backend{
		"claude": {
			Kind:         KindJSONLine,
			Command:      "claude",
			Args:         []string{"-p", "--output-format", "stream-json", "--verbose"},
			ModelFlag:    "--model",
			ResumeFlag:   "--resume",
			DefaultModel: "sonnet",
			Decoder:      "claude",
		},
		"codex": {
			Kind:    KindJSONLine,
			Command: "codex",
			Args:    []string{"exec", "--json"},
			Decoder: "codex",
		},
		"gemini": {
			Kind:         KindTextStream,
			Command:      "gemini",
			ModelFlag:    "-m",
			DefaultModel: "gemini-2.5-pro",
			PromptInline: true,
		},
		"qwen": {
			Kind:         KindTextStream,
			Command:      "qwen",
			ModelFlag:    "-m",
			PromptInline: true,
		},
		"claude-acp": {
			Kind:    KindACP,
			Command: "claude-code-acp",
		},
		"gemini-acp": {
			Kind:    KindACP,
			Command: "gemini",
			Args:    []string{"--experimental-acp"},
		},
	}
}
