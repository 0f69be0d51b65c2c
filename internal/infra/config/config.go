// Package config loads relay configuration from TOML files. Global config
// lives under the user config dir; a per-project file overrides it.
package config

import "time"

// ConfigFileName is the file looked up in both config locations.
const ConfigFileName = "config.toml"

// BackendKind selects which adapter family runs a backend.
type BackendKind string

const (
	KindTextStream BackendKind = "textstream"
	KindJSONLine   BackendKind = "jsonline"
	KindACP        BackendKind = "acp"
)

// Backend describes one configured backend CLI.
// Fields are ordered to minimize memory padding.
type Backend struct {
	Kind              BackendKind `toml:"kind"`
	Command           string      `toml:"command"`
	Args              []string    `toml:"args"`
	ModelFlag         string      `toml:"model_flag"`
	ResumeFlag        string      `toml:"resume_flag"`
	DefaultModel      string      `toml:"default_model"`
	Decoder           string      `toml:"decoder"` // jsonline only: claude | codex
	Env               []string    `toml:"env"`
	AuthTokens        []string    `toml:"auth_tokens"`
	RateTokens        []string    `toml:"rate_tokens"`
	InactivitySeconds int         `toml:"inactivity_seconds"` // acp only
	PromptInline      bool        `toml:"prompt_inline"`      // textstream only
	Disabled          bool        `toml:"disabled"`
}

// InactivityTimeout returns the configured ACP watchdog duration, zero when
// unset.
func (b Backend) InactivityTimeout() time.Duration {
	return time.Duration(b.InactivitySeconds) * time.Second
}

// Config is the merged relay configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Backends      map[string]Backend `toml:"backends"`
	DataDir       string             `toml:"data_dir"`
	LogLevel      string             `toml:"log_level"`
	MaxConcurrent int                `toml:"max_concurrent"`
}

// NewDefaultConfig returns the built-in configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Backends:      builtinBackends(),
		LogLevel:      "info",
		MaxConcurrent: 3,
	}
}

// EnabledBackends returns the backends that are not disabled.
func (c *Config) EnabledBackends() map[string]Backend {
	out := make(map[string]Backend, len(c.Backends))
	for name, b := range c.Backends {
		if b.Disabled {
			continue
		}
		out[name] = b
	}
	return out
}
