package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Loader loads configuration from TOML files.
type Loader struct {
	projectDir    string // Path to the project's .relay directory
	globalConfDir string // Path to the global config directory (e.g. ~/.config/relay)
}

// NewLoader creates a Loader using the default global config location.
func NewLoader(projectDir string) *Loader {
	return &Loader{
		projectDir:    projectDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a Loader with a custom global config
// directory. Useful for testing.
func NewLoaderWithGlobalDir(projectDir, globalConfDir string) *Loader {
	return &Loader{
		projectDir:    projectDir,
		globalConfDir: globalConfDir,
	}
}

func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "relay")
}

// Load returns the merged configuration. Project config takes precedence
// over global config, which takes precedence over the built-in table.
func (l *Loader) Load() (*Config, error) {
	base := NewDefaultConfig()

	if l.globalConfDir != "" {
		if err := mergeFile(base, filepath.Join(l.globalConfDir, ConfigFileName)); err != nil {
			return nil, err
		}
	}
	if l.projectDir != "" {
		if err := mergeFile(base, filepath.Join(l.projectDir, ConfigFileName)); err != nil {
			return nil, err
		}
	}
	return base, nil
}

// mergeFile overlays one config file onto base. A missing file is not an
// error.
func mergeFile(base *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var overlay Config
	if err := toml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if overlay.DataDir != "" {
		base.DataDir = overlay.DataDir
	}
	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}
	if overlay.MaxConcurrent > 0 {
		base.MaxConcurrent = overlay.MaxConcurrent
	}
	for name, b := range overlay.Backends {
		// An entry without a command tweaks the known backend instead of
		// replacing it, so `disabled = true` alone works.
		if existing, ok := base.Backends[name]; ok && b.Command == "" {
			existing.Disabled = b.Disabled
			if b.DefaultModel != "" {
				existing.DefaultModel = b.DefaultModel
			}
			if len(b.Env) > 0 {
				existing.Env = b.Env
			}
			base.Backends[name] = existing
			continue
		}
		base.Backends[name] = b
	}
	return nil
}

// DefaultDataDir returns where the database and logs live when the config
// does not override it.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ".relay"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "relay")
}
