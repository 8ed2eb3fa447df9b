// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/habit/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to the habit data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/habit)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration.
// Precedence: default <- global <- data directory.
func (l *Loader) Load() (*domain.Config, error) {
	base := domain.NewDefaultConfig()

	if l.globalConfDir != "" {
		global, err := l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		global.applyTo(base)
	}

	if l.dataDir != "" {
		repo, err := l.loadFile(domain.RepoConfigPath(l.dataDir))
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		repo.applyTo(base)
	}

	return base, nil
}

// LoadGlobal returns the defaults overlaid with the global configuration only.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	fc, err := l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
	if err != nil {
		return nil, err
	}
	base := domain.NewDefaultConfig()
	fc.applyTo(base)
	return base, nil
}

// fileConfig holds the values explicitly set in one file.
// Nil fields were absent and leave the lower layer untouched.
type fileConfig struct {
	Strategy  *domain.RolloverStrategy
	Timezone  *string
	Workers   *int
	Backend   *string
	Namespace *string
	Addr      *string
	Interval  *time.Duration
	LogLevel  *string
	Warnings  []string
}

// applyTo overlays the set values onto cfg. A nil receiver is a no-op.
func (fc *fileConfig) applyTo(cfg *domain.Config) {
	if fc == nil {
		return
	}
	if fc.Strategy != nil {
		cfg.Rollover.Strategy = *fc.Strategy
	}
	if fc.Timezone != nil {
		cfg.Rollover.Timezone = *fc.Timezone
	}
	if fc.Workers != nil {
		cfg.Rollover.Workers = *fc.Workers
	}
	if fc.Backend != nil {
		cfg.Store.Backend = *fc.Backend
	}
	if fc.Namespace != nil {
		cfg.Store.Namespace = *fc.Namespace
	}
	if fc.Addr != nil {
		cfg.Server.Addr = *fc.Addr
	}
	if fc.Interval != nil {
		cfg.Server.Interval = *fc.Interval
	}
	if fc.LogLevel != nil {
		cfg.Log.Level = *fc.LogLevel
	}
	cfg.Warnings = append(cfg.Warnings, fc.Warnings...)
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	fc, err := convertRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fc, nil
}

// convertRaw converts the raw TOML map to a fileConfig and collects warnings.
// Known keys with invalid values are errors; unknown keys are warnings.
func convertRaw(raw map[string]any) (*fileConfig, error) {
	res := &fileConfig{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown key: %s", section))
			continue
		}
		switch section {
		case "rollover":
			for k, v := range m {
				switch k {
				case "strategy":
					s, err := stringValue(section, k, v)
					if err != nil {
						return nil, err
					}
					strategy, err := domain.ParseRolloverStrategy(s)
					if err != nil {
						return nil, err
					}
					res.Strategy = &strategy
				case "timezone":
					s, err := stringValue(section, k, v)
					if err != nil {
						return nil, err
					}
					res.Timezone = &s
				case "workers":
					n, ok := v.(int64)
					if !ok || n < 1 {
						return nil, fmt.Errorf("[rollover] workers must be a positive integer, got %v", v)
					}
					workers := int(n)
					res.Workers = &workers
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [rollover]: %s", k))
				}
			}
		case "store":
			for k, v := range m {
				switch k {
				case "backend":
					s, err := stringValue(section, k, v)
					if err != nil {
						return nil, err
					}
					if err := domain.ValidateStoreBackend(s); err != nil {
						return nil, err
					}
					res.Backend = &s
				case "namespace":
					s, err := stringValue(section, k, v)
					if err != nil {
						return nil, err
					}
					res.Namespace = &s
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [store]: %s", k))
				}
			}
		case "server":
			for k, v := range m {
				switch k {
				case "addr":
					s, err := stringValue(section, k, v)
					if err != nil {
						return nil, err
					}
					res.Addr = &s
				case "interval":
					d, err := durationValue(v)
					if err != nil {
						return nil, fmt.Errorf("[server] interval: %w", err)
					}
					res.Interval = &d
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [server]: %s", k))
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					s, err := stringValue(section, k, v)
					if err != nil {
						return nil, err
					}
					res.LogLevel = &s
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res, nil
}

func stringValue(section, key string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("[%s] %s must be a string, got %T", section, key, v)
	}
	return s, nil
}

// durationValue accepts a Go duration string ("1h", "30m") or a bare
// integer number of seconds. Negative values are rejected.
func durationValue(v any) (time.Duration, error) {
	var d time.Duration
	switch x := v.(type) {
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return 0, err
		}
		d = parsed
	case int64:
		d = time.Duration(x) * time.Second
	default:
		return 0, fmt.Errorf("want a duration string, got %T", v)
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative, got %s", d)
	}
	return d, nil
}
