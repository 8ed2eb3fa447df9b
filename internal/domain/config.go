package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Directory and file names for habit.
const (
	AppDirName     = "habit"       // Directory name under XDG config/data homes
	ConfigFileName = "config.toml" // Config file name
)

// Store backend names.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreGit    = "git"
)

// Default configuration values.
const (
	DefaultLogLevel         = "info"
	DefaultStoreBackend     = StoreJSON
	DefaultGitNamespace     = "habit"
	DefaultRolloverWorkers  = 4
	DefaultServerAddr       = "127.0.0.1:8080"
	DefaultRolloverInterval = time.Hour
	DefaultTimezone         = "Local"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Rollover RolloverConfig // [rollover] settings
	Store    StoreConfig    // [store] settings
	Server   ServerConfig   // [server] settings
	Log      LogConfig      // [log] settings
	Warnings []string       // Unknown keys found while loading
}

// RolloverConfig holds settings from the [rollover] section.
type RolloverConfig struct {
	Strategy RolloverStrategy // Missed/completed day policy
	Timezone string           // IANA zone used to derive "today"
	Workers  int              // Concurrent tasks during batch rollover
}

// StoreConfig holds settings from the [store] section.
type StoreConfig struct {
	Backend   string // json | sqlite | git
	Namespace string // Ref namespace for the git backend
}

// ServerConfig holds settings from the [server] section.
type ServerConfig struct {
	Addr     string        // Listen address
	Interval time.Duration // Background rollover interval (0 disables)
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string // Log level: debug, info, warn, error
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Rollover: RolloverConfig{
			Strategy: DefaultRolloverStrategy,
			Timezone: DefaultTimezone,
			Workers:  DefaultRolloverWorkers,
		},
		Store: StoreConfig{
			Backend:   DefaultStoreBackend,
			Namespace: DefaultGitNamespace,
		},
		Server: ServerConfig{
			Addr:     DefaultServerAddr,
			Interval: DefaultRolloverInterval,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// Location resolves the configured timezone. "Local" and "" use time.Local.
func (c RolloverConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ValidateStoreBackend reports ErrInvalidStore for unknown backend names.
func ValidateStoreBackend(name string) error {
	switch name {
	case StoreJSON, StoreSQLite, StoreGit:
		return nil
	}
	return fmt.Errorf("%w: %q (want json, sqlite or git)", ErrInvalidStore, name)
}

// templateData holds values substituted into the config template.
type templateData struct {
	Strategy  string
	Timezone  string
	Backend   string
	Namespace string
	Addr      string
	Interval  string
	LogLevel  string
	Workers   int
}

// RenderConfigTemplate renders the commented config file written by `habit config init`.
func RenderConfigTemplate(cfg *Config) string {
	data := templateData{
		Strategy:  cfg.Rollover.Strategy.Name(),
		Timezone:  cfg.Rollover.Timezone,
		Workers:   cfg.Rollover.Workers,
		Backend:   cfg.Store.Backend,
		Namespace: cfg.Store.Namespace,
		Addr:      cfg.Server.Addr,
		Interval:  cfg.Server.Interval.String(),
		LogLevel:  cfg.Log.Level,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}

// GlobalConfigDir returns the global habit config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// DefaultDataDir returns the data directory under dataHome
// (typically XDG_DATA_HOME or ~/.local/share).
func DefaultDataDir(dataHome string) string {
	return filepath.Join(dataHome, AppDirName)
}
