// Package config holds the termsplit configuration: hotkey bindings,
// display, attempt history and logging.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/termsplit/internal/input"
)

// Config is the top-level configuration.
type Config struct {
	// Bindings maps action names (SPLIT, PAUSE, ...) to hardware key
	// identifiers such as "KEY_KP1".
	Bindings map[string]string `toml:"bindings" json:"bindings" yaml:"bindings"`

	Display DisplayConfig `toml:"display" json:"display" yaml:"display"`
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// DisplayConfig controls the live screen.
type DisplayConfig struct {
	// IntervalMs is the live refresh period while a run is active.
	IntervalMs int `toml:"interval_ms" json:"interval_ms" yaml:"interval_ms"`

	// Color enables ANSI colours.
	Color bool `toml:"color" json:"color" yaml:"color"`
}

// StorageConfig controls the attempt history database.
type StorageConfig struct {
	// HistoryPath is the sqlite file; empty means the default location.
	HistoryPath string `toml:"history_path" json:"history_path" yaml:"history_path"`

	// RecordHistory stores every finished or abandoned run.
	RecordHistory bool `toml:"record_history" json:"record_history" yaml:"record_history"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Path is the log file; empty means the default location.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Bindings: map[string]string{
			string(input.Split):   "KEY_KP1",
			string(input.Unsplit): "KEY_KP2",
			string(input.Skip):    "KEY_KP3",
			string(input.Pause):   "KEY_KP4",
			string(input.Stop):    "KEY_KP5",
		},
		Display: DisplayConfig{
			IntervalMs: 30,
			Color:      true,
		},
		Storage: StorageConfig{
			RecordHistory: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Dir returns the termsplit configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "termsplit")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Interval returns the live refresh period.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Display.IntervalMs) * time.Millisecond
}

// KeyBindings returns the binding table in action terms.
func (c *Config) KeyBindings() input.Bindings {
	b := make(input.Bindings, len(c.Bindings))
	for name, key := range c.Bindings {
		b[input.Action(name)] = key
	}
	return b
}
