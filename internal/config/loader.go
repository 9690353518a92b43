package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from path, or DefaultPath when empty.
// A missing file yields the defaults. The format follows the extension:
// .toml, .json, .yaml or .yml; anything else is tried as each in turn.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	format := formatOf(path)
	if format == "" {
		if format, err = detectFormat(data); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg := DefaultConfig()
	// a [bindings] table replaces the default table instead of merging into it
	if hasBindings(data, format) {
		cfg.Bindings = nil
	}
	if err := decode(data, format, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", strings.ToUpper(format), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatOf(path string) string {
	switch filepath.Ext(path) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

func decode(data []byte, format string, v any) error {
	switch format {
	case "json":
		return json.Unmarshal(data, v)
	case "yaml":
		return yaml.Unmarshal(data, v)
	default:
		_, err := toml.Decode(string(data), v)
		return err
	}
}

func hasBindings(data []byte, format string) bool {
	var probe struct {
		Bindings map[string]string `toml:"bindings" json:"bindings" yaml:"bindings"`
	}
	_ = decode(data, format, &probe)
	return probe.Bindings != nil
}

// detectFormat returns the first of TOML, JSON and YAML that decodes data.
func detectFormat(data []byte) (string, error) {
	for _, format := range []string{"toml", "json", "yaml"} {
		if err := decode(data, format, DefaultConfig()); err == nil {
			return format, nil
		}
	}
	return "", fmt.Errorf("unable to parse config file (tried TOML, JSON, YAML)")
}

// Save writes cfg to path in the format given by its extension, TOML by
// default.
func Save(cfg *Config, path string) error {
	var data []byte
	var err error

	switch filepath.Ext(path) {
	case ".json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(cfg)
	default:
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
