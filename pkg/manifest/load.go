package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads, decodes and validates the manifest at path. Files ending in
// .yaml or .yml are YAML, everything else TOML.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	format := "toml"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = "yaml"
	}
	cfg, err := Decode(b, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses b as format ("toml" or "yaml") and validates the result.
func Decode(b []byte, format string) (Config, error) {
	var cfg Config
	switch format {
	case "toml", "":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	case "yaml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("unknown manifest format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
