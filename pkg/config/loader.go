package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads path, expands ${VAR} / ${VAR:-default} / $VAR references
// against the process environment (after loading .env/.env.local via
// LoadEnvFiles), and unmarshals the result into a Config with defaults
// filled in.
func Load(path string) (*Config, error) {
	if err := LoadEnvFiles(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded := expandEnvVarsInText(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.SetDefaults()
	return &cfg, nil
}

// expandEnvVarsInText applies the same ${VAR}/${VAR:-default}/$VAR
// substitution rules as expandEnvVars, but over a whole YAML document's
// raw text rather than one scalar value, so the YAML parser sees the
// substituted text and coerces types itself.
func expandEnvVarsInText(s string) string {
	return expandEnvVars(s)
}
