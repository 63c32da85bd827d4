// Package config loads the YAML configuration file that drives one
// deep research run: where its tree lives on disk, which LLM provider
// to call, its initial cycle budget, logging, and rate limiting.
package config

// LLMConfig describes which provider and model to call and how to
// authenticate against it.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "anthropic" or "openai"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`

	// HistoryTokenCeiling, if positive, caps rendered history to roughly
	// this many tokens for Model's encoding, on top of the engine's
	// char-count truncation. Zero disables the ceiling.
	HistoryTokenCeiling int `yaml:"history_token_ceiling,omitempty"`
}

// BudgetConfig describes the initial cycle budget for a run. A zero
// Total with HasLimit false means unlimited.
type BudgetConfig struct {
	Total    int  `yaml:"total"`
	HasLimit bool `yaml:"has_limit"`
}

// LogConfig describes structured-logging setup.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // "simple", "verbose", or any other value for slog's plain text format
}

// RateLimitConfig holds request-rate settings for LLM calls. They are
// loaded and defaulted here; the pkg/llms clients do not read them and
// apply their own fixed per-minute request limit.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// Config is the full on-disk shape of a deep research run's config
// file.
type Config struct {
	ResearchRootDir string          `yaml:"research_root_dir"`
	LLM             LLMConfig       `yaml:"llm"`
	Budget          BudgetConfig    `yaml:"budget"`
	Log             LogConfig       `yaml:"log"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// SetDefaults fills in zero-valued fields with the engine's defaults,
// mirroring the teacher's zero-config philosophy: a missing field
// should still produce a runnable config.
func (c *Config) SetDefaults() {
	if c.ResearchRootDir == "" {
		c.ResearchRootDir = "./research_runs"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "anthropic"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "claude-sonnet-4-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 60
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
}
