package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadExpandsEnvVarsAndFillsDefaults(t *testing.T) {
	t.Setenv("DEEPRESEARCH_API_KEY", "sk-test-123")

	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
research_root_dir: ./runs
llm:
  provider: anthropic
  model: claude-sonnet-4-5
  api_key: ${DEEPRESEARCH_API_KEY}
budget:
  total: 50
  has_limit: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./runs", cfg.ResearchRootDir)
	assert.Equal(t, "sk-test-123", cfg.LLM.APIKey)
	assert.Equal(t, 50, cfg.Budget.Total)
	assert.True(t, cfg.Budget.HasLimit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadAppliesDefaultWithFallback(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, `
llm:
  api_key: ${UNSET_DEEPRESEARCH_KEY:-fallback-key}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fallback-key", cfg.LLM.APIKey)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "./research_runs", cfg.ResearchRootDir)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
