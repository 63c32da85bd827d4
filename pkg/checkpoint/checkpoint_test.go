package checkpoint

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	state := NewState("run-1", PhasePostLLM).
		WithFocus([]string{"root", "child"}, []string{"root"}, false, "").
		WithBudget(5, 30, true, true)

	data, err := state.Serialize()
	require.NoError(t, err)

	got, err := Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, state.RunID, got.RunID)
	assert.Equal(t, state.ActiveNodePath, got.ActiveNodePath)
	assert.Equal(t, state.BudgetTotal, got.BudgetTotal)
}

func TestManagerSaveLoadClear(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	cfg.SetDefaults()
	enabled := true
	cfg.Enabled = &enabled

	m := NewManager(cfg, filepath.Join(dir, "run-1"))
	state := NewState("run-1", PhaseCommandExecution)

	require.NoError(t, m.Save(context.Background(), state))
	assert.True(t, m.CanRecover())

	loaded, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-1", loaded.RunID)

	require.NoError(t, m.Clear(context.Background()))
	assert.False(t, m.CanRecover())
}

func TestManagerDisabledSaveIsNoOp(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	cfg.SetDefaults()

	m := NewManager(cfg, dir)
	require.NoError(t, m.Save(context.Background(), NewState("run-1", PhasePreLLM)))
	assert.False(t, m.CanRecover())
}

func TestShouldCheckpointAtCycle(t *testing.T) {
	cfg := &Config{Strategy: StrategyInterval, Interval: 5}
	enabled := true
	cfg.Enabled = &enabled

	assert.False(t, cfg.ShouldCheckpointAtCycle(3))
	assert.True(t, cfg.ShouldCheckpointAtCycle(5))
	assert.True(t, cfg.ShouldCheckpointAtCycle(10))
}
