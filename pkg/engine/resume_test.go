package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/deepresearch/pkg/checkpoint"
	"github.com/kadirpekel/deepresearch/pkg/command"
)

func TestResumeRestoresTreeAndFocus(t *testing.T) {
	dir := t.TempDir()
	reg := command.NewRegistry()
	require.NoError(t, command.RegisterBuiltins(reg))

	enabled := true
	ckpt := &checkpoint.Config{Enabled: &enabled, Strategy: checkpoint.StrategyEvent}

	e, err := New(Config{
		LLM: &scriptedClient{responses: []string{
			"@define_problem\ntitle: Survey renewable energy\ncontent: root goal\n" +
				"@add_subproblem\ntitle: Solar costs\ncontent: Estimate solar LCOE in 2030\n" +
				"@focus_down\ntitle: Solar costs\n",
		}},
		Parser:           command.NewLineParser(),
		CommandRegistry:  reg,
		RunDir:           dir,
		CheckpointConfig: ckpt,
	})
	require.NoError(t, err)

	_, err = e.RunCycle(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Solar costs", e.Active().Title)

	resumed, err := Resume(context.Background(), Config{
		LLM:              &scriptedClient{},
		Parser:           command.NewLineParser(),
		CommandRegistry:  reg,
		RunDir:           dir,
		CheckpointConfig: ckpt,
	})
	require.NoError(t, err)

	assert.Equal(t, "Survey renewable energy", resumed.Root.Title)
	require.Len(t, resumed.Root.Children, 1)
	assert.Equal(t, "Solar costs", resumed.Active().Title)
}
