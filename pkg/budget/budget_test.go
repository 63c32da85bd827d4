package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/deepresearch/pkg/research"
)

func TestZeroBudgetTriggersImmediateWarningWithTenCycleBuffer(t *testing.T) {
	active := research.NewRoot("root", "study X")
	c := New(0, true, nil)

	outcome := c.IncrementAndCheck(active)
	assert.False(t, outcome.Failed)
	assert.True(t, c.Warned)
	assert.Equal(t, 10, c.Total)
	assert.Equal(t, 1, c.CyclesUsed)
}

func TestSecondExhaustionPromptsAndFailsOnDecline(t *testing.T) {
	active := research.NewRoot("root", "study X")
	prompted := false
	c := New(0, true, func(used, total int) bool {
		prompted = true
		return false
	})

	c.IncrementAndCheck(active) // first exhaustion: warn + buffer to 10
	for i := 0; i < 9; i++ {
		c.IncrementAndCheck(active)
	}
	outcome := c.IncrementAndCheck(active) // cycles_used now 11 >= total 10, warned already

	require.True(t, prompted)
	assert.True(t, outcome.Failed)
	assert.Equal(t, research.StatusFailed, active.State.ProblemStatus)
}

func TestExtensionGrantedOnAccept(t *testing.T) {
	active := research.NewRoot("root", "study X")
	c := New(0, true, func(used, total int) bool { return true })

	c.IncrementAndCheck(active)
	for i := 0; i < 9; i++ {
		c.IncrementAndCheck(active)
	}
	outcome := c.IncrementAndCheck(active)

	assert.False(t, outcome.Failed)
	assert.Equal(t, 30, c.Total) // 0 -> +10 buffer -> +20 extension
}

func TestNoLimitNeverWarns(t *testing.T) {
	active := research.NewRoot("root", "study X")
	c := New(0, false, nil)
	for i := 0; i < 50; i++ {
		outcome := c.IncrementAndCheck(active)
		assert.False(t, outcome.Failed)
	}
	assert.False(t, c.Warned)
}
