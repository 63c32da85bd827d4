package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerDisabledIsNoop(t *testing.T) {
	m, err := NewManager(context.Background(), &Config{})
	require.NoError(t, err)

	assert.NotNil(t, m.Tracer("engine"))
	assert.Nil(t, m.Metrics())

	// Recording against a nil Metrics must never panic.
	m.Metrics().RecordCycle(1, 0, 0.1)
	m.Metrics().RecordBudgetWarning()
	m.Metrics().RecordFocusTransition("focus_down")
}

func TestNewManagerWithMetricsEnabledRegistersCollectors(t *testing.T) {
	m, err := NewManager(context.Background(), &Config{
		Metrics: MetricsConfig{Enabled: true, Namespace: "test"},
	})
	require.NoError(t, err)
	require.NotNil(t, m.Metrics())

	m.Metrics().RecordCycle(2, 1, 0.5)
	m.Metrics().RecordBudgetWarning()
	m.Metrics().RecordFocusTransition("focus_down")

	assert.NotNil(t, m.Metrics().Handler())
}

func TestNoopManagerTracerNeverNil(t *testing.T) {
	m := NoopManager()
	assert.NotNil(t, m.Tracer("engine"))
	assert.Nil(t, m.Metrics())
}
