package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Config bundles tracing and metrics setup for one engine run.
type Config struct {
	Tracing TracerConfig  `yaml:"tracing,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
}

// Manager owns the process-wide tracer provider and the turn-level
// Prometheus registry for one engine run's lifetime.
type Manager struct {
	tracerProvider trace.TracerProvider
	metrics        *Metrics
}

// NewManager initializes tracing and metrics from cfg. A nil cfg
// produces a disabled Manager equivalent to NoopManager.
func NewManager(ctx context.Context, cfg *Config) (*Manager, error) {
	if cfg == nil {
		return NoopManager(), nil
	}

	tp, err := InitGlobalTracer(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	if cfg.Tracing.Enabled {
		slog.Info("observability: tracing initialized", "exporter", cfg.Tracing.ExporterType)
	}

	metrics := NewMetrics(&cfg.Metrics)
	if cfg.Metrics.Enabled {
		slog.Info("observability: metrics initialized", "namespace", cfg.Metrics.Namespace)
	}

	return &Manager{tracerProvider: tp, metrics: metrics}, nil
}

// NoopManager returns a Manager with tracing and metrics disabled.
func NoopManager() *Manager {
	return &Manager{}
}

// Tracer returns a named tracer off the Manager's provider, falling
// back to the global one if the Manager itself has none installed.
func (m *Manager) Tracer(name string) trace.Tracer {
	if m == nil || m.tracerProvider == nil {
		return GetTracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// Metrics returns the Manager's metrics registry, or nil if disabled.
func (m *Manager) Metrics() *Metrics {
	if m == nil {
		return nil
	}
	return m.metrics
}
