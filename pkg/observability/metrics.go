package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the Prometheus registry.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

func (c *MetricsConfig) setDefaults() {
	if c.Namespace == "" {
		c.Namespace = "deepresearch"
	}
}

// Metrics is the turn-level Prometheus registry: how many cycles the
// engine has run, how many commands it executed or skipped, and how
// many times the budget warned or was extended.
type Metrics struct {
	registry *prometheus.Registry

	cyclesTotal        prometheus.Counter
	commandsExecuted   prometheus.Counter
	commandsSkipped    prometheus.Counter
	budgetWarnings     prometheus.Counter
	budgetExtensions   prometheus.Counter
	focusTransitions   *prometheus.CounterVec
	activeNodeCyclesCh prometheus.Histogram
}

// NewMetrics builds a Metrics registry, or returns nil if cfg disables
// metrics — callers treat a nil *Metrics as "record nothing".
func NewMetrics(cfg *MetricsConfig) *Metrics {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	cfg.setDefaults()

	reg := prometheus.NewRegistry()
	m := &Metrics{registry: reg}

	m.cyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Name: "engine_cycles_total",
		Help: "Total number of Engine Loop turns run.",
	})
	m.commandsExecuted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Name: "commands_executed_total",
		Help: "Total number of commands successfully executed.",
	})
	m.commandsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Name: "commands_skipped_total",
		Help: "Total number of commands skipped by batch-ordering rules.",
	})
	m.budgetWarnings = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Name: "budget_warnings_total",
		Help: "Total number of times the cycle budget entered its warning window.",
	})
	m.budgetExtensions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Name: "budget_extensions_total",
		Help: "Total number of automatic or operator-approved budget extensions.",
	})
	m.focusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace, Name: "focus_transitions_total",
		Help: "Total number of focus transitions, labeled by kind.",
	}, []string{"kind"})
	m.activeNodeCyclesCh = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: cfg.Namespace, Name: "active_node_cycle_seconds",
		Help:    "Wall-clock time spent on one Engine Loop turn.",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(
		m.cyclesTotal, m.commandsExecuted, m.commandsSkipped,
		m.budgetWarnings, m.budgetExtensions, m.focusTransitions, m.activeNodeCyclesCh,
	)
	return m
}

// RecordCycle records one completed Engine Loop turn.
func (m *Metrics) RecordCycle(commandsExecuted, commandsSkipped int, turnSeconds float64) {
	if m == nil {
		return
	}
	m.cyclesTotal.Inc()
	m.commandsExecuted.Add(float64(commandsExecuted))
	m.commandsSkipped.Add(float64(commandsSkipped))
	m.activeNodeCyclesCh.Observe(turnSeconds)
}

// RecordBudgetWarning records a budget entering its warning window.
func (m *Metrics) RecordBudgetWarning() {
	if m == nil {
		return
	}
	m.budgetWarnings.Inc()
}

// RecordBudgetExtension records an automatic or operator-approved
// budget extension.
func (m *Metrics) RecordBudgetExtension() {
	if m == nil {
		return
	}
	m.budgetExtensions.Inc()
}

// RecordFocusTransition records a focus transition of the given kind.
// The engine loop records every applied transition as "applied".
func (m *Metrics) RecordFocusTransition(kind string) {
	if m == nil {
		return
	}
	m.focusTransitions.WithLabelValues(kind).Inc()
}

// Handler returns an http.Handler exposing the registry for scraping,
// or nil if metrics are disabled.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
