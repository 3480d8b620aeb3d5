package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records run activity per automaton.
type Metrics struct {
	runsStarted  *prometheus.CounterVec
	runsFinished *prometheus.CounterVec
	symbols      *prometheus.CounterVec
	configSize   *prometheus.HistogramVec
	runDuration  *prometheus.HistogramVec
	activeRuns   *prometheus.GaugeVec

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authflow_runs_started_total",
			Help: "Total number of simulation runs started by automaton and mode",
		}, []string{"automaton", "mode"}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authflow_runs_finished_total",
			Help: "Total number of runs that left the running state, by outcome (accepted, rejected, dead, cancelled)",
		}, []string{"automaton", "mode", "outcome"}),
		symbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authflow_symbols_consumed_total",
			Help: "Total number of input symbols consumed by automaton and symbol",
		}, []string{"automaton", "symbol"}),
		configSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authflow_configuration_size",
			Help:    "Number of simultaneously active states after each tick",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 16},
		}, []string{"automaton", "mode"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "authflow_run_duration_seconds",
			Help:    "Wall time between run start and completion or cancellation",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"automaton", "outcome"}),
		activeRuns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "authflow_active_runs",
			Help: "Runs started in this process that have not finished yet",
		}, []string{"automaton"}),
		started: make(map[string]time.Time),
	}
	reg.MustRegister(m.runsStarted, m.runsFinished, m.symbols, m.configSize, m.runDuration, m.activeRuns)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			m.runsStarted.WithLabelValues(e.Automaton, string(e.Mode)).Inc()
			m.activeRuns.WithLabelValues(e.Automaton).Inc()
			m.mu.Lock()
			m.started[e.RunID] = e.Timestamp
			m.mu.Unlock()
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			m.symbols.WithLabelValues(e.Automaton, string(e.Symbol)).Inc()
			m.configSize.WithLabelValues(e.Automaton, string(e.Mode)).Observe(float64(e.Configuration.Len()))
		},
		OnRunComplete: func(ctx context.Context, e *domain.RunEvent) {
			m.finish(e, completionOutcome(e))
		},
		OnRunCancel: func(ctx context.Context, e *domain.RunEvent) {
			m.finish(e, "cancelled")
		},
	}
}

func (m *Metrics) finish(e *domain.RunEvent, outcome string) {
	m.runsFinished.WithLabelValues(e.Automaton, string(e.Mode), outcome).Inc()

	m.mu.Lock()
	start, ok := m.started[e.RunID]
	delete(m.started, e.RunID)
	m.mu.Unlock()

	// Runs resumed from a store were started by another process.
	if ok {
		m.activeRuns.WithLabelValues(e.Automaton).Dec()
		m.runDuration.WithLabelValues(e.Automaton, outcome).Observe(e.Timestamp.Sub(start).Seconds())
	}
}

// completionOutcome classifies a completed run.
func completionOutcome(e *domain.RunEvent) string {
	if e.Configuration.IsEmpty() {
		return "dead"
	}
	if e.Accepted {
		return "accepted"
	}
	return "rejected"
}
