// Package metrics records what a run did to its environment: tool command
// invocations, lifecycle operations, reset retry attempts and action results.
//
// Every run owns a private registry. Command-line runs can export it with
// WriteTextfile for a node exporter textfile collector to pick up. All
// methods are safe to call on a nil *Metrics, which records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Command results.
const (
	ResultSuccess      = "success"
	ResultFailed       = "failed"
	ResultConnectivity = "connectivity"
	ResultDryRun       = "dry_run"
	ResultError        = "error"
)

// Metrics holds the collectors for one run.
type Metrics struct {
	registry *prometheus.Registry

	commandsTotal   *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	operationsTotal *prometheus.CounterVec
	resetAttempts   *prometheus.CounterVec
	actionsTotal    *prometheus.CounterVec
}

// New creates a Metrics with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bundletester",
				Subsystem: "command",
				Name:      "invocations_total",
				Help:      "Total number of external command invocations by command and result",
			},
			[]string{"command", "result"},
		),
		commandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bundletester",
				Subsystem: "command",
				Name:      "duration_seconds",
				Help:      "Duration of external command invocations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4min
			},
			[]string{"command"},
		),
		operationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bundletester",
				Subsystem: "lifecycle",
				Name:      "operations_total",
				Help:      "Total number of lifecycle operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		resetAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bundletester",
				Subsystem: "lifecycle",
				Name:      "reset_attempts_total",
				Help:      "Total number of reset loop attempts by loop and outcome",
			},
			[]string{"loop", "outcome"},
		),
		actionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bundletester",
				Subsystem: "action",
				Name:      "results_total",
				Help:      "Total number of fetched action results by status",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		m.commandsTotal,
		m.commandDuration,
		m.operationsTotal,
		m.resetAttempts,
		m.actionsTotal,
	)
	return m
}

// Registry returns the registry holding this run's collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveCommand records one external command invocation.
func (m *Metrics) ObserveCommand(command, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.commandsTotal.WithLabelValues(command, result).Inc()
	if result != ResultDryRun {
		m.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
	}
}

// ObserveOperation records the outcome of a lifecycle operation.
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailed
	}
	m.operationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveResetAttempt records one iteration of a reset loop.
func (m *Metrics) ObserveResetAttempt(loop, outcome string) {
	if m == nil {
		return
	}
	m.resetAttempts.WithLabelValues(loop, outcome).Inc()
}

// ObserveAction records the status of a fetched action.
func (m *Metrics) ObserveAction(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.actionsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile writes the registry in the text exposition format. The file is
// written atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
