package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lattice"

// Metrics are the render loop's prometheus collectors. They live on a
// private registry so several apps in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	Passes       prometheus.Counter
	RowsWritten  prometheus.Counter
	RowsSkipped  prometheus.Counter
	RowsCleared  prometheus.Counter
	WriteErrors  prometheus.Counter
	PassDuration prometheus.Histogram
	CellsAlive   prometheus.Gauge
	TasksRunning prometheus.Gauge
	TaskFailures prometheus.Counter
	Lifecycle    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "passes_total",
			Help:      "Total number of completed render passes",
		}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "rows_written_total",
			Help:      "Rows rewritten because they differed from the committed frame",
		}),
		RowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "rows_skipped_total",
			Help:      "Rows skipped because they matched the committed frame",
		}),
		RowsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "rows_cleared_total",
			Help:      "Rows blanked because the new frame was shorter",
		}),
		WriteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "output",
			Name:      "write_errors_total",
			Help:      "Sink write failures",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "pass_duration_seconds",
			Help:      "Render pass duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs to ~200ms
		}),
		CellsAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "cells",
			Help:      "Tree-bound state cells alive after the last pass",
		}),
		TasksRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "tasks_running",
			Help:      "Background tasks currently running",
		}),
		TaskFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "task_failures_total",
			Help:      "Background tasks that returned an error or panicked",
		}),
		Lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "state",
			Name:      "lifecycle_total",
			Help:      "Identity paths that appeared or disappeared",
		}, []string{"transition"}),
	}
	m.registry.MustRegister(
		m.Passes, m.RowsWritten, m.RowsSkipped, m.RowsCleared, m.WriteErrors,
		m.PassDuration, m.CellsAlive, m.TasksRunning, m.TaskFailures, m.Lifecycle,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// PassSample is what one pass reports.
type PassSample struct {
	Duration    time.Duration
	Written     int
	Skipped     int
	Cleared     int
	Cells       int
	Appeared    int
	Disappeared int
}

// ObservePass records a completed pass. A nil receiver is a no-op.
func (m *Metrics) ObservePass(s PassSample) {
	if m == nil {
		return
	}
	m.Passes.Inc()
	m.PassDuration.Observe(s.Duration.Seconds())
	m.RowsWritten.Add(float64(s.Written))
	m.RowsSkipped.Add(float64(s.Skipped))
	m.RowsCleared.Add(float64(s.Cleared))
	m.CellsAlive.Set(float64(s.Cells))
	m.Lifecycle.WithLabelValues("appear").Add(float64(s.Appeared))
	m.Lifecycle.WithLabelValues("disappear").Add(float64(s.Disappeared))
}

// ObserveWriteError counts a sink failure.
func (m *Metrics) ObserveWriteError() {
	if m == nil {
		return
	}
	m.WriteErrors.Inc()
}

// SetTasksRunning updates the running task gauge.
func (m *Metrics) SetTasksRunning(n int) {
	if m == nil {
		return
	}
	m.TasksRunning.Set(float64(n))
}

// ObserveTaskFailure counts a failed task.
func (m *Metrics) ObserveTaskFailure() {
	if m == nil {
		return
	}
	m.TaskFailures.Inc()
}
