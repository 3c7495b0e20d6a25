// Package metrics holds the Prometheus collectors of the monitoring engine.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wallet_monitor"

// Tick outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeFetchFailed = "fetch_failed"
)

var (
	TicksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "Completed polling ticks by task kind and outcome.",
	}, []string{"kind", "outcome"})

	TickDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tick_duration_seconds",
		Help:      "Duration of fetch, diff and evaluate per tick.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	SnapshotWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_writes_total",
		Help:      "Snapshots written to the snapshot store.",
	}, []string{"kind"})

	AlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_total",
		Help:      "Alerts emitted by alert kind and chain.",
	}, []string{"kind", "chain"})

	ActiveTasks = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_tasks",
		Help:      "Registered periodic tasks by kind.",
	}, []string{"kind"})

	AlertsPruned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_pruned_total",
		Help:      "Alerts removed by retention pruning.",
	})

	QuoteRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_requests_total",
		Help:      "Quote source lookups by provider and result.",
	}, []string{"provider", "result"})
)

var registerOnce sync.Once

// MustRegisterMetrics registers every collector with the default registry.
// Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			TicksTotal,
			TickDuration,
			SnapshotWrites,
			AlertsTotal,
			ActiveTasks,
			AlertsPruned,
			QuoteRequests,
		)
	})
}
