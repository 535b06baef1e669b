// Package metrics exposes Prometheus instrumentation for the analytics core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_events_recorded_total",
			Help: "Total number of analytics events appended to session logs",
		},
		[]string{"kind"},
	)

	EventsQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_events_queued_total",
			Help: "Events recorded before their session started and replayed afterwards",
		},
	)

	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_sessions_started_total",
			Help: "Total number of sessions started",
		},
	)

	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_sessions_ended_total",
			Help: "Total number of sessions finalized",
		},
		[]string{"reason"}, // "client", "pagehide", "evicted", "shutdown"
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "folio_active_sessions",
			Help: "Sessions currently held in memory",
		},
	)

	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_persistence_failures_total",
			Help: "Slot reads and writes that failed and were degraded to no-ops",
		},
		[]string{"operation"}, // "save", "load"
	)

	SinkFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "folio_sink_failures_total",
			Help: "External metrics sink deliveries that failed or were rejected by the breaker",
		},
	)

	SignalsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_signals_dropped_total",
			Help: "Browser signals that could not be decoded or had no subscriber",
		},
		[]string{"reason"},
	)

	SnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "folio_snapshot_duration_seconds",
			Help:    "Time to compute an analytics snapshot",
			Buckets: prometheus.DefBuckets,
		},
	)
)
