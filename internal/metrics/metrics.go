// Package metrics holds the Prometheus collectors for the alert pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatcherTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alert_matcher_ticks_total",
			Help: "Total number of matcher ticks run",
		},
	)

	MatcherLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_matcher_load_errors_total",
			Help: "Schedule store loads that failed during a tick",
		},
		[]string{"kind"},
	)

	MatcherSkippedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_matcher_skipped_records_total",
			Help: "Records skipped because their time could not be parsed",
		},
		[]string{"kind"},
	)

	MatcherTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "alert_matcher_tick_duration_seconds",
			Help: "Duration of one matcher tick in seconds",
		},
	)

	AlertsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_emitted_total",
			Help: "Occurrences observed for the first time and queued",
		},
		[]string{"kind"},
	)

	AlertsSuppressed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_suppressed_total",
			Help: "Occurrences discarded as duplicates",
		},
		[]string{"kind"},
	)

	AlertQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_queries_total",
			Help: "Alert check requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	AlertsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alerts_delivered_total",
			Help: "Alerts returned to polling clients",
		},
		[]string{"kind"},
	)

	QueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alert_queue_size",
			Help: "Unexpired alerts held in the retention queue",
		},
	)

	PushSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_push_total",
			Help: "Push publishes by outcome",
		},
		[]string{"outcome"},
	)
)
