// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ---- scheduler ----

var TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_monitor_ticks_total",
	Help: "Monitor ticks by outcome (ok, fetch_error, reconcile_error).",
}, []string{"monitor", "result"})

var TickDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "relay_monitor_tick_duration_seconds",
	Help:    "Wall time of one monitor tick, fetch included.",
	Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
}, []string{"monitor"})

var ColdStarts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_cold_starts_total",
	Help: "Ticks that found no cached snapshot and emitted nothing.",
}, []string{"topic"})

// ---- notifications ----

var PublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_publish_total",
	Help: "Managed message publishes by operation (unchanged, created, edited, deleted, failed).",
}, []string{"op"})

var NoticesOpen = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "relay_notices_open",
	Help: "Ephemeral notices not yet removed.",
})

var NoticeTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "relay_notice_transitions_total",
	Help: "Ephemeral notice transitions by phase and outcome.",
}, []string{"phase", "result"})
