package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's Prometheus instruments. A fresh set is created
// per server so tests can register against isolated registries.
type Metrics struct {
	LayoutDuration prometheus.Histogram
	LayoutDevices  prometheus.Gauge
	RendersTotal   *prometheus.CounterVec
	SnapshotsTotal prometheus.Counter
}

// NewMetrics creates and registers the server metrics on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LayoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "topoviz_layout_duration_seconds",
			Help:    "Time spent computing force-directed layouts.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		LayoutDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "topoviz_layout_devices",
			Help: "Device count of the most recent layout.",
		}),
		RendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "topoviz_renders_total",
			Help: "Completed renders by output format.",
		}, []string{"format"}),
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "topoviz_snapshots_ingested_total",
			Help: "Snapshots accepted via the ingest endpoint.",
		}),
	}
	reg.MustRegister(m.LayoutDuration, m.LayoutDevices, m.RendersTotal, m.SnapshotsTotal)
	return m
}
