// Package metrics holds the Prometheus collectors for the coupon keeper.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coupon_keeper"

type Metrics struct {
	Scans          prometheus.Counter
	Detections     prometheus.Counter
	Ingested       prometheus.Counter
	IngestSkipped  *prometheus.CounterVec
	StorageErrors  *prometheus.CounterVec
	MonitorRunning prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Scans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Detection scans that ran past the enabled/blacklist gate.",
		}),
		Detections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Candidate codes that passed the sensitivity threshold.",
		}),
		Ingested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_total",
			Help:      "Detected coupons promoted into the store.",
		}),
		IngestSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_skipped_total",
			Help:      "Detected coupons not promoted, by reason.",
		}, []string{"reason"}),
		StorageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_errors_total",
			Help:      "Coupon storage failures, by operation.",
		}, []string{"op"}),
		MonitorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monitor_running",
			Help:      "1 while the detection monitor loop is active.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Scans, m.Detections, m.Ingested, m.IngestSkipped, m.StorageErrors, m.MonitorRunning)
	}
	return m
}

func (m *Metrics) ScanCompleted(detections int) {
	if m == nil {
		return
	}
	m.Scans.Inc()
	m.Detections.Add(float64(detections))
}

func (m *Metrics) CouponIngested() {
	if m == nil {
		return
	}
	m.Ingested.Inc()
}

func (m *Metrics) IngestSkip(reason string) {
	if m == nil {
		return
	}
	m.IngestSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) StorageError(op string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) SetMonitorRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.MonitorRunning.Set(1)
		return
	}
	m.MonitorRunning.Set(0)
}
