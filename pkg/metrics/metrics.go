// Package metrics instruments save store operations with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Layout labels for decoded records
const (
	LayoutCurrent = "current"
	LayoutLegacy  = "legacy"
)

// Metrics holds the Prometheus collectors for a save store.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	recordBytes       *prometheus.HistogramVec
	decodesTotal      *prometheus.CounterVec
	openHandles       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saveslot_operations_total",
				Help: "Total number of save store operations",
			},
			[]string{"operation", "status"},
		),

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "saveslot_operation_duration_seconds",
				Help:    "Save store operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		recordBytes: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "saveslot_record_bytes",
				Help:    "Size of framed records written and read",
				Buckets: prometheus.ExponentialBuckets(64, 4, 10),
			},
			[]string{"operation"},
		),

		decodesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "saveslot_decodes_total",
				Help: "Decoded records by layout",
			},
			[]string{"layout"},
		),

		openHandles: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "saveslot_open_write_handles",
				Help: "Number of per-name write handles currently open",
			},
		),
	}
}

// RecordOperation records the outcome and duration of a store operation
func (m *Metrics) RecordOperation(operation string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordBytes observes the size of a framed record
func (m *Metrics) RecordBytes(operation string, size int) {
	if m == nil {
		return
	}
	m.recordBytes.WithLabelValues(operation).Observe(float64(size))
}

// RecordDecode counts a successful decode by layout
func (m *Metrics) RecordDecode(legacy bool) {
	if m == nil {
		return
	}
	layout := LayoutCurrent
	if legacy {
		layout = LayoutLegacy
	}
	m.decodesTotal.WithLabelValues(layout).Inc()
}

// SetOpenHandles reports the size of the write handle table
func (m *Metrics) SetOpenHandles(n int) {
	if m == nil {
		return
	}
	m.openHandles.Set(float64(n))
}
