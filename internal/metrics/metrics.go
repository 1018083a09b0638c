// Package metrics exposes Prometheus counters for document processing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the processing counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	documents *prometheus.CounterVec
	rows      *prometheus.CounterVec
	charts    prometheus.Counter
	duration  prometheus.Histogram
}

// New registers the counters with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		documents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "budgetcharts",
			Name:      "documents_processed_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"status"}),
		rows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "budgetcharts",
			Name:      "rows_extracted_total",
			Help:      "Table rows extracted, by table.",
		}, []string{"table"}),
		charts: f.NewCounter(prometheus.CounterOpts{
			Namespace: "budgetcharts",
			Name:      "charts_rendered_total",
			Help:      "Chart images written.",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "budgetcharts",
			Name:      "document_duration_seconds",
			Help:      "Time to parse and extract one document.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

func (m *Metrics) DocumentDone(ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.documents.WithLabelValues(status).Inc()
	m.duration.Observe(seconds)
}

func (m *Metrics) RowsExtracted(table string, n int) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues(table).Add(float64(n))
}

func (m *Metrics) ChartRendered() {
	if m == nil {
		return
	}
	m.charts.Inc()
}
