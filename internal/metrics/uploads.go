// Package metrics holds domain counters that sit next to the HTTP collectors
// registered by middleware.PrometheusMiddleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"kerneltest/internal/ingest"
)

// UploadMetrics counts upload outcomes per entry point.
type UploadMetrics struct {
	uploads *prometheus.CounterVec
}

// NewUploadMetrics registers kerneltest_uploads_total on reg and pre-creates
// every entry/outcome series so dashboards see zeros instead of gaps.
func NewUploadMetrics(reg prometheus.Registerer) (*UploadMetrics, error) {
	m := &UploadMetrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kerneltest_uploads_total",
				Help: "Uploaded test logs by entry point and outcome.",
			},
			[]string{"entry", "outcome"},
		),
	}
	if err := reg.Register(m.uploads); err != nil {
		return nil, err
	}

	for _, e := range []ingest.EntryPoint{ingest.Interactive, ingest.AnonymousAPI, ingest.Autotest} {
		for _, k := range ingest.Kinds {
			m.uploads.WithLabelValues(e.String(), k.String())
		}
	}
	return m, nil
}

// Observe records one outcome. A nil receiver is a no-op.
func (m *UploadMetrics) Observe(entry ingest.EntryPoint, kind ingest.Kind) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(entry.String(), kind.String()).Inc()
}
