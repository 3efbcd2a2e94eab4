// Package metrics holds the Prometheus collectors of the scraper service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "site_scraper"

// Recorder records extraction and write outcomes. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	Extractions   *prometheus.CounterVec
	Writes        *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	HTTPRequests  *prometheus.CounterVec
}

// NewRecorder creates and registers the collectors on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extraction requests by terminal outcome.",
		}, []string{"outcome"}),
		Writes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bitable_writes_total",
			Help:      "Bitable write attempts by status.",
		}, []string{"status"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time spent retrieving target pages.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 15, 30},
		}, []string{"mode"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
}

// Extraction counts one terminal outcome.
func (r *Recorder) Extraction(outcome string) {
	if r == nil {
		return
	}
	r.Extractions.WithLabelValues(outcome).Inc()
}

// Write counts one write status.
func (r *Recorder) Write(status string) {
	if r == nil {
		return
	}
	r.Writes.WithLabelValues(status).Inc()
}

// Fetch observes a page retrieval.
func (r *Recorder) Fetch(mode string, d time.Duration) {
	if r == nil {
		return
	}
	r.FetchDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// Request counts one served HTTP request.
func (r *Recorder) Request(route, code string) {
	if r == nil {
		return
	}
	r.HTTPRequests.WithLabelValues(route, code).Inc()
}
