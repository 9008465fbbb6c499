package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics stores Prometheus collectors used across the service.
type Metrics struct {
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	CacheLookups    *prometheus.CounterVec
	Submissions     *prometheus.CounterVec
	Uploads         *prometheus.CounterVec
	WANotifications *prometheus.CounterVec
	Errors          *prometheus.CounterVec
}

var (
	regOnce         sync.Once
	metricsInstance *Metrics
)

// Registry builds and registers the metrics singleton with optional namespace.
func Registry(namespace string) *Metrics {
	regOnce.Do(func() {
		metricsInstance = &Metrics{
			HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route, method and status.",
			}, []string{"route", "method", "status"}),
			HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Latency distribution for HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route", "method"}),
			CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Query cache lookups by key family and result.",
			}, []string{"family", "result"}),
			Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "form_submissions_total",
				Help:      "Public form submissions by form and outcome.",
			}, []string{"form", "outcome"}),
			Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "image_uploads_total",
				Help:      "Image uploads by outcome.",
			}, []string{"outcome"}),
			WANotifications: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wa_notifications_total",
				Help:      "WhatsApp notifications sent by outcome.",
			}, []string{"outcome"}),
			Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total errors grouped by component.",
			}, []string{"component"}),
		}

		prometheus.MustRegister(
			metricsInstance.HTTPRequests,
			metricsInstance.HTTPLatency,
			metricsInstance.CacheLookups,
			metricsInstance.Submissions,
			metricsInstance.Uploads,
			metricsInstance.WANotifications,
			metricsInstance.Errors,
		)
	})
	return metricsInstance
}

// Error increments the error counter for component. Safe on a nil receiver.
func (m *Metrics) Error(component string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(component).Inc()
}

// Submission counts a public form submission outcome.
func (m *Metrics) Submission(form, outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(form, outcome).Inc()
}

// Upload counts an image upload outcome.
func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(outcome).Inc()
}

// WANotification counts a WhatsApp notification outcome.
func (m *Metrics) WANotification(outcome string) {
	if m == nil {
		return
	}
	m.WANotifications.WithLabelValues(outcome).Inc()
}
