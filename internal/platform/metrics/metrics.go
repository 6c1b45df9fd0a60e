package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application-wide Prometheus metrics.
// Every method is safe to call on a nil *Metrics.
type Metrics struct {
	RequestDuration   *prometheus.HistogramVec
	ConventionsAdded  prometheus.Counter
	StatusTransitions *prometheus.CounterVec
	AgenciesAdded     prometheus.Counter
	EmailsSent        *prometheus.CounterVec
	EmailsFiltered    prometheus.Counter
	RateLimited       *prometheus.CounterVec
}

// New creates and registers all metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "immersion_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		ConventionsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "immersion_conventions_added_total",
			Help: "Total number of conventions created",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "immersion_convention_status_transitions_total",
			Help: "Convention status transitions by target status",
		}, []string{"status"}),
		AgenciesAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "immersion_agencies_added_total",
			Help: "Total number of agencies submitted for review",
		}),
		EmailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "immersion_emails_sent_total",
			Help: "Emails handed to the gateway by email type and outcome",
		}, []string{"type", "outcome"}),
		EmailsFiltered: factory.NewCounter(prometheus.CounterOpts{
			Name: "immersion_email_recipients_filtered_total",
			Help: "Recipients dropped by the email allow list",
		}),
		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "immersion_rate_limited_requests_total",
			Help: "Requests rejected by the per IP rate limit, by path",
		}, []string{"path"}),
	}
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

func (m *Metrics) IncConventionsAdded() {
	if m == nil {
		return
	}
	m.ConventionsAdded.Inc()
}

func (m *Metrics) IncStatusTransition(status string) {
	if m == nil {
		return
	}
	m.StatusTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) IncAgenciesAdded() {
	if m == nil {
		return
	}
	m.AgenciesAdded.Inc()
}

func (m *Metrics) IncEmailSent(emailType, outcome string) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(emailType, outcome).Inc()
}

func (m *Metrics) AddEmailsFiltered(n int) {
	if m == nil || n == 0 {
		return
	}
	m.EmailsFiltered.Add(float64(n))
}

func (m *Metrics) IncRateLimited(path string) {
	if m == nil {
		return
	}
	m.RateLimited.WithLabelValues(path).Inc()
}
