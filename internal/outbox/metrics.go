package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks event delivery. Methods are nil-safe.
type Metrics struct {
	publications    *prometheus.CounterVec
	quarantined     *prometheus.CounterVec
	publishDuration *prometheus.HistogramVec
	crawledEvents   *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		publications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "immersion_outbox_publications_total",
			Help: "Event publications by topic and outcome",
		}, []string{"topic", "outcome"}),
		quarantined: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "immersion_outbox_quarantined_total",
			Help: "Events quarantined after exhausting their publications",
		}, []string{"topic"}),
		publishDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "immersion_outbox_publish_duration_seconds",
			Help:    "Time spent calling subscribers for one publication",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"topic"}),
		crawledEvents: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "immersion_outbox_crawled_events",
			Help: "Events fetched by the last crawler pass",
		}, []string{"kind"}),
	}
}

func (m *Metrics) ObservePublication(topic Topic, failed bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.publications.WithLabelValues(string(topic), outcome).Inc()
	m.publishDuration.WithLabelValues(string(topic)).Observe(seconds)
}

func (m *Metrics) IncQuarantined(topic Topic) {
	if m == nil {
		return
	}
	m.quarantined.WithLabelValues(string(topic)).Inc()
}

func (m *Metrics) SetCrawled(kind string, n int) {
	if m == nil {
		return
	}
	m.crawledEvents.WithLabelValues(kind).Set(float64(n))
}
