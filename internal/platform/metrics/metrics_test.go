package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncConventionsAdded()
	m.IncStatusTransition("VALIDATED")
	m.IncStatusTransition("VALIDATED")
	m.IncEmailSent("NEW_CONVENTION_BENEFICIARY_CONFIRMATION", "sent")
	m.AddEmailsFiltered(2)
	m.IncRateLimited("/admin/login")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConventionsAdded))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatusTransitions.WithLabelValues("VALIDATED")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EmailsFiltered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("/admin/login")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncConventionsAdded()
		m.ObserveRequest("GET", "/agencies", "200", 0.1)
		m.IncEmailSent("x", "sent")
		m.IncRateLimited("/agencies")
	})
}
