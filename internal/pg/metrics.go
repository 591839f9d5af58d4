package pg

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anyulbade/pg-gateway-facade/internal/model"
)

const (
	outcomeApproved      = "approved"
	outcomeFailed        = "failed"
	outcomeNotRegistered = "not_registered"
	outcomeUnsupported   = "unsupported"
)

type Metrics struct {
	attempts  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	exhausted prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pg_approval_attempts_total",
			Help: "Payment gateway approval attempts by gateway and outcome.",
		}, []string{"provider", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pg_approval_attempt_duration_seconds",
			Help:    "Latency of payment gateway approval calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pg_approval_exhausted_total",
			Help: "Approvals that failed on every configured gateway.",
		}),
	}
	reg.MustRegister(m.attempts, m.latency, m.exhausted)
	return m
}

func (m *Metrics) attempt(code model.ProviderCode, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(code), outcome).Inc()
}

func (m *Metrics) call(code model.ProviderCode, d time.Duration) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(string(code)).Observe(d.Seconds())
}

func (m *Metrics) exhaust() {
	if m == nil {
		return
	}
	m.exhausted.Inc()
}
