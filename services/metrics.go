package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gymdesk/models"
)

// Metrics holds the dispatch collectors. A nil *Metrics records nothing.
type Metrics struct {
	runs             prometheus.Counter
	runDuration      prometheus.Histogram
	deliveries       *prometheus.CounterVec
	providerAttempts *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	auditFailures    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymdesk_dispatch_runs_total",
			Help: "Fee reminder dispatch runs started.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gymdesk_dispatch_run_duration_seconds",
			Help:    "Wall time of a dispatch run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gymdesk_notification_deliveries_total",
			Help: "Per-member channel outcomes.",
		}, []string{"channel", "status"}),
		providerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gymdesk_sms_provider_attempts_total",
			Help: "SMS gateway calls by provider and result.",
		}, []string{"provider", "result"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gymdesk_sms_provider_duration_seconds",
			Help:    "SMS gateway call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gymdesk_audit_write_failures_total",
			Help: "Notification log records that could not be written.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.runDuration, m.deliveries, m.providerAttempts, m.providerDuration, m.auditFailures)
	}
	return m
}

func (m *Metrics) observeRun(start time.Time) {
	if m == nil {
		return
	}
	m.runs.Inc()
	m.runDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) observeDelivery(channel string, status models.DeliveryStatus) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(channel, string(status)).Inc()
}

func (m *Metrics) observeAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

// instrumentedProvider records attempts and latency around an SMSProvider.
type instrumentedProvider struct {
	SMSProvider
	metrics *Metrics
}

// InstrumentSMS wraps p so every call is counted. It returns p unchanged when
// m is nil.
func InstrumentSMS(p SMSProvider, m *Metrics) SMSProvider {
	if m == nil {
		return p
	}
	return &instrumentedProvider{SMSProvider: p, metrics: m}
}

func (p *instrumentedProvider) Send(ctx context.Context, phone, body string) error {
	start := time.Now()
	err := p.SMSProvider.Send(ctx, phone, body)
	p.metrics.providerDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	p.metrics.providerAttempts.WithLabelValues(p.Name(), result).Inc()
	return err
}
