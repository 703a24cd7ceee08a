package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ricirt/hubgateway/internal/channel"
	"github.com/ricirt/hubgateway/internal/domain"
	"github.com/ricirt/hubgateway/internal/webhook"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	MessagesSent     *prometheus.CounterVec
	MessagesFailed   *prometheus.CounterVec
	SendRetries      *prometheus.CounterVec
	SendDuration     *prometheus.HistogramVec
	WebhookEvents    *prometheus.CounterVec
	WebhookRejected  *prometheus.CounterVec
	DispatchFollowUp *prometheus.CounterVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// A custom registry (instead of prometheus.DefaultRegisterer) keeps tests
// isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_messages_sent_total",
			Help: "Total number of messages accepted by a provider.",
		}, []string{"channel"}),

		MessagesFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_messages_failed_total",
			Help: "Total number of sends that failed, by error kind.",
		}, []string{"channel", "kind"}),

		SendRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_send_retries_total",
			Help: "Total number of send attempts that were retried.",
		}, []string{"channel"}),

		SendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hub_send_duration_seconds",
			Help:    "Latency of successful sends including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"channel"}),

		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_webhook_events_total",
			Help: "Total number of normalized inbound webhook events.",
		}, []string{"channel", "event"}),

		WebhookRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_webhook_rejected_total",
			Help: "Total number of rejected webhook deliveries, by reason.",
		}, []string{"reason"}),

		DispatchFollowUp: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hub_dispatch_followup_failures_total",
			Help: "Post-send bookkeeping steps that failed after a successful send.",
		}, []string{"step"}),
	}

	reg.MustRegister(
		m.MessagesSent,
		m.MessagesFailed,
		m.SendRetries,
		m.SendDuration,
		m.WebhookEvents,
		m.WebhookRejected,
		m.DispatchFollowUp,
	)

	return m
}

// SendHooks returns the callbacks expected by channel.Hooks.
// Centralises the prometheus observation calls so the adapters stay
// import-free.
func (m *Metrics) SendHooks() channel.Hooks {
	return channel.Hooks{
		OnSent: func(ch domain.Channel, latency time.Duration) {
			m.MessagesSent.WithLabelValues(string(ch)).Inc()
			m.SendDuration.WithLabelValues(string(ch)).Observe(latency.Seconds())
		},
		OnFailed: func(ch domain.Channel, kind string) {
			m.MessagesFailed.WithLabelValues(string(ch), kind).Inc()
		},
		OnRetry: func(ch domain.Channel) {
			m.SendRetries.WithLabelValues(string(ch)).Inc()
		},
	}
}

// WebhookHooks returns the callbacks expected by webhook.Hooks.
func (m *Metrics) WebhookHooks() webhook.Hooks {
	return webhook.Hooks{
		OnEvent: func(ev domain.WebhookEvent) {
			m.WebhookEvents.WithLabelValues(string(ev.Channel), string(ev.Event)).Inc()
		},
		OnRejected: func(reason string) {
			m.WebhookRejected.WithLabelValues(reason).Inc()
		},
	}
}

// FollowUpFailed counts a bookkeeping step (persist, ticket, notify) that
// failed after the provider accepted a message.
func (m *Metrics) FollowUpFailed(step string) {
	m.DispatchFollowUp.WithLabelValues(step).Inc()
}
