// Package metrics provides Prometheus metrics for the assistant API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors of the assistant API.
type Metrics struct {
	// HTTP request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Session metrics
	SessionsCreatedTotal prometheus.Counter
	SessionsExpiredTotal prometheus.Counter
	SessionsActive       prometheus.Gauge

	// Exchange metrics
	MessagesTotal     *prometheus.CounterVec
	QuickActionsTotal *prometheus.CounterVec

	// Poll metrics
	PollsTotal         *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg. Passing a
// fresh prometheus.NewRegistry keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assistant_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "assistant_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),
		SessionsCreatedTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "assistant_sessions_created_total",
				Help: "Total number of chat sessions created",
			},
		),
		SessionsExpiredTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "assistant_sessions_expired_total",
				Help: "Total number of chat sessions removed by cleanup",
			},
		),
		SessionsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "assistant_sessions_active",
				Help: "Sessions present after the last cleanup run",
			},
		),
		MessagesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_messages_total",
				Help: "Transcript messages appended, by sender and message type",
			},
			[]string{"sender", "type"},
		),
		QuickActionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_quick_actions_total",
				Help: "Quick actions invoked",
			},
			[]string{"action"},
		),
		PollsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_polls_total",
				Help: "Reminder and suggestion polls served",
			},
			[]string{"kind", "status"},
		),
		NotificationsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_notifications_total",
				Help: "Notifications returned to widgets",
			},
			[]string{"kind", "urgency"},
		),
	}
}

// RecordRequest records an HTTP request with its status.
func (m *Metrics) RecordRequest(route, method, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordMessage counts one appended transcript message.
func (m *Metrics) RecordMessage(sender, messageType string) {
	m.MessagesTotal.WithLabelValues(sender, messageType).Inc()
}

// RecordPoll counts a poll and the notifications it returned.
func (m *Metrics) RecordPoll(kind, status string, urgencies []string) {
	m.PollsTotal.WithLabelValues(kind, status).Inc()
	for _, u := range urgencies {
		if u == "" {
			u = "none"
		}
		m.NotificationsTotal.WithLabelValues(kind, u).Inc()
	}
}

// RecordCleanup updates session gauges after an expiry run.
func (m *Metrics) RecordCleanup(removed, remaining int) {
	m.SessionsExpiredTotal.Add(float64(removed))
	m.SessionsActive.Set(float64(remaining))
}
