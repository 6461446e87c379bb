package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRequest(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRequest("/api/chatbot/message", "POST", "200", 15*time.Millisecond)
	m.RecordRequest("/api/chatbot/message", "POST", "200", 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/api/chatbot/message", "POST", "200")))
}

func TestRecordPollCountsUrgencies(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordPoll("reminders", "ok", []string{"high", "medium", ""})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollsTotal.WithLabelValues("reminders", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("reminders", "high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("reminders", "none")))
}

func TestRecordCleanup(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordCleanup(3, 7)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionsExpiredTotal))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.SessionsActive))
}
