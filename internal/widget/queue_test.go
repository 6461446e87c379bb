package widget

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

func TestTypingDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), typingDelay(""))
	assert.Equal(t, 150*time.Millisecond, typingDelay("abc"))
	assert.Equal(t, 100*time.Millisecond, typingDelay("👋🎉"), "counts runes, not bytes")
	assert.Equal(t, 2*time.Second, typingDelay(strings.Repeat("x", 41)))
}

func TestDisplayQueueIsFIFO(t *testing.T) {
	q := newDisplayQueue()
	q.push(3)
	q.push(1)
	q.push(2)
	assert.Equal(t, 3, q.len())

	ctx := context.Background()
	for _, want := range []int{3, 1, 2} {
		got, ok := q.next(ctx)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestDisplayQueueNextStopsOnCancel(t *testing.T) {
	q := newDisplayQueue()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := q.next(ctx)
		done <- ok
	}()
	cancel()
	assert.False(t, <-done)
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestRendererMarkup(t *testing.T) {
	r := NewRenderer(false)

	got := r.Markup("**Pending** candidates: *3*\n- Priya\n• Tom\nplain line")
	assert.Equal(t, "Pending candidates: 3\n  • Priya\n  • Tom\nplain line", got)
}

func TestRendererEntry(t *testing.T) {
	r := NewRenderer(false)

	e := Entry{
		Sender:  domain.SenderAssistant,
		Label:   "🚨 Interview soon",
		Content: "Starts in **10** minutes",
		Type:    domain.ParseMessageType("calendar_alert"),
		Metadata: domain.Metadata{Actions: []domain.Action{
			{Label: "View details", URL: "/manager/candidates/c1"},
		}},
	}
	assert.Equal(t, "🚨 Interview soon [calendar_alert]\nStarts in 10 minutes\n  ▸ View details → /manager/candidates/c1", r.Entry(e))

	assert.Equal(t, "[1] 📋 View", r.QuickActions([]domain.QuickAction{{Icon: "📋", Label: "View"}}))
	assert.Empty(t, r.QuickActions(nil))
	assert.Equal(t, "(2) T · S", r.Indicator(Indicator{Badge: 2, Title: "T", Subtitle: "S"}))
}

func TestResponseEmotion(t *testing.T) {
	assert.Equal(t, emotionExcited, responseEmotion("✅ done", domain.TypeText))
	assert.Equal(t, emotionHelpful, responseEmotion("x", domain.TypeHelp))
	assert.Equal(t, emotionThoughtful, responseEmotion("analyzing data", domain.TypeText))
	assert.Equal(t, emotionConcerned, responseEmotion("x", domain.TypeError))
	assert.Equal(t, emotionFriendly, responseEmotion("x", domain.TypeText))
}
