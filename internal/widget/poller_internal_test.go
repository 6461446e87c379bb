package widget

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mo-nish/Invensis-Requiter/internal/chatapi"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// reminderAPI hands out one new high urgency reminder per poll.
type reminderAPI struct {
	mu    sync.Mutex
	polls int
}

func (a *reminderAPI) CreateSession(context.Context, chatapi.CreateSessionRequest) (*chatapi.CreateSessionResponse, error) {
	return &chatapi.CreateSessionResponse{Envelope: chatapi.Envelope{Success: true}, SessionID: "s1"}, nil
}

func (a *reminderAPI) UpdatePage(context.Context, string, string) error { return nil }

func (a *reminderAPI) SendMessage(context.Context, chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
	return &chatapi.ExchangeResponse{Envelope: chatapi.Envelope{Success: true}}, nil
}

func (a *reminderAPI) QuickAction(context.Context, chatapi.QuickActionRequest) (*chatapi.ExchangeResponse, error) {
	return &chatapi.ExchangeResponse{Envelope: chatapi.Envelope{Success: true}}, nil
}

func (a *reminderAPI) Reminders(context.Context, chatapi.RemindersRequest) ([]domain.Notification, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.polls++
	return []domain.Notification{{
		Title:       "Interview soon",
		Message:     "starts in 10 minutes",
		Urgency:     domain.UrgencyHigh,
		CandidateID: fmt.Sprintf("c%d", a.polls),
	}}, nil
}

func (a *reminderAPI) Suggestions(context.Context, chatapi.SuggestionsRequest) ([]domain.Notification, error) {
	return nil, nil
}

func TestFiredUrgentTimersAreReleased(t *testing.T) {
	w, err := New(Options{API: &reminderAPI{}, PollInterval: -1, UrgentDelay: 5 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	require.NoError(t, w.Start(context.Background(), "/manager"))

	for range 3 {
		w.Poll(context.Background())
	}

	require.Eventually(t, func() bool { return len(w.Transcript()) == 3 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.timers) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestCloseStopsPendingUrgentTimers(t *testing.T) {
	w, err := New(Options{API: &reminderAPI{}, PollInterval: -1, UrgentDelay: time.Hour})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), "/manager"))

	w.Poll(context.Background())
	w.mu.Lock()
	assert.Len(t, w.timers, 1)
	w.mu.Unlock()

	require.NoError(t, w.Close())
	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Empty(t, w.timers)
}
