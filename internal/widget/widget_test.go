package widget_test

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mo-nish/Invensis-Requiter/internal/chatapi"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/widget"
)

// ─────────────────────────────────────────
// Fake API
// ─────────────────────────────────────────

type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	pages []string

	createResp    *chatapi.CreateSessionResponse
	createErr     error
	sendFn        func(chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error)
	actionFn      func(chatapi.QuickActionRequest) (*chatapi.ExchangeResponse, error)
	remindersFn   func() ([]domain.Notification, error)
	suggestionsFn func(chatapi.SuggestionsRequest) ([]domain.Notification, error)
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		createResp: &chatapi.CreateSessionResponse{
			Envelope:       chatapi.Envelope{Success: true},
			SessionID:      "abc123",
			UserRole:       "hr",
			UserName:       "Sarah",
			WelcomeMessage: "Welcome!",
			QuickActions:   []domain.QuickAction{{Icon: "📋", Label: "View Candidates", Action: "view_candidates"}},
		},
	}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) pushedPages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.pages...)
}

func (f *fakeAPI) CreateSession(ctx context.Context, req chatapi.CreateSessionRequest) (*chatapi.CreateSessionResponse, error) {
	f.record("create")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createResp, nil
}

func (f *fakeAPI) UpdatePage(ctx context.Context, sessionID, page string) error {
	f.record("page")
	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, req chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
	f.record("send")
	if f.sendFn != nil {
		return f.sendFn(req)
	}
	return reply("Here you go", nil), nil
}

func (f *fakeAPI) QuickAction(ctx context.Context, req chatapi.QuickActionRequest) (*chatapi.ExchangeResponse, error) {
	f.record("action")
	if f.actionFn != nil {
		return f.actionFn(req)
	}
	return reply("Done", nil), nil
}

func (f *fakeAPI) Reminders(ctx context.Context, req chatapi.RemindersRequest) ([]domain.Notification, error) {
	f.record("reminders")
	if f.remindersFn != nil {
		return f.remindersFn()
	}
	return nil, nil
}

func (f *fakeAPI) Suggestions(ctx context.Context, req chatapi.SuggestionsRequest) ([]domain.Notification, error) {
	f.record("suggestions")
	if f.suggestionsFn != nil {
		return f.suggestionsFn(req)
	}
	return nil, nil
}

func reply(text string, actions []domain.QuickAction) *chatapi.ExchangeResponse {
	return &chatapi.ExchangeResponse{
		Envelope:     chatapi.Envelope{Success: true},
		Response:     text,
		MessageType:  domain.TypeText,
		QuickActions: actions,
		SessionID:    "abc123",
	}
}

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newWidget(t *testing.T, api widget.API, mutate func(*widget.Options)) *widget.Widget {
	t.Helper()
	opts := widget.Options{
		API:          api,
		PollInterval: -1,
		Sleep:        noSleep,
	}
	if mutate != nil {
		mutate(&opts)
	}
	w, err := widget.New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func startedWidget(t *testing.T, api *fakeAPI, mutate func(*widget.Options)) *widget.Widget {
	t.Helper()
	w := newWidget(t, api, mutate)
	require.NoError(t, w.Start(context.Background(), "/hr/dashboard"))
	return w
}

func waitRevealed(t *testing.T, w *widget.Widget, n int) []widget.Entry {
	t.Helper()
	require.Eventually(t, func() bool {
		tr := w.Transcript()
		if len(tr) != n {
			return false
		}
		for _, e := range tr {
			if !e.Visible {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond)
	return w.Transcript()
}

// ─────────────────────────────────────────
// Session lifecycle
// ─────────────────────────────────────────

func TestNewRequiresAPI(t *testing.T) {
	_, err := widget.New(widget.Options{})
	assert.Error(t, err)
}

func TestNothingIsSentBeforeStart(t *testing.T) {
	api := newFakeAPI()
	w := newWidget(t, api, nil)
	ctx := context.Background()

	assert.ErrorIs(t, w.Send(ctx, "hello"), widget.ErrNoSession)
	assert.ErrorIs(t, w.InvokeQuickAction(ctx, "view_candidates"), widget.ErrNoSession)
	require.NoError(t, w.SetPage("/hr/candidates"))
	require.NoError(t, w.Open())
	w.Poll(ctx)

	assert.Empty(t, api.callLog())
	assert.Equal(t, widget.StateNew, w.State())

	require.NoError(t, w.Start(ctx, "/hr/candidates"))
	require.NoError(t, w.Send(ctx, "hello"))

	calls := api.callLog()
	require.NotEmpty(t, calls)
	assert.Equal(t, "create", calls[0])
}

func TestStartFailureLeavesWidgetUnavailable(t *testing.T) {
	api := newFakeAPI()
	api.createErr = &widget.TransportError{Op: "create session", Err: errors.New("connection refused")}
	w := newWidget(t, api, nil)
	ctx := context.Background()

	err := w.Start(ctx, "/")
	require.Error(t, err)
	assert.ErrorIs(t, err, widget.ErrTransport)
	assert.Equal(t, widget.StateUnavailable, w.State())

	assert.ErrorIs(t, w.Send(ctx, "hi"), widget.ErrNoSession)
	assert.Equal(t, 0, api.count("send"))

	api.createErr = nil
	require.NoError(t, w.Start(ctx, "/"))
	assert.Equal(t, widget.StateReady, w.State())
	assert.ErrorIs(t, w.Start(ctx, "/"), widget.ErrAlreadyStarted)
}

func TestStartShowsWelcomeAndQuickActions(t *testing.T) {
	api := newFakeAPI()
	w := startedWidget(t, api, nil)

	tr := w.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, "Welcome!", tr[0].Content)
	assert.Equal(t, domain.TypeWelcome, tr[0].Type)
	assert.True(t, tr[0].Visible)
	assert.Equal(t, "abc123", w.SessionID())
	assert.Equal(t, api.createResp.QuickActions, w.QuickActions())
}

func TestCloseIgnoresLateResponses(t *testing.T) {
	api := newFakeAPI()
	release := make(chan struct{})
	api.sendFn = func(chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
		<-release
		return reply("too late", nil), nil
	}
	w := startedWidget(t, api, nil)

	done := make(chan error, 1)
	go func() { done <- w.Send(context.Background(), "hello") }()
	require.Eventually(t, w.Busy, time.Second, time.Millisecond)

	require.NoError(t, w.Close())
	close(release)

	assert.ErrorIs(t, <-done, widget.ErrClosed)
	assert.Len(t, w.Transcript(), 2)
	assert.Equal(t, widget.StateClosed, w.State())
	assert.ErrorIs(t, w.Send(context.Background(), "again"), widget.ErrClosed)
	assert.NoError(t, w.Close())
}

// ─────────────────────────────────────────
// Exchange
// ─────────────────────────────────────────

func TestSendAppendsUserThenAssistant(t *testing.T) {
	api := newFakeAPI()
	var got chatapi.SendMessageRequest
	api.sendFn = func(req chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
		got = req
		return reply("You have **3** candidates", nil), nil
	}
	w := startedWidget(t, api, nil)

	require.NoError(t, w.Send(context.Background(), "  how many candidates?  "))

	tr := waitRevealed(t, w, 3)
	assert.Equal(t, domain.SenderUser, tr[1].Sender)
	assert.Equal(t, "how many candidates?", tr[1].Content)
	assert.Equal(t, domain.SenderAssistant, tr[2].Sender)
	assert.Equal(t, "You have **3** candidates", tr[2].Content)

	assert.Equal(t, "abc123", got.SessionID)
	assert.Equal(t, "how many candidates?", got.Message)
	assert.Equal(t, "/hr/dashboard", got.CurrentPage)
	require.NotNil(t, got.UserContext)
	assert.Equal(t, "how many candidates?", got.UserContext.LastMessage)
	assert.Equal(t, 1, got.UserContext.Interactions)
	assert.Equal(t, "hr", got.UserContext.UserRole)
	assert.Equal(t, "friendly", got.EmotionContext)
}

func TestSendRejectsEmptyText(t *testing.T) {
	api := newFakeAPI()
	w := startedWidget(t, api, nil)

	assert.ErrorIs(t, w.Send(context.Background(), "   "), widget.ErrEmptyMessage)
	assert.Equal(t, 0, api.count("send"))
	assert.Len(t, w.Transcript(), 1)
}

func TestSecondSendWhileInFlightIsRejectedLocally(t *testing.T) {
	api := newFakeAPI()
	release := make(chan struct{})
	api.sendFn = func(chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
		<-release
		return reply("ok", nil), nil
	}
	w := startedWidget(t, api, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- w.Send(ctx, "first") }()
	require.Eventually(t, w.Busy, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.Send(ctx, "second"), widget.ErrBusy)
	assert.ErrorIs(t, w.InvokeQuickAction(ctx, "view_candidates"), widget.ErrBusy)
	assert.Equal(t, 1, api.count("send"))
	assert.Equal(t, 0, api.count("action"))

	close(release)
	require.NoError(t, <-done)
	assert.False(t, w.Busy())

	api.sendFn = nil
	require.NoError(t, w.Send(ctx, "third"))
	assert.Equal(t, 2, api.count("send"))
}

func TestSendFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantMsg string
	}{
		{
			name:    "transport",
			err:     &widget.TransportError{Op: "send message", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}},
			wantIs:  widget.ErrTransport,
			wantMsg: "Sorry, I'm having trouble connecting. Please check your internet connection and try again.",
		},
		{
			name:    "application",
			err:     &widget.ApplicationError{Op: "send message", Status: 404, Message: "Session not found"},
			wantIs:  widget.ErrApplication,
			wantMsg: "Sorry, I encountered an error. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.sendFn = func(chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
				return nil, tt.err
			}
			w := startedWidget(t, api, nil)
			ctx := context.Background()

			err := w.Send(ctx, "hello")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)

			tr := waitRevealed(t, w, 3)
			assert.Equal(t, domain.SenderUser, tr[1].Sender)
			assert.Equal(t, tt.wantMsg, tr[2].Content)
			assert.Equal(t, domain.TypeError, tr[2].Type)
			assert.False(t, w.Busy())

			api.sendFn = nil
			require.NoError(t, w.Send(ctx, "again"))
			waitRevealed(t, w, 5)
			assert.Equal(t, 2, api.count("send"))
		})
	}
}

func TestQuickActionFailuresUseTheirOwnTexts(t *testing.T) {
	api := newFakeAPI()
	w := startedWidget(t, api, nil)
	ctx := context.Background()

	api.actionFn = func(chatapi.QuickActionRequest) (*chatapi.ExchangeResponse, error) {
		return nil, &widget.ApplicationError{Op: "quick action", Status: 400}
	}
	assert.ErrorIs(t, w.InvokeQuickAction(ctx, "view_candidates"), widget.ErrApplication)

	api.actionFn = func(chatapi.QuickActionRequest) (*chatapi.ExchangeResponse, error) {
		return nil, &widget.TransportError{Op: "quick action", Err: errors.New("reset")}
	}
	assert.ErrorIs(t, w.InvokeQuickAction(ctx, "view_candidates"), widget.ErrTransport)

	tr := waitRevealed(t, w, 3)
	assert.Equal(t, "Sorry, I couldn't process that action. Please try again.", tr[1].Content)
	assert.Equal(t, "Sorry, I'm having trouble processing that action. Please try again.", tr[2].Content)
}

func TestQuickActionAddsOnlyTheReply(t *testing.T) {
	api := newFakeAPI()
	var got chatapi.QuickActionRequest
	api.actionFn = func(req chatapi.QuickActionRequest) (*chatapi.ExchangeResponse, error) {
		got = req
		resp := reply("Opening candidates", nil)
		resp.MessageType = domain.TypeQuickAction
		return resp, nil
	}
	w := startedWidget(t, api, nil)

	require.NoError(t, w.InvokeQuickAction(context.Background(), "view_candidates"))

	tr := waitRevealed(t, w, 2)
	assert.Equal(t, domain.SenderAssistant, tr[1].Sender)
	assert.Equal(t, domain.TypeQuickAction, tr[1].Type)
	assert.Equal(t, "view_candidates", got.Action)
	assert.Equal(t, "abc123", got.SessionID)
}

func TestQuickActionSetsReplacePriorSets(t *testing.T) {
	api := newFakeAPI()
	next := []domain.QuickAction{{Icon: "📊", Label: "Analytics", Action: "show_analytics"}}
	api.sendFn = func(chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
		return reply("here", next), nil
	}
	w := startedWidget(t, api, nil)
	ctx := context.Background()

	require.NoError(t, w.Send(ctx, "menu"))
	assert.Equal(t, next, w.QuickActions())

	api.sendFn = nil
	require.NoError(t, w.Send(ctx, "thanks"))
	assert.Equal(t, next, w.QuickActions(), "a response without a set keeps the current one")
}

func TestReplyWhileChatClosedBumpsBadge(t *testing.T) {
	api := newFakeAPI()
	w := startedWidget(t, api, nil)
	ctx := context.Background()

	require.NoError(t, w.Send(ctx, "hi"))
	assert.Equal(t, 1, w.Indicator().Badge)

	require.NoError(t, w.Open())
	ind := w.Indicator()
	assert.Equal(t, 0, ind.Badge)
	assert.Equal(t, "🤖 Chat Active", ind.Title)

	require.NoError(t, w.Send(ctx, "hi again"))
	assert.Equal(t, 0, w.Indicator().Badge)
}

// ─────────────────────────────────────────
// Display queue
// ─────────────────────────────────────────

func TestDisplayQueueRevealsInOrderWithTypingDelay(t *testing.T) {
	api := newFakeAPI()

	var (
		mu     sync.Mutex
		sleeps []time.Duration
		events []widget.EventKind
	)
	sleep := func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		sleeps = append(sleeps, d)
		mu.Unlock()
		return ctx.Err()
	}
	onEvent := func(ev widget.Event) {
		if ev.Kind == widget.EventTyping || ev.Kind == widget.EventEntryRevealed {
			mu.Lock()
			events = append(events, ev.Kind)
			mu.Unlock()
		}
	}

	long := make([]rune, 100)
	for i := range long {
		long[i] = 'é'
	}
	replies := []string{"abc", string(long)}
	i := 0
	api.sendFn = func(chatapi.SendMessageRequest) (*chatapi.ExchangeResponse, error) {
		r := reply(replies[i], nil)
		i++
		return r, nil
	}

	w := startedWidget(t, api, func(o *widget.Options) {
		o.Sleep = sleep
		o.OnEvent = onEvent
	})
	ctx := context.Background()
	require.NoError(t, w.Send(ctx, "one"))
	require.NoError(t, w.Send(ctx, "two"))

	tr := waitRevealed(t, w, 5)
	assert.Equal(t, "abc", tr[2].Content)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(sleeps) == 4
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []time.Duration{
		150 * time.Millisecond, 300 * time.Millisecond,
		2 * time.Second, 300 * time.Millisecond,
	}, sleeps)
	assert.Equal(t, []widget.EventKind{
		widget.EventTyping, widget.EventTyping, widget.EventEntryRevealed,
		widget.EventTyping, widget.EventTyping, widget.EventEntryRevealed,
	}, events)
}

// ─────────────────────────────────────────
// Page tracking
// ─────────────────────────────────────────

func TestPagePushes(t *testing.T) {
	api := newFakeAPI()
	w := startedWidget(t, api, nil)
	ctx := context.Background()

	require.NoError(t, w.SetPage("/hr/dashboard"))
	assert.Never(t, func() bool { return api.count("page") > 0 }, 50*time.Millisecond, 5*time.Millisecond,
		"same page is not pushed")

	require.NoError(t, w.SetPage("/hr/candidates"))
	require.Eventually(t, func() bool { return api.count("page") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Send(ctx, "hello"))
	require.Eventually(t, func() bool { return api.count("page") == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Open())
	require.Eventually(t, func() bool { return api.count("page") == 3 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"/hr/candidates", "/hr/candidates", "/hr/candidates"}, api.pushedPages())
}

func TestToggle(t *testing.T) {
	w := startedWidget(t, newFakeAPI(), nil)

	require.NoError(t, w.Toggle())
	assert.True(t, w.IsOpen())
	require.NoError(t, w.Toggle())
	assert.False(t, w.IsOpen())
	assert.Equal(t, "Click to chat with me!", w.Indicator().Subtitle)
}
