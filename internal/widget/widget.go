// Package widget is the client side of the assistant: it owns the chat
// state of one portal page (session, transcript, quick actions, indicator)
// and drives the assistant API. Front ends issue commands and render the
// Events it emits.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mo-nish/Invensis-Requiter/internal/chatapi"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const (
	defaultPollInterval    = 60 * time.Second
	defaultUrgentDelay     = 2 * time.Second
	defaultInactivityAfter = 10 * time.Minute
	backgroundCallTimeout  = 15 * time.Second
)

// Fixed texts shown in place of an assistant reply.
const (
	textSendTransportFailure   = "Sorry, I'm having trouble connecting. Please check your internet connection and try again."
	textSendApplicationFailure = "Sorry, I encountered an error. Please try again."
	textActionTransportFailure = "Sorry, I'm having trouble processing that action. Please try again."
	textActionAppFailure       = "Sorry, I couldn't process that action. Please try again."
	urgentHelpSuffix           = "\n\nWould you like me to help with this?"
)

// Emotion hints sent with messages.
const (
	emotionFriendly   = "friendly"
	emotionHappy      = "happy"
	emotionHelpful    = "helpful"
	emotionThoughtful = "thoughtful"
	emotionExcited    = "excited"
	emotionConcerned  = "concerned"
	emotionWorking    = "working"
)

type Options struct {
	API    API
	Logger *zerolog.Logger

	// OnEvent receives every state change. Calls are serialized. It must not
	// call Close.
	OnEvent func(Event)

	// PollInterval defaults to 60s. A negative value disables polling.
	PollInterval time.Duration
	// UrgentDelay is the wait before a high-urgency notification opens the chat.
	UrgentDelay time.Duration
	// InactivityAfter is the idle time after which a closed widget nudges the user.
	InactivityAfter time.Duration

	Sleep SleepFunc
	Now   func() time.Time
}

type exchangeTexts struct {
	op          string
	transport   string
	application string
}

var (
	sendTexts   = exchangeTexts{op: "send", transport: textSendTransportFailure, application: textSendApplicationFailure}
	actionTexts = exchangeTexts{op: "quick action", transport: textActionTransportFailure, application: textActionAppFailure}
)

// Widget is the chat controller for one client. All methods are safe for
// concurrent use.
type Widget struct {
	api             API
	log             zerolog.Logger
	onEvent         func(Event)
	sleep           SleepFunc
	now             func() time.Time
	pollInterval    time.Duration
	urgentDelay     time.Duration
	inactivityAfter time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	queue  *displayQueue
	emitMu sync.Mutex

	mu              sync.Mutex
	state           State
	sessionID       string
	userRole        string
	userName        string
	page            string
	open            bool
	inFlight        bool
	entries         []Entry
	quickActions    []domain.QuickAction
	indicator       Indicator
	notifications   []domain.Notification
	emotion         string
	interactions    int
	lastInteraction time.Time
	lastUserMessage string
	timers          map[*time.Timer]struct{}
	urgentSeen      map[string]struct{}
}

// New builds a widget and starts its display loop. Call Start to create the
// session and Close to release it.
func New(opts Options) (*Widget, error) {
	if opts.API == nil {
		return nil, errors.New("widget: API is required")
	}

	w := &Widget{
		api:             opts.API,
		log:             zerolog.Nop(),
		onEvent:         opts.OnEvent,
		sleep:           opts.Sleep,
		now:             opts.Now,
		pollInterval:    opts.PollInterval,
		urgentDelay:     opts.UrgentDelay,
		inactivityAfter: opts.InactivityAfter,
		queue:           newDisplayQueue(),
		indicator:       idleIndicator,
		emotion:         emotionFriendly,
		timers:          make(map[*time.Timer]struct{}),
		urgentSeen:      make(map[string]struct{}),
	}
	if opts.Logger != nil {
		w.log = opts.Logger.With().Str("component", "widget").Logger()
	}
	if w.sleep == nil {
		w.sleep = sleepContext
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.pollInterval == 0 {
		w.pollInterval = defaultPollInterval
	}
	if w.urgentDelay <= 0 {
		w.urgentDelay = defaultUrgentDelay
	}
	if w.inactivityAfter <= 0 {
		w.inactivityAfter = defaultInactivityAfter
	}
	w.lastInteraction = w.now()

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.wg.Add(1)
	go w.runDisplay(w.ctx)

	return w, nil
}

// ─────────────────────────────────────────
// Session lifecycle
// ─────────────────────────────────────────

// Start creates the session. No other call reaches the server before it
// succeeds. A failed start leaves the widget unavailable; Start may be
// called again from there.
func (w *Widget) Start(ctx context.Context, page string) error {
	w.mu.Lock()
	switch w.state {
	case StateClosed:
		w.mu.Unlock()
		return ErrClosed
	case StateStarting, StateReady:
		w.mu.Unlock()
		w.log.Warn().Msg("start called on a started widget")
		return ErrAlreadyStarted
	}
	w.state = StateStarting
	w.page = page
	evs := []Event{{Kind: EventStateChanged, State: StateStarting}}
	w.mu.Unlock()
	w.dispatch(evs)

	resp, err := w.api.CreateSession(ctx, chatapi.CreateSessionRequest{CurrentPage: page})

	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		w.state = StateUnavailable
		evs = []Event{{Kind: EventStateChanged, State: StateUnavailable}}
		w.mu.Unlock()
		w.dispatch(evs)

		w.log.Error().Err(err).Str("page", page).Msg("chat session could not be created")
		return fmt.Errorf("start: %w", err)
	}

	w.state = StateReady
	w.sessionID = resp.SessionID
	w.userRole = resp.UserRole
	w.userName = resp.UserName
	evs = []Event{{Kind: EventStateChanged, State: StateReady}}
	if resp.WelcomeMessage != "" {
		e := w.appendEntryLocked(domain.SenderAssistant, labelAssistant, resp.WelcomeMessage, domain.TypeWelcome, domain.Metadata{}, true)
		evs = append(evs, Event{Kind: EventEntryAdded, Entry: e})
	}
	if len(resp.QuickActions) > 0 {
		evs = append(evs, w.replaceQuickActionsLocked(resp.QuickActions))
	}
	if w.pollInterval > 0 {
		w.wg.Add(1)
		go w.runPoller(w.ctx)
	}
	w.mu.Unlock()
	w.dispatch(evs)

	w.log.Info().
		Str("session_id", resp.SessionID).
		Str("user_role", resp.UserRole).
		Msg("chat session started")
	return nil
}

// Close stops the poller and the display loop and cancels pending timers.
// Responses that arrive afterwards are ignored.
func (w *Widget) Close() error {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return nil
	}
	w.state = StateClosed
	for t := range w.timers {
		t.Stop()
		delete(w.timers, t)
	}
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	w.dispatch([]Event{{Kind: EventStateChanged, State: StateClosed}})
	return nil
}

// ─────────────────────────────────────────
// Exchange
// ─────────────────────────────────────────

// Send submits one user message. The user entry is appended at once; the
// reply, or a fixed apology on failure, follows through the display queue.
func (w *Widget) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	w.mu.Lock()
	if err := w.exchangeAllowedLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if text == "" {
		w.mu.Unlock()
		return ErrEmptyMessage
	}

	w.inFlight = true
	w.touchLocked()
	w.interactions++
	w.lastUserMessage = text

	activity := w.activityLocked()
	req := chatapi.SendMessageRequest{
		SessionID:      w.sessionID,
		Message:        text,
		CurrentPage:    w.page,
		EmotionContext: w.emotion,
		UserContext:    &activity,
	}
	w.emotion = emotionWorking

	e := w.appendEntryLocked(domain.SenderUser, labelUser, text, domain.TypeText, domain.Metadata{}, true)
	w.mu.Unlock()
	w.dispatch([]Event{{Kind: EventEntryAdded, Entry: e}})

	resp, err := w.api.SendMessage(ctx, req)
	return w.finishExchange(sendTexts, resp, err)
}

// InvokeQuickAction sends an action id back verbatim. No user entry is
// added to the transcript.
func (w *Widget) InvokeQuickAction(ctx context.Context, action string) error {
	action = strings.TrimSpace(action)

	w.mu.Lock()
	if err := w.exchangeAllowedLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if action == "" {
		w.mu.Unlock()
		return fmt.Errorf("quick action: %w", ErrEmptyMessage)
	}

	w.inFlight = true
	w.touchLocked()
	req := chatapi.QuickActionRequest{
		SessionID:   w.sessionID,
		Action:      action,
		CurrentPage: w.page,
	}
	w.emotion = emotionWorking
	w.mu.Unlock()

	resp, err := w.api.QuickAction(ctx, req)
	return w.finishExchange(actionTexts, resp, err)
}

func (w *Widget) exchangeAllowedLocked() error {
	switch w.state {
	case StateClosed:
		return ErrClosed
	case StateReady:
	default:
		w.log.Warn().Str("state", w.state.String()).Msg("exchange attempted without a session")
		return ErrNoSession
	}
	if w.inFlight {
		w.log.Debug().Msg("exchange rejected while another is in flight")
		return ErrBusy
	}
	return nil
}

func (w *Widget) finishExchange(texts exchangeTexts, resp *chatapi.ExchangeResponse, err error) error {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.inFlight = false

	var (
		evs      []Event
		pushPage bool
		e        Entry
	)
	switch {
	case err == nil:
		e = w.appendEntryLocked(domain.SenderAssistant, labelAssistant, resp.Response, resp.MessageType, resp.Metadata, false)
		if len(resp.QuickActions) > 0 {
			evs = append(evs, w.replaceQuickActionsLocked(resp.QuickActions))
		}
		w.emotion = responseEmotion(resp.Response, resp.MessageType)
		pushPage = true
	case errors.Is(err, ErrApplication):
		e = w.appendEntryLocked(domain.SenderAssistant, labelAssistant, texts.application, domain.TypeError, domain.Metadata{}, false)
		w.emotion = emotionConcerned
	default:
		e = w.appendEntryLocked(domain.SenderAssistant, labelAssistant, texts.transport, domain.TypeError, domain.Metadata{}, false)
		w.emotion = emotionConcerned
	}
	evs = append([]Event{{Kind: EventEntryAdded, Entry: e}}, evs...)
	evs = append(evs, w.badgeForAssistantLocked()...)
	sid, page := w.sessionID, w.page
	w.mu.Unlock()
	w.dispatch(evs)

	if err != nil {
		w.log.Warn().Err(err).Str("session_id", sid).Msg(texts.op + " failed")
		return fmt.Errorf("%s: %w", texts.op, err)
	}
	if pushPage {
		w.pushPage(sid, page)
	}
	return nil
}

// responseEmotion picks the tone hint for the next message from a reply.
func responseEmotion(content string, t domain.MessageType) string {
	switch {
	case t.Kind == domain.KindSuccess || strings.Contains(content, "✅") || strings.Contains(content, "great"):
		return emotionExcited
	case t.Kind == domain.KindHelp || strings.Contains(content, "assistance"):
		return emotionHelpful
	case strings.Contains(content, "thinking") || strings.Contains(content, "analyzing"):
		return emotionThoughtful
	case t.Kind == domain.KindError:
		return emotionConcerned
	default:
		return emotionFriendly
	}
}

// ─────────────────────────────────────────
// Page and chat window
// ─────────────────────────────────────────

// SetPage records the page the user is on and pushes it to the server in
// the background. Setting the same page again is a no-op.
func (w *Widget) SetPage(page string) error {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return ErrClosed
	}
	if page == w.page {
		w.mu.Unlock()
		return nil
	}
	w.page = page
	w.touchLocked()
	sid, ready := w.sessionID, w.state == StateReady
	w.mu.Unlock()

	if ready {
		w.pushPage(sid, page)
	}
	return nil
}

// Open shows the chat and clears the badge.
func (w *Widget) Open() error {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return ErrClosed
	}
	evs := w.openLocked()
	sid, page, ready := w.sessionID, w.page, w.state == StateReady
	w.mu.Unlock()
	w.dispatch(evs)

	if len(evs) > 0 && ready {
		w.pushPage(sid, page)
	}
	return nil
}

// CloseChat hides the chat. The session and the poller keep running.
func (w *Widget) CloseChat() error {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return ErrClosed
	}
	if !w.open {
		w.mu.Unlock()
		return nil
	}
	w.open = false
	w.emotion = emotionHappy
	w.indicator = Indicator{Badge: w.indicator.Badge, Title: idleIndicator.Title, Subtitle: idleIndicator.Subtitle}
	evs := []Event{
		{Kind: EventChatToggled, Open: false},
		{Kind: EventIndicator, Indicator: w.indicator},
	}
	w.mu.Unlock()
	w.dispatch(evs)
	return nil
}

func (w *Widget) Toggle() error {
	w.mu.Lock()
	open := w.open
	w.mu.Unlock()

	if open {
		return w.CloseChat()
	}
	return w.Open()
}

func (w *Widget) openLocked() []Event {
	if w.open {
		return nil
	}
	w.open = true
	w.emotion = emotionExcited
	w.indicator = activeIndicator
	return []Event{
		{Kind: EventChatToggled, Open: true},
		{Kind: EventIndicator, Indicator: w.indicator},
	}
}

// pushPage is fire-and-forget: failures are logged and never retried.
func (w *Widget) pushPage(sessionID, page string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateClosed {
		return
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ctx, cancel := context.WithTimeout(w.ctx, backgroundCallTimeout)
		defer cancel()

		if err := w.api.UpdatePage(ctx, sessionID, page); err != nil {
			w.log.Warn().Err(err).Str("session_id", sessionID).Str("page", page).Msg("page update failed")
		}
	}()
}

// ─────────────────────────────────────────
// Read accessors
// ─────────────────────────────────────────

func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Widget) SessionID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sessionID
}

// User returns the role and name the server resolved for the session.
func (w *Widget) User() (role, name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.userRole, w.userName
}

// Busy reports whether an exchange is in flight.
func (w *Widget) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inFlight
}

func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Transcript returns a copy of every entry, hidden ones included.
func (w *Widget) Transcript() []Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Entry(nil), w.entries...)
}

func (w *Widget) QuickActions() []domain.QuickAction {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.QuickAction(nil), w.quickActions...)
}

func (w *Widget) Indicator() Indicator {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indicator
}

// Notifications returns every reminder and suggestion surfaced so far.
func (w *Widget) Notifications() []domain.Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]domain.Notification(nil), w.notifications...)
}

// ─────────────────────────────────────────
// Internals shared by commands and background loops
// ─────────────────────────────────────────

// appendEntryLocked adds a transcript entry. Hidden assistant entries are
// queued for the typing reveal.
func (w *Widget) appendEntryLocked(sender domain.Sender, label, content string, t domain.MessageType, md domain.Metadata, visible bool) Entry {
	e := Entry{
		Seq:      len(w.entries),
		Sender:   sender,
		Label:    label,
		Content:  content,
		Type:     t,
		Metadata: md,
		At:       w.now(),
		Visible:  visible,
	}
	w.entries = append(w.entries, e)
	if !visible {
		w.queue.push(e.Seq)
	}
	return e
}

func (w *Widget) replaceQuickActionsLocked(actions []domain.QuickAction) Event {
	w.quickActions = append([]domain.QuickAction(nil), actions...)
	return Event{Kind: EventQuickActions, QuickActions: append([]domain.QuickAction(nil), actions...)}
}

// badgeForAssistantLocked counts an assistant reply the user cannot see.
func (w *Widget) badgeForAssistantLocked() []Event {
	if w.open {
		return nil
	}
	w.indicator.Badge++
	return []Event{{Kind: EventIndicator, Indicator: w.indicator}}
}

func (w *Widget) touchLocked() {
	w.lastInteraction = w.now()
}

func (w *Widget) activityLocked() domain.ActivityContext {
	return domain.ActivityContext{
		CurrentPage:  w.page,
		TimeOnPageMS: w.now().Sub(w.lastInteraction).Milliseconds(),
		Interactions: w.interactions,
		UserRole:     w.userRole,
		LastMessage:  w.lastUserMessage,
	}
}

func (w *Widget) dispatch(evs []Event) {
	if w.onEvent == nil || len(evs) == 0 {
		return
	}
	w.emitMu.Lock()
	defer w.emitMu.Unlock()
	for _, ev := range evs {
		w.onEvent(ev)
	}
}

// runDisplay reveals queued assistant entries one at a time.
func (w *Widget) runDisplay(ctx context.Context) {
	defer w.wg.Done()

	for {
		seq, ok := w.queue.next(ctx)
		if !ok {
			return
		}

		w.mu.Lock()
		content := w.entries[seq].Content
		w.mu.Unlock()

		w.dispatch([]Event{{Kind: EventTyping, Typing: true}})
		if err := w.sleep(ctx, typingDelay(content)); err != nil {
			return
		}

		w.mu.Lock()
		if w.state == StateClosed {
			w.mu.Unlock()
			return
		}
		w.entries[seq].Visible = true
		e := w.entries[seq]
		w.mu.Unlock()

		w.dispatch([]Event{
			{Kind: EventTyping, Typing: false},
			{Kind: EventEntryRevealed, Entry: e},
		})

		if err := w.sleep(ctx, revealGap); err != nil {
			return
		}
	}
}
