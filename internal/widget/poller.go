package widget

import (
	"context"
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/chatapi"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const (
	inactivityTitle   = "Still there?"
	inactivityMessage = "I'm here if you need any assistance! 👋"
	urgentLabelPrefix = "🚨 "
)

// runPoller polls on a fixed interval until ctx is done. It never pauses for
// a closed chat or an exchange in flight.
func (w *Widget) runPoller(ctx context.Context) {
	defer w.wg.Done()

	t := time.NewTicker(w.pollInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.Poll(ctx)
		}
	}
}

// Poll runs one poll cycle: reminders, the local inactivity check, then
// suggestions. Failures are logged and swallowed.
func (w *Widget) Poll(ctx context.Context) {
	w.mu.Lock()
	if w.state != StateReady {
		w.mu.Unlock()
		return
	}
	sid, page := w.sessionID, w.page
	w.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, backgroundCallTimeout)
	reminders, err := w.api.Reminders(callCtx, chatapi.RemindersRequest{SessionID: sid, CurrentPage: page})
	cancel()
	if err != nil {
		w.log.Warn().Err(err).Str("session_id", sid).Msg("reminder poll failed")
	}
	for _, n := range reminders {
		w.surfaceReminder(n)
	}

	w.checkInactivity()

	w.mu.Lock()
	if w.state != StateReady {
		w.mu.Unlock()
		return
	}
	req := chatapi.SuggestionsRequest{
		SessionID:       sid,
		CurrentPage:     w.page,
		UserActivity:    w.activityLocked(),
		LastInteraction: w.lastInteraction.UnixMilli(),
	}
	w.mu.Unlock()

	callCtx, cancel = context.WithTimeout(ctx, backgroundCallTimeout)
	suggestions, err := w.api.Suggestions(callCtx, req)
	cancel()
	if err != nil {
		w.log.Warn().Err(err).Str("session_id", sid).Msg("suggestion poll failed")
	}
	for _, n := range suggestions {
		w.surfaceSuggestion(n)
	}
}

// surfaceReminder bumps the indicator and, for high urgency, schedules the
// chat to open with the reminder in the transcript.
func (w *Widget) surfaceReminder(n domain.Notification) {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return
	}
	w.emotion = n.Emotion
	if w.emotion == "" {
		w.emotion = emotionHelpful
	}
	w.notifications = append(w.notifications, n)
	w.indicator = Indicator{Badge: w.indicator.Badge + 1, Title: n.Title, Subtitle: n.Message}
	evs := []Event{
		{Kind: EventNotification, Notification: n},
		{Kind: EventIndicator, Indicator: w.indicator},
	}
	if n.Urgency.IsHigh() {
		w.scheduleUrgentLocked(n)
	}
	w.mu.Unlock()
	w.dispatch(evs)

	w.log.Info().Str("title", n.Title).Str("urgency", string(n.Urgency)).Msg("reminder surfaced")
}

// scheduleUrgentLocked arms the delayed open for a high urgency reminder.
// A reminder already raised for the same candidate and title is not raised
// again while the widget lives.
func (w *Widget) scheduleUrgentLocked(n domain.Notification) {
	key := urgentKey(n)
	if _, seen := w.urgentSeen[key]; seen {
		return
	}
	w.urgentSeen[key] = struct{}{}

	var t *time.Timer
	t = time.AfterFunc(w.urgentDelay, func() {
		w.mu.Lock()
		delete(w.timers, t)
		w.mu.Unlock()
		w.raiseUrgent(n)
	})
	w.timers[t] = struct{}{}
}

func urgentKey(n domain.Notification) string {
	return n.CandidateID + "\x00" + n.Title
}

func (w *Widget) surfaceSuggestion(n domain.Notification) {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return
	}
	w.emotion = emotionThoughtful
	w.notifications = append(w.notifications, n)
	w.indicator = Indicator{Badge: w.indicator.Badge + 1, Title: labelSuggestion, Subtitle: n.Message}
	evs := []Event{
		{Kind: EventNotification, Notification: n},
		{Kind: EventIndicator, Indicator: w.indicator},
	}
	w.mu.Unlock()
	w.dispatch(evs)

	w.log.Debug().Str("type", n.Type).Msg("suggestion surfaced")
}

// raiseUrgent opens the chat and injects the reminder as an urgent entry.
func (w *Widget) raiseUrgent(n domain.Notification) {
	w.mu.Lock()
	if w.state == StateClosed {
		w.mu.Unlock()
		return
	}
	evs := w.openLocked()
	opened := len(evs) > 0

	content := n.Message
	if len(n.Actions) > 0 {
		content += urgentHelpSuffix
	}
	md := domain.Metadata{Urgency: n.Urgency, Actions: n.Actions}
	e := w.appendEntryLocked(domain.SenderAssistant, urgentLabelPrefix+n.Title, content, domain.TypeUrgent, md, true)
	evs = append(evs, Event{Kind: EventEntryAdded, Entry: e})
	sid, page, ready := w.sessionID, w.page, w.state == StateReady
	w.mu.Unlock()
	w.dispatch(evs)

	if opened && ready {
		w.pushPage(sid, page)
	}
}

// checkInactivity nudges a user who has not interacted for a while and has
// the chat closed.
func (w *Widget) checkInactivity() {
	w.mu.Lock()
	idle := w.now().Sub(w.lastInteraction) > w.inactivityAfter && !w.open
	w.mu.Unlock()

	if idle {
		w.surfaceSuggestion(domain.Notification{
			Title:   inactivityTitle,
			Message: inactivityMessage,
			Emotion: emotionFriendly,
		})
	}
}
