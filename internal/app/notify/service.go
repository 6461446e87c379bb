// Package notify produces the reminders and proactive suggestions the
// widget polls for. Notifications are computed on demand and never stored.
package notify

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/metrics"
	"github.com/Mo-nish/Invensis-Requiter/internal/observability"
)

const (
	DefaultReminderWindow = 30 * time.Minute

	maxReminders       = 2
	highUrgencyWithin  = 20 * time.Minute
	stalePendingAfter  = 5 * 24 * time.Hour
	breakAfter         = 5 * time.Minute
	morningBeforeHour  = 12
	eveningAfterHour   = 17
	pollKindReminders  = "reminders"
	pollKindSuggestion = "suggestions"
)

type Options struct {
	// ReminderWindow bounds how far ahead manager interviews are announced.
	ReminderWindow time.Duration
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

type Service struct {
	candidates domain.CandidateDirectory
	window     time.Duration
	metrics    *metrics.Metrics
	now        func() time.Time
}

// NewService builds a Service. A nil directory disables candidate-based
// reminders; role-level ones are still produced.
func NewService(candidates domain.CandidateDirectory, opts Options) *Service {
	s := &Service{
		candidates: candidates,
		window:     opts.ReminderWindow,
		metrics:    opts.Metrics,
		now:        opts.Now,
	}
	if s.window <= 0 {
		s.window = DefaultReminderWindow
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ─────────────────────────────────────────────
// Reminders
// ─────────────────────────────────────────────

// Reminders returns the reminders due for the session's user.
func (s *Service) Reminders(ctx context.Context, session *domain.Session) ([]domain.Notification, error) {
	log := observability.LoggerFromContext(ctx).With().
		Str("session_id", string(session.ID)).
		Str("user_role", string(session.UserRole)).
		Logger()

	var (
		out []domain.Notification
		err error
	)
	switch session.UserRole {
	case domain.RoleManager:
		out, err = s.managerReminders(ctx, session.UserEmail)
	case domain.RoleHR:
		out, err = s.hrReminders(ctx, session.UserEmail)
	case domain.RoleCluster:
		out = clusterReminders()
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to build reminders")
		s.record(pollKindReminders, "error", nil)
		return nil, fmt.Errorf("reminders: %w", err)
	}

	s.record(pollKindReminders, "ok", out)
	log.Debug().Int("count", len(out)).Msg("reminders served")
	return out, nil
}

func (s *Service) managerReminders(ctx context.Context, email string) ([]domain.Notification, error) {
	if s.candidates == nil || email == "" {
		return nil, nil
	}

	assigned, err := s.candidates.ListByManager(ctx, email, domain.CandidateStatusAssigned, 0)
	if err != nil {
		return nil, fmt.Errorf("list assigned candidates: %w", err)
	}

	now := s.now()
	upcoming := lo.Filter(assigned, func(c domain.Candidate, _ int) bool {
		return c.InterviewAt != nil && !c.InterviewAt.Before(now) && c.InterviewAt.Sub(now) <= s.window
	})
	if len(upcoming) > maxReminders {
		upcoming = upcoming[:maxReminders]
	}

	return lo.Map(upcoming, func(c domain.Candidate, _ int) domain.Notification {
		until := c.InterviewAt.Sub(now)
		minutes := int(math.Ceil(until.Minutes()))

		urgency := domain.UrgencyMedium
		if until <= highUrgencyWithin {
			urgency = domain.UrgencyHigh
		}

		return domain.Notification{
			Title:         fmt.Sprintf("🗓️ Meeting with %s", candidateName(c)),
			Message:       fmt.Sprintf("You have a meeting scheduled in %d minutes. Would you like me to show their details?", minutes),
			Urgency:       urgency,
			Emotion:       "helpful",
			CandidateID:   c.ID,
			CandidateName: candidateName(c),
			Actions: []domain.Action{
				{Label: "View Candidate Details", Type: "open_page", URL: "/manager/candidate/" + c.ID, Icon: "👤"},
				{Label: "Prepare Interview Questions", Type: "assistant_help", Action: "interview_prep", Icon: "📝"},
			},
		}
	}), nil
}

func (s *Service) hrReminders(ctx context.Context, email string) ([]domain.Notification, error) {
	if s.candidates == nil || email == "" {
		return nil, nil
	}

	pending, err := s.candidates.ListByRecruiter(ctx, email, domain.CandidateStatusPending, maxReminders)
	if err != nil {
		return nil, fmt.Errorf("list pending candidates: %w", err)
	}

	now := s.now()
	return lo.Map(pending, func(c domain.Candidate, _ int) domain.Notification {
		age := now.Sub(c.CreatedAt)
		days := int(age / (24 * time.Hour))

		urgency := domain.UrgencyLow
		if age > stalePendingAfter {
			urgency = domain.UrgencyMedium
		}

		return domain.Notification{
			Title:       fmt.Sprintf("📋 Follow-up: %s", candidateName(c)),
			Message:     fmt.Sprintf("This candidate has been pending for %d days. Should I help you follow up?", days),
			Urgency:     urgency,
			Emotion:     "helpful",
			CandidateID: c.ID,
			Actions: []domain.Action{
				{Label: "Send Follow-up Email", Type: "assistant_help", Action: "send_followup", Icon: "📧"},
				{Label: "View Candidate", Type: "open_page", URL: "/hr/candidates", Icon: "👤"},
			},
		}
	}), nil
}

func clusterReminders() []domain.Notification {
	return []domain.Notification{{
		Title:   "📊 Weekly Performance Review",
		Message: "Time for your weekly team performance review. Shall I prepare the analytics?",
		Urgency: domain.UrgencyMedium,
		Emotion: "focused",
		Actions: []domain.Action{
			{Label: "Open Analytics", Type: "open_page", URL: "/cluster/dashboard", Icon: "📈"},
		},
	}}
}

func candidateName(c domain.Candidate) string {
	if c.Name == "" {
		return "Candidate"
	}
	return c.Name
}

// ─────────────────────────────────────────────
// Suggestions
// ─────────────────────────────────────────────

type SuggestionsInput struct {
	Session     *domain.Session
	CurrentPage string
	Activity    domain.ActivityContext
}

// Suggestions returns context tips for the page the user is on. Visitors
// get none.
func (s *Service) Suggestions(ctx context.Context, in SuggestionsInput) []domain.Notification {
	session := in.Session
	if !session.UserRole.Authenticated() {
		s.record(pollKindSuggestion, "ok", nil)
		return nil
	}

	page := in.CurrentPage
	if page == "" {
		page = session.CurrentPage
	}

	var out []domain.Notification
	switch session.UserRole {
	case domain.RoleManager:
		if strings.Contains(page, "/manager/dashboard") {
			out = append(out, suggestion("💡 Productivity Tip",
				"I notice you're on the dashboard. Would you like me to help you prioritize candidates?",
				"helpful", "productivity"))
		}
		if in.Activity.TimeOnPage() > breakAfter {
			out = append(out, suggestion("☕ Break Time",
				"You've been working for a while. How about a quick break? I'll keep track of everything!",
				"caring", "wellness"))
		}
	case domain.RoleHR:
		if strings.Contains(page, "/hr/candidates") {
			out = append(out, suggestion("🎯 Efficiency Tip",
				"I can help you batch process similar candidates or generate summary reports!",
				"helpful", "efficiency"))
		}
	case domain.RoleCluster:
		if strings.Contains(page, "/cluster/dashboard") {
			out = append(out, suggestion("📈 Insight Available",
				"I've analyzed your team's performance. Would you like me to highlight key trends?",
				"analytical", "insights"))
		}
	}

	switch hour := s.now().Hour(); {
	case hour < morningBeforeHour:
		out = append(out, suggestion("🌅 Good Morning!",
			"Ready to tackle today's goals? I can help you prioritize your tasks!",
			"energetic", "greeting"))
	case hour > eveningAfterHour:
		out = append(out, suggestion("🌆 End of Day",
			"How did today go? I can help you prepare for tomorrow!",
			"reflective", "summary"))
	}

	s.record(pollKindSuggestion, "ok", out)
	observability.LoggerFromContext(ctx).Debug().
		Str("session_id", string(session.ID)).
		Int("count", len(out)).
		Msg("suggestions served")
	return out
}

func suggestion(title, message, emotion, kind string) domain.Notification {
	return domain.Notification{Title: title, Message: message, Emotion: emotion, Type: kind}
}

func (s *Service) record(kind, status string, out []domain.Notification) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordPoll(kind, status, lo.Map(out, func(n domain.Notification, _ int) string {
		return string(n.Urgency)
	}))
}
