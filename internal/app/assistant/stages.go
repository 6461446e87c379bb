package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Mo-nish/Invensis-Requiter/internal/app/catalog"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/observability"
)

const (
	maxHelpCapabilities = 5
	maxListedCandidates = 5
	recentWindow        = 7 * 24 * time.Hour
)

var greetingReplies = []string{
	"Hi there! How can I help you today?",
	"Hello! What would you like to work on?",
	"Good to see you! What can I assist you with?",
}

var goodbyeReplies = []string{
	"You're welcome! Feel free to ask if you need anything else.",
	"Happy to help! Don't hesitate to reach out if you have more questions.",
	"Anytime! I'm here whenever you need assistance.",
}

const dataClarification = "I'd be happy to help you get that information. Could you be more specific about what data you're looking for?"

// pick rotates through variants as the conversation grows.
func pick(variants []string, history []*domain.Message) string {
	return variants[len(history)%len(variants)]
}

func textReply(content string) *domain.Reply {
	return &domain.Reply{Content: content, Type: domain.TypeText}
}

// ─────────────────────────────────────────────
// Rules: every intent except general queries
// ─────────────────────────────────────────────

type rulesStage struct {
	catalog    *catalog.Catalog
	candidates domain.CandidateDirectory
	now        func() time.Time
}

func (s *rulesStage) Name() string { return "rules" }

func (s *rulesStage) Run(ctx context.Context, in StageInput) (*domain.Reply, error) {
	sess := in.Turn.Session

	switch in.Intent {
	case IntentGreeting:
		return textReply(pick(greetingReplies, in.Turn.History)), nil

	case IntentHelpRequest:
		if answer, ok := s.catalog.MatchFAQ(sess.UserRole, in.Turn.Text); ok {
			return textReply(answer), nil
		}
		role := s.catalog.Role(sess.UserRole)
		var b strings.Builder
		fmt.Fprintf(&b, "I can help you with several %s tasks:\n\n", role.Name)
		for _, title := range s.catalog.CapabilityTitles(sess.UserRole, maxHelpCapabilities) {
			fmt.Fprintf(&b, "• %s\n", title)
		}
		b.WriteString("\nWhat specific area would you like help with?")
		return &domain.Reply{Content: b.String(), Type: domain.TypeHelp}, nil

	case IntentDataRequest:
		return s.dataReply(ctx, sess), nil

	case IntentActionRequest:
		if capability, ok := s.catalog.MatchCapability(sess.UserRole, in.Turn.Text); ok {
			return textReply(fmt.Sprintf("I can help you with %s. Would you like me to show you how to get started?", capability)), nil
		}
		return textReply("I can help you with various tasks. What specific action would you like to take?"), nil

	case IntentGoodbye:
		return textReply(pick(goodbyeReplies, in.Turn.History)), nil
	}

	return nil, nil
}

func (s *rulesStage) dataReply(ctx context.Context, sess *domain.Session) *domain.Reply {
	if s.candidates == nil || !sess.UserRole.Authenticated() {
		return textReply(dataClarification)
	}

	log := observability.LoggerFromContext(ctx)

	if sess.UserRole == domain.RoleManager {
		list, err := s.candidates.ListByManager(ctx, sess.UserEmail, domain.CandidateStatusAssigned, maxListedCandidates)
		if err != nil {
			log.Warn().Err(err).Str("session_id", string(sess.ID)).Msg("candidate lookup failed")
			return textReply(dataClarification)
		}
		return managerDataReply(list)
	}

	stats, err := s.candidates.Stats(ctx, s.now().Add(-recentWindow))
	if err != nil {
		log.Warn().Err(err).Str("session_id", string(sess.ID)).Msg("candidate stats failed")
		return textReply(dataClarification)
	}
	return statsDataReply(stats)
}

func statsDataReply(stats domain.CandidateStats) *domain.Reply {
	var b strings.Builder
	b.WriteString("📊 **Candidate Pipeline:**\n\n")
	fmt.Fprintf(&b, "• Total Candidates: **%d**\n", stats.Total)
	fmt.Fprintf(&b, "• Pending Review: **%d**\n", stats.Pending)
	fmt.Fprintf(&b, "• Assigned to Managers: **%d**\n", stats.Assigned)
	fmt.Fprintf(&b, "• New This Week: **%d**\n\n", stats.NewThisWeek)
	if stats.NewThisWeek == 0 {
		b.WriteString("💡 No new applications in the last 7 days. This might be a good time to refresh job postings.")
	} else {
		b.WriteString("Would you like details about the new candidates or the pending reviews?")
	}

	return &domain.Reply{
		Content: b.String(),
		Type:    domain.TypeDataResponse,
		Metadata: domain.Metadata{
			Data: map[string]any{
				"total":         stats.Total,
				"pending":       stats.Pending,
				"assigned":      stats.Assigned,
				"new_this_week": stats.NewThisWeek,
			},
		},
	}
}

func managerDataReply(list []domain.Candidate) *domain.Reply {
	var b strings.Builder
	if len(list) == 0 {
		b.WriteString("⏳ You have no candidates waiting for your review right now.")
	} else {
		fmt.Fprintf(&b, "⏳ You have **%d candidates** assigned for your review:\n", len(list))
		for _, c := range list {
			fmt.Fprintf(&b, "• %s\n", c.Name)
		}
		b.WriteString("\nWould you like me to help you prepare for their interviews?")
	}

	return &domain.Reply{
		Content: b.String(),
		Type:    domain.TypeDataResponse,
		Metadata: domain.Metadata{
			Data: map[string]any{
				"assigned_count": len(list),
				"candidates": lo.Map(list, func(c domain.Candidate, _ int) string {
					return c.Name
				}),
			},
		},
	}
}

// ─────────────────────────────────────────────
// LLM fallback for general queries
// ─────────────────────────────────────────────

type llmStage struct {
	llm domain.LLMClient
}

func (s *llmStage) Name() string { return "llm" }

func (s *llmStage) Run(ctx context.Context, in StageInput) (*domain.Reply, error) {
	if in.Intent != IntentGeneralQuery {
		return nil, nil
	}

	sess := in.Turn.Session
	convCtx := domain.ConversationContext{
		SessionID:   sess.ID,
		UserRole:    sess.UserRole,
		UserName:    sess.UserName,
		CurrentPage: sess.CurrentPage,
		Emotion:     in.Turn.EmotionContext,
		History:     in.Turn.History,
	}

	text, err := s.llm.GenerateReply(ctx, in.Turn.Text, convCtx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return textReply(text), nil
}

// ─────────────────────────────────────────────
// FAQ and role-specific contextual help
// ─────────────────────────────────────────────

type faqStage struct {
	catalog *catalog.Catalog
}

func (s *faqStage) Name() string { return "faq" }

func (s *faqStage) Run(_ context.Context, in StageInput) (*domain.Reply, error) {
	if answer, ok := s.catalog.MatchFAQ(in.Turn.Session.UserRole, in.Turn.Text); ok {
		return textReply(answer), nil
	}
	return nil, nil
}

type contextualStage struct {
	catalog    *catalog.Catalog
	candidates domain.CandidateDirectory
	now        func() time.Time
}

func (s *contextualStage) Name() string { return "contextual_help" }

func (s *contextualStage) Run(ctx context.Context, in StageInput) (*domain.Reply, error) {
	role := in.Turn.Session.UserRole

	if role == domain.RoleHR && s.candidates != nil {
		stats, err := s.candidates.Stats(ctx, s.now().Add(-recentWindow))
		if err == nil {
			return hrDashboardReply(stats), nil
		}
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("candidate stats failed")
	}

	return &domain.Reply{
		Content: s.catalog.Role(role).ContextualHelp,
		Type:    domain.TypeContextualHelp,
	}, nil
}

func hrDashboardReply(stats domain.CandidateStats) *domain.Reply {
	var b strings.Builder
	b.WriteString("I'm here to help! Let me share what's happening in your HR dashboard right now:\n\n")
	if stats.NewThisWeek > 0 {
		fmt.Fprintf(&b, "📈 **Recent Activity:** %d new candidates this week\n", stats.NewThisWeek)
		fmt.Fprintf(&b, "⏳ **Pending Reviews:** %d candidates awaiting action\n\n", stats.Pending)
		b.WriteString("Would you like me to:\n• Show details about new candidates\n• Review pending assignments\n• Check manager workloads\n• Generate performance reports")
	} else {
		b.WriteString("📊 **Current Status:** No new candidates this week\n")
		fmt.Fprintf(&b, "⏳ **Pending Reviews:** %d candidates in pipeline\n\n", stats.Pending)
		b.WriteString("I can help you with:\n• Reviewing existing candidates\n• Planning recruitment strategies\n• Checking team performance\n• Drafting job postings")
	}
	return &domain.Reply{Content: b.String(), Type: domain.TypeContextualHelp}
}
