package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/metrics"
	"github.com/Mo-nish/Invensis-Requiter/internal/observability"
)

const (
	DefaultMaxHistory     = 10
	DefaultSessionTimeout = time.Hour
)

// Options tunes a Service. Zero values take the defaults.
type Options struct {
	MaxHistory     int
	SessionTimeout time.Duration
	Metrics        *metrics.Metrics
	Now            func() time.Time
}

// Service is the session manager and message exchange of the assistant.
type Service struct {
	responder    domain.Responder
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	metrics      *metrics.Metrics
	now          func() time.Time
	newID        func() string

	maxHistory     int
	sessionTimeout time.Duration
	locks          *sessionLocks
}

func NewService(
	responder domain.Responder,
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
	opts Options,
) *Service {
	s := &Service{
		responder:      responder,
		sessionStore:   sessionStore,
		messageStore:   messageStore,
		metrics:        opts.Metrics,
		now:            opts.Now,
		newID:          uuid.NewString,
		maxHistory:     opts.MaxHistory,
		sessionTimeout: opts.SessionTimeout,
		locks:          newSessionLocks(),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxHistory <= 0 {
		s.maxHistory = DefaultMaxHistory
	}
	if s.sessionTimeout <= 0 {
		s.sessionTimeout = DefaultSessionTimeout
	}
	return s
}

// ─────────────────────────────────────────────
// Session lifecycle
// ─────────────────────────────────────────────

type StartSessionInput struct {
	Identity    domain.Identity
	CurrentPage string
}

type StartSessionOutput struct {
	Session      *domain.Session
	Welcome      string
	QuickActions []domain.QuickAction
}

// StartSession creates a session and records the welcome message as the
// first transcript entry.
func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()
	role := domain.ParseRole(string(in.Identity.Role))

	page := strings.TrimSpace(in.CurrentPage)
	if page == "" {
		page = "/"
	}

	session := &domain.Session{
		ID:          domain.SessionID(s.newID()),
		UserID:      in.Identity.UserID,
		UserRole:    role,
		UserName:    in.Identity.Name,
		UserEmail:   in.Identity.Email,
		CurrentPage: page,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	log := observability.LoggerFromContext(ctx).With().
		Str("session_id", string(session.ID)).
		Str("user_role", string(role)).
		Logger()

	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Error().Err(err).Msg("failed to create session")
		return nil, fmt.Errorf("create session: %w", err)
	}

	welcome := s.responder.Welcome(session)
	if welcome != "" {
		msg := s.newMessage(session.ID, domain.SenderAssistant, welcome, domain.TypeWelcome, domain.Metadata{})
		if err := s.appendMessage(ctx, msg); err != nil {
			log.Error().Err(err).Msg("failed to append welcome message")
			return nil, err
		}
	}

	if s.metrics != nil {
		s.metrics.SessionsCreatedTotal.Inc()
	}
	log.Info().Str("page", page).Msg("session started")

	return &StartSessionOutput{
		Session:      session,
		Welcome:      welcome,
		QuickActions: s.responder.QuickActions(role),
	}, nil
}

type UpdatePageInput struct {
	SessionID domain.SessionID
	Page      string
}

// UpdatePage records the page the user is on. Setting the current page
// again is a no-op and reports changed=false.
func (s *Service) UpdatePage(ctx context.Context, in UpdatePageInput) (changed bool, err error) {
	unlock := s.locks.lock(in.SessionID)
	defer unlock()

	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return false, fmt.Errorf("update page: %w", err)
	}

	return s.setPage(ctx, session, in.Page)
}

func (s *Service) setPage(ctx context.Context, session *domain.Session, page string) (bool, error) {
	page = strings.TrimSpace(page)
	if page == "" || page == session.CurrentPage {
		return false, nil
	}

	session.CurrentPage = page
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		return false, fmt.Errorf("update session: %w", err)
	}
	return true, nil
}

// ─────────────────────────────────────────────
// Message exchange
// ─────────────────────────────────────────────

type SendMessageInput struct {
	SessionID      domain.SessionID
	Text           string
	CurrentPage    string
	EmotionContext string
	Activity       *domain.ActivityContext
}

// ExchangeOutput is the result of a message or a quick action. UserMessage
// is nil for quick actions. QuickActions is nil when the displayed set
// should be left alone.
type ExchangeOutput struct {
	Session          *domain.Session
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
	QuickActions     []domain.QuickAction
}

// SendMessage appends exactly one user message and one assistant reply.
// The reply is computed before anything is written, so a failed exchange
// leaves the transcript untouched.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*ExchangeOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	unlock := s.locks.lock(in.SessionID)
	defer unlock()

	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	log := observability.LoggerFromContext(ctx).With().
		Str("session_id", string(session.ID)).
		Str("user_role", string(session.UserRole)).
		Logger()

	if in.CurrentPage != "" {
		session.CurrentPage = strings.TrimSpace(in.CurrentPage)
	}

	history, err := s.messageStore.GetMessagesBySession(ctx, session.ID, s.maxHistory)
	if err != nil {
		log.Error().Err(err).Msg("failed to load history")
		return nil, fmt.Errorf("load history: %w", err)
	}

	reply, err := s.responder.Respond(ctx, domain.Turn{
		Session:        session,
		Text:           text,
		History:        history,
		EmotionContext: in.EmotionContext,
		Activity:       in.Activity,
	})
	if err != nil {
		log.Error().Err(err).Msg("responder failed")
		return nil, fmt.Errorf("respond: %w", err)
	}

	userMsg := s.newMessage(session.ID, domain.SenderUser, text, domain.TypeText, domain.Metadata{})
	if err := s.appendMessage(ctx, userMsg); err != nil {
		log.Error().Err(err).Msg("failed to append user message")
		return nil, err
	}

	assistantMsg := s.newMessage(session.ID, domain.SenderAssistant, reply.Content, reply.Type, reply.Metadata)
	if err := s.appendMessage(ctx, assistantMsg); err != nil {
		log.Error().Err(err).Msg("failed to append assistant message")
		return nil, err
	}

	if err := s.touch(ctx, session); err != nil {
		log.Error().Err(err).Msg("failed to update session")
		return nil, err
	}

	log.Info().Str("message_type", reply.Type.String()).Msg("message exchanged")

	return &ExchangeOutput{
		Session:          session,
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		QuickActions:     s.responder.QuickActions(session.UserRole),
	}, nil
}

type QuickActionInput struct {
	SessionID   domain.SessionID
	Action      string
	CurrentPage string
}

// InvokeQuickAction answers a quick action. Only the assistant reply is
// recorded; the action itself leaves no user entry in the transcript.
func (s *Service) InvokeQuickAction(ctx context.Context, in QuickActionInput) (*ExchangeOutput, error) {
	action := strings.TrimSpace(in.Action)
	if action == "" {
		return nil, fmt.Errorf("action is required: %w", domain.ErrInvalidInput)
	}

	unlock := s.locks.lock(in.SessionID)
	defer unlock()

	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, fmt.Errorf("quick action: %w", err)
	}

	log := observability.LoggerFromContext(ctx).With().
		Str("session_id", string(session.ID)).
		Str("action", action).
		Logger()

	if in.CurrentPage != "" {
		session.CurrentPage = strings.TrimSpace(in.CurrentPage)
	}

	reply, err := s.responder.QuickAction(ctx, session, action)
	if err != nil {
		log.Error().Err(err).Msg("quick action failed")
		return nil, fmt.Errorf("quick action: %w", err)
	}

	msg := s.newMessage(session.ID, domain.SenderAssistant, reply.Content, reply.Type, reply.Metadata)
	if err := s.appendMessage(ctx, msg); err != nil {
		log.Error().Err(err).Msg("failed to append quick action reply")
		return nil, err
	}

	if err := s.touch(ctx, session); err != nil {
		log.Error().Err(err).Msg("failed to update session")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.QuickActionsTotal.WithLabelValues(action).Inc()
	}
	log.Info().Str("action_type", reply.Metadata.ActionType).Msg("quick action answered")

	return &ExchangeOutput{
		Session:          session,
		AssistantMessage: msg,
	}, nil
}

// ─────────────────────────────────────────────
// Inspection and maintenance
// ─────────────────────────────────────────────

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	session, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

type SessionSummary struct {
	Session      *domain.Session
	MessageCount int
	QuickActions []domain.QuickAction
}

func (s *Service) GetSessionSummary(ctx context.Context, id domain.SessionID) (*SessionSummary, error) {
	session, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("session summary: %w", err)
	}

	count, err := s.messageStore.CountMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	return &SessionSummary{
		Session:      session,
		MessageCount: count,
		QuickActions: s.responder.QuickActions(session.UserRole),
	}, nil
}

// GetTranscript returns the last limit messages of a session. limit <= 0
// returns all of them.
func (s *Service) GetTranscript(ctx context.Context, id domain.SessionID, limit int) ([]*domain.Message, error) {
	if _, err := s.sessionStore.GetSession(ctx, id); err != nil {
		return nil, fmt.Errorf("transcript: %w", err)
	}
	return s.messageStore.GetMessagesBySession(ctx, id, limit)
}

type CleanupResult struct {
	Before  int
	After   int
	Removed int
}

// CleanupExpired deletes sessions idle for longer than the session timeout,
// together with their transcripts.
func (s *Service) CleanupExpired(ctx context.Context) (*CleanupResult, error) {
	log := observability.LoggerFromContext(ctx)

	sessions, err := s.sessionStore.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	cutoff := s.now().Add(-s.sessionTimeout)
	res := &CleanupResult{Before: len(sessions)}

	for _, sess := range sessions {
		if !sess.UpdatedAt.Before(cutoff) {
			continue
		}
		removed, err := s.deleteIfExpired(ctx, sess.ID, cutoff)
		if err != nil {
			log.Warn().Err(err).Str("session_id", string(sess.ID)).Msg("failed to delete expired session")
			continue
		}
		if removed {
			res.Removed++
		}
	}
	res.After = res.Before - res.Removed

	if s.metrics != nil {
		s.metrics.RecordCleanup(res.Removed, res.After)
	}
	if res.Removed > 0 {
		log.Info().Int("removed", res.Removed).Int("remaining", res.After).Msg("expired sessions cleaned up")
	}
	return res, nil
}

// deleteIfExpired re-reads the session under its lock so a session touched
// after the listing survives.
func (s *Service) deleteIfExpired(ctx context.Context, id domain.SessionID, cutoff time.Time) (bool, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, err := s.sessionStore.GetSession(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reload session: %w", err)
	}
	if !sess.UpdatedAt.Before(cutoff) {
		return false, nil
	}

	if err := s.messageStore.DeleteMessages(ctx, id); err != nil {
		return false, fmt.Errorf("delete messages: %w", err)
	}
	if err := s.sessionStore.DeleteSession(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return true, nil
}

// HealthCheck probes the session store with a lookup that must miss.
func (s *Service) HealthCheck(ctx context.Context) error {
	_, err := s.sessionStore.GetSession(ctx, domain.SessionID("healthcheck-"+s.newID()))
	if err == nil || errors.Is(err, domain.ErrSessionNotFound) {
		return nil
	}
	return fmt.Errorf("session store: %w", err)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func (s *Service) newMessage(
	sessionID domain.SessionID,
	sender domain.Sender,
	content string,
	msgType domain.MessageType,
	meta domain.Metadata,
) *domain.Message {
	return &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		Type:      msgType,
		Metadata:  meta,
		CreatedAt: s.now(),
	}
}

func (s *Service) appendMessage(ctx context.Context, msg *domain.Message) error {
	if err := s.messageStore.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("append %s message: %w", msg.Sender, err)
	}
	if s.metrics != nil {
		s.metrics.RecordMessage(string(msg.Sender), msg.Type.String())
	}
	return nil
}

func (s *Service) touch(ctx context.Context, session *domain.Session) error {
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}
