package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mo-nish/Invensis-Requiter/internal/app/conversation"
	"github.com/Mo-nish/Invensis-Requiter/internal/app/notify"
	"github.com/Mo-nish/Invensis-Requiter/internal/chatapi"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
	"github.com/Mo-nish/Invensis-Requiter/internal/metrics"
	"github.com/Mo-nish/Invensis-Requiter/internal/observability"
)

const apiVersion = "1.0.0"

// Options wires the server. Metrics and Gatherer are optional; without a
// Gatherer /metrics is not mounted.
type Options struct {
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Now      func() time.Time
}

type Server struct {
	conv   *conversation.Service
	notify *notify.Service
	now    func() time.Time
}

func NewServer(conv *conversation.Service, notifySvc *notify.Service, opts Options) http.Handler {
	s := &Server{conv: conv, notify: notifySvc, now: opts.Now}
	if s.now == nil {
		s.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		withRequestContext,
		withLogging,
		withMetrics(opts.Metrics),
		middleware.Recoverer,
		withCORS,
		withIdentity,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Post(chatapi.PathSession, s.handleCreateSession)
	r.Get(chatapi.PathSessionInfo, s.handleGetSession)
	r.Put(chatapi.PathSessionPage, s.handleUpdatePage)
	r.Post(chatapi.PathMessage, s.handleSendMessage)
	r.Post(chatapi.PathQuickAction, s.handleQuickAction)
	r.Post(chatapi.PathReminders, s.handleReminders)
	r.Post(chatapi.PathSuggestions, s.handleSuggestions)
	r.Get(chatapi.PathHealth, s.handleHealth)
	r.Post(chatapi.PathCleanup, s.handleCleanup)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// ─────────────────────────────────────────────
// Session handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req chatapi.CreateSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}

	out, err := s.conv.StartSession(r.Context(), conversation.StartSessionInput{
		Identity:    identityFrom(r.Context()),
		CurrentPage: req.CurrentPage,
	})
	if err != nil {
		serviceError(w, r, err, "Failed to create chat session")
		return
	}

	writeJSON(w, http.StatusOK, chatapi.CreateSessionResponse{
		Envelope:       chatapi.Envelope{Success: true},
		SessionID:      string(out.Session.ID),
		UserRole:       string(out.Session.UserRole),
		UserName:       out.Session.UserName,
		WelcomeMessage: out.Welcome,
		QuickActions:   out.QuickActions,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(chi.URLParam(r, "sessionId"))

	sum, err := s.conv.GetSessionSummary(r.Context(), id)
	if err != nil {
		serviceError(w, r, err, "Failed to get session info")
		return
	}

	writeJSON(w, http.StatusOK, chatapi.SessionInfoResponse{
		Envelope:    chatapi.Envelope{Success: true},
		SessionInfo: toSessionInfo(sum),
	})
}

func (s *Server) handleUpdatePage(w http.ResponseWriter, r *http.Request) {
	var req chatapi.UpdatePageRequest
	if err := decodeJSON(r, &req, true); err != nil || req.Page == nil {
		badRequest(w, "Page not provided")
		return
	}

	_, err := s.conv.UpdatePage(r.Context(), conversation.UpdatePageInput{
		SessionID: domain.SessionID(chi.URLParam(r, "sessionId")),
		Page:      *req.Page,
	})
	if err != nil {
		serviceError(w, r, err, "Failed to update session page")
		return
	}

	writeJSON(w, http.StatusOK, chatapi.UpdatePageResponse{
		Envelope: chatapi.Envelope{Success: true},
		Message:  "Page updated successfully",
	})
}

// ─────────────────────────────────────────────
// Exchange handlers
// ─────────────────────────────────────────────

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req chatapi.SendMessageRequest
	if err := decodeJSON(r, &req, false); err != nil {
		badRequest(w, "No data provided")
		return
	}
	if req.SessionID == "" || req.Message == "" {
		badRequest(w, "Missing session_id or message")
		return
	}

	out, err := s.conv.SendMessage(r.Context(), conversation.SendMessageInput{
		SessionID:      domain.SessionID(req.SessionID),
		Text:           req.Message,
		CurrentPage:    req.CurrentPage,
		EmotionContext: req.EmotionContext,
		Activity:       req.UserContext,
	})
	if err != nil {
		serviceError(w, r, err, "Failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, toExchangeResponse(out))
}

func (s *Server) handleQuickAction(w http.ResponseWriter, r *http.Request) {
	var req chatapi.QuickActionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		badRequest(w, "No data provided")
		return
	}
	if req.SessionID == "" || req.Action == "" {
		badRequest(w, "Missing session_id or action")
		return
	}

	out, err := s.conv.InvokeQuickAction(r.Context(), conversation.QuickActionInput{
		SessionID:   domain.SessionID(req.SessionID),
		Action:      req.Action,
		CurrentPage: req.CurrentPage,
	})
	if err != nil {
		serviceError(w, r, err, "Failed to process quick action")
		return
	}

	writeJSON(w, http.StatusOK, toExchangeResponse(out))
}

// ─────────────────────────────────────────────
// Poll handlers
// ─────────────────────────────────────────────

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	var req chatapi.RemindersRequest
	if err := decodeJSON(r, &req, true); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	if req.SessionID == "" {
		badRequest(w, "No session ID provided")
		return
	}

	session, err := s.conv.GetSession(r.Context(), domain.SessionID(req.SessionID))
	if err != nil {
		serviceError(w, r, err, "Failed to get meeting reminders")
		return
	}

	reminders, err := s.notify.Reminders(r.Context(), session)
	if err != nil {
		serviceError(w, r, err, "Failed to get meeting reminders")
		return
	}

	writeJSON(w, http.StatusOK, chatapi.RemindersResponse{
		Envelope:  chatapi.Envelope{Success: true},
		Reminders: nonNil(reminders),
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	var req chatapi.SuggestionsRequest
	if err := decodeJSON(r, &req, true); err != nil {
		badRequest(w, "Invalid JSON body")
		return
	}
	if req.SessionID == "" {
		badRequest(w, "No session ID provided")
		return
	}

	session, err := s.conv.GetSession(r.Context(), domain.SessionID(req.SessionID))
	if err != nil {
		serviceError(w, r, err, "Failed to generate suggestions")
		return
	}

	suggestions := s.notify.Suggestions(r.Context(), notify.SuggestionsInput{
		Session:     session,
		CurrentPage: req.CurrentPage,
		Activity:    req.UserActivity,
	})

	writeJSON(w, http.StatusOK, chatapi.SuggestionsResponse{
		Envelope:    chatapi.Envelope{Success: true},
		Suggestions: nonNil(suggestions),
	})
}

// ─────────────────────────────────────────────
// Maintenance handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.conv.HealthCheck(r.Context()); err != nil {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("health check failed")
		writeJSON(w, http.StatusInternalServerError, chatapi.HealthResponse{
			Envelope:  chatapi.ErrorResponse(err.Error()),
			Status:    "unhealthy",
			Timestamp: s.now(),
		})
		return
	}

	writeJSON(w, http.StatusOK, chatapi.HealthResponse{
		Envelope:  chatapi.Envelope{Success: true},
		Status:    "healthy",
		Timestamp: s.now(),
		Version:   apiVersion,
	})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	if identityFrom(r.Context()).Role != domain.RoleAdmin {
		serviceError(w, r, domain.ErrForbidden, "")
		return
	}

	res, err := s.conv.CleanupExpired(r.Context())
	if err != nil {
		serviceError(w, r, err, "Failed to cleanup sessions")
		return
	}

	writeJSON(w, http.StatusOK, chatapi.CleanupResponse{
		Envelope:       chatapi.Envelope{Success: true},
		Message:        fmt.Sprintf("Cleaned up %d expired sessions", res.Removed),
		SessionsBefore: res.Before,
		SessionsAfter:  res.After,
		CleanedCount:   res.Removed,
	})
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toExchangeResponse(out *conversation.ExchangeOutput) chatapi.ExchangeResponse {
	msg := out.AssistantMessage
	return chatapi.ExchangeResponse{
		Envelope:     chatapi.Envelope{Success: true},
		Response:     msg.Content,
		MessageType:  msg.Type,
		QuickActions: out.QuickActions,
		Metadata:     msg.Metadata,
		SessionID:    string(out.Session.ID),
	}
}

func toSessionInfo(sum *conversation.SessionSummary) *chatapi.SessionInfo {
	return &chatapi.SessionInfo{
		SessionID:    string(sum.Session.ID),
		UserRole:     string(sum.Session.UserRole),
		UserName:     sum.Session.UserName,
		CurrentPage:  sum.Session.CurrentPage,
		MessageCount: sum.MessageCount,
		LastActivity: sum.Session.UpdatedAt,
		QuickActions: nonNil(sum.QuickActions),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

// decodeJSON decodes the request body into v. An empty body is accepted
// only when allowEmpty is set.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, chatapi.ErrorResponse(msg))
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

// serviceError maps service errors onto status codes. Unexpected errors are
// logged and answered with the generic fallback text.
func serviceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Unauthorized")
	case errors.Is(err, domain.ErrEmptyMessage):
		badRequest(w, "Message cannot be empty")
	case errors.Is(err, domain.ErrInvalidInput):
		badRequest(w, strings.TrimSuffix(err.Error(), ": "+domain.ErrInvalidInput.Error()))
	default:
		observability.LoggerFromContext(r.Context()).Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, fallback)
	}
}
