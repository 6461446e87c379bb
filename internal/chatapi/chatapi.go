// Package chatapi holds the JSON contract between the assistant API and the
// chat widget. Every response carries a boolean success field; failures
// carry an error string.
package chatapi

import (
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// Route paths.
const (
	PathSession     = "/api/chatbot/session"
	PathSessionInfo = "/api/chatbot/session/{sessionId}"
	PathSessionPage = "/api/chatbot/session/{sessionId}/page"
	PathMessage     = "/api/chatbot/message"
	PathQuickAction = "/api/chatbot/quick-action"
	PathReminders   = "/api/chatbot/meeting-reminders"
	PathSuggestions = "/api/chatbot/proactive-suggestions"
	PathHealth      = "/api/chatbot/health"
	PathCleanup     = "/api/chatbot/cleanup"
)

// Identity headers set by the portal gateway.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
)

// Envelope is embedded in every response.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type CreateSessionRequest struct {
	CurrentPage string `json:"current_page"`
}

type CreateSessionResponse struct {
	Envelope
	SessionID      string               `json:"session_id,omitempty"`
	UserRole       string               `json:"user_role,omitempty"`
	UserName       string               `json:"user_name,omitempty"`
	WelcomeMessage string               `json:"welcome_message,omitempty"`
	QuickActions   []domain.QuickAction `json:"quick_actions,omitempty"`
}

type UpdatePageRequest struct {
	Page *string `json:"page"`
}

type UpdatePageResponse struct {
	Envelope
	Message string `json:"message,omitempty"`
}

type SendMessageRequest struct {
	SessionID      string                  `json:"session_id"`
	Message        string                  `json:"message"`
	CurrentPage    string                  `json:"current_page,omitempty"`
	EmotionContext string                  `json:"emotion_context,omitempty"`
	UserContext    *domain.ActivityContext `json:"user_context,omitempty"`
}

type QuickActionRequest struct {
	SessionID   string `json:"session_id"`
	Action      string `json:"action"`
	CurrentPage string `json:"current_page,omitempty"`
}

// ExchangeResponse is returned by both the message and quick-action routes.
// QuickActions is nil when the response does not replace the displayed set.
type ExchangeResponse struct {
	Envelope
	Response     string               `json:"response,omitempty"`
	MessageType  domain.MessageType   `json:"message_type"`
	QuickActions []domain.QuickAction `json:"quick_actions,omitempty"`
	Metadata     domain.Metadata      `json:"metadata"`
	SessionID    string               `json:"session_id,omitempty"`
}

type RemindersRequest struct {
	SessionID   string `json:"session_id"`
	CurrentPage string `json:"current_page,omitempty"`
}

type RemindersResponse struct {
	Envelope
	Reminders []domain.Notification `json:"reminders"`
}

type SuggestionsRequest struct {
	SessionID       string                 `json:"session_id"`
	CurrentPage     string                 `json:"current_page,omitempty"`
	UserActivity    domain.ActivityContext `json:"user_activity"`
	LastInteraction int64                  `json:"last_interaction,omitempty"`
}

type SuggestionsResponse struct {
	Envelope
	Suggestions []domain.Notification `json:"suggestions"`
}

type SessionInfo struct {
	SessionID    string               `json:"session_id"`
	UserRole     string               `json:"user_role"`
	UserName     string               `json:"user_name,omitempty"`
	CurrentPage  string               `json:"current_page"`
	MessageCount int                  `json:"message_count"`
	LastActivity time.Time            `json:"last_activity"`
	QuickActions []domain.QuickAction `json:"quick_actions"`
}

type SessionInfoResponse struct {
	Envelope
	SessionInfo *SessionInfo `json:"session_info,omitempty"`
}

type HealthResponse struct {
	Envelope
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

type CleanupResponse struct {
	Envelope
	Message        string `json:"message,omitempty"`
	SessionsBefore int    `json:"sessions_before"`
	SessionsAfter  int    `json:"sessions_after"`
	CleanedCount   int    `json:"cleaned_count"`
}

// ErrorResponse is the body of every failed call.
func ErrorResponse(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}
