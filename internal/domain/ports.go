package domain

import (
	"context"
	"time"
)

// LLMClient defines how the assistant falls back to a language model.
type LLMClient interface {
	GenerateReply(ctx context.Context, prompt string, convCtx ConversationContext) (string, error)
}

// ConversationContext gives the LLM minimal context about the conversation.
type ConversationContext struct {
	SessionID   SessionID
	UserRole    Role
	UserName    string
	CurrentPage string
	Emotion     string // widget-reported mood, may be empty
	History     []*Message
}

// Turn is one request to the Responder.
type Turn struct {
	Session        *Session
	Text           string
	History        []*Message
	EmotionContext string
	Activity       *ActivityContext
}

// Responder produces the assistant side of an exchange. Its reasoning is
// opaque to the session and exchange logic.
type Responder interface {
	Respond(ctx context.Context, turn Turn) (*Reply, error)
	QuickAction(ctx context.Context, session *Session, action string) (*Reply, error)
	Welcome(session *Session) string
	QuickActions(role Role) []QuickAction
}

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
	DeleteSession(ctx context.Context, id SessionID) error
	ListSessions(ctx context.Context) ([]*Session, error)
}

// MessageStore defines transcript persistence.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *Message) error
	// GetMessagesBySession returns the last limit messages in append order.
	// limit <= 0 returns all.
	GetMessagesBySession(ctx context.Context, sessionID SessionID, limit int) ([]*Message, error)
	CountMessages(ctx context.Context, sessionID SessionID) (int, error)
	DeleteMessages(ctx context.Context, sessionID SessionID) error
}

// CandidateDirectory reads candidate records owned by the portal.
type CandidateDirectory interface {
	ListByManager(ctx context.Context, managerEmail, status string, limit int) ([]Candidate, error)
	ListByRecruiter(ctx context.Context, hrEmail, status string, limit int) ([]Candidate, error)
	Stats(ctx context.Context, since time.Time) (CandidateStats, error)
}
