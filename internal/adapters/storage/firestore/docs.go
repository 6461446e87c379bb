package firestore

import (
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	UserID      string    `firestore:"user_id"`
	UserRole    string    `firestore:"user_role"`
	UserName    string    `firestore:"user_name"`
	UserEmail   string    `firestore:"user_email"`
	CurrentPage string    `firestore:"current_page"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

type actionDoc struct {
	Label  string `firestore:"label"`
	Type   string `firestore:"type,omitempty"`
	URL    string `firestore:"url,omitempty"`
	Action string `firestore:"action,omitempty"`
	Icon   string `firestore:"icon,omitempty"`
}

type metadataDoc struct {
	ActionType        string         `firestore:"action_type,omitempty"`
	Actions           []actionDoc    `firestore:"actions,omitempty"`
	DataVisualization map[string]any `firestore:"data_visualization,omitempty"`
	Urgency           string         `firestore:"urgency,omitempty"`
	Data              map[string]any `firestore:"data,omitempty"`
}

type messageDoc struct {
	Sender      string      `firestore:"sender"`
	Content     string      `firestore:"content"`
	MessageType string      `firestore:"message_type"`
	Metadata    metadataDoc `firestore:"metadata"`
	CreatedAt   time.Time   `firestore:"created_at"`
	// AppendedAt orders the transcript; CreatedAt can tie within one exchange.
	AppendedAt time.Time `firestore:"appended_at"`
}

func toSessionDoc(s *domain.Session) sessionDoc {
	return sessionDoc{
		UserID:      string(s.UserID),
		UserRole:    string(s.UserRole),
		UserName:    s.UserName,
		UserEmail:   s.UserEmail,
		CurrentPage: s.CurrentPage,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (d sessionDoc) toDomain(id domain.SessionID) *domain.Session {
	return &domain.Session{
		ID:          id,
		UserID:      domain.UserID(d.UserID),
		UserRole:    domain.ParseRole(d.UserRole),
		UserName:    d.UserName,
		UserEmail:   d.UserEmail,
		CurrentPage: d.CurrentPage,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toMessageDoc(m *domain.Message, appendedAt time.Time) messageDoc {
	actions := make([]actionDoc, 0, len(m.Metadata.Actions))
	for _, a := range m.Metadata.Actions {
		actions = append(actions, actionDoc(a))
	}
	if len(actions) == 0 {
		actions = nil
	}

	return messageDoc{
		Sender:      string(m.Sender),
		Content:     m.Content,
		MessageType: m.Type.String(),
		Metadata: metadataDoc{
			ActionType:        m.Metadata.ActionType,
			Actions:           actions,
			DataVisualization: m.Metadata.DataVisualization,
			Urgency:           string(m.Metadata.Urgency),
			Data:              m.Metadata.Data,
		},
		CreatedAt:  m.CreatedAt,
		AppendedAt: appendedAt,
	}
}

func (d messageDoc) toDomain(id domain.MessageID, sessionID domain.SessionID) *domain.Message {
	var actions []domain.Action
	for _, a := range d.Metadata.Actions {
		actions = append(actions, domain.Action(a))
	}

	return &domain.Message{
		ID:        id,
		SessionID: sessionID,
		Sender:    domain.Sender(d.Sender),
		Content:   d.Content,
		Type:      domain.ParseMessageType(d.MessageType),
		Metadata: domain.Metadata{
			ActionType:        d.Metadata.ActionType,
			Actions:           actions,
			DataVisualization: d.Metadata.DataVisualization,
			Urgency:           domain.Urgency(d.Metadata.Urgency),
			Data:              d.Metadata.Data,
		},
		CreatedAt: d.CreatedAt,
	}
}
