package redisstore

import (
	"sort"
	"time"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

type sessionRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	UserRole    string    `json:"user_role"`
	UserName    string    `json:"user_name,omitempty"`
	UserEmail   string    `json:"user_email,omitempty"`
	CurrentPage string    `json:"current_page"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type messageRecord struct {
	ID        string             `json:"id"`
	Sender    string             `json:"sender"`
	Content   string             `json:"content"`
	Type      domain.MessageType `json:"message_type"`
	Metadata  domain.Metadata    `json:"metadata"`
	CreatedAt time.Time          `json:"created_at"`
}

func toSessionRecord(s *domain.Session) sessionRecord {
	return sessionRecord{
		ID:          string(s.ID),
		UserID:      string(s.UserID),
		UserRole:    string(s.UserRole),
		UserName:    s.UserName,
		UserEmail:   s.UserEmail,
		CurrentPage: s.CurrentPage,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (r sessionRecord) toDomain() *domain.Session {
	return &domain.Session{
		ID:          domain.SessionID(r.ID),
		UserID:      domain.UserID(r.UserID),
		UserRole:    domain.ParseRole(r.UserRole),
		UserName:    r.UserName,
		UserEmail:   r.UserEmail,
		CurrentPage: r.CurrentPage,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toMessageRecord(m *domain.Message) messageRecord {
	return messageRecord{
		ID:        string(m.ID),
		Sender:    string(m.Sender),
		Content:   m.Content,
		Type:      m.Type,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}
}

func (r messageRecord) toDomain(sessionID domain.SessionID) *domain.Message {
	return &domain.Message{
		ID:        domain.MessageID(r.ID),
		SessionID: sessionID,
		Sender:    domain.Sender(r.Sender),
		Content:   r.Content,
		Type:      r.Type,
		Metadata:  r.Metadata,
		CreatedAt: r.CreatedAt,
	}
}

func sortSessions(list []*domain.Session) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
