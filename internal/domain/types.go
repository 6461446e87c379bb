package domain

import (
	"strings"
	"time"
)

type SessionID string
type UserID string
type MessageID string

// Sender identifies who produced a transcript entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Role is the portal role of the person behind a session.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleHR      Role = "hr"
	RoleManager Role = "manager"
	RoleCluster Role = "cluster"
	RoleVisitor Role = "visitor"
)

// ParseRole normalizes a role coming from the portal. Unknown or empty
// values map to RoleVisitor.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleHR:
		return RoleHR
	case RoleManager:
		return RoleManager
	case RoleCluster:
		return RoleCluster
	default:
		return RoleVisitor
	}
}

// Authenticated reports whether the role belongs to a signed-in portal user.
func (r Role) Authenticated() bool {
	return r != RoleVisitor && r != ""
}

// Urgency is a server-assigned severity hint for notifications.
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// IsHigh is the only urgency test the widget relies on: anything that is
// not "high" only updates the passive indicator.
func (u Urgency) IsHigh() bool {
	return strings.EqualFold(string(u), string(UrgencyHigh))
}

// Identity is who the portal gateway says is calling. It is never
// verified here.
type Identity struct {
	UserID UserID
	Role   Role
	Name   string
	Email  string
}

// VisitorIdentity is used when the gateway sent no identity headers.
func VisitorIdentity() Identity {
	return Identity{Role: RoleVisitor}
}

type Timestamp = time.Time
