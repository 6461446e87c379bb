package firestore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

func TestSessionDocRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	in := &domain.Session{
		ID: "s1", UserID: "u1", UserRole: domain.RoleManager, UserName: "Mo",
		UserEmail: "m@x", CurrentPage: "/manager/dashboard", CreatedAt: now, UpdatedAt: now.Add(time.Minute),
	}

	assert.Equal(t, in, toSessionDoc(in).toDomain("s1"))
}

func TestSessionDocUnknownRoleIsVisitor(t *testing.T) {
	got := sessionDoc{UserRole: "superuser"}.toDomain("s1")
	assert.Equal(t, domain.RoleVisitor, got.UserRole)
}

func TestMessageDocKeepsTypeAndMetadata(t *testing.T) {
	appended := time.Date(2026, 3, 10, 9, 0, 0, 5, time.UTC)
	in := &domain.Message{
		ID:        "m1",
		SessionID: "s1",
		Sender:    domain.SenderAssistant,
		Content:   "**hi**",
		Type:      domain.ParseMessageType("celebration"),
		Metadata: domain.Metadata{
			ActionType: "view_candidates",
			Actions:    []domain.Action{{Label: "Open", Type: "open_page", URL: "/hr/candidates"}},
			Urgency:    domain.UrgencyHigh,
			Data:       map[string]any{"total": 3},
		},
		CreatedAt: appended.Add(-5),
	}

	doc := toMessageDoc(in, appended)
	assert.Equal(t, "celebration", doc.MessageType)
	assert.Equal(t, appended, doc.AppendedAt)

	out := doc.toDomain("m1", "s1")
	assert.Equal(t, in, out)
	assert.Equal(t, domain.KindUnknown, out.Type.Kind)
}

func TestMessageDocWithoutActions(t *testing.T) {
	doc := toMessageDoc(&domain.Message{Type: domain.TypeText}, time.Time{})
	assert.Nil(t, doc.Metadata.Actions)
	assert.Nil(t, doc.toDomain("m", "s").Metadata.Actions)
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError("Get", status.Error(codes.NotFound, "missing")), domain.ErrSessionNotFound)
	assert.ErrorIs(t, mapError("Create", status.Error(codes.AlreadyExists, "dup")), domain.ErrSessionExists)

	other := mapError("Get", errors.New("boom"))
	assert.NotErrorIs(t, other, domain.ErrSessionNotFound)
	assert.Contains(t, other.Error(), "firestore Get: boom")
}
