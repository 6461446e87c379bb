package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mo-nish/Invensis-Requiter/internal/adapters/storage/memory"
	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()

	sess := &domain.Session{ID: "s1", UserRole: domain.RoleHR, CurrentPage: "/"}
	require.NoError(t, store.CreateSession(ctx, sess))
	assert.ErrorIs(t, store.CreateSession(ctx, sess), domain.ErrSessionExists)

	// caller mutations do not leak into the store
	sess.CurrentPage = "/changed"
	got, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/", got.CurrentPage)

	got.CurrentPage = "/hr/candidates"
	require.NoError(t, store.UpdateSession(ctx, got))
	got, err = store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "/hr/candidates", got.CurrentPage)

	require.NoError(t, store.DeleteSession(ctx, "s1"))
	_, err = store.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, store.UpdateSession(ctx, got), domain.ErrSessionNotFound)
}

func TestSessionStoreListSessionsOrdered(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.CreateSession(ctx, &domain.Session{ID: "b", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, store.CreateSession(ctx, &domain.Session{ID: "a", CreatedAt: base}))

	list, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.SessionID("a"), list[0].ID)
	assert.Equal(t, domain.SessionID("b"), list[1].ID)
}

func TestMessageStoreKeepsAppendOrder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewMessageStore()

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, store.AppendMessage(ctx, &domain.Message{SessionID: "s1", Content: content}))
	}

	all, err := store.GetMessagesBySession(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Content)

	last, err := store.GetMessagesBySession(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "two", last[0].Content)
	assert.Equal(t, "three", last[1].Content)

	n, err := store.CountMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, store.DeleteMessages(ctx, "s1"))
	n, err = store.CountMessages(ctx, "s1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCandidateStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	soon := now.Add(10 * time.Minute)
	later := now.Add(2 * time.Hour)

	store := memory.NewCandidateStore(
		domain.Candidate{ID: "c1", Name: "Late", Status: domain.CandidateStatusAssigned, ManagerEmail: "m@x", InterviewAt: &later, CreatedAt: now.Add(-30 * 24 * time.Hour)},
		domain.Candidate{ID: "c2", Name: "Soon", Status: domain.CandidateStatusAssigned, ManagerEmail: "m@x", InterviewAt: &soon, CreatedAt: now.Add(-2 * 24 * time.Hour)},
		domain.Candidate{ID: "c3", Name: "Pending", Status: domain.CandidateStatusPending, AssignedBy: "hr@x", CreatedAt: now.Add(-time.Hour)},
		domain.Candidate{ID: "c4", Name: "Other", Status: domain.CandidateStatusAssigned, ManagerEmail: "other@x", CreatedAt: now},
	)

	assigned, err := store.ListByManager(ctx, "m@x", domain.CandidateStatusAssigned, 0)
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.Equal(t, "Soon", assigned[0].Name)

	limited, err := store.ListByManager(ctx, "m@x", domain.CandidateStatusAssigned, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	pending, err := store.ListByRecruiter(ctx, "hr@x", domain.CandidateStatusPending, 2)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "c3", pending[0].ID)

	stats, err := store.Stats(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.CandidateStats{Total: 4, Pending: 1, Assigned: 3, NewThisWeek: 3}, stats)
}
