package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// SessionStore keeps sessions in a map. Sessions are copied on the way in
// and out so callers never share state with the store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]domain.Session),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return domain.ErrSessionExists
	}

	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) UpdateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; !exists {
		return domain.ErrSessionNotFound
	}

	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return &sess, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// ListSessions returns every session, oldest first.
func (s *SessionStore) ListSessions(_ context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess := sess
		result = append(result, &sess)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
