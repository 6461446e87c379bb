package memory

import (
	"context"
	"sync"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

// MessageStore keeps transcripts in append order.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.SessionID][]*domain.Message
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.SessionID][]*domain.Message),
	}
}

func (s *MessageStore) AppendMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

func (s *MessageStore) GetMessagesBySession(_ context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]*domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MessageStore) CountMessages(_ context.Context, sessionID domain.SessionID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.messages[sessionID]), nil
}

func (s *MessageStore) DeleteMessages(_ context.Context, sessionID domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.messages, sessionID)
	return nil
}
