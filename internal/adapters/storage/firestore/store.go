package firestore

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const (
	sessionsCollection = "chat_sessions"
	messagesCollection = "messages"
)

type Store struct {
	client *firestore.Client
	now    func() time.Time
}

var (
	_ domain.SessionStore = (*Store)(nil)
	_ domain.MessageStore = (*Store)(nil)
)

// NewStore creates a Firestore store for sessions and transcripts.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection(sessionsCollection)
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection(messagesCollection)
}

func (s *Store) messageDoc(sessionID domain.SessionID, msgID domain.MessageID) *firestore.DocumentRef {
	return s.messagesCol(sessionID).Doc(string(msgID))
}

// mapError turns Firestore status codes into domain sentinels.
func mapError(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("firestore %s: %w", op, domain.ErrSessionNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("firestore %s: %w", op, domain.ErrSessionExists)
	default:
		return fmt.Errorf("firestore %s: %w", op, err)
	}
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	if _, err := s.sessionDoc(session.ID).Create(ctx, toSessionDoc(session)); err != nil {
		return mapError("CreateSession", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.sessionDoc(session.ID).Update(ctx, []firestore.Update{
		{Path: "current_page", Value: session.CurrentPage},
		{Path: "user_name", Value: session.UserName},
		{Path: "updated_at", Value: session.UpdatedAt},
	})
	if err != nil {
		return mapError("UpdateSession", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		return nil, mapError("GetSession", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}
	return doc.toDomain(id), nil
}

func (s *Store) DeleteSession(ctx context.Context, id domain.SessionID) error {
	if _, err := s.sessionDoc(id).Delete(ctx, firestore.Exists); err != nil {
		return mapError("DeleteSession", err)
	}
	return nil
}

func (s *Store) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	iter := s.sessionsCol().OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*domain.Session
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore ListSessions: %w", err)
		}

		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode sessionDoc: %w", err)
		}
		out = append(out, doc.toDomain(domain.SessionID(snap.Ref.ID)))
	}
	return out, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	doc := toMessageDoc(msg, s.now())

	if _, err := s.messageDoc(msg.SessionID, msg.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

// GetMessagesBySession reads the newest limit messages and returns them in
// append order.
func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	q := s.messagesCol(sessionID).OrderBy("appended_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Message
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
		}

		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode messageDoc: %w", err)
		}
		out = append(out, doc.toDomain(domain.MessageID(snap.Ref.ID), sessionID))
	}

	slices.Reverse(out)
	return out, nil
}

func (s *Store) CountMessages(ctx context.Context, sessionID domain.SessionID) (int, error) {
	iter := s.messagesCol(sessionID).Select().Documents(ctx)
	defer iter.Stop()

	n := 0
	for {
		_, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("firestore CountMessages: %w", err)
		}
		n++
	}
}

func (s *Store) DeleteMessages(ctx context.Context, sessionID domain.SessionID) error {
	refs, err := s.messagesCol(sessionID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("firestore DeleteMessages: %w", err)
	}
	if len(refs) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	for _, ref := range refs {
		if _, err := bw.Delete(ref); err != nil {
			bw.End()
			return fmt.Errorf("firestore DeleteMessages: %w", err)
		}
	}
	bw.End()
	return nil
}
