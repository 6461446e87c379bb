// Package redisstore stores sessions and transcripts in Redis. Keys expire after
// the session timeout, so idle sessions disappear even without the cleanup
// job.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Mo-nish/Invensis-Requiter/internal/domain"
)

const (
	defaultKeyPrefix  = "chat:"
	sessionKeyPart    = "session:"
	transcriptKeyPart = "transcript:"
	defaultTTL        = time.Hour
	scanBatch         = 100
)

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the expiry applied to session and transcript keys on every write.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithTranscriptCap keeps at most n messages per transcript. n <= 0 keeps all.
func WithTranscriptCap(n int) Option {
	return func(s *Store) {
		s.transcriptCap = n
	}
}

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

type Store struct {
	client        redis.UniversalClient
	ttl           time.Duration
	transcriptCap int
	prefix        string
}

var (
	_ domain.SessionStore = (*Store)(nil)
	_ domain.MessageStore = (*Store)(nil)
)

func NewStore(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		ttl:    defaultTTL,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) sessionKey(id domain.SessionID) string {
	return s.prefix + sessionKeyPart + string(id)
}

func (s *Store) transcriptKey(id domain.SessionID) string {
	return s.prefix + transcriptKeyPart + string(id)
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	val, err := json.Marshal(toSessionRecord(session))
	if err != nil {
		return fmt.Errorf("redis CreateSession encode: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.sessionKey(session.ID), val, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis CreateSession: %w", err)
	}
	if !ok {
		return domain.ErrSessionExists
	}
	return nil
}

// UpdateSession replaces a session that must still exist and refreshes the
// expiry of both keys.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	key := s.sessionKey(session.ID)

	val, err := json.Marshal(toSessionRecord(session))
	if err != nil {
		return fmt.Errorf("redis UpdateSession encode: %w", err)
	}

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrSessionNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, s.ttl)
			pipe.Expire(ctx, s.transcriptKey(session.ID), s.ttl)
			return nil
		})
		return err
	}, key)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("redis UpdateSession: %w", err)
	}
	return err
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	val, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GetSession: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("redis GetSession decode: %w", err)
	}
	return rec.toDomain(), nil
}

func (s *Store) DeleteSession(ctx context.Context, id domain.SessionID) error {
	n, err := s.client.Del(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis DeleteSession: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// ListSessions scans the session keyspace. Keys that expire mid-scan are
// skipped.
func (s *Store) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	var (
		cursor uint64
		out    []*domain.Session
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+sessionKeyPart+"*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("redis ListSessions scan: %w", err)
		}

		if len(keys) > 0 {
			vals, err := s.client.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("redis ListSessions mget: %w", err)
			}
			for _, v := range vals {
				str, ok := v.(string)
				if !ok {
					continue
				}
				var rec sessionRecord
				if err := json.Unmarshal([]byte(str), &rec); err != nil {
					return nil, fmt.Errorf("redis ListSessions decode: %w", err)
				}
				out = append(out, rec.toDomain())
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	sortSessions(out)
	return out, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	val, err := json.Marshal(toMessageRecord(msg))
	if err != nil {
		return fmt.Errorf("redis AppendMessage encode: %w", err)
	}

	key := s.transcriptKey(msg.SessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, val)
		if s.transcriptCap > 0 {
			pipe.LTrim(ctx, key, int64(-s.transcriptCap), -1)
		}
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	start, stop := rangeFor(limit)

	vals, err := s.client.LRange(ctx, s.transcriptKey(sessionID), start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis GetMessagesBySession: %w", err)
	}

	out := make([]*domain.Message, 0, len(vals))
	for _, v := range vals {
		var rec messageRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			return nil, fmt.Errorf("redis GetMessagesBySession decode: %w", err)
		}
		out = append(out, rec.toDomain(sessionID))
	}
	return out, nil
}

func (s *Store) CountMessages(ctx context.Context, sessionID domain.SessionID) (int, error) {
	n, err := s.client.LLen(ctx, s.transcriptKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis CountMessages: %w", err)
	}
	return int(n), nil
}

func (s *Store) DeleteMessages(ctx context.Context, sessionID domain.SessionID) error {
	if err := s.client.Del(ctx, s.transcriptKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis DeleteMessages: %w", err)
	}
	return nil
}

// rangeFor maps a "last N" limit onto LRANGE indexes.
func rangeFor(limit int) (start, stop int64) {
	if limit <= 0 {
		return 0, -1
	}
	return int64(-limit), -1
}
