// Package session maps opaque bearer tokens to user ids.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"grouporder/internal/domain"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Store creates, resolves and revokes session tokens. Resolve returns
// domain.ErrUnauthenticated for unknown or expired tokens.
type Store interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// RedisStore keeps sessions as {prefix}:session:{token} keys with a TTL.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(token string) string {
	if s.prefix == "" {
		return "session:" + token
	}
	return fmt.Sprintf("%s:session:%s", s.prefix, token)
}

func (s *RedisStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), userID, s.ttl).Err(); err != nil {
		return "", domain.Upstream("create session", err)
	}
	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthenticated
	}
	userID, err := s.client.Get(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrUnauthenticated
	}
	if err != nil {
		return "", domain.Upstream("resolve session", err)
	}
	return userID, nil
}

func (s *RedisStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return domain.Upstream("revoke session", err)
	}
	return nil
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore is the in-process Store used with the memory driver.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memorySession),
	}
}

func (s *MemoryStore) Create(_ context.Context, userID string) (string, error) {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = memorySession{userID: userID, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return "", domain.ErrUnauthenticated
	}
	if s.ttl > 0 && !s.now().Before(sess.expiresAt) {
		delete(s.sessions, token)
		return "", domain.ErrUnauthenticated
	}
	return sess.userID, nil
}

func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
