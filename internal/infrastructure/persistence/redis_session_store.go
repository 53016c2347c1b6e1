package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/checkout/internal/domain/checkout"
)

const sessionKeyPrefix = "checkout:session:"

// RedisSessionStore persists checkout sessions in Redis with a
// server-enforced TTL. The key's TTL is the session's lifetime; reads
// of a missing key report expiry, which also covers sessions that were
// never created.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

// Create stores the session under its ID with a TTL running to ExpiresAt
func (s *RedisSessionStore) Create(ctx context.Context, session *checkout.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return checkout.ErrSessionExpired
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get fetches a session by ID. A missing or expired session returns
// checkout.ErrSessionExpired.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, checkout.ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	var session checkout.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.IsExpired(time.Now()) {
		s.client.Del(ctx, sessionKey(id))
		return nil, checkout.ErrSessionExpired
	}
	return &session, nil
}

// UpdateStep persists only the session's step
func (s *RedisSessionStore) UpdateStep(ctx context.Context, id string, step checkout.Step) (*checkout.Session, error) {
	return s.update(ctx, id, func(session *checkout.Session) {
		session.Step = step
	})
}

// UpdateData merges the patch into the session's data. The merge is
// shallow: nested objects are replaced wholesale.
func (s *RedisSessionStore) UpdateData(ctx context.Context, id string, patch checkout.SessionDataPatch) (*checkout.Session, error) {
	return s.update(ctx, id, func(session *checkout.Session) {
		session.ApplyPatch(patch)
	})
}

// Delete removes a session
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// update is a read-modify-write preserving the key's remaining TTL, so
// saving form data never extends the session's lifetime
func (s *RedisSessionStore) update(ctx context.Context, id string, mutate func(*checkout.Session)) (*checkout.Session, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	mutate(session)

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(id), payload, redis.KeepTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
