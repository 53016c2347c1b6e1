package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	apppayment "github.com/storefront/checkout/internal/application/payment"
	"github.com/storefront/checkout/internal/domain/payment"
)

const paymentSessionKeyPrefix = "payment:session:"

// RedisPaymentSessionStore persists payment sessions in Redis. The key
// TTL runs to the session's expiry, so an expired session simply reads
// back as missing.
type RedisPaymentSessionStore struct {
	client *redis.Client
}

// NewRedisPaymentSessionStore creates a Redis-backed payment session store
func NewRedisPaymentSessionStore(client *redis.Client) *RedisPaymentSessionStore {
	return &RedisPaymentSessionStore{client: client}
}

// Open stores the session under its reference with a TTL to ExpiresAt
func (s *RedisPaymentSessionStore) Open(ctx context.Context, session *payment.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("payment session for %s is already expired", session.Reference)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal payment session: %w", err)
	}

	if err := s.client.Set(ctx, paymentSessionKey(session.Reference), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store payment session: %w", err)
	}
	return nil
}

// Get fetches a session by reference; a missing session is nil, not an error
func (s *RedisPaymentSessionStore) Get(ctx context.Context, reference string) (*payment.Session, error) {
	payload, err := s.client.Get(ctx, paymentSessionKey(reference)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch payment session: %w", err)
	}

	var session payment.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payment session: %w", err)
	}
	return &session, nil
}

// Delete removes the session for the reference
func (s *RedisPaymentSessionStore) Delete(ctx context.Context, reference string) error {
	if err := s.client.Del(ctx, paymentSessionKey(reference)).Err(); err != nil {
		return fmt.Errorf("failed to delete payment session: %w", err)
	}
	return nil
}

func paymentSessionKey(reference string) string {
	return paymentSessionKeyPrefix + reference
}

// InMemoryPaymentSessionStore keeps payment sessions in a process-local
// map. Suitable for single-instance deployments and testing.
type InMemoryPaymentSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]payment.Session
}

// NewInMemoryPaymentSessionStore creates an in-memory payment session store
func NewInMemoryPaymentSessionStore() *InMemoryPaymentSessionStore {
	return &InMemoryPaymentSessionStore{sessions: make(map[string]payment.Session)}
}

// Open stores the session under its reference
func (s *InMemoryPaymentSessionStore) Open(ctx context.Context, session *payment.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Reference] = *session
	return nil
}

// Get fetches a session by reference; a missing session is nil, not an
// error. Sessions past their expiry are dropped on read.
func (s *InMemoryPaymentSessionStore) Get(ctx context.Context, reference string) (*payment.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[reference]
	if !ok {
		return nil, nil
	}
	if !session.Valid(time.Now()) {
		delete(s.sessions, reference)
		return nil, nil
	}
	return &session, nil
}

// Delete removes the session for the reference
func (s *InMemoryPaymentSessionStore) Delete(ctx context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, reference)
	return nil
}

var (
	_ apppayment.SessionStore = (*RedisPaymentSessionStore)(nil)
	_ apppayment.SessionStore = (*InMemoryPaymentSessionStore)(nil)
)
