package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/cart"
)

const (
	guestCartKeyPrefix     = "guest:cart:"
	guestCartChannelPrefix = "guest:cart:changed:"
)

// RedisGuestCartStore keeps a visitor's guest carts under a single key
// per device token and broadcasts every change over pub/sub, so all
// surfaces holding the same token can refresh their cart badges.
type RedisGuestCartStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisGuestCartStore creates a Redis-backed guest cart store
func NewRedisGuestCartStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisGuestCartStore {
	return &RedisGuestCartStore{client: client, ttl: ttl, logger: logger}
}

// Get returns the visitor's carts, empty when none were stored
func (s *RedisGuestCartStore) Get(ctx context.Context, deviceToken string) (*cart.Carts, error) {
	payload, err := s.client.Get(ctx, guestCartKey(deviceToken)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			carts := make(cart.Carts)
			return &carts, nil
		}
		return nil, fmt.Errorf("failed to fetch guest carts: %w", err)
	}

	var carts cart.Carts
	if err := json.Unmarshal(payload, &carts); err != nil {
		// A corrupt payload is treated as an empty cart rather than a
		// hard failure that would block adds
		s.logger.Warn("discarding unreadable guest cart payload",
			zap.String("device_token", deviceToken),
			zap.Error(err),
		)
		carts = make(cart.Carts)
	}
	return &carts, nil
}

// Put replaces the visitor's carts wholesale and notifies watchers
func (s *RedisGuestCartStore) Put(ctx context.Context, deviceToken string, carts *cart.Carts) error {
	payload, err := json.Marshal(carts)
	if err != nil {
		return fmt.Errorf("failed to marshal guest carts: %w", err)
	}

	if err := s.client.Set(ctx, guestCartKey(deviceToken), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store guest carts: %w", err)
	}

	s.notify(ctx, deviceToken)
	return nil
}

// Clear removes the visitor's carts and notifies watchers
func (s *RedisGuestCartStore) Clear(ctx context.Context, deviceToken string) error {
	if err := s.client.Del(ctx, guestCartKey(deviceToken)).Err(); err != nil {
		return fmt.Errorf("failed to clear guest carts: %w", err)
	}

	s.notify(ctx, deviceToken)
	return nil
}

// Watch returns a channel that receives a signal whenever the visitor's
// carts change on any instance. Cancel the context to stop watching.
func (s *RedisGuestCartStore) Watch(ctx context.Context, deviceToken string) <-chan struct{} {
	pubsub := s.client.Subscribe(ctx, guestCartChannel(deviceToken))
	changes := make(chan struct{}, 1)

	go func() {
		defer pubsub.Close()
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-pubsub.Channel():
				if !ok {
					return
				}
				select {
				case changes <- struct{}{}:
				default:
					// A pending signal already covers this change
				}
			}
		}
	}()

	return changes
}

// notify publishes a change signal; delivery is best-effort
func (s *RedisGuestCartStore) notify(ctx context.Context, deviceToken string) {
	if err := s.client.Publish(ctx, guestCartChannel(deviceToken), "changed").Err(); err != nil {
		s.logger.Warn("failed to publish guest cart change",
			zap.String("device_token", deviceToken),
			zap.Error(err),
		)
	}
}

func guestCartKey(deviceToken string) string {
	return guestCartKeyPrefix + deviceToken
}

func guestCartChannel(deviceToken string) string {
	return guestCartChannelPrefix + deviceToken
}
