package persistence

import (
	"context"
	"sync"

	appcart "github.com/storefront/checkout/internal/application/cart"
	"github.com/storefront/checkout/internal/domain/cart"
	"github.com/storefront/checkout/internal/domain/shared"
)

// InMemoryGuestCartStore keeps guest carts in a process-local map and
// publishes change events on the in-process event bus. Suitable for
// single-instance deployments and testing.
type InMemoryGuestCartStore struct {
	mu       sync.RWMutex
	carts    map[string]cart.Carts
	watchers map[string][]chan struct{}
	events   shared.EventPublisher
}

// NewInMemoryGuestCartStore creates an in-memory guest cart store.
// The publisher may be nil when change notification is not needed.
func NewInMemoryGuestCartStore(events shared.EventPublisher) *InMemoryGuestCartStore {
	return &InMemoryGuestCartStore{
		carts:    make(map[string]cart.Carts),
		watchers: make(map[string][]chan struct{}),
		events:   events,
	}
}

// Get returns the visitor's carts, empty when none were stored
func (s *InMemoryGuestCartStore) Get(ctx context.Context, deviceToken string) (*cart.Carts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.carts[deviceToken]
	copy := make(cart.Carts, len(stored))
	if ok {
		for storeID, c := range stored {
			if c == nil {
				continue
			}
			lines := make([]cart.Line, len(c.Lines))
			for i, l := range c.Lines {
				lines[i] = l
			}
			copy[storeID] = &cart.GuestCart{StoreID: c.StoreID, Lines: lines}
		}
	}
	return &copy, nil
}

// Put replaces the visitor's carts wholesale and publishes a change event
func (s *InMemoryGuestCartStore) Put(ctx context.Context, deviceToken string, carts *cart.Carts) error {
	s.mu.Lock()
	s.carts[deviceToken] = *carts
	total := carts.TotalItems()
	s.mu.Unlock()

	s.notify(ctx, deviceToken, total)
	return nil
}

// Clear removes the visitor's carts and publishes a change event
func (s *InMemoryGuestCartStore) Clear(ctx context.Context, deviceToken string) error {
	s.mu.Lock()
	delete(s.carts, deviceToken)
	s.mu.Unlock()

	s.notify(ctx, deviceToken, 0)
	return nil
}

// Watch returns a channel that receives a signal whenever the visitor's
// carts change. Cancel the context to stop watching.
func (s *InMemoryGuestCartStore) Watch(ctx context.Context, deviceToken string) <-chan struct{} {
	changes := make(chan struct{}, 1)

	s.mu.Lock()
	s.watchers[deviceToken] = append(s.watchers[deviceToken], changes)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		registered := s.watchers[deviceToken]
		for i, ch := range registered {
			if ch == changes {
				s.watchers[deviceToken] = append(registered[:i], registered[i+1:]...)
				break
			}
		}
		close(changes)
	}()

	return changes
}

func (s *InMemoryGuestCartStore) notify(ctx context.Context, deviceToken string, totalItems int) {
	s.mu.RLock()
	for _, ch := range s.watchers[deviceToken] {
		select {
		case ch <- struct{}{}:
		default:
			// A pending signal already covers this change
		}
	}
	s.mu.RUnlock()

	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, appcart.NewGuestCartChangedEvent(deviceToken, totalItems))
}

var _ appcart.GuestCartStore = (*InMemoryGuestCartStore)(nil)
