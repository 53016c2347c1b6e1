package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/checkout/internal/domain/checkout"
)

// InMemorySessionStore keeps checkout sessions in a process-local map.
// Suitable for single-instance deployments and testing.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*checkout.Session
	now      func() time.Time
}

// NewInMemorySessionStore creates an in-memory session store
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]*checkout.Session),
		now:      time.Now,
	}
}

// Create stores the session under its ID
func (s *InMemorySessionStore) Create(ctx context.Context, session *checkout.Session) error {
	if session.IsExpired(s.now()) {
		return checkout.ErrSessionExpired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *session
	s.sessions[session.ID] = &copy
	return nil
}

// Get fetches a session by ID. Missing or expired sessions return
// checkout.ErrSessionExpired.
func (s *InMemorySessionStore) Get(ctx context.Context, id string) (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	copy := *session
	return &copy, nil
}

// UpdateStep persists only the session's step
func (s *InMemorySessionStore) UpdateStep(ctx context.Context, id string, step checkout.Step) (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	session.Step = step
	s.sessions[id] = session

	copy := *session
	return &copy, nil
}

// UpdateData merges the patch into the session's data
func (s *InMemorySessionStore) UpdateData(ctx context.Context, id string, patch checkout.SessionDataPatch) (*checkout.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.getLocked(id)
	if err != nil {
		return nil, err
	}
	session.ApplyPatch(patch)
	s.sessions[id] = session

	copy := *session
	return &copy, nil
}

// Delete removes a session
func (s *InMemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// getLocked returns the live session or ErrSessionExpired, purging
// expired entries as they are observed
func (s *InMemorySessionStore) getLocked(id string) (*checkout.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, checkout.ErrSessionExpired
	}
	if session.IsExpired(s.now()) {
		delete(s.sessions, id)
		return nil, checkout.ErrSessionExpired
	}
	return session, nil
}
