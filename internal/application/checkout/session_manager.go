package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/storefront/checkout/internal/domain/checkout"
)

// SessionManager is the only component that talks to session
// persistence. It keeps the latest fetched session snapshot, notifies
// subscribers on every refresh, and tracks expiry as a sticky flag
// until a new session is created.
type SessionManager struct {
	store SessionStore

	mu          sync.RWMutex
	session     *checkout.Session
	expired     bool
	subscribers []func(*checkout.Session)
}

// NewSessionManager creates a session manager over the given store
func NewSessionManager(store SessionStore) *SessionManager {
	return &SessionManager{store: store}
}

// Create persists a new session and resets the expiry flag
func (m *SessionManager) Create(ctx context.Context, session *checkout.Session) error {
	if err := m.store.Create(ctx, session); err != nil {
		return err
	}
	m.mu.Lock()
	m.session = session
	m.expired = false
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()

	m.notify(subs, session)
	return nil
}

// Load fetches the session by ID, refreshing the snapshot
func (m *SessionManager) Load(ctx context.Context, id string) (*checkout.Session, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		m.observeError(err)
		return nil, err
	}
	m.refresh(session)
	return session, nil
}

// UpdateStep persists only the step field
func (m *SessionManager) UpdateStep(ctx context.Context, step checkout.Step) error {
	id := m.sessionID()
	if id == "" {
		return checkout.ErrNoSession
	}
	session, err := m.store.UpdateStep(ctx, id, step)
	if err != nil {
		m.observeError(err)
		return err
	}
	m.refresh(session)
	return nil
}

// UpdateData merges the partial fields into the session data. The merge
// is shallow: nested objects are replaced wholesale.
func (m *SessionManager) UpdateData(ctx context.Context, patch checkout.SessionDataPatch) error {
	id := m.sessionID()
	if id == "" {
		return checkout.ErrNoSession
	}
	session, err := m.store.UpdateData(ctx, id, patch)
	if err != nil {
		m.observeError(err)
		return err
	}
	m.refresh(session)
	return nil
}

// Destroy deletes the persisted session and clears the snapshot
func (m *SessionManager) Destroy(ctx context.Context) error {
	id := m.sessionID()
	if id == "" {
		return nil
	}
	err := m.store.Delete(ctx, id)

	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	return err
}

// Session returns the latest fetched session snapshot
func (m *SessionManager) Session() *checkout.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// IsExpired reports the sticky expiry flag
func (m *SessionManager) IsExpired() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expired
}

// Subscribe registers a callback invoked with every refreshed session
func (m *SessionManager) Subscribe(fn func(*checkout.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *SessionManager) sessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return ""
	}
	return m.session.ID
}

func (m *SessionManager) refresh(session *checkout.Session) {
	m.mu.Lock()
	m.session = session
	subs := m.snapshotSubscribersLocked()
	m.mu.Unlock()

	m.notify(subs, session)
}

// observeError marks the manager expired when the store reports expiry
func (m *SessionManager) observeError(err error) {
	if errors.Is(err, checkout.ErrSessionExpired) {
		m.mu.Lock()
		m.expired = true
		m.mu.Unlock()
	}
}

func (m *SessionManager) snapshotSubscribersLocked() []func(*checkout.Session) {
	subs := make([]func(*checkout.Session), len(m.subscribers))
	copy(subs, m.subscribers)
	return subs
}

func (m *SessionManager) notify(subs []func(*checkout.Session), session *checkout.Session) {
	for _, fn := range subs {
		fn(session)
	}
}
