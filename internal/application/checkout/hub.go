package checkout

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/checkout"
	"github.com/storefront/checkout/internal/domain/shared"
)

// Hub hands out one Coordinator per checkout session so concurrent HTTP
// requests for the same session share a single state machine. Coordinators
// for sessions the hub has not seen yet are rebuilt by resuming from the
// session store.
type Hub struct {
	commerce CommerceAPI
	store    SessionStore
	events   shared.EventPublisher
	logger   *zap.Logger
	cfg      Config

	mu     sync.Mutex
	coords map[string]*Coordinator
}

// NewHub creates a Hub backed by the given session store
func NewHub(commerce CommerceAPI, store SessionStore, events shared.EventPublisher, logger *zap.Logger, cfg Config) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		commerce: commerce,
		store:    store,
		events:   events,
		logger:   logger,
		cfg:      cfg,
		coords:   make(map[string]*Coordinator),
	}
}

// Start creates a fresh coordinator, initializes a checkout for the store
// and registers the coordinator under the new session ID.
func (h *Hub) Start(ctx context.Context, storeID int64) (*Coordinator, checkout.State, error) {
	coord := h.newCoordinator()
	state, err := coord.InitializeCheckout(ctx, storeID)
	if err != nil {
		return nil, state, err
	}

	h.mu.Lock()
	h.coords[state.SessionID] = coord
	h.mu.Unlock()
	return coord, state, nil
}

// Get returns the coordinator for a session, resuming it from the store
// when this process has not served the session before.
func (h *Hub) Get(ctx context.Context, sessionID string) (*Coordinator, error) {
	h.mu.Lock()
	coord, ok := h.coords[sessionID]
	h.mu.Unlock()
	if ok {
		return coord, nil
	}

	coord = h.newCoordinator()
	if _, err := coord.Resume(ctx, sessionID); err != nil {
		return nil, err
	}

	h.mu.Lock()
	// A concurrent request may have resumed the same session; keep the
	// winner so both callers share one state machine.
	if existing, ok := h.coords[sessionID]; ok {
		coord = existing
	} else {
		h.coords[sessionID] = coord
	}
	h.mu.Unlock()
	return coord, nil
}

// Release drops the coordinator for a session after a reset or completed
// checkout. Pending debounced saves are flushed first.
func (h *Hub) Release(sessionID string) {
	h.mu.Lock()
	coord, ok := h.coords[sessionID]
	delete(h.coords, sessionID)
	h.mu.Unlock()

	if ok {
		coord.Flush()
	}
}

func (h *Hub) newCoordinator() *Coordinator {
	return NewCoordinator(h.commerce, NewSessionManager(h.store), h.events, h.logger, h.cfg)
}
