package checkout

import (
	"github.com/storefront/checkout/internal/domain/shared"
)

// Event types published by the checkout coordinator
const (
	EventTypeSessionExpired    = "checkout.session_expired"
	EventTypeCheckoutCompleted = "checkout.completed"
)

// SessionExpiredEvent is published when session expiry is detected, so
// surrounding surfaces can show the notice and navigate away
type SessionExpiredEvent struct {
	shared.BaseDomainEvent
	StoreID int64 `json:"store_id"`
}

// NewSessionExpiredEvent creates a session expired event
func NewSessionExpiredEvent(sessionID string, storeID int64) *SessionExpiredEvent {
	return &SessionExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSessionExpired, "CheckoutSession", sessionID),
		StoreID:         storeID,
	}
}

// CheckoutCompletedEvent is published after the review step completes
// and the session is handed off to order placement
type CheckoutCompletedEvent struct {
	shared.BaseDomainEvent
	StoreID int64 `json:"store_id"`
}

// NewCheckoutCompletedEvent creates a checkout completed event
func NewCheckoutCompletedEvent(sessionID string, storeID int64) *CheckoutCompletedEvent {
	return &CheckoutCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCheckoutCompleted, "CheckoutSession", sessionID),
		StoreID:         storeID,
	}
}
