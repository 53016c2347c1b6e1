package checkout

import (
	"context"

	"github.com/storefront/checkout/internal/domain/checkout"
)

// InitializeResult is the commerce API's answer to checkout
// initialization: the cart snapshot to seed the session with, plus the
// initial validation result and totals.
type InitializeResult struct {
	Items      []checkout.LineItem        `json:"items"`
	Validation *checkout.ValidationResult `json:"validation,omitempty"`
	Totals     *checkout.Totals           `json:"totals,omitempty"`
}

// ValidateStepRequest carries the inputs for a step validation call
type ValidateStepRequest struct {
	StoreID         int64                     `json:"store_id"`
	Items           []checkout.LineItem       `json:"items"`
	ShippingAddress *checkout.ShippingAddress `json:"shipping_address,omitempty"`
}

// ValidateStepResult is the commerce API's validation answer
type ValidateStepResult struct {
	Validation *checkout.ValidationResult `json:"validation,omitempty"`
	Totals     *checkout.Totals           `json:"totals,omitempty"`
}

// CommerceAPI is the external Store/Cart/Pricing capability. Totals are
// always computed on that side; the checkout core never derives money
// figures from client input.
type CommerceAPI interface {
	// InitializeCheckout validates the store and its current cart and
	// returns the snapshot a new session is seeded with
	InitializeCheckout(ctx context.Context, storeID int64) (*InitializeResult, error)

	// ValidateStep re-validates the session's items against the store,
	// returning business-rule findings and fresh totals
	ValidateStep(ctx context.Context, req ValidateStepRequest) (*ValidateStepResult, error)
}

// SessionStore persists checkout sessions with a server-enforced TTL.
// Reads of an expired or missing session return checkout.ErrSessionExpired.
type SessionStore interface {
	Create(ctx context.Context, session *checkout.Session) error
	Get(ctx context.Context, id string) (*checkout.Session, error)
	UpdateStep(ctx context.Context, id string, step checkout.Step) (*checkout.Session, error)
	UpdateData(ctx context.Context, id string, patch checkout.SessionDataPatch) (*checkout.Session, error)
	Delete(ctx context.Context, id string) error
}
