package payment

import (
	"context"

	"github.com/storefront/checkout/internal/domain/payment"
)

// Verifier confirms a payment's real status with its gateway.
// URL-supplied status values are never trusted except for cancellation.
type Verifier interface {
	// Verify fetches the transaction by reference and returns a
	// normalized result
	Verify(ctx context.Context, reference string) (*payment.VerificationResult, error)

	// Name returns the gateway identifier, e.g. "paystack"
	Name() string
}

// VerifierRegistry resolves a gateway identifier to its verifier
type VerifierRegistry interface {
	Verifier(gateway string) (Verifier, error)
}

// InitiationOrder is a policy-checked payment forwarded to a gateway
type InitiationOrder struct {
	Reference   string
	Data        payment.Data
	Email       string
	CallbackURL string
}

// Initiator opens a transaction with its gateway and returns the hosted
// checkout URL the buyer is sent to
type Initiator interface {
	Initiate(ctx context.Context, order InitiationOrder) (string, error)

	// Name returns the gateway identifier, e.g. "paystack"
	Name() string
}

// InitiatorRegistry resolves a gateway identifier to its initiator
type InitiatorRegistry interface {
	Initiator(gateway string) (Initiator, error)
}

// SessionStore persists payment sessions between initiation and the
// gateway callback, keyed by reference
type SessionStore interface {
	Open(ctx context.Context, session *payment.Session) error

	// Get returns nil with no error when no session exists
	Get(ctx context.Context, reference string) (*payment.Session, error)

	Delete(ctx context.Context, reference string) error
}

// OrderRecorder applies the side effect of a confirmed payment.
// Callers guarantee at-most-once invocation per reference.
type OrderRecorder interface {
	RecordPaid(ctx context.Context, reference, gateway string, res *payment.VerificationResult) error
}

// OrderInfo is the commerce API's view of an order
type OrderInfo struct {
	ID      int64  `json:"id"`
	StoreID int64  `json:"store_id"`
	Number  string `json:"number,omitempty"`
	Status  string `json:"status,omitempty"`
}

// OrderDirectory resolves order metadata from the commerce API
type OrderDirectory interface {
	GetOrder(ctx context.Context, orderID int64) (*OrderInfo, error)
}
