package cart

import (
	"context"

	"github.com/storefront/checkout/internal/domain/cart"
)

// GuestCartStore persists the anonymous carts of a not-yet-signed-in
// visitor, keyed by a device token. Implementations broadcast changes so
// every surface holding the same token observes updates.
type GuestCartStore interface {
	// Get returns the visitor's carts, or empty carts when none exist
	Get(ctx context.Context, deviceToken string) (*cart.Carts, error)

	// Put replaces the visitor's carts wholesale
	Put(ctx context.Context, deviceToken string, carts *cart.Carts) error

	// Clear removes all carts for the visitor
	Clear(ctx context.Context, deviceToken string) error

	// Watch returns a channel signalled whenever the visitor's carts
	// change on any surface. Cancel the context to stop watching.
	Watch(ctx context.Context, deviceToken string) <-chan struct{}
}

// CartAPI is the authenticated commerce cart capability used when
// merging a guest cart into a signed-in user's server-side cart
type CartAPI interface {
	AddToCart(ctx context.Context, userToken string, storeID, productID int64, quantity int) error
}
