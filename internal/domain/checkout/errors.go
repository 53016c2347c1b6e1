package checkout

import "github.com/storefront/checkout/internal/domain/shared"

// Checkout domain errors
var (
	ErrInitialization = shared.NewDomainError("CHECKOUT_INIT_FAILED", "Checkout could not be initialized")
	ErrEmptyCart      = shared.NewDomainError("EMPTY_CART", "Cannot start checkout with an empty cart")
	ErrStoreInactive  = shared.NewDomainError("STORE_INACTIVE", "Store is inactive or does not exist")
	ErrStepNotAllowed = shared.NewDomainError("STEP_NOT_ALLOWED", "Required steps must be completed first")
	ErrInvalidStep    = shared.NewDomainError("INVALID_STEP", "Unknown checkout step")
	ErrSessionExpired = shared.ErrSessionExpired
	ErrNoSession      = shared.NewDomainError("NO_SESSION", "No active checkout session")
)
