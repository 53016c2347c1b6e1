package cart

import "github.com/storefront/checkout/internal/domain/shared"

// Cart event types
const (
	EventTypeGuestCartChanged = "cart.guest_cart_changed"
)

// GuestCartChangedEvent fires whenever a visitor's guest carts change,
// so every surface holding the same device token can refresh its badge
type GuestCartChangedEvent struct {
	shared.BaseDomainEvent
	DeviceToken string `json:"device_token"`
	TotalItems  int    `json:"total_items"`
}

// NewGuestCartChangedEvent creates a guest cart changed event
func NewGuestCartChangedEvent(deviceToken string, totalItems int) *GuestCartChangedEvent {
	return &GuestCartChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeGuestCartChanged, "GuestCart", deviceToken),
		DeviceToken:     deviceToken,
		TotalItems:      totalItems,
	}
}
