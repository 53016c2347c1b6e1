package cart

import (
	"context"

	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/cart"
)

// Service manages guest carts and their merge into a signed-in user's
// server-side cart
type Service struct {
	store  GuestCartStore
	api    CartAPI
	logger *zap.Logger
}

// NewService creates a cart service
func NewService(store GuestCartStore, api CartAPI, logger *zap.Logger) *Service {
	return &Service{store: store, api: api, logger: logger}
}

// AddToGuestCart upserts a line into the visitor's cart for the store
// and persists the result
func (s *Service) AddToGuestCart(ctx context.Context, deviceToken string, storeID, productID int64, quantity int) (*cart.GuestCart, error) {
	if storeID <= 0 {
		return nil, cart.ErrInvalidStore
	}

	carts, err := s.store.Get(ctx, deviceToken)
	if err != nil {
		return nil, err
	}

	c := carts.Get(storeID)
	if err := c.Add(productID, quantity); err != nil {
		return nil, err
	}
	(*carts)[storeID] = c

	if err := s.store.Put(ctx, deviceToken, carts); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveFromGuestCart removes a product line from the visitor's cart
// for the store
func (s *Service) RemoveFromGuestCart(ctx context.Context, deviceToken string, storeID, productID int64) (*cart.GuestCart, error) {
	carts, err := s.store.Get(ctx, deviceToken)
	if err != nil {
		return nil, err
	}

	c := carts.Get(storeID)
	c.Remove(productID)
	(*carts)[storeID] = c

	if err := s.store.Put(ctx, deviceToken, carts); err != nil {
		return nil, err
	}
	return c, nil
}

// GetGuestCart returns the visitor's cart for the store, empty when absent
func (s *Service) GetGuestCart(ctx context.Context, deviceToken string, storeID int64) (*cart.GuestCart, error) {
	carts, err := s.store.Get(ctx, deviceToken)
	if err != nil {
		return nil, err
	}
	return carts.Get(storeID), nil
}

// GuestCartItemCount returns the total quantity in the visitor's cart
// for the store
func (s *Service) GuestCartItemCount(ctx context.Context, deviceToken string, storeID int64) (int, error) {
	c, err := s.GetGuestCart(ctx, deviceToken, storeID)
	if err != nil {
		return 0, err
	}
	return c.ItemCount(), nil
}

// TotalGuestCartItems returns the total quantity across all stores'
// guest carts for the visitor
func (s *Service) TotalGuestCartItems(ctx context.Context, deviceToken string) (int, error) {
	carts, err := s.store.Get(ctx, deviceToken)
	if err != nil {
		return 0, err
	}
	return carts.TotalItems(), nil
}

// WatchGuestCarts returns a channel signalled whenever the visitor's
// carts change on any surface holding the same device token
func (s *Service) WatchGuestCarts(ctx context.Context, deviceToken string) <-chan struct{} {
	return s.store.Watch(ctx, deviceToken)
}

// SyncResult reports the outcome of a guest cart merge
type SyncResult struct {
	Merged   int
	Failures []SyncFailure
}

// SyncFailure identifies one line that could not be merged
type SyncFailure struct {
	StoreID   int64
	ProductID int64
	Err       error
}

// SyncGuestCart merges the visitor's guest cart for one store into the
// signed-in user's server cart. Each merged line is removed from the
// guest cart as it lands, so a retry after a partial failure never
// duplicates quantities; the guest cart is fully cleared for the store
// only when every line merged.
func (s *Service) SyncGuestCart(ctx context.Context, deviceToken, userToken string, storeID int64) (*SyncResult, error) {
	carts, err := s.store.Get(ctx, deviceToken)
	if err != nil {
		return nil, err
	}

	guest := carts.Get(storeID)
	if guest.IsEmpty() {
		return &SyncResult{}, nil
	}

	result := &SyncResult{}
	lines := make([]cart.Line, len(guest.Lines))
	copy(lines, guest.Lines)

	for _, line := range lines {
		if err := s.api.AddToCart(ctx, userToken, storeID, line.ProductID, line.Quantity); err != nil {
			s.logger.Warn("guest cart line merge failed",
				zap.Int64("store_id", storeID),
				zap.Int64("product_id", line.ProductID),
				zap.Error(err),
			)
			result.Failures = append(result.Failures, SyncFailure{
				StoreID:   storeID,
				ProductID: line.ProductID,
				Err:       err,
			})
			continue
		}
		guest.Remove(line.ProductID)
		result.Merged++
	}

	if guest.IsEmpty() {
		delete(*carts, storeID)
	} else {
		(*carts)[storeID] = guest
	}
	if err := s.store.Put(ctx, deviceToken, carts); err != nil {
		return result, err
	}
	return result, nil
}

// SyncAllGuestCarts merges every store's guest cart for the visitor
func (s *Service) SyncAllGuestCarts(ctx context.Context, deviceToken, userToken string) (*SyncResult, error) {
	carts, err := s.store.Get(ctx, deviceToken)
	if err != nil {
		return nil, err
	}

	total := &SyncResult{}
	for storeID := range *carts {
		res, err := s.SyncGuestCart(ctx, deviceToken, userToken, storeID)
		if err != nil {
			return total, err
		}
		total.Merged += res.Merged
		total.Failures = append(total.Failures, res.Failures...)
	}
	return total, nil
}

// ClearGuestCarts drops every guest cart for the visitor
func (s *Service) ClearGuestCarts(ctx context.Context, deviceToken string) error {
	return s.store.Clear(ctx, deviceToken)
}
