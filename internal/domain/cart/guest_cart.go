package cart

import "github.com/storefront/checkout/internal/domain/shared"

// Cart domain errors
var (
	ErrInvalidProduct  = shared.NewDomainError("INVALID_PRODUCT", "Product ID must be positive")
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	ErrInvalidStore    = shared.NewDomainError("INVALID_STORE", "Store ID must be positive")
)

// Line is a product/quantity pair in a guest cart. Guest carts hold no
// pricing data: monetary totals are only ever computed once a checkout
// session exists and the server owns the numbers.
type Line struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// GuestCart is an unauthenticated per-store cart. Lines keep insertion
// order; quantities are unique per product.
type GuestCart struct {
	StoreID int64  `json:"store_id"`
	Lines   []Line `json:"lines"`
}

// NewGuestCart creates an empty guest cart for the store
func NewGuestCart(storeID int64) *GuestCart {
	return &GuestCart{StoreID: storeID}
}

// Add upserts a line by product ID: an existing product's quantity is
// incremented, a new product is appended.
func (c *GuestCart) Add(productID int64, quantity int) error {
	if productID <= 0 {
		return ErrInvalidProduct
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += quantity
			return nil
		}
	}

	c.Lines = append(c.Lines, Line{ProductID: productID, Quantity: quantity})
	return nil
}

// Remove deletes the line for the given product, if present
func (c *GuestCart) Remove(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// ItemCount returns the total quantity across all lines
func (c *GuestCart) ItemCount() int {
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (c *GuestCart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Carts maps store IDs to guest carts. All stores' carts live together
// under a single well-known storage key.
type Carts map[int64]*GuestCart

// Get returns the cart for the store, or an empty one
func (cs Carts) Get(storeID int64) *GuestCart {
	if c, ok := cs[storeID]; ok && c != nil {
		return c
	}
	return NewGuestCart(storeID)
}

// TotalItems returns the total quantity across every store's cart
func (cs Carts) TotalItems() int {
	total := 0
	for _, c := range cs {
		if c != nil {
			total += c.ItemCount()
		}
	}
	return total
}
