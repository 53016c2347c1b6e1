package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a product/quantity pair captured when the session is created.
// Line items are authoritative for the session's lifetime.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CustomerInfo holds the buyer's contact details
type CustomerInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// ShippingAddress holds the delivery address.
// Addresses are replaced wholesale on update, never deep-merged.
type ShippingAddress struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// PaymentMethod holds the buyer's chosen payment method and gateway
type PaymentMethod struct {
	Method  string `json:"method"`
	Gateway string `json:"gateway"`
}

// Totals holds server-computed order totals. Totals are always re-derived
// server-side and never trusted from the client.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// ValidationResult is the outcome of a step validation call
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// SessionData is the structured payload of a checkout session
type SessionData struct {
	Items           []LineItem       `json:"items"`
	CustomerInfo    *CustomerInfo    `json:"customer_info,omitempty"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	PaymentMethod   *PaymentMethod   `json:"payment_method,omitempty"`
	Totals          *Totals          `json:"totals,omitempty"`
}

// SessionDataPatch is a shallow partial merge applied to SessionData.
// Nil fields are left untouched; non-nil fields replace wholesale.
type SessionDataPatch struct {
	CustomerInfo    *CustomerInfo    `json:"customer_info,omitempty"`
	ShippingAddress *ShippingAddress `json:"shipping_address,omitempty"`
	PaymentMethod   *PaymentMethod   `json:"payment_method,omitempty"`
	Totals          *Totals          `json:"totals,omitempty"`
}

// IsEmpty reports whether the patch carries no fields
func (p SessionDataPatch) IsEmpty() bool {
	return p.CustomerInfo == nil && p.ShippingAddress == nil && p.PaymentMethod == nil && p.Totals == nil
}

// Session is the server-owned checkout session record
type Session struct {
	ID        string      `json:"id"`
	StoreID   int64       `json:"store_id"`
	Step      Step        `json:"step"`
	Data      SessionData `json:"data"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// IsExpired reports whether the session TTL has elapsed at the given time
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// ApplyPatch merges the patch into the session data. Only fields present
// in the patch are touched; nested values are replaced wholesale.
func (s *Session) ApplyPatch(patch SessionDataPatch) {
	if patch.CustomerInfo != nil {
		s.Data.CustomerInfo = patch.CustomerInfo
	}
	if patch.ShippingAddress != nil {
		s.Data.ShippingAddress = patch.ShippingAddress
	}
	if patch.PaymentMethod != nil {
		s.Data.PaymentMethod = patch.PaymentMethod
	}
	if patch.Totals != nil {
		s.Data.Totals = patch.Totals
	}
}

// InferCompletedSteps reconstructs step completion from the data present
// on a restored session. A step is only inferred complete when every
// prior step is inferred complete as well, so completion stays a prefix
// of the fixed order. Review is never inferred.
func InferCompletedSteps(data SessionData) StepSet {
	completed := NewStepSet()
	if data.CustomerInfo == nil {
		return completed
	}
	completed = completed.With(StepCustomerInfo)
	if data.ShippingAddress == nil {
		return completed
	}
	completed = completed.With(StepShipping)
	if data.PaymentMethod == nil {
		return completed
	}
	completed = completed.With(StepPayment)
	return completed
}
