package payment

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Policy holds the allowlists and bounds applied to outgoing payment
// requests. Allowlists are explicit configuration, never inferred.
type Policy struct {
	// MinAmount and MaxAmount are in minor currency units
	MinAmount  decimal.Decimal
	MaxAmount  decimal.Decimal
	Currencies []string
	Methods    []string
	Gateways   []string
}

// DefaultPolicy returns the default payment policy
func DefaultPolicy() Policy {
	return Policy{
		MinAmount:  decimal.NewFromInt(50),
		MaxAmount:  decimal.NewFromInt(10_000_000),
		Currencies: []string{"NGN", "GHS", "KES", "ZAR", "USD"},
		Methods:    []string{"card", "bank_transfer", "ussd", "mobile_money"},
		Gateways:   []string{"paystack", "flutterwave"},
	}
}

// Data is a payment request checked before it leaves for a gateway
type Data struct {
	Amount   decimal.Decimal
	Currency string
	Method   string
	Gateway  string
	OrderID  int64
}

// ValidationResult collects every policy violation found in one pass
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateData checks the payment data against the policy. Every check
// runs independently and all failures are collected, so the caller can
// present every problem at once.
func ValidateData(d Data, p Policy) ValidationResult {
	var errs []string

	if d.Amount.LessThan(p.MinAmount) {
		errs = append(errs, fmt.Sprintf("amount must be at least %s", p.MinAmount.String()))
	} else if d.Amount.GreaterThan(p.MaxAmount) {
		errs = append(errs, fmt.Sprintf("amount must not exceed %s", p.MaxAmount.String()))
	}

	if !slices.Contains(p.Currencies, strings.ToUpper(d.Currency)) {
		errs = append(errs, fmt.Sprintf("unsupported currency %q", d.Currency))
	}

	if !slices.Contains(p.Methods, strings.ToLower(d.Method)) {
		errs = append(errs, fmt.Sprintf("unsupported payment method %q", d.Method))
	}

	if !slices.Contains(p.Gateways, strings.ToLower(d.Gateway)) {
		errs = append(errs, fmt.Sprintf("unsupported gateway %q", d.Gateway))
	}

	if d.OrderID <= 0 {
		errs = append(errs, "order ID must be positive")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
