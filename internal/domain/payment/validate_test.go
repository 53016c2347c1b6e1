package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateData_AllChecksPass(t *testing.T) {
	res := ValidateData(Data{
		Amount:   decimal.NewFromInt(5000),
		Currency: "NGN",
		Method:   "card",
		Gateway:  "paystack",
		OrderID:  10,
	}, DefaultPolicy())

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateData_CollectsEveryFailure(t *testing.T) {
	res := ValidateData(Data{
		Amount:   decimal.NewFromInt(1),
		Currency: "XXX",
		Method:   "bad",
		Gateway:  "bad",
		OrderID:  -1,
	}, DefaultPolicy())

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 5, "all failures must be collected, not short-circuited")

	assert.Contains(t, res.Errors[0], "amount must be at least")
	assert.Contains(t, res.Errors[1], "unsupported currency")
	assert.Contains(t, res.Errors[2], "unsupported payment method")
	assert.Contains(t, res.Errors[3], "unsupported gateway")
	assert.Contains(t, res.Errors[4], "order ID must be positive")
}

func TestValidateData_AmountBounds(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name   string
		amount int64
		valid  bool
	}{
		{"below minimum", 49, false},
		{"at minimum", 50, true},
		{"at maximum", 10_000_000, true},
		{"above maximum", 10_000_001, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateData(Data{
				Amount:   decimal.NewFromInt(tt.amount),
				Currency: "NGN",
				Method:   "card",
				Gateway:  "paystack",
				OrderID:  1,
			}, policy)
			assert.Equal(t, tt.valid, res.Valid)
		})
	}
}

func TestValidateData_CaseInsensitiveAllowlists(t *testing.T) {
	res := ValidateData(Data{
		Amount:   decimal.NewFromInt(100),
		Currency: "ngn",
		Method:   "CARD",
		Gateway:  "Paystack",
		OrderID:  1,
	}, DefaultPolicy())

	assert.True(t, res.Valid)
}
