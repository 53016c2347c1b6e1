package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppayment "github.com/storefront/checkout/internal/application/payment"
	"github.com/storefront/checkout/internal/domain/payment"
)

func newFlutterwaveServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *FlutterwaveAdapter) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewFlutterwaveAdapter(&FlutterwaveConfig{
		SecretKey: "FLWSECK-test",
		BaseURL:   server.URL,
	})
	require.NoError(t, err)
	return server, adapter
}

func TestFlutterwaveAdapter_Initiate(t *testing.T) {
	_, adapter := newFlutterwaveServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/payments", r.URL.Path)
		assert.Equal(t, "Bearer FLWSECK-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PAY_7_1700000000000_aabbccdd", body["tx_ref"])
		assert.Equal(t, "5000", body["amount"], "amount goes out in naira")
		assert.Equal(t, "NGN", body["currency"])
		customer, ok := body["customer"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "ada@example.com", customer["email"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"message": "Hosted Link",
			"data": {
				"link": "https://checkout.flutterwave.com/v3/hosted/pay/xyz"
			}
		}`))
	})

	url, err := adapter.Initiate(context.Background(), apppayment.InitiationOrder{
		Reference: "PAY_7_1700000000000_aabbccdd",
		Data: payment.Data{
			Amount:   decimal.NewFromInt(500000),
			Currency: "NGN",
		},
		Email: "ada@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.flutterwave.com/v3/hosted/pay/xyz", url)
}

func TestFlutterwaveAdapter_InitiateRejected(t *testing.T) {
	_, adapter := newFlutterwaveServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "error", "message": "Currency not supported", "data": {}}`))
	})

	_, err := adapter.Initiate(context.Background(), apppayment.InitiationOrder{
		Reference: "PAY_7_1_x",
		Data:      payment.Data{Amount: decimal.NewFromInt(100), Currency: "XOF"},
	})
	require.Error(t, err)

	var perr *payment.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, payment.CodeUnknown, perr.Code)
	assert.Equal(t, "Currency not supported", perr.Message)
}

func TestRegistry_Initiator(t *testing.T) {
	adapter, err := NewPaystackAdapter(&PaystackConfig{SecretKey: "sk_test_x"})
	require.NoError(t, err)
	registry := NewRegistry(adapter)

	initiator, err := registry.Initiator("paystack")
	require.NoError(t, err)
	assert.Equal(t, "paystack", initiator.Name())

	_, err = registry.Initiator("flutterwave")
	assert.Error(t, err)
}
