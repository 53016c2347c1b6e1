package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppayment "github.com/storefront/checkout/internal/application/payment"
	"github.com/storefront/checkout/internal/domain/payment"
	"github.com/storefront/checkout/internal/infrastructure/persistence"
	"github.com/storefront/checkout/internal/interfaces/http/router"
)

type stubInitiator struct {
	name string
	url  string
	err  error
}

func (s *stubInitiator) Initiate(ctx context.Context, order apppayment.InitiationOrder) (string, error) {
	return s.url, s.err
}

func (s *stubInitiator) Name() string { return s.name }

type stubInitiatorRegistry struct {
	initiator *stubInitiator
}

func (s *stubInitiatorRegistry) Initiator(gateway string) (apppayment.Initiator, error) {
	if gateway != s.initiator.name {
		return nil, payment.NewError("UNKNOWN_GATEWAY", "no initiator for "+gateway, false)
	}
	return s.initiator, nil
}

func initiationTestServer(initiator *stubInitiator) *gin.Engine {
	service := apppayment.NewInitiationService(
		&stubInitiatorRegistry{initiator: initiator},
		persistence.NewInMemoryPaymentSessionStore(),
		nil,
		apppayment.InitiationConfig{},
	)
	engine := gin.New()
	router.NewRouter(engine).Register(NewPaymentInitiationHandler(service, nil)).Setup()
	return engine
}

func validInitiateBody() InitiatePaymentRequest {
	return InitiatePaymentRequest{
		OrderID:  42,
		Amount:   decimal.NewFromInt(500_000),
		Currency: "NGN",
		Method:   "card",
		Gateway:  "paystack",
		Email:    "ada@example.com",
	}
}

func TestPaymentInitiate(t *testing.T) {
	engine := initiationTestServer(&stubInitiator{
		name: "paystack",
		url:  "https://checkout.paystack.com/abc123",
	})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/payments/initiate", validInitiateBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result apppayment.InitiateResult
	decodeData(t, w, &result)
	assert.True(t, payment.IsReference(result.Reference))
	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
	assert.False(t, result.ExpiresAt.IsZero())
}

func TestPaymentInitiatePolicyViolations(t *testing.T) {
	engine := initiationTestServer(&stubInitiator{
		name: "paystack",
		url:  "https://checkout.paystack.com/abc123",
	})

	body := validInitiateBody()
	body.Amount = decimal.NewFromInt(1)
	body.Method = "carrier_pigeon"

	w := doJSON(t, engine, http.MethodPost, "/api/v1/payments/initiate", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PAYMENT_DATA")
	// Both violations surface in one response
	assert.Contains(t, w.Body.String(), "amount")
	assert.Contains(t, w.Body.String(), "carrier_pigeon")
}

func TestPaymentInitiateMissingFields(t *testing.T) {
	engine := initiationTestServer(&stubInitiator{name: "paystack"})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/payments/initiate", map[string]any{
		"order_id": 42,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
}

func TestPaymentInitiateDisallowedCheckoutURL(t *testing.T) {
	engine := initiationTestServer(&stubInitiator{
		name: "paystack",
		url:  "https://evil.example.com/pay",
	})

	w := doJSON(t, engine, http.MethodPost, "/api/v1/payments/initiate", validInitiateBody())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "SERVICE_UNAVAILABLE")
}
