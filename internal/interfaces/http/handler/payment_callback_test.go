package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppayment "github.com/storefront/checkout/internal/application/payment"
	"github.com/storefront/checkout/internal/domain/payment"
	"github.com/storefront/checkout/internal/infrastructure/cache"
	"github.com/storefront/checkout/internal/interfaces/http/router"
)

type stubVerifier struct {
	name   string
	result *payment.VerificationResult
	err    error
	calls  int
}

func (s *stubVerifier) Verify(ctx context.Context, reference string) (*payment.VerificationResult, error) {
	s.calls++
	return s.result, s.err
}

func (s *stubVerifier) Name() string { return s.name }

type stubVerifierRegistry struct {
	verifier *stubVerifier
}

func (s *stubVerifierRegistry) Verifier(gateway string) (apppayment.Verifier, error) {
	if gateway != s.verifier.name {
		return nil, payment.NewError("UNKNOWN_GATEWAY", "no verifier for "+gateway, false)
	}
	return s.verifier, nil
}

type stubRecorder struct {
	recorded []string
}

func (s *stubRecorder) RecordPaid(ctx context.Context, reference, gateway string, res *payment.VerificationResult) error {
	s.recorded = append(s.recorded, reference)
	return nil
}

func callbackTestServer(verifier *stubVerifier, recorder *stubRecorder) *gin.Engine {
	service := apppayment.NewCallbackService(
		&stubVerifierRegistry{verifier: verifier},
		recorder,
		cache.NewInMemoryIdempotencyStore(),
		nil,
		apppayment.CallbackConfig{DefaultGateway: "paystack"},
	)
	engine := gin.New()
	router.NewRouter(engine).Register(NewPaymentCallbackHandler(service, nil)).Setup()
	return engine
}

func decodeCallback(t *testing.T, w *httptest.ResponseRecorder) apppayment.CallbackResult {
	t.Helper()
	var envelope struct {
		Success bool                      `json:"success"`
		Data    apppayment.CallbackResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestPaymentCallbackSuccess(t *testing.T) {
	verifier := &stubVerifier{
		name: "paystack",
		result: &payment.VerificationResult{
			Success: true,
			Status:  "success",
			Amount:  decimal.NewFromInt(5000),
		},
	}
	recorder := &stubRecorder{}
	engine := callbackTestServer(verifier, recorder)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/payments/callback?reference=PAY_7_1700000000000_ab12cd34", nil))

	require.Equal(t, http.StatusOK, w.Code)
	result := decodeCallback(t, w)
	assert.Equal(t, payment.OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, verifier.calls)
	assert.Equal(t, []string{"PAY_7_1700000000000_ab12cd34"}, recorder.recorded)
	assert.NotEmpty(t, result.RedirectPath)
}

func TestPaymentCallbackCancelledSkipsVerify(t *testing.T) {
	verifier := &stubVerifier{name: "paystack"}
	engine := callbackTestServer(verifier, &stubRecorder{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/payments/callback?trxref=PAY_7_1_aa&status=cancelled", nil))

	require.Equal(t, http.StatusOK, w.Code)
	result := decodeCallback(t, w)
	assert.Equal(t, payment.OutcomeCancelled, result.Outcome)
	assert.Zero(t, verifier.calls)
}

func TestPaymentCallbackMissingReference(t *testing.T) {
	verifier := &stubVerifier{name: "paystack"}
	engine := callbackTestServer(verifier, &stubRecorder{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback", nil))

	// Landing page semantics: failures render as outcomes, never 5xx.
	require.Equal(t, http.StatusOK, w.Code)
	result := decodeCallback(t, w)
	assert.Equal(t, payment.OutcomeFailed, result.Outcome)
	assert.Zero(t, verifier.calls)
}

func TestPaymentCallbackPopupGetsPostMessage(t *testing.T) {
	verifier := &stubVerifier{
		name:   "paystack",
		result: &payment.VerificationResult{Success: true, Status: "success"},
	}
	engine := callbackTestServer(verifier, &stubRecorder{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/v1/payments/callback?reference=PAY_7_1_aa&popup=1", nil))

	result := decodeCallback(t, w)
	require.NotNil(t, result.PostMessage)
	assert.Equal(t, "paystack_callback", result.PostMessage.Type)
	assert.Empty(t, result.RedirectPath)
}
