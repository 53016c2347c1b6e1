package payment

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/payment"
	"github.com/storefront/checkout/internal/domain/shared"
)

type fakeVerifier struct {
	name    string
	result  *payment.VerificationResult
	err     error
	calls   int
	lastRef string
}

func (f *fakeVerifier) Verify(ctx context.Context, reference string) (*payment.VerificationResult, error) {
	f.calls++
	f.lastRef = reference
	return f.result, f.err
}

func (f *fakeVerifier) Name() string { return f.name }

type fakeRegistry struct {
	verifiers map[string]*fakeVerifier
}

func (f *fakeRegistry) Verifier(gateway string) (Verifier, error) {
	if v, ok := f.verifiers[gateway]; ok {
		return v, nil
	}
	return nil, shared.NewDomainError("UNKNOWN_GATEWAY", "Unknown payment gateway: "+gateway)
}

type fakeRecorder struct {
	recorded []string
	err      error
}

func (f *fakeRecorder) RecordPaid(ctx context.Context, reference, gateway string, res *payment.VerificationResult) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, reference)
	return nil
}

type fakeIdempotencyStore struct {
	seen map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (f *fakeIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	return f.seen[key], f.err
}

func (f *fakeIdempotencyStore) Close() error { return nil }

func successResult() *payment.VerificationResult {
	return &payment.VerificationResult{
		Success:  true,
		Status:   "success",
		Amount:   decimal.NewFromInt(5000),
		Currency: "NGN",
	}
}

func newTestCallbackService(verifier *fakeVerifier, recorder *fakeRecorder, store *fakeIdempotencyStore) *CallbackService {
	registry := &fakeRegistry{verifiers: map[string]*fakeVerifier{verifier.name: verifier}}
	return NewCallbackService(registry, recorder, store, zap.NewNop(), CallbackConfig{
		DefaultGateway: "paystack",
	})
}

func TestCallbackService_MissingReference(t *testing.T) {
	verifier := &fakeVerifier{name: "paystack", result: successResult()}
	recorder := &fakeRecorder{}
	svc := newTestCallbackService(verifier, recorder, newFakeIdempotencyStore())

	res := svc.HandleQuery(context.Background(), url.Values{})
	assert.Equal(t, payment.OutcomeFailed, res.Outcome)
	assert.Equal(t, "payment reference not found in callback URL", res.Message)
	assert.Zero(t, verifier.calls, "no verification without a reference")
	assert.Empty(t, recorder.recorded)
}

func TestCallbackService_CancelledSkipsVerification(t *testing.T) {
	verifier := &fakeVerifier{name: "paystack", result: successResult()}
	recorder := &fakeRecorder{}
	svc := newTestCallbackService(verifier, recorder, newFakeIdempotencyStore())

	for _, status := range []string{"cancelled", "canceled", "CANCELLED"} {
		res := svc.HandleQuery(context.Background(), url.Values{
			"reference": {"PAY_7_1700000000000_aabbccdd"},
			"status":    {status},
		})
		assert.Equal(t, payment.OutcomeCancelled, res.Outcome)
	}
	assert.Zero(t, verifier.calls, "cancellation is trusted from the URL")
	assert.Empty(t, recorder.recorded)
}

func TestCallbackService_SuccessfulVerification(t *testing.T) {
	verifier := &fakeVerifier{name: "paystack", result: successResult()}
	recorder := &fakeRecorder{}
	svc := newTestCallbackService(verifier, recorder, newFakeIdempotencyStore())

	res := svc.HandleQuery(context.Background(), url.Values{
		"trxref": {"PAY_7_1700000000000_aabbccdd"},
	})
	assert.Equal(t, payment.OutcomeSuccess, res.Outcome)
	assert.Equal(t, "PAY_7_1700000000000_aabbccdd", verifier.lastRef)
	assert.Equal(t, 1, verifier.calls)
	assert.Equal(t, []string{"PAY_7_1700000000000_aabbccdd"}, recorder.recorded)

	// Non-popup success redirects after a short delay
	assert.Equal(t, "/orders", res.RedirectPath)
	assert.Equal(t, DefaultRedirectDelay, res.RedirectDelay)
	assert.Nil(t, res.PostMessage)
}

func TestCallbackService_PopupGetsOpenerMessage(t *testing.T) {
	verifier := &fakeVerifier{name: "flutterwave", result: successResult()}
	recorder := &fakeRecorder{}
	registry := &fakeRegistry{verifiers: map[string]*fakeVerifier{"flutterwave": verifier}}
	svc := NewCallbackService(registry, recorder, newFakeIdempotencyStore(), zap.NewNop(), CallbackConfig{
		DefaultGateway: "paystack",
	})

	res := svc.HandleQuery(context.Background(), url.Values{
		"tx_ref":  {"PAY_7_1700000000000_aabbccdd"},
		"gateway": {"flutterwave"},
		"popup":   {"1"},
	})
	assert.Equal(t, payment.OutcomeSuccess, res.Outcome)
	require.NotNil(t, res.PostMessage)
	assert.Equal(t, "flutterwave_callback", res.PostMessage.Type)
	assert.Equal(t, "PAY_7_1700000000000_aabbccdd", res.PostMessage.Reference)
	assert.Equal(t, "success", res.PostMessage.Status)
	assert.Empty(t, res.RedirectPath, "popups close themselves instead of redirecting")

	// Popups still get the opener message on failure
	verifier.result = &payment.VerificationResult{Success: false, Status: "failed", Message: "insufficient funds"}
	res = svc.HandleQuery(context.Background(), url.Values{
		"tx_ref":  {"PAY_7_1700000000001_aabbccdd"},
		"gateway": {"flutterwave"},
		"popup":   {"true"},
	})
	assert.Equal(t, payment.OutcomeFailed, res.Outcome)
	require.NotNil(t, res.PostMessage)
	assert.Equal(t, "failed", res.PostMessage.Status)
}

func TestCallbackService_FailedVerification(t *testing.T) {
	verifier := &fakeVerifier{
		name:   "paystack",
		result: &payment.VerificationResult{Success: false, Status: "abandoned", Message: "transaction abandoned"},
	}
	recorder := &fakeRecorder{}
	svc := newTestCallbackService(verifier, recorder, newFakeIdempotencyStore())

	res := svc.HandleQuery(context.Background(), url.Values{
		"reference": {"PAY_7_1700000000000_aabbccdd"},
	})
	assert.Equal(t, payment.OutcomeFailed, res.Outcome)
	assert.Equal(t, "transaction abandoned", res.Message)
	assert.Empty(t, recorder.recorded)
	assert.Empty(t, res.RedirectPath)
}

func TestCallbackService_VerifierError(t *testing.T) {
	verifier := &fakeVerifier{
		name: "paystack",
		err:  payment.FromAPIError(503, "gateway unavailable"),
	}
	recorder := &fakeRecorder{}
	svc := newTestCallbackService(verifier, recorder, newFakeIdempotencyStore())

	res := svc.HandleQuery(context.Background(), url.Values{
		"reference": {"PAY_7_1700000000000_aabbccdd"},
	})
	assert.Equal(t, payment.OutcomeFailed, res.Outcome)
	assert.NotEmpty(t, res.Message)
	assert.Empty(t, recorder.recorded)
}

func TestCallbackService_UnknownGateway(t *testing.T) {
	verifier := &fakeVerifier{name: "paystack", result: successResult()}
	svc := newTestCallbackService(verifier, &fakeRecorder{}, newFakeIdempotencyStore())

	res := svc.HandleQuery(context.Background(), url.Values{
		"reference": {"PAY_7_1700000000000_aabbccdd"},
		"gateway":   {"stripe"},
	})
	assert.Equal(t, payment.OutcomeFailed, res.Outcome)
	assert.Zero(t, verifier.calls)
}

func TestCallbackService_ReplayRecordsOnce(t *testing.T) {
	verifier := &fakeVerifier{name: "paystack", result: successResult()}
	recorder := &fakeRecorder{}
	svc := newTestCallbackService(verifier, recorder, newFakeIdempotencyStore())

	query := url.Values{"reference": {"PAY_7_1700000000000_aabbccdd"}}

	first := svc.HandleQuery(context.Background(), query)
	assert.Equal(t, payment.OutcomeSuccess, first.Outcome)
	assert.False(t, first.AlreadyProcessed)

	replay := svc.HandleQuery(context.Background(), query)
	assert.Equal(t, payment.OutcomeSuccess, replay.Outcome, "replay still shows success to the buyer")
	assert.True(t, replay.AlreadyProcessed)
	assert.Equal(t, []string{"PAY_7_1700000000000_aabbccdd"}, recorder.recorded, "side effect applied exactly once")
}

func TestCallbackService_IdempotencyStoreDownKeepsOutcome(t *testing.T) {
	verifier := &fakeVerifier{name: "paystack", result: successResult()}
	recorder := &fakeRecorder{}
	store := newFakeIdempotencyStore()
	store.err = shared.NewDomainError("STORE_DOWN", "idempotency store unavailable")
	svc := newTestCallbackService(verifier, recorder, store)

	res := svc.HandleQuery(context.Background(), url.Values{
		"reference": {"PAY_7_1700000000000_aabbccdd"},
	})
	assert.Equal(t, payment.OutcomeSuccess, res.Outcome)
	assert.Empty(t, recorder.recorded, "recording deferred to reconciliation")
}

func TestCallbackService_ReplayAnsweredWithoutReverifying(t *testing.T) {
	verifier := &fakeVerifier{name: "paystack", result: successResult()}
	recorder := &fakeRecorder{}
	svc := newTestCallbackService(verifier, recorder, newFakeIdempotencyStore())

	query := url.Values{"reference": {"PAY_7_1700000000000_aabbccdd"}}

	first := svc.HandleQuery(context.Background(), query)
	require.Equal(t, payment.OutcomeSuccess, first.Outcome)
	require.Equal(t, 1, verifier.calls)

	// A gateway blip during the replay must not flip a confirmed payment
	verifier.result = nil
	verifier.err = payment.NewError(payment.CodeServiceUnavailable, "gateway down", true)

	replay := svc.HandleQuery(context.Background(), query)
	assert.Equal(t, payment.OutcomeSuccess, replay.Outcome)
	assert.True(t, replay.AlreadyProcessed)
	assert.Equal(t, 1, verifier.calls, "replay is answered from the recorded outcome")
	assert.Equal(t, []string{"PAY_7_1700000000000_aabbccdd"}, recorder.recorded)
}

type fakePaymentSessionStore struct {
	sessions map[string]*payment.Session
	getErr   error
	deleted  []string
}

func newFakePaymentSessionStore() *fakePaymentSessionStore {
	return &fakePaymentSessionStore{sessions: make(map[string]*payment.Session)}
}

func (f *fakePaymentSessionStore) Open(ctx context.Context, session *payment.Session) error {
	f.sessions[session.Reference] = session
	return nil
}

func (f *fakePaymentSessionStore) Get(ctx context.Context, reference string) (*payment.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.sessions[reference], nil
}

func (f *fakePaymentSessionStore) Delete(ctx context.Context, reference string) error {
	delete(f.sessions, reference)
	f.deleted = append(f.deleted, reference)
	return nil
}

func TestCallbackService_SessionGuard(t *testing.T) {
	const reference = "PAY_7_1700000000000_aabbccdd"
	query := url.Values{"reference": {reference}}

	t.Run("missing session fails without verification", func(t *testing.T) {
		verifier := &fakeVerifier{name: "paystack", result: successResult()}
		recorder := &fakeRecorder{}
		registry := &fakeRegistry{verifiers: map[string]*fakeVerifier{"paystack": verifier}}
		svc := NewCallbackService(registry, recorder, newFakeIdempotencyStore(), zap.NewNop(),
			CallbackConfig{DefaultGateway: "paystack"}, WithSessions(newFakePaymentSessionStore()))

		res := svc.HandleQuery(context.Background(), query)
		assert.Equal(t, payment.OutcomeFailed, res.Outcome)
		assert.Equal(t, "payment session has expired", res.Message)
		assert.Zero(t, verifier.calls)
		assert.Empty(t, recorder.recorded)
	})

	t.Run("expired session fails without verification", func(t *testing.T) {
		verifier := &fakeVerifier{name: "paystack", result: successResult()}
		recorder := &fakeRecorder{}
		registry := &fakeRegistry{verifiers: map[string]*fakeVerifier{"paystack": verifier}}
		sessions := newFakePaymentSessionStore()
		sessions.sessions[reference] = payment.NewSessionAt(reference, time.Now().Add(-2*time.Hour), time.Hour)
		svc := NewCallbackService(registry, recorder, newFakeIdempotencyStore(), zap.NewNop(),
			CallbackConfig{DefaultGateway: "paystack"}, WithSessions(sessions))

		res := svc.HandleQuery(context.Background(), query)
		assert.Equal(t, payment.OutcomeFailed, res.Outcome)
		assert.Zero(t, verifier.calls)
	})

	t.Run("live session verifies and is closed after recording", func(t *testing.T) {
		verifier := &fakeVerifier{name: "paystack", result: successResult()}
		recorder := &fakeRecorder{}
		registry := &fakeRegistry{verifiers: map[string]*fakeVerifier{"paystack": verifier}}
		sessions := newFakePaymentSessionStore()
		sessions.sessions[reference] = payment.NewSession(reference, time.Hour)
		svc := NewCallbackService(registry, recorder, newFakeIdempotencyStore(), zap.NewNop(),
			CallbackConfig{DefaultGateway: "paystack"}, WithSessions(sessions))

		res := svc.HandleQuery(context.Background(), query)
		assert.Equal(t, payment.OutcomeSuccess, res.Outcome)
		assert.Equal(t, 1, verifier.calls)
		assert.Equal(t, []string{reference}, sessions.deleted)
	})

	t.Run("foreign references are not held to a session", func(t *testing.T) {
		verifier := &fakeVerifier{name: "paystack", result: successResult()}
		recorder := &fakeRecorder{}
		registry := &fakeRegistry{verifiers: map[string]*fakeVerifier{"paystack": verifier}}
		svc := NewCallbackService(registry, recorder, newFakeIdempotencyStore(), zap.NewNop(),
			CallbackConfig{DefaultGateway: "paystack"}, WithSessions(newFakePaymentSessionStore()))

		res := svc.HandleQuery(context.Background(), url.Values{"reference": {"FLW-REF-12345"}})
		assert.Equal(t, payment.OutcomeSuccess, res.Outcome)
		assert.Equal(t, 1, verifier.calls)
	})
}
