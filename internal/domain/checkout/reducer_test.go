package checkout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *Session {
	return &Session{
		ID:      "sess-123",
		StoreID: 42,
		Step:    StepCustomerInfo,
		Data: SessionData{
			Items: []LineItem{{ProductID: 5, Quantity: 2}},
		},
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
}

func TestReduce_InitializeSucceeded(t *testing.T) {
	sess := testSession()
	validation := &ValidationResult{IsValid: true}
	totals := &Totals{Total: decimal.NewFromInt(100)}

	state := Reduce(NewState(), InitializeStarted{})
	assert.True(t, state.IsInitializing)

	state = Reduce(state, InitializeSucceeded{Session: sess, Validation: validation, Totals: totals})

	assert.False(t, state.IsInitializing)
	assert.Equal(t, "sess-123", state.SessionID)
	assert.Equal(t, StepCustomerInfo, state.CurrentStep)
	assert.Equal(t, validation, state.Validation)
	assert.Equal(t, totals, state.Totals)
	assert.Empty(t, state.CompletedSteps)
}

func TestReduce_InitializeSucceeded_InfersCompletionFromSessionData(t *testing.T) {
	sess := testSession()
	sess.Step = StepPayment
	sess.Data.CustomerInfo = &CustomerInfo{Email: "a@b.test"}
	sess.Data.ShippingAddress = &ShippingAddress{City: "Lagos"}

	state := Reduce(NewState(), InitializeSucceeded{Session: sess})

	assert.Equal(t, StepPayment, state.CurrentStep)
	assert.True(t, state.CompletedSteps.Has(StepCustomerInfo))
	assert.True(t, state.CompletedSteps.Has(StepShipping))
	assert.False(t, state.CompletedSteps.Has(StepPayment))
}

func TestReduce_InitializeFailed(t *testing.T) {
	state := Reduce(Reduce(NewState(), InitializeStarted{}), InitializeFailed{Message: "store inactive"})
	assert.False(t, state.IsInitializing)
	assert.Equal(t, "store inactive", state.SessionError)
}

func TestReduce_StepChanged_RejectsUngatedStep(t *testing.T) {
	state := NewState()
	state.CompletedSteps = NewStepSet(StepCustomerInfo)

	next := Reduce(state, StepChanged{Step: StepPayment})

	assert.Equal(t, StepCustomerInfo, next.CurrentStep, "payment requires shipping to be completed")
}

func TestReduce_StepChanged_AllowsGatedStep(t *testing.T) {
	state := NewState()
	state.CompletedSteps = NewStepSet(StepCustomerInfo, StepShipping)

	next := Reduce(state, StepChanged{Step: StepPayment})

	assert.Equal(t, StepPayment, next.CurrentStep)
}

func TestReduce_StepCompleted_AutoAdvances(t *testing.T) {
	state := NewState()
	state.CurrentStep = StepShipping
	state.CompletedSteps = NewStepSet(StepCustomerInfo)

	next := Reduce(state, StepCompleted{Step: StepShipping})

	assert.Equal(t, StepPayment, next.CurrentStep)
	assert.True(t, next.CompletedSteps.Has(StepShipping))
}

func TestReduce_StepCompleted_Idempotent(t *testing.T) {
	state := NewState()
	state.CurrentStep = StepShipping
	state.CompletedSteps = NewStepSet(StepCustomerInfo)

	once := Reduce(state, StepCompleted{Step: StepShipping})
	twice := Reduce(once, StepCompleted{Step: StepShipping})

	assert.Equal(t, StepPayment, once.CurrentStep)
	assert.Equal(t, StepPayment, twice.CurrentStep, "re-completing must not advance further")
	assert.Len(t, twice.CompletedSteps, 2, "set semantics: no duplicate membership")
}

func TestReduce_StepCompleted_NeverMovesBackwards(t *testing.T) {
	state := NewState()
	state.CurrentStep = StepReview
	state.CompletedSteps = NewStepSet(StepCustomerInfo, StepShipping, StepPayment)

	next := Reduce(state, StepCompleted{Step: StepShipping})

	assert.Equal(t, StepReview, next.CurrentStep)
}

func TestReduce_FieldUpdates_AreOptimistic(t *testing.T) {
	state := NewState()

	state = Reduce(state, CustomerInfoUpdated{Info: CustomerInfo{Email: "a@b.test"}})
	state = Reduce(state, ShippingAddressUpdated{Address: ShippingAddress{City: "Accra"}})
	state = Reduce(state, PaymentMethodUpdated{Method: PaymentMethod{Method: "card", Gateway: "paystack"}})

	require.NotNil(t, state.CustomerInfo)
	require.NotNil(t, state.ShippingAddress)
	require.NotNil(t, state.PaymentMethod)
	assert.Equal(t, "a@b.test", state.CustomerInfo.Email)
	assert.Equal(t, "Accra", state.ShippingAddress.City)
	assert.Equal(t, "paystack", state.PaymentMethod.Gateway)
}

func TestReduce_ValidationFailed_KeepsStaleResult(t *testing.T) {
	state := NewState()
	good := &ValidationResult{IsValid: true}
	totals := &Totals{Total: decimal.NewFromInt(250)}
	state = Reduce(state, ValidationSucceeded{Validation: good, Totals: totals})

	state = Reduce(state, ValidationStarted{})
	state = Reduce(state, ValidationFailed{Message: "upstream timeout"})

	assert.False(t, state.IsValidating)
	assert.Equal(t, "upstream timeout", state.ValidationError)
	assert.Equal(t, good, state.Validation, "stale validation retained")
	assert.Equal(t, totals, state.Totals, "stale totals retained")
}

func TestReduce_ValidationSucceeded_ClearsPriorError(t *testing.T) {
	state := Reduce(NewState(), ValidationFailed{Message: "boom"})
	state = Reduce(state, ValidationSucceeded{Validation: &ValidationResult{IsValid: false, Errors: []string{"address undeliverable"}}})

	assert.Empty(t, state.ValidationError)
	assert.False(t, state.Validation.IsValid)
}

func TestReduce_FieldErrors(t *testing.T) {
	state := Reduce(NewState(), FieldErrorSet{Field: "email", Message: "invalid email"})
	assert.Equal(t, "invalid email", state.FieldErrors["email"])

	cleared := Reduce(state, FieldErrorCleared{Field: "email"})
	assert.NotContains(t, cleared.FieldErrors, "email")
	assert.Contains(t, state.FieldErrors, "email", "prior state untouched")
}

func TestReduce_SessionExpired_IsSticky(t *testing.T) {
	state := Reduce(NewState(), SessionExpired{})
	assert.True(t, state.Expired)
	assert.NotEmpty(t, state.SessionError)

	state = Reduce(state, ValidationSucceeded{Validation: &ValidationResult{IsValid: true}})
	assert.True(t, state.Expired, "expiry persists until reset")
}

func TestReduce_Reset(t *testing.T) {
	state := Reduce(NewState(), InitializeSucceeded{Session: testSession()})
	state = Reduce(state, SessionExpired{})

	state = Reduce(state, Reset{})

	assert.Empty(t, state.SessionID)
	assert.Nil(t, state.Session)
	assert.False(t, state.Expired)
	assert.Equal(t, StepCustomerInfo, state.CurrentStep)
}

func TestReduce_SaveSettled(t *testing.T) {
	state := Reduce(NewState(), SaveStarted{})
	assert.True(t, state.IsSaving)

	ok := Reduce(state, SaveSettled{})
	assert.False(t, ok.IsSaving)
	assert.Empty(t, ok.SessionError)

	failed := Reduce(state, SaveSettled{Message: "write failed"})
	assert.False(t, failed.IsSaving)
	assert.Equal(t, "write failed", failed.SessionError)
}
