package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStep_IsValid(t *testing.T) {
	tests := []struct {
		step    Step
		isValid bool
	}{
		{StepCustomerInfo, true},
		{StepShipping, true},
		{StepPayment, true},
		{StepReview, true},
		{Step("billing"), false},
		{Step(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.step), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.step.IsValid())
		})
	}
}

func TestStep_Requirements(t *testing.T) {
	assert.Empty(t, StepCustomerInfo.Requirements())
	assert.Equal(t, []Step{StepCustomerInfo}, StepShipping.Requirements())
	assert.Equal(t, []Step{StepCustomerInfo, StepShipping}, StepPayment.Requirements())
	assert.Equal(t, []Step{StepCustomerInfo, StepShipping, StepPayment}, StepReview.Requirements())
}

func TestStep_Next(t *testing.T) {
	next, ok := StepCustomerInfo.Next()
	assert.True(t, ok)
	assert.Equal(t, StepShipping, next)

	next, ok = StepPayment.Next()
	assert.True(t, ok)
	assert.Equal(t, StepReview, next)

	_, ok = StepReview.Next()
	assert.False(t, ok)

	_, ok = Step("bogus").Next()
	assert.False(t, ok)
}

func TestCanProceedTo_StepGating(t *testing.T) {
	tests := []struct {
		name      string
		target    Step
		completed StepSet
		allowed   bool
	}{
		{"first step always allowed", StepCustomerInfo, NewStepSet(), true},
		{"shipping blocked without customer info", StepShipping, NewStepSet(), false},
		{"shipping allowed after customer info", StepShipping, NewStepSet(StepCustomerInfo), true},
		{"payment blocked with only customer info", StepPayment, NewStepSet(StepCustomerInfo), false},
		{"payment allowed after shipping", StepPayment, NewStepSet(StepCustomerInfo, StepShipping), true},
		{"review blocked without payment", StepReview, NewStepSet(StepCustomerInfo, StepShipping), false},
		{"review allowed after all prior", StepReview, NewStepSet(StepCustomerInfo, StepShipping, StepPayment), true},
		{"completed lower step re-enterable", StepCustomerInfo, NewStepSet(StepCustomerInfo, StepShipping), true},
		{"unknown step never allowed", Step("bogus"), NewStepSet(StepCustomerInfo, StepShipping, StepPayment), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanProceedTo(tt.target, tt.completed))
		})
	}
}

func TestStepSet_With_DoesNotMutateOriginal(t *testing.T) {
	base := NewStepSet(StepCustomerInfo)
	grown := base.With(StepShipping)

	assert.False(t, base.Has(StepShipping))
	assert.True(t, grown.Has(StepShipping))
	assert.True(t, grown.Has(StepCustomerInfo))
}

func TestStepSet_Ordered(t *testing.T) {
	set := NewStepSet(StepPayment, StepCustomerInfo)
	assert.Equal(t, []Step{StepCustomerInfo, StepPayment}, set.Ordered())
}
