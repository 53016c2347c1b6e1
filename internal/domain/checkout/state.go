package checkout

// State is the client-resident view of an in-progress checkout.
// It is authoritative for presentation purposes until a session expiry
// or an explicit server error is observed.
type State struct {
	SessionID string
	Session   *Session

	// CurrentStep may run ahead of the step persisted server-side;
	// step writes are fire-and-forget with eventual consistency.
	CurrentStep    Step
	CompletedSteps StepSet

	// Optimistic local copies, pushed to the session with debounce
	CustomerInfo    *CustomerInfo
	ShippingAddress *ShippingAddress
	PaymentMethod   *PaymentMethod

	Validation *ValidationResult
	Totals     *Totals

	// FieldErrors is per-field form validation, independent of
	// Validation.Errors which carries business-rule failures
	FieldErrors map[string]string

	IsInitializing bool
	IsSaving       bool
	IsValidating   bool
	IsCompleting   bool

	SessionError    string
	ValidationError string
	Expired         bool
}

// NewState returns the initial checkout state
func NewState() State {
	return State{
		CurrentStep:    StepCustomerInfo,
		CompletedSteps: NewStepSet(),
		FieldErrors:    map[string]string{},
	}
}

// CanProceedTo reports whether the state permits entering the target step
func (s State) CanProceedTo(target Step) bool {
	return CanProceedTo(target, s.CompletedSteps)
}

// Items returns the authoritative line items of the underlying session
func (s State) Items() []LineItem {
	if s.Session == nil {
		return nil
	}
	return s.Session.Data.Items
}

// cloneFieldErrors copies the field error map for copy-on-write updates
func (s State) cloneFieldErrors() map[string]string {
	out := make(map[string]string, len(s.FieldErrors))
	for k, v := range s.FieldErrors {
		out[k] = v
	}
	return out
}
