package checkout

// Action is a tagged state transition consumed by Reduce.
// Network side effects live in the application layer, which dispatches
// actions; the reducer itself performs no I/O.
type Action interface {
	isAction()
}

// InitializeStarted marks the beginning of checkout initialization
type InitializeStarted struct{}

// InitializeSucceeded carries the freshly created session with its
// initial validation result and totals
type InitializeSucceeded struct {
	Session    *Session
	Validation *ValidationResult
	Totals     *Totals
}

// InitializeFailed records an initialization failure
type InitializeFailed struct {
	Message string
}

// StepChanged moves the checkout to an already-permitted step
type StepChanged struct {
	Step Step
}

// StepCompleted marks a step done, auto-advancing when the following
// step's requirements are now satisfied
type StepCompleted struct {
	Step Step
}

// CustomerInfoUpdated sets the optimistic local customer info
type CustomerInfoUpdated struct {
	Info CustomerInfo
}

// ShippingAddressUpdated sets the optimistic local shipping address
type ShippingAddressUpdated struct {
	Address ShippingAddress
}

// PaymentMethodUpdated sets the optimistic local payment method
type PaymentMethodUpdated struct {
	Method PaymentMethod
}

// ValidationStarted flags an in-flight validation call
type ValidationStarted struct{}

// ValidationSucceeded stores a fresh validation result and totals
type ValidationSucceeded struct {
	Validation *ValidationResult
	Totals     *Totals
}

// ValidationFailed records a transport-level validation failure.
// Previously known-good validation and totals are retained.
type ValidationFailed struct {
	Message string
}

// SaveStarted flags an in-flight session save
type SaveStarted struct{}

// SaveSettled clears the saving flag; Message is empty on success
type SaveSettled struct {
	Message string
}

// SessionRefreshed mirrors the latest fetched session into the state
type SessionRefreshed struct {
	Session *Session
}

// FieldErrorSet records a per-field form error
type FieldErrorSet struct {
	Field   string
	Message string
}

// FieldErrorCleared removes a per-field form error
type FieldErrorCleared struct {
	Field string
}

// SessionExpired marks the session expired; expiry is sticky until reset
type SessionExpired struct{}

// Reset clears all checkout state back to initial
type Reset struct{}

func (InitializeStarted) isAction()      {}
func (InitializeSucceeded) isAction()    {}
func (InitializeFailed) isAction()       {}
func (StepChanged) isAction()            {}
func (StepCompleted) isAction()          {}
func (CustomerInfoUpdated) isAction()    {}
func (ShippingAddressUpdated) isAction() {}
func (PaymentMethodUpdated) isAction()   {}
func (ValidationStarted) isAction()      {}
func (ValidationSucceeded) isAction()    {}
func (ValidationFailed) isAction()       {}
func (SaveStarted) isAction()            {}
func (SaveSettled) isAction()            {}
func (SessionRefreshed) isAction()       {}
func (FieldErrorSet) isAction()          {}
func (FieldErrorCleared) isAction()      {}
func (SessionExpired) isAction()         {}
func (Reset) isAction()                  {}
