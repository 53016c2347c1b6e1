package checkout

// Reduce applies an action to the state and returns the next state.
// It is pure: no I/O, no clock reads, and the input state is not mutated.
func Reduce(state State, action Action) State {
	switch a := action.(type) {
	case InitializeStarted:
		state = NewState()
		state.IsInitializing = true
		return state

	case InitializeSucceeded:
		state.IsInitializing = false
		state.Session = a.Session
		state.SessionID = a.Session.ID
		state.CurrentStep = a.Session.Step
		if !state.CurrentStep.IsValid() {
			state.CurrentStep = StepCustomerInfo
		}
		state.CompletedSteps = InferCompletedSteps(a.Session.Data)
		state.CustomerInfo = a.Session.Data.CustomerInfo
		state.ShippingAddress = a.Session.Data.ShippingAddress
		state.PaymentMethod = a.Session.Data.PaymentMethod
		state.Validation = a.Validation
		state.Totals = a.Totals
		state.SessionError = ""
		return state

	case InitializeFailed:
		state.IsInitializing = false
		state.SessionError = a.Message
		return state

	case StepChanged:
		if !state.CanProceedTo(a.Step) {
			return state
		}
		state.CurrentStep = a.Step
		return state

	case StepCompleted:
		if !a.Step.IsValid() {
			return state
		}
		state.CompletedSteps = state.CompletedSteps.With(a.Step)
		// Auto-advance only when completing the step the user is on,
		// so a re-completion of an earlier step never moves the user
		// backwards.
		if state.CurrentStep == a.Step {
			if next, ok := a.Step.Next(); ok && CanProceedTo(next, state.CompletedSteps) {
				state.CurrentStep = next
			}
		}
		return state

	case CustomerInfoUpdated:
		info := a.Info
		state.CustomerInfo = &info
		return state

	case ShippingAddressUpdated:
		addr := a.Address
		state.ShippingAddress = &addr
		return state

	case PaymentMethodUpdated:
		method := a.Method
		state.PaymentMethod = &method
		return state

	case ValidationStarted:
		state.IsValidating = true
		return state

	case ValidationSucceeded:
		state.IsValidating = false
		state.Validation = a.Validation
		state.Totals = a.Totals
		state.ValidationError = ""
		return state

	case ValidationFailed:
		// Stale-but-present beats absent: keep the last known-good
		// validation and totals.
		state.IsValidating = false
		state.ValidationError = a.Message
		return state

	case SaveStarted:
		state.IsSaving = true
		return state

	case SaveSettled:
		state.IsSaving = false
		if a.Message != "" {
			state.SessionError = a.Message
		}
		return state

	case SessionRefreshed:
		state.Session = a.Session
		if a.Session != nil {
			state.SessionID = a.Session.ID
		}
		return state

	case FieldErrorSet:
		errs := state.cloneFieldErrors()
		errs[a.Field] = a.Message
		state.FieldErrors = errs
		return state

	case FieldErrorCleared:
		errs := state.cloneFieldErrors()
		delete(errs, a.Field)
		state.FieldErrors = errs
		return state

	case SessionExpired:
		state.Expired = true
		state.SessionError = ErrSessionExpired.Message
		return state

	case Reset:
		return NewState()
	}

	return state
}
