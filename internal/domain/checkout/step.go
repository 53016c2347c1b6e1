package checkout

// Step represents one stage of the checkout wizard
type Step string

const (
	StepCustomerInfo Step = "customer_info"
	StepShipping     Step = "shipping"
	StepPayment      Step = "payment"
	StepReview       Step = "review"
)

// stepOrder is the fixed total order of checkout steps
var stepOrder = []Step{StepCustomerInfo, StepShipping, StepPayment, StepReview}

// IsValid checks if the step is a valid checkout step
func (s Step) IsValid() bool {
	switch s {
	case StepCustomerInfo, StepShipping, StepPayment, StepReview:
		return true
	}
	return false
}

// String returns the string representation of the step
func (s Step) String() string {
	return string(s)
}

// Index returns the position of the step in the fixed order, or -1 for an unknown step
func (s Step) Index() int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Requirements returns every step that must be completed before this step
// may be entered. The first step has no requirements.
func (s Step) Requirements() []Step {
	idx := s.Index()
	if idx <= 0 {
		return nil
	}
	reqs := make([]Step, idx)
	copy(reqs, stepOrder[:idx])
	return reqs
}

// Next returns the step following this one in the fixed order
// and false when this is the final step
func (s Step) Next() (Step, bool) {
	idx := s.Index()
	if idx < 0 || idx >= len(stepOrder)-1 {
		return "", false
	}
	return stepOrder[idx+1], true
}

// Steps returns the full step order
func Steps() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// StepSet is a set of completed steps
type StepSet map[Step]struct{}

// NewStepSet creates a step set from the given steps
func NewStepSet(steps ...Step) StepSet {
	set := make(StepSet, len(steps))
	for _, s := range steps {
		set[s] = struct{}{}
	}
	return set
}

// Has reports whether the step is a member of the set
func (ss StepSet) Has(s Step) bool {
	_, ok := ss[s]
	return ok
}

// With returns a copy of the set with the step added
func (ss StepSet) With(s Step) StepSet {
	out := make(StepSet, len(ss)+1)
	for k := range ss {
		out[k] = struct{}{}
	}
	out[s] = struct{}{}
	return out
}

// Ordered returns the members of the set in step order
func (ss StepSet) Ordered() []Step {
	out := make([]Step, 0, len(ss))
	for _, s := range stepOrder {
		if ss.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// CanProceedTo reports whether a checkout with the given completed steps
// may enter the target step. Every requirement of the target must already
// be completed; completed lower steps are always re-enterable because
// their requirements are necessarily satisfied.
func CanProceedTo(target Step, completed StepSet) bool {
	if !target.IsValid() {
		return false
	}
	for _, req := range target.Requirements() {
		if !completed.Has(req) {
			return false
		}
	}
	return true
}
