package payment

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// Outcome is the terminal result of processing a gateway callback.
// The UI is always shown exactly one of these; there is no partial or
// ambiguous outcome.
type Outcome string

const (
	// OutcomeLoading is the transient pre-resolution state; it never
	// leaves the handler as a final answer
	OutcomeLoading   Outcome = "loading"
	OutcomeSuccess   Outcome = "success"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Reference parameter names vary by gateway
var referenceParams = []string{"reference", "tx_ref", "trxref"}

// CallbackParams are the inputs extracted from a gateway callback URL
type CallbackParams struct {
	Reference string
	Status    string
	Gateway   string
	Popup     bool
}

// ParseCallbackParams extracts callback parameters from URL query values.
// Any of reference, tx_ref or trxref is accepted as the payment
// reference; an absent gateway falls back to the configured default.
func ParseCallbackParams(query url.Values, defaultGateway string) CallbackParams {
	p := CallbackParams{
		Status:  query.Get("status"),
		Gateway: strings.ToLower(query.Get("gateway")),
		Popup:   query.Get("popup") == "1" || query.Get("popup") == "true",
	}
	if p.Gateway == "" {
		p.Gateway = defaultGateway
	}
	for _, name := range referenceParams {
		if v := query.Get(name); v != "" {
			p.Reference = v
			break
		}
	}
	return p
}

// IsCancelledStatus reports whether a URL-supplied status indicates the
// buyer cancelled at the gateway. Cancellation is trusted from the URL
// and never re-verified.
func IsCancelledStatus(status string) bool {
	switch strings.ToLower(status) {
	case "cancelled", "canceled":
		return true
	}
	return false
}

// VerificationResult is a gateway's answer to a verify-by-reference call,
// normalized across gateway-specific status vocabularies
type VerificationResult struct {
	Success  bool            `json:"success"`
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency,omitempty"`
}

// ResolveOutcome maps a verification result (or failure) onto a terminal
// outcome and a display message. Only {success:true, status:"success"}
// counts as success; every other shape, including a transport error, is
// a failure carrying the most specific message available.
func ResolveOutcome(res *VerificationResult, err error) (Outcome, string) {
	if err != nil {
		return OutcomeFailed, err.Error()
	}
	if res == nil {
		return OutcomeFailed, "payment verification returned no result"
	}
	if res.Success && res.Status == "success" {
		return OutcomeSuccess, res.Message
	}
	if res.Message != "" {
		return OutcomeFailed, res.Message
	}
	return OutcomeFailed, "payment could not be verified"
}

// PostMessage is the structured message posted to a popup's opener
// window so it can resume the checkout flow
type PostMessage struct {
	Type      string `json:"type"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

// NewPostMessage builds the opener message for a gateway callback
func NewPostMessage(gateway, reference string, outcome Outcome) PostMessage {
	return PostMessage{
		Type:      fmt.Sprintf("%s_callback", gateway),
		Reference: reference,
		Status:    string(outcome),
	}
}
