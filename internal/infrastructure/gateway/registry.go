package gateway

import (
	"strings"

	apppayment "github.com/storefront/checkout/internal/application/payment"
	"github.com/storefront/checkout/internal/domain/shared"
)

// normalizeStatus maps gateway-specific status words onto the shared
// vocabulary: success, failed, abandoned, cancelled, pending
func normalizeStatus(status string) string {
	switch strings.ToLower(status) {
	case "success", "successful":
		return "success"
	case "failed", "error", "reversed":
		return "failed"
	case "abandoned":
		return "abandoned"
	case "cancelled", "canceled":
		return "cancelled"
	case "pending", "ongoing", "processing":
		return "pending"
	default:
		return strings.ToLower(status)
	}
}

// Registry resolves gateway identifiers to their verifier adapters
type Registry struct {
	verifiers map[string]apppayment.Verifier
}

// NewRegistry creates a registry holding the given verifiers
func NewRegistry(verifiers ...apppayment.Verifier) *Registry {
	r := &Registry{verifiers: make(map[string]apppayment.Verifier, len(verifiers))}
	for _, v := range verifiers {
		r.verifiers[v.Name()] = v
	}
	return r
}

// Verifier returns the verifier for the gateway identifier
func (r *Registry) Verifier(gateway string) (apppayment.Verifier, error) {
	if v, ok := r.verifiers[strings.ToLower(gateway)]; ok {
		return v, nil
	}
	return nil, shared.NewDomainError("UNKNOWN_GATEWAY", "Unknown payment gateway: "+gateway)
}

// Initiator returns the initiator for the gateway identifier. Gateways
// that can only verify are reported as unknown for initiation.
func (r *Registry) Initiator(gateway string) (apppayment.Initiator, error) {
	v, err := r.Verifier(gateway)
	if err != nil {
		return nil, err
	}
	initiator, ok := v.(apppayment.Initiator)
	if !ok {
		return nil, shared.NewDomainError("UNKNOWN_GATEWAY", "Gateway cannot start payments: "+gateway)
	}
	return initiator, nil
}

// Names returns the identifiers of all registered gateways
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.verifiers))
	for name := range r.verifiers {
		names = append(names, name)
	}
	return names
}

var (
	_ apppayment.VerifierRegistry  = (*Registry)(nil)
	_ apppayment.InitiatorRegistry = (*Registry)(nil)
	_ apppayment.Initiator         = (*PaystackAdapter)(nil)
	_ apppayment.Initiator         = (*FlutterwaveAdapter)(nil)
)
