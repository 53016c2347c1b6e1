package payment

import (
	"net/url"
	"strings"
)

// DefaultAllowedHosts are the known gateway checkout domains
func DefaultAllowedHosts() []string {
	return []string{
		"paystack.com",
		"checkout.paystack.com",
		"flutterwave.com",
		"checkout.flutterwave.com",
	}
}

// ValidateRedirectURL confirms a gateway-provided redirect URL is safe to
// follow: well-formed, http or https, and hosted on (or under) one of
// the allowed gateway domains. Everything else is rejected to mitigate
// open-redirect abuse.
func ValidateRedirectURL(raw string, allowedHosts []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(allowed)
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
