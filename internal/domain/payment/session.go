package payment

import "time"

// DefaultSessionTTL is the default lifetime of a payment session
const DefaultSessionTTL = 30 * time.Minute

// Session guards a single payment attempt. It is short-lived, can be
// extended, and its validity is checked before acting on a gateway
// callback. Distinct from the checkout session.
type Session struct {
	Reference string    `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession creates a payment session for the reference with the given
// TTL (DefaultSessionTTL when ttl is zero or negative)
func NewSession(reference string, ttl time.Duration) *Session {
	return NewSessionAt(reference, time.Now(), ttl)
}

// NewSessionAt is NewSession with an explicit creation time
func NewSessionAt(reference string, now time.Time, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Session{
		Reference: reference,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Valid reports whether the session is still live at the given time
func (s *Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Extend pushes the expiry out by d from its current value
func (s *Session) Extend(d time.Duration) {
	if d > 0 {
		s.ExpiresAt = s.ExpiresAt.Add(d)
	}
}
