package payment

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const referencePrefix = "PAY"

// GenerateReference produces a payment reference of the form
// PAY_{orderID}_{unixMillis}_{randomSuffix}. The random suffix is a
// best-effort uniqueness aid, not a cryptographic guarantee; server-side
// idempotency keyed by the full reference covers actual dedup.
func GenerateReference(orderID int64) string {
	return GenerateReferenceAt(orderID, time.Now())
}

// GenerateReferenceAt is GenerateReference with an explicit timestamp
func GenerateReferenceAt(orderID int64, ts time.Time) string {
	return fmt.Sprintf("%s_%d_%d_%s", referencePrefix, orderID, ts.UnixMilli(), randomSuffix())
}

// IsReference reports whether the string carries the generated reference shape
func IsReference(s string) bool {
	parts := strings.Split(s, "_")
	return len(parts) == 4 && parts[0] == referencePrefix
}

// ParseReference extracts the order ID from a generated reference.
// References minted by other systems fail with an error rather than a
// zero order ID.
func ParseReference(s string) (int64, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 4 || parts[0] != referencePrefix {
		return 0, fmt.Errorf("malformed payment reference %q", s)
	}
	orderID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || orderID <= 0 {
		return 0, fmt.Errorf("malformed order id in payment reference %q", s)
	}
	return orderID, nil
}

// randomSuffix returns 8 hex characters of entropy
func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand read failures are not survivable in practice;
		// fall back to a clock-derived suffix rather than panicking.
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(buf)
}
