package order

import (
	"fmt"
	"strings"
)

// TrackingStatus is the customer-facing order status taxonomy, derived
// from the raw status vocabulary of upstream order records
type TrackingStatus string

const (
	TrackingProcessing TrackingStatus = "processing"
	TrackingInTransit  TrackingStatus = "in_transit"
	TrackingDelivered  TrackingStatus = "delivered"
	TrackingCancelled  TrackingStatus = "cancelled"
	TrackingReturned   TrackingStatus = "returned"
)

// StatusInfo describes a tracking status for display
type StatusInfo struct {
	Status   TrackingStatus `json:"status"`
	Label    string         `json:"label"`
	Terminal bool           `json:"terminal"`
}

// DeriveStatus maps a raw order status onto the tracking taxonomy.
// Unknown statuses are shown as processing rather than erroring: a new
// upstream status must never break tracking display.
func DeriveStatus(raw string) StatusInfo {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "shipped", "in_transit", "out_for_delivery":
		return StatusInfo{Status: TrackingInTransit, Label: "In transit"}
	case "delivered", "completed":
		return StatusInfo{Status: TrackingDelivered, Label: "Delivered", Terminal: true}
	case "cancelled", "canceled":
		return StatusInfo{Status: TrackingCancelled, Label: "Cancelled", Terminal: true}
	case "returned", "refunded":
		return StatusInfo{Status: TrackingReturned, Label: "Returned", Terminal: true}
	default:
		return StatusInfo{Status: TrackingProcessing, Label: "Processing"}
	}
}

// DisplayNumber returns the human-facing order number. An upstream
// number is used verbatim when present; otherwise one is derived from
// the store and order IDs.
func DisplayNumber(storeID, orderID int64, upstream string) string {
	if upstream != "" {
		return upstream
	}
	return fmt.Sprintf("ORD-%d-%06d", storeID, orderID)
}

// carrierURLTemplates maps known carrier codes to tracking URL templates
var carrierURLTemplates = map[string]string{
	"dhl":   "https://www.dhl.com/track?tracking-id=%s",
	"ups":   "https://www.ups.com/track?tracknum=%s",
	"fedex": "https://www.fedex.com/fedextrack/?trknbr=%s",
	"gig":   "https://giglogistics.com/track?number=%s",
}

// TrackingURL returns the carrier tracking URL for a shipment. Unknown
// carriers yield no URL; the tracking number is still shown as text.
func TrackingURL(carrier, trackingNumber string) (string, bool) {
	if trackingNumber == "" {
		return "", false
	}
	tmpl, ok := carrierURLTemplates[strings.ToLower(strings.TrimSpace(carrier))]
	if !ok {
		return "", false
	}
	return fmt.Sprintf(tmpl, trackingNumber), true
}
