package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/order"
)

// OrderTrackingHandler serves buyer-facing order tracking views built
// from locally recorded payments
type OrderTrackingHandler struct {
	BaseHandler
	records order.PaymentRecordRepository
	logger  *zap.Logger
}

// NewOrderTrackingHandler creates a new OrderTrackingHandler
func NewOrderTrackingHandler(records order.PaymentRecordRepository, logger *zap.Logger) *OrderTrackingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderTrackingHandler{records: records, logger: logger}
}

// RegisterRoutes registers order tracking routes
func (h *OrderTrackingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/orders/:reference/tracking", h.GetTracking)
	rg.GET("/stores/:store_id/orders", h.ListStoreOrders)
}

// TrackingResponse is the buyer-facing tracking view of one order
type TrackingResponse struct {
	OrderNumber    string           `json:"order_number"`
	Reference      string           `json:"reference"`
	Status         order.StatusInfo `json:"status"`
	Amount         decimal.Decimal  `json:"amount"`
	Currency       string           `json:"currency"`
	PaidAt         time.Time        `json:"paid_at"`
	Carrier        string           `json:"carrier,omitempty"`
	TrackingNumber string           `json:"tracking_number,omitempty"`
	TrackingURL    string           `json:"tracking_url,omitempty"`
}

// GetTracking returns the tracking view for a paid order. Shipment
// details ride in as query parameters because the payment record does
// not carry them; unknown carriers simply render without a link.
func (h *OrderTrackingHandler) GetTracking(c *gin.Context) {
	reference := c.Param("reference")

	record, err := h.records.FindByReference(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := TrackingResponse{
		OrderNumber:    order.DisplayNumber(record.StoreID, record.OrderID, c.Query("order_number")),
		Reference:      record.Reference,
		Status:         order.DeriveStatus(record.Status),
		Amount:         record.Amount,
		Currency:       record.Currency,
		PaidAt:         record.PaidAt,
		Carrier:        c.Query("carrier"),
		TrackingNumber: c.Query("tracking_number"),
	}
	if url, ok := order.TrackingURL(resp.Carrier, resp.TrackingNumber); ok {
		resp.TrackingURL = url
	}

	h.Success(c, resp)
}

// StoreOrderResponse is one row of a store's recent paid orders
type StoreOrderResponse struct {
	OrderNumber string           `json:"order_number"`
	Reference   string           `json:"reference"`
	Status      order.StatusInfo `json:"status"`
	Amount      decimal.Decimal  `json:"amount"`
	Currency    string           `json:"currency"`
	PaidAt      time.Time        `json:"paid_at"`
}

// ListStoreOrders returns a store's recent paid orders, newest first
func (h *OrderTrackingHandler) ListStoreOrders(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		h.BadRequest(c, "Invalid store ID")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.BadRequest(c, "Invalid limit")
			return
		}
	}

	records, err := h.records.FindByStore(c.Request.Context(), storeID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]StoreOrderResponse, 0, len(records))
	for _, r := range records {
		out = append(out, StoreOrderResponse{
			OrderNumber: order.DisplayNumber(r.StoreID, r.OrderID, ""),
			Reference:   r.Reference,
			Status:      order.DeriveStatus(r.Status),
			Amount:      r.Amount,
			Currency:    r.Currency,
			PaidAt:      r.PaidAt,
		})
	}
	h.Success(c, out)
}
