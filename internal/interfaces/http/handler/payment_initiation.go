package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apppayment "github.com/storefront/checkout/internal/application/payment"
	"github.com/storefront/checkout/internal/interfaces/http/middleware"
)

// PaymentInitiationHandler starts payments: the request is held to the
// configured policy and the buyer is handed the gateway's checkout URL
type PaymentInitiationHandler struct {
	BaseHandler
	payments *apppayment.InitiationService
	logger   *zap.Logger
}

// NewPaymentInitiationHandler creates a new PaymentInitiationHandler
func NewPaymentInitiationHandler(payments *apppayment.InitiationService, logger *zap.Logger) *PaymentInitiationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentInitiationHandler{payments: payments, logger: logger}
}

// RegisterRoutes registers payment initiation routes
func (h *PaymentInitiationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/initiate", h.Initiate)
}

// InitiatePaymentRequest starts a payment for an order. Amount is in
// minor currency units. Gateway and method are checked against the
// policy allowlists, not here, so every violation reports together.
type InitiatePaymentRequest struct {
	OrderID  int64           `json:"order_id" binding:"required,gt=0"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required,len=3"`
	Method   string          `json:"method" binding:"required"`
	Gateway  string          `json:"gateway" binding:"required"`
	Email    string          `json:"email" binding:"required,email"`
}

// Initiate opens a gateway transaction for the order
func (h *PaymentInitiationHandler) Initiate(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.payments.Initiate(c.Request.Context(), apppayment.InitiateRequest{
		OrderID:  req.OrderID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
		Gateway:  req.Gateway,
		Email:    req.Email,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.logger.Info("payment initiated",
		zap.String("reference", result.Reference),
		zap.Int64("order_id", req.OrderID),
	)
	h.Created(c, result)
}
