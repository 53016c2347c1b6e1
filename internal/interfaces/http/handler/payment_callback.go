package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apppayment "github.com/storefront/checkout/internal/application/payment"
)

// PaymentCallbackHandler handles the gateway redirect landing endpoint.
// Gateways send the buyer's browser here after a payment attempt; the
// endpoint is unauthenticated because the redirect carries no identity.
type PaymentCallbackHandler struct {
	BaseHandler
	callbacks *apppayment.CallbackService
	logger    *zap.Logger
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(callbacks *apppayment.CallbackService, logger *zap.Logger) *PaymentCallbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentCallbackHandler{callbacks: callbacks, logger: logger}
}

// RegisterRoutes registers payment callback routes
func (h *PaymentCallbackHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/callback", h.HandleCallback)
}

// HandleCallback resolves a gateway redirect to a terminal outcome.
// The response is always 200: the buyer is on a landing page and every
// failure mode is rendered as a failed outcome, never as a 5xx.
func (h *PaymentCallbackHandler) HandleCallback(c *gin.Context) {
	result := h.callbacks.HandleQuery(c.Request.Context(), c.Request.URL.Query())

	h.logger.Info("payment callback resolved",
		zap.String("reference", result.Reference),
		zap.String("gateway", result.Gateway),
		zap.String("outcome", string(result.Outcome)),
		zap.Bool("already_processed", result.AlreadyProcessed),
	)

	h.Success(c, result)
}
