package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcheckout "github.com/storefront/checkout/internal/application/checkout"
	"github.com/storefront/checkout/internal/domain/checkout"
	"github.com/storefront/checkout/internal/interfaces/http/middleware"
)

// CheckoutHandler exposes the checkout wizard over HTTP. Each session is
// driven by a hub-managed coordinator, so concurrent requests for one
// session serialize on a single state machine.
type CheckoutHandler struct {
	BaseHandler
	hub    *appcheckout.Hub
	logger *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(hub *appcheckout.Hub, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{hub: hub, logger: logger}
}

// RegisterRoutes registers checkout routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/checkout")
	g.POST("", h.Initialize)
	g.GET("/:session_id", h.GetState)
	g.POST("/:session_id/step", h.GoToStep)
	g.PUT("/:session_id/customer-info", h.UpdateCustomerInfo)
	g.PUT("/:session_id/shipping-address", h.UpdateShippingAddress)
	g.PUT("/:session_id/payment-method", h.UpdatePaymentMethod)
	g.POST("/:session_id/validate", h.Validate)
	g.POST("/:session_id/complete-step", h.CompleteStep)
	g.POST("/:session_id/reset", h.Reset)
}

// InitializeRequest starts a checkout for a store
type InitializeRequest struct {
	StoreID int64 `json:"store_id" binding:"required,gt=0"`
}

// StepRequest names a checkout step
type StepRequest struct {
	Step string `json:"step" binding:"required,oneof=customer_info shipping payment review"`
}

// CustomerInfoRequest carries the buyer's contact details
type CustomerInfoRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"required,min=7,max=20"`
}

// ShippingAddressRequest carries the delivery address
type ShippingAddressRequest struct {
	Line1      string `json:"line1" binding:"required,max=200"`
	Line2      string `json:"line2" binding:"max=200"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"required,max=100"`
	PostalCode string `json:"postal_code" binding:"required,max=20"`
	Country    string `json:"country" binding:"required,len=2"`
}

// PaymentMethodRequest carries the buyer's payment method choice
type PaymentMethodRequest struct {
	Method  string `json:"method" binding:"required,oneof=card bank_transfer ussd mobile_money"`
	Gateway string `json:"gateway" binding:"required,oneof=paystack flutterwave"`
}

// StateResponse is the wire form of the checkout state
type StateResponse struct {
	SessionID       string                     `json:"session_id"`
	CurrentStep     string                     `json:"current_step"`
	CompletedSteps  []string                   `json:"completed_steps"`
	Items           []checkout.LineItem        `json:"items"`
	CustomerInfo    *checkout.CustomerInfo     `json:"customer_info,omitempty"`
	ShippingAddress *checkout.ShippingAddress  `json:"shipping_address,omitempty"`
	PaymentMethod   *checkout.PaymentMethod    `json:"payment_method,omitempty"`
	Validation      *checkout.ValidationResult `json:"validation,omitempty"`
	Totals          *checkout.Totals           `json:"totals,omitempty"`
	FieldErrors     map[string]string          `json:"field_errors,omitempty"`
	ValidationError string                     `json:"validation_error,omitempty"`
	SessionError    string                     `json:"session_error,omitempty"`
	IsSaving        bool                       `json:"is_saving"`
	Expired         bool                       `json:"expired"`
}

func stateResponse(state checkout.State) StateResponse {
	completed := make([]string, 0, len(state.CompletedSteps))
	for _, s := range state.CompletedSteps.Ordered() {
		completed = append(completed, s.String())
	}
	return StateResponse{
		SessionID:       state.SessionID,
		CurrentStep:     state.CurrentStep.String(),
		CompletedSteps:  completed,
		Items:           state.Items(),
		CustomerInfo:    state.CustomerInfo,
		ShippingAddress: state.ShippingAddress,
		PaymentMethod:   state.PaymentMethod,
		Validation:      state.Validation,
		Totals:          state.Totals,
		FieldErrors:     state.FieldErrors,
		ValidationError: state.ValidationError,
		SessionError:    state.SessionError,
		IsSaving:        state.IsSaving,
		Expired:         state.Expired,
	}
}

// Initialize starts a new checkout session for a store
func (h *CheckoutHandler) Initialize(c *gin.Context) {
	var req InitializeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	_, state, err := h.hub.Start(c.Request.Context(), req.StoreID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, stateResponse(state))
}

// GetState returns the current state of a checkout session
func (h *CheckoutHandler) GetState(c *gin.Context) {
	coord, ok := h.coordinator(c)
	if !ok {
		return
	}
	h.Success(c, stateResponse(coord.State()))
}

// GoToStep navigates the checkout to a step the buyer may enter
func (h *CheckoutHandler) GoToStep(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	coord, ok := h.coordinator(c)
	if !ok {
		return
	}

	state, err := coord.GoToStep(c.Request.Context(), checkout.Step(req.Step))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stateResponse(state))
}

// UpdateCustomerInfo stores the buyer's contact details
func (h *CheckoutHandler) UpdateCustomerInfo(c *gin.Context) {
	var req CustomerInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	coord, ok := h.coordinator(c)
	if !ok {
		return
	}

	state, err := coord.UpdateCustomerInfo(c.Request.Context(), checkout.CustomerInfo{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stateResponse(state))
}

// UpdateShippingAddress stores the delivery address
func (h *CheckoutHandler) UpdateShippingAddress(c *gin.Context) {
	var req ShippingAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	coord, ok := h.coordinator(c)
	if !ok {
		return
	}

	state, err := coord.UpdateShippingAddress(c.Request.Context(), checkout.ShippingAddress{
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stateResponse(state))
}

// UpdatePaymentMethod stores the chosen payment method
func (h *CheckoutHandler) UpdatePaymentMethod(c *gin.Context) {
	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	coord, ok := h.coordinator(c)
	if !ok {
		return
	}

	state, err := coord.UpdatePaymentMethod(c.Request.Context(), checkout.PaymentMethod{
		Method:  req.Method,
		Gateway: req.Gateway,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stateResponse(state))
}

// ValidateResponse reports a validation run alongside the refreshed state
type ValidateResponse struct {
	Valid bool          `json:"valid"`
	State StateResponse `json:"state"`
}

// Validate runs server-side validation for the current step
func (h *CheckoutHandler) Validate(c *gin.Context) {
	coord, ok := h.coordinator(c)
	if !ok {
		return
	}

	valid, err := coord.ValidateCurrentStep(c.Request.Context())
	if err != nil {
		if errors.Is(err, checkout.ErrNoSession) || errors.Is(err, checkout.ErrEmptyCart) {
			h.HandleError(c, err)
			return
		}
		// Transport failures stay inside the state as validation_error;
		// the buyer's page keeps rendering with the last known results
		h.Success(c, ValidateResponse{Valid: false, State: stateResponse(coord.State())})
		return
	}
	h.Success(c, ValidateResponse{Valid: valid, State: stateResponse(coord.State())})
}

// CompleteStep marks a step done and advances the wizard
func (h *CheckoutHandler) CompleteStep(c *gin.Context) {
	var req StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	coord, ok := h.coordinator(c)
	if !ok {
		return
	}

	state, err := coord.CompleteStep(c.Request.Context(), checkout.Step(req.Step))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stateResponse(state))
}

// Reset abandons the checkout and destroys its session
func (h *CheckoutHandler) Reset(c *gin.Context) {
	sessionID := c.Param("session_id")
	coord, ok := h.coordinator(c)
	if !ok {
		return
	}

	coord.ResetCheckout(c.Request.Context())
	h.hub.Release(sessionID)
	h.NoContent(c)
}

// coordinator resolves the session's coordinator or writes the error
// response and reports false
func (h *CheckoutHandler) coordinator(c *gin.Context) (*appcheckout.Coordinator, bool) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		h.BadRequest(c, "Missing session ID")
		return nil, false
	}

	coord, err := h.hub.Get(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return coord, true
}
