package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcart "github.com/storefront/checkout/internal/application/cart"
	"github.com/storefront/checkout/internal/domain/cart"
	"github.com/storefront/checkout/internal/interfaces/http/middleware"
)

// deviceTokenHeader identifies the anonymous browser across requests
const deviceTokenHeader = "X-Device-Token"

// GuestCartHandler exposes the anonymous cart over HTTP. All routes key
// the cart by the device token header; the sync route additionally needs
// an authenticated user to merge into.
type GuestCartHandler struct {
	BaseHandler
	carts  *appcart.Service
	logger *zap.Logger
}

// NewGuestCartHandler creates a new GuestCartHandler
func NewGuestCartHandler(carts *appcart.Service, logger *zap.Logger) *GuestCartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GuestCartHandler{carts: carts, logger: logger}
}

// RegisterRoutes registers guest cart routes
func (h *GuestCartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/guest-cart")
	g.POST("/items", h.AddItem)
	g.DELETE("/items", h.RemoveItem)
	g.GET("", h.GetCart)
	g.GET("/count", h.GetCount)
	g.GET("/changes", h.WaitForChange)
	g.POST("/sync", middleware.RequireIdentity(), h.Sync)
}

// AddItemRequest adds a product to the guest cart
type AddItemRequest struct {
	StoreID   int64 `json:"store_id" binding:"required,gt=0"`
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// RemoveItemRequest removes a product from the guest cart
type RemoveItemRequest struct {
	StoreID   int64 `json:"store_id" binding:"required,gt=0"`
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
}

// GuestCartResponse is the wire form of one store's guest cart
type GuestCartResponse struct {
	StoreID   int64       `json:"store_id"`
	Lines     []cart.Line `json:"lines"`
	ItemCount int         `json:"item_count"`
}

func guestCartResponse(storeID int64, gc *cart.GuestCart) GuestCartResponse {
	return GuestCartResponse{
		StoreID:   storeID,
		Lines:     gc.Lines,
		ItemCount: gc.ItemCount(),
	}
}

// AddItem puts a product into the device's guest cart
func (h *GuestCartHandler) AddItem(c *gin.Context) {
	token, ok := h.deviceToken(c)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	gc, err := h.carts.AddToGuestCart(c.Request.Context(), token, req.StoreID, req.ProductID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, guestCartResponse(req.StoreID, gc))
}

// RemoveItem takes a product out of the device's guest cart
func (h *GuestCartHandler) RemoveItem(c *gin.Context) {
	token, ok := h.deviceToken(c)
	if !ok {
		return
	}

	var req RemoveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	gc, err := h.carts.RemoveFromGuestCart(c.Request.Context(), token, req.StoreID, req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, guestCartResponse(req.StoreID, gc))
}

// GetCart returns one store's guest cart
func (h *GuestCartHandler) GetCart(c *gin.Context) {
	token, ok := h.deviceToken(c)
	if !ok {
		return
	}

	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		h.BadRequest(c, "Invalid or missing store_id")
		return
	}

	gc, err := h.carts.GetGuestCart(c.Request.Context(), token, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, guestCartResponse(storeID, gc))
}

// CountResponse carries the item count across all of a device's carts
type CountResponse struct {
	Count int `json:"count"`
}

// GetCount returns the total item count across all stores, the number
// storefront surfaces show on the cart badge
func (h *GuestCartHandler) GetCount(c *gin.Context) {
	token, ok := h.deviceToken(c)
	if !ok {
		return
	}

	count, err := h.carts.TotalGuestCartItems(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CountResponse{Count: count})
}

// Long-poll bounds for cart change watching
const (
	defaultChangeWait = 25 * time.Second
	maxChangeWait     = 60 * time.Second
)

// ChangesResponse reports whether the carts changed during the wait and
// the badge count to render either way
type ChangesResponse struct {
	Changed    bool `json:"changed"`
	TotalItems int  `json:"total_items"`
}

// WaitForChange long-polls for a cart change on any surface holding the
// same device token. It returns when a change lands or the wait runs
// out, whichever comes first.
func (h *GuestCartHandler) WaitForChange(c *gin.Context) {
	token, ok := h.deviceToken(c)
	if !ok {
		return
	}

	wait := defaultChangeWait
	if raw := c.Query("wait"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "Invalid wait duration")
			return
		}
		wait = min(parsed, maxChangeWait)
	}

	watchCtx, cancel := context.WithTimeout(c.Request.Context(), wait)
	defer cancel()

	changed := false
	select {
	case _, open := <-h.carts.WatchGuestCarts(watchCtx, token):
		changed = open
	case <-watchCtx.Done():
	}

	total, err := h.carts.TotalGuestCartItems(c.Request.Context(), token)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ChangesResponse{Changed: changed, TotalItems: total})
}

// SyncResponse reports the outcome of a sign-in merge
type SyncResponse struct {
	Merged   int           `json:"merged"`
	Failures []SyncFailure `json:"failures,omitempty"`
}

// SyncFailure is one line that could not be merged
type SyncFailure struct {
	StoreID   int64  `json:"store_id"`
	ProductID int64  `json:"product_id"`
	Reason    string `json:"reason"`
}

// Sync merges the device's guest carts into the signed-in user's server
// cart. Lines that fail to merge stay in the guest cart so a retry picks
// them up without duplicating the merged ones.
func (h *GuestCartHandler) Sync(c *gin.Context) {
	token, ok := h.deviceToken(c)
	if !ok {
		return
	}
	userToken := middleware.GetIdentityToken(c)

	result, err := h.carts.SyncAllGuestCarts(c.Request.Context(), token, userToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := SyncResponse{Merged: result.Merged}
	for _, f := range result.Failures {
		reason := "merge failed"
		if f.Err != nil {
			reason = f.Err.Error()
		}
		resp.Failures = append(resp.Failures, SyncFailure{
			StoreID:   f.StoreID,
			ProductID: f.ProductID,
			Reason:    reason,
		})
	}
	h.Success(c, resp)
}

func (h *GuestCartHandler) deviceToken(c *gin.Context) (string, bool) {
	token := c.GetHeader(deviceTokenHeader)
	if token == "" {
		h.BadRequest(c, "Missing "+deviceTokenHeader+" header")
		return "", false
	}
	return token, true
}
