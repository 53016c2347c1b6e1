package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/checkout"
	"github.com/storefront/checkout/internal/domain/shared"
)

// DefaultSessionTTL is the default checkout session lifetime
const DefaultSessionTTL = 30 * time.Minute

// Config holds coordinator tunables
type Config struct {
	SessionTTL     time.Duration
	DebounceWindow time.Duration
}

// Coordinator drives one checkout attempt. It is the single source of
// truth for which step the user is on and whether they are allowed to
// be there. All state transitions go through the pure reducer; the
// coordinator owns every side effect (persistence, validation calls,
// debounced saves) and dispatches actions with the results.
type Coordinator struct {
	commerce CommerceAPI
	sessions *SessionManager
	events   shared.EventPublisher
	logger   *zap.Logger
	cfg      Config

	mu    sync.Mutex
	state checkout.State
	saver *Debouncer
}

// NewCoordinator creates a coordinator for a single checkout attempt
func NewCoordinator(commerce CommerceAPI, sessions *SessionManager, events shared.EventPublisher, logger *zap.Logger, cfg Config) *Coordinator {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.DebounceWindow <= 0 {
		cfg.DebounceWindow = DefaultDebounceWindow
	}
	c := &Coordinator{
		commerce: commerce,
		sessions: sessions,
		events:   events,
		logger:   logger,
		cfg:      cfg,
		state:    checkout.NewState(),
		saver:    NewDebouncer(cfg.DebounceWindow),
	}
	return c
}

// State returns a snapshot of the current checkout state
func (c *Coordinator) State() checkout.State {
	c.lock()
	defer c.unlock()
	return c.state
}

// InitializeCheckout creates a new server-persisted session seeded with
// the store's current cart. Initialization failures are recorded in
// state and returned to the caller, who decides on navigation; they are
// not retried automatically.
func (c *Coordinator) InitializeCheckout(ctx context.Context, storeID int64) (checkout.State, error) {
	c.dispatch(checkout.InitializeStarted{})

	res, err := c.commerce.InitializeCheckout(ctx, storeID)
	if err != nil {
		err = initializationError(err)
		c.dispatch(checkout.InitializeFailed{Message: err.Error()})
		return c.State(), err
	}
	if len(res.Items) == 0 {
		c.dispatch(checkout.InitializeFailed{Message: checkout.ErrEmptyCart.Message})
		return c.State(), checkout.ErrEmptyCart
	}

	now := time.Now()
	session := &checkout.Session{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		Step:      checkout.StepCustomerInfo,
		Data:      checkout.SessionData{Items: res.Items},
		CreatedAt: now,
		ExpiresAt: now.Add(c.cfg.SessionTTL),
	}
	if err := c.sessions.Create(ctx, session); err != nil {
		c.logger.Error("failed to create checkout session",
			zap.Int64("store_id", storeID),
			zap.Error(err),
		)
		c.dispatch(checkout.InitializeFailed{Message: checkout.ErrInitialization.Message})
		return c.State(), checkout.ErrInitialization
	}

	c.dispatch(checkout.InitializeSucceeded{Session: session, Validation: res.Validation, Totals: res.Totals})
	return c.State(), nil
}

// initializationError keeps the cart and store conditions the buyer can
// act on; everything else (transport, upstream 5xx) collapses into the
// generic initialization failure.
func initializationError(err error) error {
	if errors.Is(err, checkout.ErrEmptyCart) || errors.Is(err, checkout.ErrStoreInactive) {
		return err
	}
	return checkout.ErrInitialization
}

// Resume restores the coordinator from a persisted session, inferring
// step completion from the data present on it
func (c *Coordinator) Resume(ctx context.Context, sessionID string) (checkout.State, error) {
	session, err := c.sessions.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, checkout.ErrSessionExpired) {
			c.handleExpiry()
		}
		return c.State(), err
	}
	c.dispatch(checkout.InitializeSucceeded{Session: session, Validation: nil, Totals: session.Data.Totals})
	return c.State(), nil
}

// GoToStep moves the checkout to the target step. The move is rejected
// with no state change when the target's requirements are not all
// completed. On success the new step is persisted best-effort: a
// persistence failure is logged but never blocks navigation.
func (c *Coordinator) GoToStep(ctx context.Context, target checkout.Step) (checkout.State, error) {
	if !target.IsValid() {
		return c.State(), checkout.ErrInvalidStep
	}

	c.lock()
	if !c.state.CanProceedTo(target) {
		c.unlock()
		return c.State(), checkout.ErrStepNotAllowed
	}
	c.state = checkout.Reduce(c.state, checkout.StepChanged{Step: target})
	c.unlock()

	c.persistStepAsync(target)
	return c.State(), nil
}

// UpdateCustomerInfo sets the local customer info immediately, schedules
// a debounced save, and triggers validation right away. A validation
// failure lands in the state's ValidationError, never in the return:
// the buyer keeps a working form while validation is down.
func (c *Coordinator) UpdateCustomerInfo(ctx context.Context, info checkout.CustomerInfo) (checkout.State, error) {
	c.dispatch(checkout.CustomerInfoUpdated{Info: info})
	c.scheduleSave()
	c.validateInBackground(ctx)
	return c.State(), nil
}

// UpdateShippingAddress sets the local shipping address immediately,
// schedules a debounced save, and triggers validation right away.
// Validation failures land in state, same as UpdateCustomerInfo.
func (c *Coordinator) UpdateShippingAddress(ctx context.Context, addr checkout.ShippingAddress) (checkout.State, error) {
	c.dispatch(checkout.ShippingAddressUpdated{Address: addr})
	c.scheduleSave()
	c.validateInBackground(ctx)
	return c.State(), nil
}

// validateInBackground runs step validation for an update, keeping any
// failure inside the state
func (c *Coordinator) validateInBackground(ctx context.Context) {
	if _, err := c.ValidateCurrentStep(ctx); err != nil {
		c.logger.Debug("validation after update kept in state", zap.Error(err))
	}
}

// UpdatePaymentMethod sets the local payment method immediately and
// schedules a debounced save. Payment method changes do not affect
// totals, so no validation is triggered.
func (c *Coordinator) UpdatePaymentMethod(ctx context.Context, method checkout.PaymentMethod) (checkout.State, error) {
	c.dispatch(checkout.PaymentMethodUpdated{Method: method})
	c.scheduleSave()
	return c.State(), nil
}

// ValidateCurrentStep sends the session's items and shipping address to
// the commerce API and stores the returned validation and totals. A
// transport failure keeps the previously known-good results in place.
func (c *Coordinator) ValidateCurrentStep(ctx context.Context) (bool, error) {
	c.lock()
	session := c.state.Session
	addr := c.state.ShippingAddress
	c.unlock()

	if session == nil {
		return false, checkout.ErrNoSession
	}
	if len(session.Data.Items) == 0 {
		return false, checkout.ErrEmptyCart
	}

	c.dispatch(checkout.ValidationStarted{})

	res, err := c.commerce.ValidateStep(ctx, ValidateStepRequest{
		StoreID:         session.StoreID,
		Items:           session.Data.Items,
		ShippingAddress: addr,
	})
	if err != nil {
		c.dispatch(checkout.ValidationFailed{Message: err.Error()})
		c.logger.Warn("step validation failed",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return false, err
	}

	c.dispatch(checkout.ValidationSucceeded{Validation: res.Validation, Totals: res.Totals})
	return res.Validation != nil && res.Validation.IsValid, nil
}

// CompleteStep marks a step done. Completion is blocked while the last
// known validation result is invalid. When the immediately-following
// step's requirements become satisfied, the current step auto-advances
// and the new position is persisted best-effort.
func (c *Coordinator) CompleteStep(ctx context.Context, step checkout.Step) (checkout.State, error) {
	if !step.IsValid() {
		return c.State(), checkout.ErrInvalidStep
	}

	c.lock()
	if c.state.Validation != nil && !c.state.Validation.IsValid {
		c.unlock()
		return c.State(), shared.NewDomainError("VALIDATION_FAILED", "Resolve validation errors before continuing")
	}
	before := c.state.CurrentStep
	c.state = checkout.Reduce(c.state, checkout.StepCompleted{Step: step})
	after := c.state.CurrentStep
	session := c.state.Session
	c.unlock()

	if after != before {
		c.persistStepAsync(after)
	}

	if step == checkout.StepReview && session != nil {
		c.publish(ctx, NewCheckoutCompletedEvent(session.ID, session.StoreID))
	}
	return c.State(), nil
}

// SetFieldError records a per-field form error for display
func (c *Coordinator) SetFieldError(field, message string) {
	c.dispatch(checkout.FieldErrorSet{Field: field, Message: message})
}

// ClearFieldError removes a per-field form error
func (c *Coordinator) ClearFieldError(field string) {
	c.dispatch(checkout.FieldErrorCleared{Field: field})
}

// Flush forces any pending debounced save to run now. Called before
// handing control to a payment gateway and on shutdown.
func (c *Coordinator) Flush() {
	c.saver.Flush()
}

// ResetCheckout clears all client state back to initial. Used after
// order completion and after session expiry.
func (c *Coordinator) ResetCheckout(ctx context.Context) {
	c.saver.Cancel()
	if err := c.sessions.Destroy(ctx); err != nil {
		c.logger.Warn("failed to destroy checkout session", zap.Error(err))
	}
	c.dispatch(checkout.Reset{})
}

// scheduleSave schedules a debounced push of the optimistic fields to
// the session. Rapid successive edits collapse into one write carrying
// the latest values.
func (c *Coordinator) scheduleSave() {
	c.saver.Trigger(func() {
		c.saveNow(context.Background())
	})
}

// saveNow pushes the current optimistic fields to the session
func (c *Coordinator) saveNow(ctx context.Context) {
	c.lock()
	patch := checkout.SessionDataPatch{
		CustomerInfo:    c.state.CustomerInfo,
		ShippingAddress: c.state.ShippingAddress,
		PaymentMethod:   c.state.PaymentMethod,
	}
	hasSession := c.state.Session != nil
	c.unlock()

	if !hasSession || patch.IsEmpty() {
		return
	}

	c.dispatch(checkout.SaveStarted{})
	err := c.sessions.UpdateData(ctx, patch)
	if err != nil {
		if errors.Is(err, checkout.ErrSessionExpired) {
			c.handleExpiry()
			return
		}
		c.logger.Warn("session save failed", zap.Error(err))
		c.dispatch(checkout.SaveSettled{Message: err.Error()})
		return
	}
	c.dispatch(checkout.SaveSettled{})
}

// persistStepAsync writes the step to the session without blocking the
// caller; the client position is authoritative for UI purposes
func (c *Coordinator) persistStepAsync(step checkout.Step) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.sessions.UpdateStep(ctx, step); err != nil {
			if errors.Is(err, checkout.ErrSessionExpired) {
				c.handleExpiry()
				return
			}
			c.logger.Warn("failed to persist checkout step",
				zap.String("step", step.String()),
				zap.Error(err),
			)
		}
	}()
}

// handleExpiry marks the state expired and publishes the expiry event.
// Expiry is sticky until ResetCheckout creates a clean slate.
func (c *Coordinator) handleExpiry() {
	c.lock()
	session := c.state.Session
	c.state = checkout.Reduce(c.state, checkout.SessionExpired{})
	c.unlock()

	if session != nil {
		c.publish(context.Background(), NewSessionExpiredEvent(session.ID, session.StoreID))
	}
}

func (c *Coordinator) publish(ctx context.Context, event shared.DomainEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(ctx, event); err != nil {
		c.logger.Warn("failed to publish checkout event",
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
	}
}

func (c *Coordinator) dispatch(action checkout.Action) {
	c.lock()
	c.state = checkout.Reduce(c.state, action)
	c.unlock()
}

func (c *Coordinator) lock()   { c.mu.Lock() }
func (c *Coordinator) unlock() { c.mu.Unlock() }
