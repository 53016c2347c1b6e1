package payment

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/payment"
	"github.com/storefront/checkout/internal/domain/shared"
)

// Defaults for callback handling
const (
	DefaultRedirectDelay    = 2 * time.Second
	DefaultIdempotencyTTL   = 24 * time.Hour
	DefaultSuccessRedirect  = "/orders"
	idempotencyKeyPrefix    = "payment:callback:"
	messageMissingReference = "payment reference not found in callback URL"
	messageCancelled        = "payment was cancelled"
	messageConfirmed        = "payment already confirmed"
	messageSessionExpired   = "payment session has expired"
)

// CallbackConfig holds callback service tunables
type CallbackConfig struct {
	DefaultGateway  string
	SuccessRedirect string
	RedirectDelay   time.Duration
	IdempotencyTTL  time.Duration
}

// CallbackResult is everything the callback page needs to render and,
// when opened as a popup, to notify its opener
type CallbackResult struct {
	Outcome          payment.Outcome      `json:"outcome"`
	Reference        string               `json:"reference,omitempty"`
	Gateway          string               `json:"gateway,omitempty"`
	Message          string               `json:"message,omitempty"`
	PostMessage      *payment.PostMessage `json:"post_message,omitempty"`
	RedirectPath     string               `json:"redirect_path,omitempty"`
	RedirectDelay    time.Duration        `json:"redirect_delay,omitempty"`
	AlreadyProcessed bool                 `json:"already_processed,omitempty"`
}

// CallbackService turns a raw gateway redirect into a terminal payment
// outcome. It owns the verify-once rule: a replayed callback is answered
// from the recorded outcome without asking the gateway again, and the
// paid side effect is applied at most once per reference no matter how
// many times the callback is replayed.
type CallbackService struct {
	registry    VerifierRegistry
	recorder    OrderRecorder
	idempotency shared.IdempotencyStore
	sessions    SessionStore
	logger      *zap.Logger
	cfg         CallbackConfig
}

// CallbackOption configures optional callback service collaborators
type CallbackOption func(*CallbackService)

// WithSessions makes the service reject callbacks whose payment session
// is missing or expired before any gateway verification happens
func WithSessions(sessions SessionStore) CallbackOption {
	return func(s *CallbackService) {
		s.sessions = sessions
	}
}

// NewCallbackService creates a callback service
func NewCallbackService(registry VerifierRegistry, recorder OrderRecorder, idempotency shared.IdempotencyStore, logger *zap.Logger, cfg CallbackConfig, opts ...CallbackOption) *CallbackService {
	if cfg.RedirectDelay <= 0 {
		cfg.RedirectDelay = DefaultRedirectDelay
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = DefaultIdempotencyTTL
	}
	if cfg.SuccessRedirect == "" {
		cfg.SuccessRedirect = DefaultSuccessRedirect
	}
	s := &CallbackService{
		registry:    registry,
		recorder:    recorder,
		idempotency: idempotency,
		logger:      logger,
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleQuery parses the callback URL query and processes it
func (s *CallbackService) HandleQuery(ctx context.Context, query url.Values) CallbackResult {
	return s.Handle(ctx, payment.ParseCallbackParams(query, s.cfg.DefaultGateway))
}

// Handle resolves the callback to a terminal outcome. It never returns
// an error: every failure mode collapses into a failed outcome with a
// display message, because the buyer is stranded on the callback page
// either way.
func (s *CallbackService) Handle(ctx context.Context, params CallbackParams) CallbackResult {
	result := CallbackResult{
		Reference: params.Reference,
		Gateway:   params.Gateway,
	}

	if params.Reference == "" {
		result.Outcome = payment.OutcomeFailed
		result.Message = messageMissingReference
		s.finish(&result, params.Popup)
		return result
	}

	// Cancellation is the only URL status taken at face value; there is
	// nothing at the gateway worth confirming for an abandoned payment.
	if payment.IsCancelledStatus(params.Status) {
		result.Outcome = payment.OutcomeCancelled
		result.Message = messageCancelled
		s.finish(&result, params.Popup)
		return result
	}

	// A reference already marked processed carries a recorded success;
	// answer from it instead of asking the gateway again, so a replay
	// during a gateway blip cannot flip a confirmed payment to failed.
	if s.replayed(ctx, params.Reference) {
		result.Outcome = payment.OutcomeSuccess
		result.Message = messageConfirmed
		result.AlreadyProcessed = true
		s.finish(&result, params.Popup)
		return result
	}

	if !s.sessionValid(ctx, params.Reference) {
		result.Outcome = payment.OutcomeFailed
		result.Message = messageSessionExpired
		s.finish(&result, params.Popup)
		return result
	}

	res, err := s.verify(ctx, params.Gateway, params.Reference)
	outcome, message := payment.ResolveOutcome(res, err)
	result.Outcome = outcome
	result.Message = message

	if outcome == payment.OutcomeSuccess {
		s.recordPaid(ctx, &result, params, res)
	}

	s.finish(&result, params.Popup)
	return result
}

// replayed reports whether the reference was already processed. A store
// failure counts as not replayed; verification remains the authority.
func (s *CallbackService) replayed(ctx context.Context, reference string) bool {
	processed, err := s.idempotency.IsProcessed(ctx, idempotencyKeyPrefix+reference)
	if err != nil {
		s.logger.Warn("idempotency lookup failed",
			zap.String("reference", reference),
			zap.Error(err),
		)
		return false
	}
	return processed
}

// sessionValid checks the payment session opened at initiation. Only
// references this service minted are held to it: foreign references
// never had a session, and with no session store the check is off.
func (s *CallbackService) sessionValid(ctx context.Context, reference string) bool {
	if s.sessions == nil || !payment.IsReference(reference) {
		return true
	}
	session, err := s.sessions.Get(ctx, reference)
	if err != nil {
		s.logger.Warn("payment session lookup failed",
			zap.String("reference", reference),
			zap.Error(err),
		)
		return true
	}
	return session != nil && session.Valid(time.Now())
}

// verify asks the gateway exactly once for the transaction's real status
func (s *CallbackService) verify(ctx context.Context, gateway, reference string) (*payment.VerificationResult, error) {
	verifier, err := s.registry.Verifier(gateway)
	if err != nil {
		return nil, err
	}
	res, err := verifier.Verify(ctx, reference)
	if err != nil {
		s.logger.Warn("payment verification failed",
			zap.String("gateway", gateway),
			zap.String("reference", reference),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

// recordPaid applies the paid side effect behind the idempotency store,
// so a replayed callback confirms the outcome without double-recording
func (s *CallbackService) recordPaid(ctx context.Context, result *CallbackResult, params CallbackParams, res *payment.VerificationResult) {
	first, err := s.idempotency.MarkProcessed(ctx, idempotencyKeyPrefix+params.Reference, s.cfg.IdempotencyTTL)
	if err != nil {
		// Cannot tell whether this is a replay; keep the success outcome
		// for the buyer and leave recording to reconciliation
		s.logger.Error("idempotency check failed",
			zap.String("reference", params.Reference),
			zap.Error(err),
		)
		return
	}
	if !first {
		result.AlreadyProcessed = true
		return
	}

	if err := s.recorder.RecordPaid(ctx, params.Reference, params.Gateway, res); err != nil {
		s.logger.Error("failed to record paid order",
			zap.String("reference", params.Reference),
			zap.String("gateway", params.Gateway),
			zap.Error(err),
		)
	}

	// The payment session is spent; expiry covers it if this fails
	if s.sessions != nil {
		if err := s.sessions.Delete(ctx, params.Reference); err != nil {
			s.logger.Warn("failed to close payment session",
				zap.String("reference", params.Reference),
				zap.Error(err),
			)
		}
	}
}

// finish attaches the popup opener message or the non-popup redirect
func (s *CallbackService) finish(result *CallbackResult, popup bool) {
	if popup {
		msg := payment.NewPostMessage(result.Gateway, result.Reference, result.Outcome)
		result.PostMessage = &msg
		return
	}
	if result.Outcome == payment.OutcomeSuccess {
		result.RedirectPath = s.cfg.SuccessRedirect
		result.RedirectDelay = s.cfg.RedirectDelay
	}
}

// CallbackParams re-exports the domain callback parameters for callers
// of Handle that build them directly
type CallbackParams = payment.CallbackParams
