package payment

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/payment"
)

// InitiationConfig holds initiation tunables. A zero Policy falls back
// to the domain default; AllowedHosts likewise.
type InitiationConfig struct {
	Policy       payment.Policy
	AllowedHosts []string
	SessionTTL   time.Duration
	CallbackURL  string
}

// InitiateRequest is a buyer's request to start paying for an order
type InitiateRequest struct {
	OrderID  int64
	Amount   decimal.Decimal
	Currency string
	Method   string
	Gateway  string
	Email    string
}

// InitiateResult is everything the buyer needs to reach the gateway's
// hosted checkout page
type InitiateResult struct {
	Reference        string    `json:"reference"`
	AuthorizationURL string    `json:"authorization_url"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// InitiationService starts a payment: the request is checked against
// the configured policy, a reference is minted, the gateway opens a
// transaction, its checkout URL is held to the host allowlist, and a
// payment session is opened for the callback to check later.
type InitiationService struct {
	initiators InitiatorRegistry
	sessions   SessionStore
	logger     *zap.Logger
	cfg        InitiationConfig
}

// NewInitiationService creates an initiation service
func NewInitiationService(initiators InitiatorRegistry, sessions SessionStore, logger *zap.Logger, cfg InitiationConfig) *InitiationService {
	if cfg.Policy.MaxAmount.IsZero() {
		cfg.Policy = payment.DefaultPolicy()
	}
	if len(cfg.AllowedHosts) == 0 {
		cfg.AllowedHosts = payment.DefaultAllowedHosts()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = payment.DefaultSessionTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InitiationService{
		initiators: initiators,
		sessions:   sessions,
		logger:     logger,
		cfg:        cfg,
	}
}

// Initiate starts a payment attempt for an order
func (s *InitiationService) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	data := payment.Data{
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
		Gateway:  req.Gateway,
		OrderID:  req.OrderID,
	}
	if vr := payment.ValidateData(data, s.cfg.Policy); !vr.Valid {
		return nil, payment.NewError(payment.CodeInvalidData, strings.Join(vr.Errors, "; "), false).
			WithDetails(map[string]any{"errors": vr.Errors})
	}

	initiator, err := s.initiators.Initiator(req.Gateway)
	if err != nil {
		return nil, err
	}

	reference := payment.GenerateReference(req.OrderID)
	authURL, err := initiator.Initiate(ctx, InitiationOrder{
		Reference:   reference,
		Data:        data,
		Email:       req.Email,
		CallbackURL: s.cfg.CallbackURL,
	})
	if err != nil {
		s.logger.Warn("payment initiation failed",
			zap.String("gateway", req.Gateway),
			zap.String("reference", reference),
			zap.Error(err),
		)
		return nil, err
	}

	// The gateway names where the buyer goes next; only known checkout
	// hosts are followed
	if !payment.ValidateRedirectURL(authURL, s.cfg.AllowedHosts) {
		s.logger.Error("gateway returned a disallowed checkout URL",
			zap.String("gateway", req.Gateway),
			zap.String("reference", reference),
			zap.String("url", authURL),
		)
		return nil, payment.NewError(payment.CodeServiceUnavailable,
			"gateway returned an unexpected checkout address", true)
	}

	session := payment.NewSession(reference, s.cfg.SessionTTL)
	if err := s.sessions.Open(ctx, session); err != nil {
		return nil, payment.NewError(payment.CodeServiceUnavailable,
			"could not open a payment session", true)
	}

	s.logger.Info("payment initiated",
		zap.String("gateway", req.Gateway),
		zap.String("reference", reference),
		zap.Int64("order_id", req.OrderID),
	)
	return &InitiateResult{
		Reference:        reference,
		AuthorizationURL: authURL,
		ExpiresAt:        session.ExpiresAt,
	}, nil
}
