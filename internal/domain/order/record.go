package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/checkout/internal/domain/shared"
)

// Order record errors
var (
	ErrRecordNotFound  = shared.NewDomainError("PAYMENT_RECORD_NOT_FOUND", "Payment record not found")
	ErrDuplicateRecord = shared.NewDomainError("DUPLICATE_PAYMENT_RECORD", "Payment already recorded for this reference")
)

// PaymentRecord is the durable trace of a verified payment. One record
// exists per payment reference; recording is guarded by the callback
// idempotency store, so the unique reference constraint is the backstop
// rather than the primary defense.
type PaymentRecord struct {
	ID        int64
	Reference string
	Gateway   string
	StoreID   int64
	OrderID   int64
	Amount    decimal.Decimal
	Currency  string
	Status    string
	PaidAt    time.Time
	CreatedAt time.Time
}

// PaymentRecordRepository persists verified payment records
type PaymentRecordRepository interface {
	Save(ctx context.Context, record *PaymentRecord) error
	FindByReference(ctx context.Context, reference string) (*PaymentRecord, error)
	FindByStore(ctx context.Context, storeID int64, limit int) ([]*PaymentRecord, error)
}
