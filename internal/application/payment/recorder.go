package payment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/checkout/internal/domain/order"
	"github.com/storefront/checkout/internal/domain/payment"
)

// Recorder persists verified payments as durable payment records so
// order tracking has a local source. It is the production OrderRecorder.
type Recorder struct {
	records   order.PaymentRecordRepository
	directory OrderDirectory
	logger    *zap.Logger
}

// NewRecorder creates a Recorder. The directory is optional; without it
// records are saved without store attribution.
func NewRecorder(records order.PaymentRecordRepository, directory OrderDirectory, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{records: records, directory: directory, logger: logger}
}

// RecordPaid writes the payment record for a verified payment. A record
// that already exists is treated as success: the callback idempotency
// guard normally prevents the duplicate, and the unique reference
// constraint is just the backstop.
func (r *Recorder) RecordPaid(ctx context.Context, reference, gateway string, res *payment.VerificationResult) error {
	record := &order.PaymentRecord{
		Reference: reference,
		Gateway:   gateway,
		Status:    "paid",
		PaidAt:    time.Now(),
	}
	if res != nil {
		record.Amount = res.Amount
		record.Currency = res.Currency
	}

	orderID, err := payment.ParseReference(reference)
	if err != nil {
		// Foreign references still get recorded; they just cannot be
		// attributed to an order.
		r.logger.Warn("payment reference not in generated format",
			zap.String("reference", reference), zap.Error(err))
	} else {
		record.OrderID = orderID
		record.StoreID = r.lookupStoreID(ctx, orderID)
	}

	if err := r.records.Save(ctx, record); err != nil {
		if errors.Is(err, order.ErrDuplicateRecord) {
			r.logger.Info("payment already recorded", zap.String("reference", reference))
			return nil
		}
		return err
	}
	return nil
}

func (r *Recorder) lookupStoreID(ctx context.Context, orderID int64) int64 {
	if r.directory == nil {
		return 0
	}
	info, err := r.directory.GetOrder(ctx, orderID)
	if err != nil {
		// Store attribution is best effort; the record must land even
		// when the commerce API is down.
		r.logger.Warn("order lookup failed during payment recording",
			zap.Int64("order_id", orderID), zap.Error(err))
		return 0
	}
	return info.StoreID
}
