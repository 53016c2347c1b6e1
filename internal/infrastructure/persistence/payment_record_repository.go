package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/storefront/checkout/internal/domain/order"
	"github.com/storefront/checkout/internal/infrastructure/persistence/models"
)

// GormPaymentRecordRepository implements PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// Save inserts a payment record. A reference that was already recorded
// returns ErrDuplicateRecord.
func (r *GormPaymentRecordRepository) Save(ctx context.Context, record *order.PaymentRecord) error {
	model := models.PaymentRecordModelFromDomain(record)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return order.ErrDuplicateRecord
		}
		return err
	}
	record.ID = model.ID
	record.CreatedAt = model.CreatedAt
	return nil
}

// FindByReference finds a payment record by its payment reference
func (r *GormPaymentRecordRepository) FindByReference(ctx context.Context, reference string) (*order.PaymentRecord, error) {
	var model models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrRecordNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStore returns the most recent payment records for a store
func (r *GormPaymentRecordRepository) FindByStore(ctx context.Context, storeID int64, limit int) ([]*order.PaymentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("paid_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]*order.PaymentRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// isUniqueViolation reports whether the error is a unique constraint
// violation (PostgreSQL error code 23505)
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}

var _ order.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
