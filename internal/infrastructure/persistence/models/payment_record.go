package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/checkout/internal/domain/order"
)

// PaymentRecordModel is the GORM model for verified payment records
type PaymentRecordModel struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	Reference string          `gorm:"size:64;uniqueIndex;not null"`
	Gateway   string          `gorm:"size:32;not null"`
	StoreID   int64           `gorm:"index;not null"`
	OrderID   int64           `gorm:"index"`
	Amount    decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Currency  string          `gorm:"size:8;not null"`
	Status    string          `gorm:"size:32;not null"`
	PaidAt    time.Time       `gorm:"not null"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts the model to a domain payment record
func (m *PaymentRecordModel) ToDomain() *order.PaymentRecord {
	return &order.PaymentRecord{
		ID:        m.ID,
		Reference: m.Reference,
		Gateway:   m.Gateway,
		StoreID:   m.StoreID,
		OrderID:   m.OrderID,
		Amount:    m.Amount,
		Currency:  m.Currency,
		Status:    m.Status,
		PaidAt:    m.PaidAt,
		CreatedAt: m.CreatedAt,
	}
}

// PaymentRecordModelFromDomain converts a domain payment record to a model
func PaymentRecordModelFromDomain(r *order.PaymentRecord) *PaymentRecordModel {
	return &PaymentRecordModel{
		ID:        r.ID,
		Reference: r.Reference,
		Gateway:   r.Gateway,
		StoreID:   r.StoreID,
		OrderID:   r.OrderID,
		Amount:    r.Amount,
		Currency:  r.Currency,
		Status:    r.Status,
		PaidAt:    r.PaidAt,
		CreatedAt: r.CreatedAt,
	}
}
