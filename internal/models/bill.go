package models

import (
	"time"

	"hospitality_pos/internal/billing"

	"gorm.io/gorm"
)

// Bill is the settled record of an order. At most one non-deleted bill exists
// per order; the partial unique index enforces it in the database.
type Bill struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	BillNumber      string               `json:"bill_number" gorm:"size:50;unique;not null"`
	OrderID         uint                 `json:"order_id" gorm:"not null;uniqueIndex:idx_bills_order_active,where:deleted_at IS NULL"`
	BusinessUnit    billing.BusinessUnit `json:"business_unit" gorm:"not null;index"`
	Source          OrderType            `json:"source" gorm:"not null"`
	TableID         *uint                `json:"table_id"`
	CustomerName    string               `json:"customer_name"`
	CustomerMobile  string               `json:"customer_mobile" gorm:"index"`
	Subtotal        billing.Money        `json:"subtotal"`
	DiscountPercent float64              `json:"discount_percent"`
	DiscountAmount  billing.Money        `json:"discount_amount"`
	GSTPercent      float64              `json:"gst_percent"`
	GSTAmount       billing.Money        `json:"gst_amount"`
	Total           billing.Money        `json:"total"`
	Complimentary   bool                 `json:"complimentary"`
	PaymentMethod   PaymentMethod        `json:"payment_method" gorm:"not null;default:'cash'"`
	PaymentStatus   PaymentStatus        `json:"payment_status" gorm:"not null;default:'pending'"`
	PaidAt          *time.Time           `json:"paid_at"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	DeletedAt       gorm.DeletedAt       `json:"deleted_at" gorm:"index"`
}

// Manual marks a bill raised outside the order flow.
const Manual OrderType = "manual"

type PaymentMethod string

const (
	PayCash       PaymentMethod = "cash"
	PayCard       PaymentMethod = "card"
	PayUPI        PaymentMethod = "upi"
	PayRoomCharge PaymentMethod = "room_charge"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayCash, PayCard, PayUPI, PayRoomCharge:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentPaid
}

// ApplyTotals copies a calculator result onto the bill.
func (b *Bill) ApplyTotals(t billing.Totals) {
	b.Subtotal = t.Subtotal
	b.DiscountPercent = t.DiscountPercentage
	b.DiscountAmount = t.DiscountAmount
	b.GSTPercent = t.GSTPercentage
	b.GSTAmount = t.GSTAmount
	b.Total = t.Total
	b.Complimentary = t.Complimentary
}
