package models

import (
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/lifecycle"

	"gorm.io/gorm"
)

type Order struct {
	ID              uint                  `json:"id" gorm:"primaryKey"`
	OrderNumber     string                `json:"order_number" gorm:"unique;not null"`
	BusinessUnit    billing.BusinessUnit  `json:"business_unit" gorm:"not null;index"`
	OrderType       OrderType             `json:"order_type" gorm:"not null;default:'dine_in'"`
	TableID         *uint                 `json:"table_id" gorm:"index"`
	RoomNumber      string                `json:"room_number"`
	Status          lifecycle.OrderStatus `json:"status" gorm:"not null;default:'pending';index"`
	Subtotal        billing.Money         `json:"subtotal"`
	DiscountPercent float64               `json:"discount_percent"`
	DiscountAmount  billing.Money         `json:"discount_amount"`
	GSTPercent      float64               `json:"gst_percent"`
	GSTAmount       billing.Money         `json:"gst_amount"`
	Total           billing.Money         `json:"total"`
	GuestCount      int                   `json:"guest_count"`
	CustomerName    string                `json:"customer_name"`
	CustomerMobile  string                `json:"customer_mobile" gorm:"index"`
	Items           []OrderItem           `json:"items" gorm:"foreignKey:OrderID"`
	PreparingAt     *time.Time            `json:"preparing_at"`
	ReadyAt         *time.Time            `json:"ready_at"`
	ServedAt        *time.Time            `json:"served_at"`
	BillRequestedAt *time.Time            `json:"bill_requested_at"`
	CompletedAt     *time.Time            `json:"completed_at"`
	CancelledAt     *time.Time            `json:"cancelled_at"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	DeletedAt       gorm.DeletedAt        `json:"deleted_at" gorm:"index"`
}

type OrderType string

const (
	DineIn      OrderType = "dine_in"
	Takeaway    OrderType = "takeaway"
	RoomService OrderType = "room_service"
	Catering    OrderType = "catering"
)

func (t OrderType) Valid() bool {
	switch t {
	case DineIn, Takeaway, RoomService, Catering:
		return true
	}
	return false
}

// StatusTimestampColumn names the column that records when an order entered
// status. Pending has none.
func StatusTimestampColumn(status lifecycle.OrderStatus) string {
	switch status {
	case lifecycle.OrderPreparing:
		return "preparing_at"
	case lifecycle.OrderReady:
		return "ready_at"
	case lifecycle.OrderServed:
		return "served_at"
	case lifecycle.OrderBillRequested:
		return "bill_requested_at"
	case lifecycle.OrderCompleted:
		return "completed_at"
	case lifecycle.OrderCancelled:
		return "cancelled_at"
	}
	return ""
}
