package models

import (
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/lifecycle"
)

type OrderItem struct {
	ID          uint                 `json:"id" gorm:"primaryKey"`
	OrderID     uint                 `json:"order_id" gorm:"not null;index"`
	MenuItemID  uint                 `json:"menu_item_id" gorm:"not null"`
	LineKey     string               `json:"line_key"`
	Name        string               `json:"name" gorm:"not null"`
	Price       billing.Money        `json:"price" gorm:"not null"`
	Quantity    int                  `json:"quantity" gorm:"not null"`
	Measurement string               `json:"measurement"`
	Status      lifecycle.ItemStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func (i OrderItem) Amount() billing.Money {
	return i.Price.Mul(i.Quantity)
}
