package models

import (
	"time"

	"hospitality_pos/internal/billing"
	"hospitality_pos/internal/cart"

	"gorm.io/gorm"
)

// MenuItem is a sellable item. Price refers to BaseMeasurement when set.
type MenuItem struct {
	ID              uint                 `json:"id" gorm:"primaryKey"`
	Name            string               `json:"name" gorm:"not null"`
	Category        string               `json:"category" gorm:"index"`
	Price           billing.Money        `json:"price" gorm:"not null"`
	BusinessUnit    billing.BusinessUnit `json:"business_unit" gorm:"not null;index"`
	Available       bool                 `json:"available"`
	Measurement     string               `json:"measurement"`
	BaseMeasurement string               `json:"base_measurement"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	DeletedAt       gorm.DeletedAt       `json:"deleted_at" gorm:"index"`
}

func (m MenuItem) CartItem() cart.Item {
	return cart.Item{
		ID:              m.ID,
		Name:            m.Name,
		Price:           m.Price,
		Measurement:     m.Measurement,
		BaseMeasurement: m.BaseMeasurement,
	}
}
