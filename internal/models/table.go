package models

import (
	"time"

	"hospitality_pos/internal/billing"
)

type Table struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	Number         string               `json:"number" gorm:"not null;uniqueIndex:idx_tables_unit_number"`
	BusinessUnit   billing.BusinessUnit `json:"business_unit" gorm:"not null;uniqueIndex:idx_tables_unit_number"`
	Capacity       int                  `json:"capacity"`
	Status         TableStatus          `json:"status" gorm:"not null;default:'available'"`
	CurrentOrderID *uint                `json:"current_order_id"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type TableStatus string

const (
	TableAvailable TableStatus = "available"
	TableOccupied  TableStatus = "occupied"
	TableReserved  TableStatus = "reserved"
)
