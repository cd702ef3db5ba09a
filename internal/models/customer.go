package models

import (
	"time"

	"hospitality_pos/internal/billing"
)

type Customer struct {
	ID                    uint          `json:"id" gorm:"primaryKey"`
	Mobile                string        `json:"mobile" gorm:"size:15;unique;not null"`
	Name                  string        `json:"name"`
	TotalSpent            billing.Money `json:"total_spent"`
	VisitCount            int           `json:"visit_count"`
	Tier                  billing.Tier  `json:"tier" gorm:"not null;default:'regular'"`
	CustomDiscountPercent *float64      `json:"custom_discount_percent"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

func (c *Customer) Loyalty() *billing.Loyalty {
	if c == nil {
		return nil
	}
	return &billing.Loyalty{
		VisitCount:            c.VisitCount,
		TotalSpent:            c.TotalSpent,
		CustomDiscountPercent: c.CustomDiscountPercent,
	}
}

// RecordVisit tallies a paid bill and recomputes the tier.
func (c *Customer) RecordVisit(total billing.Money) {
	c.VisitCount++
	c.TotalSpent += total
	c.Tier = billing.ResolveTier(c.VisitCount, c.TotalSpent)
}
