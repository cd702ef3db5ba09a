package models

import (
	"time"

	"hospitality_pos/internal/billing"
)

// BusinessSettings is the single row of venue-wide settings.
type BusinessSettings struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	GSTEnabled         bool      `json:"gst_enabled"`
	CafeGSTEnabled     bool      `json:"cafe_gst_enabled"`
	CafeGSTPercent     float64   `json:"cafe_gst_percent"`
	BarGSTEnabled      bool      `json:"bar_gst_enabled"`
	BarGSTPercent      float64   `json:"bar_gst_percent"`
	HotelGSTEnabled    bool      `json:"hotel_gst_enabled"`
	HotelGSTPercent    float64   `json:"hotel_gst_percent"`
	GardenGSTEnabled   bool      `json:"garden_gst_enabled"`
	GardenGSTPercent   float64   `json:"garden_gst_percent"`
	DeletePasswordHash string    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (s BusinessSettings) Policy() billing.GSTPolicy {
	return billing.NewGSTPolicy(s.GSTEnabled, map[billing.BusinessUnit]billing.UnitGST{
		billing.UnitCafe:   {Enabled: s.CafeGSTEnabled, Percent: s.CafeGSTPercent},
		billing.UnitBar:    {Enabled: s.BarGSTEnabled, Percent: s.BarGSTPercent},
		billing.UnitHotel:  {Enabled: s.HotelGSTEnabled, Percent: s.HotelGSTPercent},
		billing.UnitGarden: {Enabled: s.GardenGSTEnabled, Percent: s.GardenGSTPercent},
	})
}

// ApplyPolicy writes p's GST values onto the settings row.
func (s *BusinessSettings) ApplyPolicy(p billing.GSTPolicy) {
	s.GSTEnabled = p.Enabled
	for _, u := range billing.BusinessUnits {
		g := p.Unit(u)
		switch u {
		case billing.UnitCafe:
			s.CafeGSTEnabled, s.CafeGSTPercent = g.Enabled, g.Percent
		case billing.UnitBar:
			s.BarGSTEnabled, s.BarGSTPercent = g.Enabled, g.Percent
		case billing.UnitHotel:
			s.HotelGSTEnabled, s.HotelGSTPercent = g.Enabled, g.Percent
		case billing.UnitGarden:
			s.GardenGSTEnabled, s.GardenGSTPercent = g.Enabled, g.Percent
		}
	}
}

// Settlement records a bill becoming paid.
type Settlement struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	BillID        uint          `json:"bill_id" gorm:"not null;uniqueIndex"`
	OrderID       uint          `json:"order_id" gorm:"not null;index"`
	TableID       *uint         `json:"table_id"`
	Amount        billing.Money `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	SettledAt     time.Time     `json:"settled_at"`
	CreatedAt     time.Time     `json:"created_at"`
}
