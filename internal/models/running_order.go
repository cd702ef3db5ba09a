package models

import (
	"encoding/json"
	"time"

	"hospitality_pos/internal/cart"

	"gorm.io/datatypes"
)

// RunningOrder is the persisted draft of a table's open cart.
type RunningOrder struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	TableID         uint           `json:"table_id" gorm:"not null;uniqueIndex"`
	Items           datatypes.JSON `json:"items"`
	CustomerName    string         `json:"customer_name"`
	CustomerMobile  string         `json:"customer_mobile"`
	DiscountPercent float64        `json:"discount_percent"`
	Version         int64          `json:"version" gorm:"not null"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (r RunningOrder) Lines() ([]cart.Line, error) {
	if len(r.Items) == 0 {
		return nil, nil
	}
	var lines []cart.Line
	if err := json.Unmarshal(r.Items, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r RunningOrder) Draft() (cart.Draft, error) {
	lines, err := r.Lines()
	if err != nil {
		return cart.Draft{}, err
	}
	return cart.Draft{
		TableID: r.TableID,
		Lines:   lines,
		Customer: cart.Customer{
			Name:            r.CustomerName,
			Mobile:          r.CustomerMobile,
			DiscountPercent: r.DiscountPercent,
		},
		Version: r.Version,
	}, nil
}

// RunningOrderFromDraft builds the row for d. Version is left to the store.
func RunningOrderFromDraft(d cart.Draft) (RunningOrder, error) {
	lines := d.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	items, err := json.Marshal(lines)
	if err != nil {
		return RunningOrder{}, err
	}
	return RunningOrder{
		TableID:         d.TableID,
		Items:           datatypes.JSON(items),
		CustomerName:    d.Customer.Name,
		CustomerMobile:  d.Customer.Mobile,
		DiscountPercent: d.Customer.DiscountPercent,
	}, nil
}
