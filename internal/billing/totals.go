package billing

import "github.com/shopspring/decimal"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Input describes a bill to be totalled.
type Input struct {
	Subtotal        Money
	DiscountType    DiscountType
	DiscountPercent float64
	// DiscountAmount is only read for DiscountFixed.
	DiscountAmount Money
	GSTPercent     float64
	Complimentary  bool
}

// Totals is the itemised result of Calculate.
type Totals struct {
	Subtotal           Money   `json:"subtotal"`
	DiscountPercentage float64 `json:"discount_percentage"`
	DiscountAmount     Money   `json:"discount_amount"`
	TaxableAmount      Money   `json:"taxable_amount"`
	GSTPercentage      float64 `json:"gst_percentage"`
	GSTAmount          Money   `json:"gst_amount"`
	Total              Money   `json:"total"`
	Complimentary      bool    `json:"complimentary"`
}

// Calculate turns a subtotal, discount and GST rate into bill totals.
//
// Negative inputs are clamped to zero and a percentage discount is capped at
// 100, so the discount never exceeds the subtotal. The total is rounded to the
// whole rupee. A complimentary bill totals zero but keeps the breakdown.
func Calculate(in Input) Totals {
	subtotal := in.Subtotal.clamp()
	gstPct := clampPercent(in.GSTPercent, -1)

	var discount Money
	discountPct := clampPercent(in.DiscountPercent, 100)
	if in.DiscountType == DiscountFixed {
		discount = in.DiscountAmount.clamp()
		if discount > subtotal {
			discount = subtotal
		}
		discountPct = effectivePercent(discount, subtotal)
	} else {
		discount = subtotal.Percent(discountPct)
		if discount > subtotal {
			discount = subtotal
		}
	}

	taxable := (subtotal - discount).clamp()
	gst := taxable.Percent(gstPct)

	t := Totals{
		Subtotal:           subtotal,
		DiscountPercentage: discountPct,
		DiscountAmount:     discount,
		TaxableAmount:      taxable,
		GSTPercentage:      gstPct,
		GSTAmount:          gst,
		Total:              (taxable + gst).RoundRupee(),
		Complimentary:      in.Complimentary,
	}
	if in.Complimentary {
		t.Total = 0
	}
	return t
}

// clampPercent clamps p to [0, max]; a negative max means no upper bound.
func clampPercent(p float64, max float64) float64 {
	if p < 0 {
		return 0
	}
	if max >= 0 && p > max {
		return max
	}
	return p
}

func effectivePercent(part, whole Money) float64 {
	if whole == 0 {
		return 0
	}
	f, _ := decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(whole))).
		Round(2).
		Float64()
	return f
}
