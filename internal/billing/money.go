package billing

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in paise. All bill arithmetic happens on Money; rupee
// floats only exist at the JSON boundary.
type Money int64

const paisePerRupee = 100

var hundred = decimal.NewFromInt(100)

// FromRupees converts a rupee amount to paise, rounding half away from zero.
func FromRupees(rupees float64) Money {
	return Money(decimal.NewFromFloat(rupees).Mul(hundred).Round(0).IntPart())
}

// Rupees returns the amount as a rupee float for presentation.
func (m Money) Rupees() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// Decimal returns the amount in rupees as a decimal.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Mul multiplies by an integer quantity.
func (m Money) Mul(qty int) Money {
	return m * Money(qty)
}

// Percent returns pct percent of m, rounded to the nearest paisa.
func (m Money) Percent(pct float64) Money {
	if m == 0 || pct == 0 {
		return 0
	}
	return Money(decimal.NewFromInt(int64(m)).
		Mul(decimal.NewFromFloat(pct)).
		Div(hundred).
		Round(0).
		IntPart())
}

// RoundRupee rounds to the nearest whole rupee, half up.
func (m Money) RoundRupee() Money {
	return Money(decimal.NewFromInt(int64(m)).
		Div(hundred).
		Round(0).
		IntPart()) * paisePerRupee
}

// MarshalJSON writes the amount as a rupee number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON reads a rupee number (or numeric string) into paise.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(data, `"`)
	if len(raw) == 0 || string(raw) == "null" {
		*m = 0
		return nil
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	*m = Money(d.Mul(hundred).Round(0).IntPart())
	return nil
}

func (m Money) clamp() Money {
	if m < 0 {
		return 0
	}
	return m
}
