package cart

import (
	"errors"
	"fmt"
	"strings"

	"hospitality_pos/internal/billing"

	"github.com/shopspring/decimal"
)

var ErrBadMeasurement = errors.New("invalid measurement")

// Measurement is a quantity with a unit, e.g. "30ml" or "1.5 l".
type Measurement struct {
	Amount decimal.Decimal
	Unit   string
}

func ParseMeasurement(s string) (Measurement, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	i := 0
	for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}
	if i == 0 {
		return Measurement{}, fmt.Errorf("%w: %q", ErrBadMeasurement, s)
	}
	amount, err := decimal.NewFromString(s[:i])
	if err != nil || !amount.IsPositive() {
		return Measurement{}, fmt.Errorf("%w: %q", ErrBadMeasurement, s)
	}
	return Measurement{Amount: amount, Unit: strings.TrimSpace(s[i:])}, nil
}

// VariantPrice scales basePrice, quoted for base, to the chosen measurement.
// Without a parseable base in the same unit the base price is used as is.
func VariantPrice(basePrice billing.Money, base, chosen string) (billing.Money, error) {
	want, err := ParseMeasurement(chosen)
	if err != nil {
		return 0, err
	}
	if base == "" {
		return basePrice, nil
	}
	have, err := ParseMeasurement(base)
	if err != nil || have.Unit != want.Unit {
		return basePrice, nil
	}
	return billing.Money(decimal.NewFromInt(int64(basePrice)).
		Mul(want.Amount).
		Div(have.Amount).
		Round(0).
		IntPart()), nil
}
