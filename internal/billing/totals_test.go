package billing

import (
	"encoding/json"
	"testing"
)

func rupees(r int64) Money { return Money(r * 100) }

func TestCalculate_DiscountAndGST(t *testing.T) {
	got := Calculate(Input{Subtotal: rupees(1000), DiscountPercent: 10, GSTPercent: 5})

	if got.DiscountAmount != rupees(100) {
		t.Errorf("expected discount 100, got %s", got.DiscountAmount)
	}
	if got.TaxableAmount != rupees(900) {
		t.Errorf("expected taxable 900, got %s", got.TaxableAmount)
	}
	if got.GSTAmount != rupees(45) {
		t.Errorf("expected gst 45, got %s", got.GSTAmount)
	}
	if got.Total != rupees(945) {
		t.Errorf("expected total 945, got %s", got.Total)
	}
}

func TestCalculate_IdentityWithoutDiscountOrTax(t *testing.T) {
	for _, s := range []Money{0, 1, 49, 50, 150, 12345, 99999} {
		got := Calculate(Input{Subtotal: s})
		if got.Total != s.RoundRupee() {
			t.Errorf("subtotal %s: expected %s, got %s", s, s.RoundRupee(), got.Total)
		}
	}
}

func TestCalculate_RoundsHalfUp(t *testing.T) {
	got := Calculate(Input{Subtotal: 10050})
	if got.Total != rupees(101) {
		t.Errorf("expected 101.00, got %s", got.Total)
	}
	got = Calculate(Input{Subtotal: 10049})
	if got.Total != rupees(100) {
		t.Errorf("expected 100.00, got %s", got.Total)
	}
}

func TestCalculate_FixedDiscountClamped(t *testing.T) {
	got := Calculate(Input{
		Subtotal:       rupees(100),
		DiscountType:   DiscountFixed,
		DiscountAmount: rupees(150),
	})
	if got.DiscountAmount != rupees(100) {
		t.Errorf("expected discount clamped to 100, got %s", got.DiscountAmount)
	}
	if got.Total != 0 {
		t.Errorf("expected total 0, got %s", got.Total)
	}
	if got.DiscountPercentage != 100 {
		t.Errorf("expected effective percent 100, got %v", got.DiscountPercentage)
	}
}

func TestCalculate_FixedDiscountIgnoresPercent(t *testing.T) {
	got := Calculate(Input{
		Subtotal:        rupees(400),
		DiscountType:    DiscountFixed,
		DiscountPercent: 50,
		DiscountAmount:  rupees(40),
	})
	if got.DiscountAmount != rupees(40) {
		t.Errorf("expected discount 40, got %s", got.DiscountAmount)
	}
	if got.DiscountPercentage != 10 {
		t.Errorf("expected effective percent 10, got %v", got.DiscountPercentage)
	}
}

func TestCalculate_NegativeInputsClamped(t *testing.T) {
	got := Calculate(Input{Subtotal: -500, DiscountPercent: -10, GSTPercent: -5})
	if got.Subtotal != 0 || got.DiscountAmount != 0 || got.GSTAmount != 0 || got.Total != 0 {
		t.Errorf("expected all zero, got %+v", got)
	}

	got = Calculate(Input{Subtotal: rupees(200), DiscountType: DiscountFixed, DiscountAmount: -100})
	if got.DiscountAmount != 0 {
		t.Errorf("expected negative fixed discount clamped to 0, got %s", got.DiscountAmount)
	}
}

func TestCalculate_DiscountPercentCapped(t *testing.T) {
	got := Calculate(Input{Subtotal: rupees(300), DiscountPercent: 250, GSTPercent: 18})
	if got.DiscountAmount != rupees(300) {
		t.Errorf("expected discount capped at subtotal, got %s", got.DiscountAmount)
	}
	if got.TaxableAmount != 0 {
		t.Errorf("expected taxable 0, got %s", got.TaxableAmount)
	}
}

func TestCalculate_Complimentary(t *testing.T) {
	got := Calculate(Input{Subtotal: 0, DiscountPercent: 10, GSTPercent: 5, Complimentary: true})
	if got.Total != 0 {
		t.Errorf("expected total 0, got %s", got.Total)
	}

	got = Calculate(Input{Subtotal: rupees(1000), DiscountPercent: 10, GSTPercent: 5, Complimentary: true})
	if got.Total != 0 {
		t.Errorf("expected complimentary total 0, got %s", got.Total)
	}
	if got.DiscountAmount != rupees(100) || got.GSTAmount != rupees(45) {
		t.Errorf("expected breakdown kept, got %+v", got)
	}
	if got.DiscountPercentage != 10 || got.GSTPercentage != 5 {
		t.Errorf("expected percentages kept, got %+v", got)
	}
}

func TestCalculate_Bounds(t *testing.T) {
	for s := Money(0); s <= rupees(3000); s += 737 {
		for d := 0.0; d <= 100; d += 12.5 {
			for g := 0.0; g <= 100; g += 9 {
				got := Calculate(Input{Subtotal: s, DiscountPercent: d, GSTPercent: g})
				if got.Total < 0 {
					t.Fatalf("negative total for s=%s d=%v g=%v", s, d, g)
				}
				ceiling := (s + s.Percent(g)).RoundRupee()
				if got.Total > ceiling {
					t.Fatalf("total %s exceeds %s for s=%s d=%v g=%v", got.Total, ceiling, s, d, g)
				}
				if got.DiscountAmount < 0 || got.DiscountAmount > s {
					t.Fatalf("discount %s out of range for s=%s d=%v", got.DiscountAmount, s, d)
				}
				if got.Total != (got.TaxableAmount + got.GSTAmount).RoundRupee() {
					t.Fatalf("total %s != round(taxable+gst) for s=%s d=%v g=%v", got.Total, s, d, g)
				}
			}
		}
	}
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: 94550})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"total":945.50}` {
		t.Errorf("expected rupee encoding, got %s", b)
	}

	var in struct {
		Price Money `json:"price"`
	}
	if err := json.Unmarshal([]byte(`{"price": 120.5}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.Price != 12050 {
		t.Errorf("expected 12050 paise, got %d", in.Price)
	}
	if err := json.Unmarshal([]byte(`{"price": "abc"}`), &in); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestFromRupees(t *testing.T) {
	if got := FromRupees(19.99); got != 1999 {
		t.Errorf("expected 1999, got %d", got)
	}
	if got := Money(1999).Rupees(); got != 19.99 {
		t.Errorf("expected 19.99, got %v", got)
	}
}
