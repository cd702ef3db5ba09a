package billing

import "testing"

func TestResolveTier(t *testing.T) {
	tests := []struct {
		name   string
		visits int
		spent  Money
		want   Tier
	}{
		{"just below silver", 9, rupees(9999), TierRegular},
		{"silver by visits", 10, 0, TierSilver},
		{"silver by spend", 0, rupees(10000), TierSilver},
		{"gold by spend", 0, rupees(25000), TierGold},
		{"gold by visits", 25, 0, TierGold},
		{"platinum by visits", 50, 0, TierPlatinum},
		{"platinum by spend", 3, rupees(50000), TierPlatinum},
		{"higher rule wins", 12, rupees(60000), TierPlatinum},
		{"new customer", 0, 0, TierRegular},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTier(tt.visits, tt.spent); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestTierDefaultDiscount(t *testing.T) {
	want := map[Tier]float64{TierRegular: 0, TierSilver: 5, TierGold: 10, TierPlatinum: 15}
	for tier, pct := range want {
		if got := tier.DefaultDiscount(); got != pct {
			t.Errorf("%s: expected %v, got %v", tier, pct, got)
		}
	}
}

func TestResolveDiscount_Override(t *testing.T) {
	seven := 7.0
	tier, pct := ResolveDiscount(&Loyalty{VisitCount: 60, TotalSpent: rupees(90000), CustomDiscountPercent: &seven})
	if tier != TierPlatinum {
		t.Errorf("expected platinum tier, got %s", tier)
	}
	if pct != 7 {
		t.Errorf("expected override 7, got %v", pct)
	}

	zero := 0.0
	_, pct = ResolveDiscount(&Loyalty{VisitCount: 30, CustomDiscountPercent: &zero})
	if pct != 0 {
		t.Errorf("expected zero override to win, got %v", pct)
	}
}

func TestResolveDiscount_NilCustomer(t *testing.T) {
	tier, pct := ResolveDiscount(nil)
	if tier != TierRegular || pct != 0 {
		t.Errorf("expected regular/0, got %s/%v", tier, pct)
	}
}

func TestResolveDiscount_TierDefault(t *testing.T) {
	_, pct := ResolveDiscount(&Loyalty{VisitCount: 26})
	if pct != 10 {
		t.Errorf("expected gold default 10, got %v", pct)
	}
}
