package billing

// Tier is a customer loyalty tier.
type Tier string

const (
	TierRegular  Tier = "regular"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

type tierRule struct {
	tier     Tier
	visits   int
	spent    Money
	discount float64
}

// Checked top to bottom; first match wins.
var tierRules = []tierRule{
	{TierPlatinum, 50, 50000 * paisePerRupee, 15},
	{TierGold, 25, 25000 * paisePerRupee, 10},
	{TierSilver, 10, 10000 * paisePerRupee, 5},
}

// ResolveTier maps a visit count and lifetime spend to a loyalty tier.
func ResolveTier(visits int, spent Money) Tier {
	for _, r := range tierRules {
		if visits >= r.visits || spent >= r.spent {
			return r.tier
		}
	}
	return TierRegular
}

// DefaultDiscount returns the discount percent a tier earns.
func (t Tier) DefaultDiscount() float64 {
	for _, r := range tierRules {
		if r.tier == t {
			return r.discount
		}
	}
	return 0
}

func (t Tier) Valid() bool {
	switch t {
	case TierRegular, TierSilver, TierGold, TierPlatinum:
		return true
	}
	return false
}

// Loyalty is the subset of a customer record the resolver needs.
type Loyalty struct {
	VisitCount            int
	TotalSpent            Money
	CustomDiscountPercent *float64
}

// ResolveDiscount returns the customer's tier and applicable discount percent.
// A custom override replaces the tier default outright. A nil customer is a
// regular customer with no discount.
func ResolveDiscount(c *Loyalty) (Tier, float64) {
	if c == nil {
		return TierRegular, 0
	}
	tier := ResolveTier(c.VisitCount, c.TotalSpent)
	if c.CustomDiscountPercent != nil {
		return tier, *c.CustomDiscountPercent
	}
	return tier, tier.DefaultDiscount()
}
