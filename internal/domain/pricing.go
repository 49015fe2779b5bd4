package domain

import "github.com/shopspring/decimal"

// PricingTier maps a headcount range to a per-person price. MaxPeople nil
// means the tier is unbounded above.
type PricingTier struct {
	ID            int64
	DestinationID int64
	MinPeople     int
	MaxPeople     *int
	PricePerson   decimal.Decimal
}

// Contains reports whether the tier's range covers the given headcount.
func (t PricingTier) Contains(n int) bool {
	if n < t.MinPeople {
		return false
	}
	return t.MaxPeople == nil || n <= *t.MaxPeople
}

// Destination is the read-only catalog entry pricing operates on.
type Destination struct {
	ID        int64
	Name      string
	Location  string
	BasePrice decimal.Decimal
}

// PriceForGroup resolves the per-person price for a group of n travellers.
//
// Source tier data does not guarantee non-overlapping ranges, so when
// multiple tiers contain n the tier with the lowest MinPeople wins. This
// tie-break is observed policy and must stay stable; downstream totals
// depend on it. When no tier contains n (or there are no tiers at all) the
// destination's flat base price applies. Pricing always resolves; it never
// returns an error.
func PriceForGroup(tiers []PricingTier, basePrice decimal.Decimal, n int) decimal.Decimal {
	var selected *PricingTier
	for i := range tiers {
		tier := &tiers[i]
		if !tier.Contains(n) {
			continue
		}
		if selected == nil || tier.MinPeople < selected.MinPeople {
			selected = tier
		}
	}
	if selected == nil {
		return basePrice
	}
	return selected.PricePerson
}

// GroupTotal is the extended total for n travellers.
func GroupTotal(tiers []PricingTier, basePrice decimal.Decimal, n int) decimal.Decimal {
	return PriceForGroup(tiers, basePrice, n).Mul(decimal.NewFromInt(int64(n)))
}
