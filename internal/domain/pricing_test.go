package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sankofatravel/booking-engine/internal/domain"
)

func intPtr(n int) *int { return &n }

func tier(min int, max *int, price int64) domain.PricingTier {
	return domain.PricingTier{
		MinPeople:   min,
		MaxPeople:   max,
		PricePerson: decimal.NewFromInt(price),
	}
}

func TestPriceForGroup(t *testing.T) {
	basePrice := decimal.NewFromInt(100)

	t.Run("picks the containing tier", func(t *testing.T) {
		tiers := []domain.PricingTier{
			tier(1, intPtr(4), 90),
			tier(5, intPtr(9), 80),
			tier(10, nil, 70),
		}

		assert.True(t, decimal.NewFromInt(90).Equal(domain.PriceForGroup(tiers, basePrice, 1)))
		assert.True(t, decimal.NewFromInt(90).Equal(domain.PriceForGroup(tiers, basePrice, 4)))
		assert.True(t, decimal.NewFromInt(80).Equal(domain.PriceForGroup(tiers, basePrice, 5)))
		assert.True(t, decimal.NewFromInt(70).Equal(domain.PriceForGroup(tiers, basePrice, 10)))
		assert.True(t, decimal.NewFromInt(70).Equal(domain.PriceForGroup(tiers, basePrice, 500)))
	})

	t.Run("overlapping tiers resolve to lowest min_people", func(t *testing.T) {
		tiers := []domain.PricingTier{
			tier(5, intPtr(15), 85),
			tier(2, intPtr(10), 95),
			tier(8, nil, 60),
		}

		// n=9 is inside all three; min_people 2 wins regardless of slice order.
		assert.True(t, decimal.NewFromInt(95).Equal(domain.PriceForGroup(tiers, basePrice, 9)))
	})

	t.Run("zero tiers fall back to base price", func(t *testing.T) {
		for _, n := range []int{1, 2, 10, 1000} {
			got := domain.PriceForGroup(nil, basePrice, n)
			assert.True(t, basePrice.Equal(got), "n=%d", n)
		}
	})

	t.Run("headcount outside every tier falls back to base price", func(t *testing.T) {
		tiers := []domain.PricingTier{tier(5, intPtr(10), 80)}

		assert.True(t, basePrice.Equal(domain.PriceForGroup(tiers, basePrice, 3)))
		assert.True(t, basePrice.Equal(domain.PriceForGroup(tiers, basePrice, 11)))
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		tiers := []domain.PricingTier{
			tier(1, intPtr(10), 90),
			tier(1, intPtr(10), 90),
		}

		first := domain.PriceForGroup(tiers, basePrice, 5)
		for i := 0; i < 20; i++ {
			assert.True(t, first.Equal(domain.PriceForGroup(tiers, basePrice, 5)))
		}
	})
}

func TestGroupTotal(t *testing.T) {
	tiers := []domain.PricingTier{tier(2, intPtr(5), 80)}

	total := domain.GroupTotal(tiers, decimal.NewFromInt(100), 4)

	assert.True(t, decimal.NewFromInt(320).Equal(total))
}

func TestPricingTier_Contains(t *testing.T) {
	bounded := tier(2, intPtr(5), 80)
	unbounded := tier(6, nil, 70)

	assert.False(t, bounded.Contains(1))
	assert.True(t, bounded.Contains(2))
	assert.True(t, bounded.Contains(5))
	assert.False(t, bounded.Contains(6))

	assert.False(t, unbounded.Contains(5))
	assert.True(t, unbounded.Contains(6))
	assert.True(t, unbounded.Contains(10000))
}
