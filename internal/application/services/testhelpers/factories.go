package testhelpers

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sankofatravel/booking-engine/internal/domain"
)

// SeedDestination inserts a catalog destination and returns its id.
func SeedDestination(t *testing.T, td *TestDatabase, name string, basePrice string) int64 {
	ctx := context.Background()

	var id int64
	err := td.DB.Pool.QueryRow(ctx, `
		INSERT INTO destinations (name, location, base_price)
		VALUES ($1, '', $2) RETURNING id
	`, name, basePrice).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedPricingTier attaches a tier to a destination. maxPeople nil means
// unbounded.
func SeedPricingTier(t *testing.T, td *TestDatabase, destinationID int64, minPeople int, maxPeople *int, pricePerson string) {
	ctx := context.Background()

	_, err := td.DB.Pool.Exec(ctx, `
		INSERT INTO pricing_tiers (destination_id, min_people, max_people, price_person)
		VALUES ($1, $2, $3, $4)
	`, destinationID, minPeople, maxPeople, pricePerson)
	require.NoError(t, err)
}

// SeedTicket inserts a catalog event ticket and returns its id.
func SeedTicket(t *testing.T, td *TestDatabase, eventName string, unitPrice string) int64 {
	ctx := context.Background()

	var id int64
	err := td.DB.Pool.QueryRow(ctx, `
		INSERT INTO tickets (event_name, unit_price)
		VALUES ($1, $2) RETURNING id
	`, eventName, unitPrice).Scan(&id)
	require.NoError(t, err)
	return id
}

// NewTestPayment builds a pending mobile-money payment with the given
// description and metadata.
func NewTestPayment(t *testing.T, amount string, description string, metadata domain.Metadata) *domain.Payment {
	amt, err := decimal.NewFromString(amount)
	require.NoError(t, err)

	payment, err := domain.NewPayment(amt, "GHS", domain.MethodMTNMomo, metadata, description)
	require.NoError(t, err)
	return payment
}
