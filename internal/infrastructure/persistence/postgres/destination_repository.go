package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/shopspring/decimal"
)

var ErrDestinationNotFound = errors.New("destination not found")

type DestinationRepository struct {
	q Executor
}

func NewDestinationRepository(db *DB) *DestinationRepository {
	return &DestinationRepository{q: db.Pool}
}

func (r *DestinationRepository) FindByID(ctx context.Context, id int64) (*domain.Destination, error) {
	query := `SELECT id, name, location, base_price FROM destinations WHERE id = $1`

	var (
		dest  domain.Destination
		price string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&dest.ID, &dest.Name, &dest.Location, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDestinationNotFound
		}
		return nil, fmt.Errorf("failed to scan destination: %w", err)
	}

	dest.BasePrice, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse destination base price %q: %w", price, err)
	}
	return &dest, nil
}

// TiersFor returns the destination's pricing tiers ordered by min_people.
// Ordering is cosmetic; the calculator's tie-break does not depend on it.
func (r *DestinationRepository) TiersFor(ctx context.Context, destinationID int64) ([]domain.PricingTier, error) {
	query := `
		SELECT id, destination_id, min_people, max_people, price_person
		FROM pricing_tiers WHERE destination_id = $1
		ORDER BY min_people ASC
	`

	rows, err := r.q.Query(ctx, query, destinationID)
	if err != nil {
		return nil, fmt.Errorf("query pricing tiers: %w", err)
	}

	tiers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PricingTier, error) {
		var m PricingTierModel
		if err := row.Scan(&m.ID, &m.DestinationID, &m.MinPeople, &m.MaxPeople, &m.PricePerson); err != nil {
			return domain.PricingTier{}, err
		}
		return toTierDomain(m)
	})

	if err != nil {
		return nil, fmt.Errorf("scan pricing tiers: %w", err)
	}
	return tiers, nil
}
