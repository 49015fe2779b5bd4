package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sankofatravel/booking-engine/internal/domain"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository struct {
	q Executor
}

func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{q: db.Pool}
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (
            reference, destination_id, participants, price_person,
            total_amount, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	m := toBookingModel(booking)
	_, err := r.q.Exec(ctx, query,
		m.Reference,
		m.DestinationID,
		m.Participants,
		m.PricePerson,
		m.TotalAmount,
		m.Status,
		m.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *BookingRepository) FindByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	query := `
		SELECT reference, destination_id, participants, price_person,
		       total_amount, status, created_at
		FROM bookings WHERE reference = $1
	`

	var m BookingModel
	err := r.q.QueryRow(ctx, query, reference).Scan(
		&m.Reference, &m.DestinationID, &m.Participants, &m.PricePerson,
		&m.TotalAmount, &m.Status, &m.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}
	return toBookingDomain(m)
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, reference string, status domain.BookingStatus) error {
	query := `UPDATE bookings SET status = $1 WHERE reference = $2`

	result, err := r.q.Exec(ctx, query, string(status), reference)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBookingNotFound
	}

	return nil
}
