package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sankofatravel/booking-engine/internal/application"
)

// TransactionCoordinator runs closures against transaction-scoped
// repositories. Reconciliation's existence-check-then-create happens
// under it so concurrent triggers for one payment serialize on the row.
type TransactionCoordinator struct {
	pool *pgxpool.Pool
}

func NewTransactionCoordinator(db *DB) *TransactionCoordinator {
	return &TransactionCoordinator{
		pool: db.Pool,
	}
}

func (tc *TransactionCoordinator) WithTransaction(
	ctx context.Context,
	fn func(ctx context.Context, repos application.TxRepos) error,
) error {
	tx, err := tc.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	repos := application.TxRepos{
		Payments:     &PaymentRepository{q: tx},
		Bookings:     &BookingRepository{q: tx},
		Tickets:      &TicketRepository{q: tx},
		Destinations: &DestinationRepository{q: tx},
		Schedules:    &ScheduleRepository{q: tx},
		Audit:        &AuditRepository{q: tx},
	}

	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
