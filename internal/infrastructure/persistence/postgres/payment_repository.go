package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sankofatravel/booking-engine/internal/domain"
)

var ErrPaymentNotFound = errors.New("payment not found")

const paymentColumns = `reference, amount, currency, method, status, metadata,
	       description, booking_ref, created_at, processed_at`

type PaymentRepository struct {
	q Executor
}

func NewPaymentRepository(db *DB) *PaymentRepository {
	return &PaymentRepository{q: db.Pool}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
            reference, amount, currency, method, status, metadata,
            description, booking_ref, created_at, processed_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	m := toPaymentModel(payment)
	_, err := r.q.Exec(ctx, query,
		m.Reference,
		m.Amount,
		m.Currency,
		m.Method,
		m.Status,
		m.Metadata,
		m.Description,
		m.BookingRef,
		m.CreatedAt,
		m.ProcessedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// FindByReference retrieves a payment by its external-facing key.
func (r *PaymentRepository) FindByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = $1`

	row := r.q.QueryRow(ctx, query, reference)
	return scanPayment(row)
}

// FindByReferenceForUpdate retrieves a payment with a row-level lock.
func (r *PaymentRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = $1 FOR UPDATE`

	row := r.q.QueryRow(ctx, query, reference)
	return scanPayment(row)
}

// Update persists the payment's mutable columns. Status changes should go
// through UpdateStatusGuarded unless the caller already holds a row lock
// taken on a non-terminal payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, metadata = $2, booking_ref = $3, processed_at = $4
		WHERE reference = $5
	`

	m := toPaymentModel(payment)
	result, err := r.q.Exec(ctx, query,
		m.Status,
		m.Metadata,
		m.BookingRef,
		m.ProcessedAt,
		m.Reference,
	)

	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

// UpdateStatusGuarded performs the check-then-set transition as a single
// conditional update scoped to non-terminal rows. The first terminal write
// wins; later writers see zero rows affected and no-op.
func (r *PaymentRepository) UpdateStatusGuarded(ctx context.Context, reference string, status domain.PaymentStatus, processedAt *time.Time) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1, processed_at = COALESCE(processed_at, $2)
		WHERE reference = $3
		  AND status NOT IN ('successful', 'failed', 'cancelled')
	`

	result, err := r.q.Exec(ctx, query, string(status), processedAt, reference)
	if err != nil {
		return false, fmt.Errorf("failed to transition payment status: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// OverrideStatus writes a status without the terminal guard. Operator
// escape hatch; callers audit every use.
func (r *PaymentRepository) OverrideStatus(ctx context.Context, reference string, status domain.PaymentStatus, processedAt *time.Time) error {
	query := `
		UPDATE payments
		SET status = $1, processed_at = COALESCE(processed_at, $2)
		WHERE reference = $3
	`

	result, err := r.q.Exec(ctx, query, string(status), processedAt, reference)
	if err != nil {
		return fmt.Errorf("failed to override payment status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

// MergeMetadata folds the patch into the stored metadata. Status,
// processed_at and booking_ref stay untouched, so a concurrent terminal
// write cannot be undone from here.
func (r *PaymentRepository) MergeMetadata(ctx context.Context, reference string, patch domain.Metadata) error {
	query := `
		UPDATE payments
		SET metadata = COALESCE(metadata, '{}'::jsonb) || $1
		WHERE reference = $2
	`

	result, err := r.q.Exec(ctx, query, map[string]any(patch), reference)
	if err != nil {
		return fmt.Errorf("failed to merge payment metadata: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

// scanPayment converts a database row into a domain Payment.
// Returns ErrPaymentNotFound if the row doesn't exist.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var m PaymentModel
	err := row.Scan(
		&m.Reference, &m.Amount, &m.Currency, &m.Method, &m.Status, &m.Metadata,
		&m.Description, &m.BookingRef, &m.CreatedAt, &m.ProcessedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return toPaymentDomain(m)
}
