package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sankofatravel/booking-engine/internal/domain"
)

// AuditRepository is an append-only log of operator-relevant events:
// manual overrides and classification ambiguity.
type AuditRepository struct {
	q Executor
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{q: db.Pool}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	query := `
		INSERT INTO audit_log (id, payment_reference, action, actor, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		entry.ID,
		entry.PaymentReference,
		entry.Action,
		entry.Actor,
		entry.Detail,
		entry.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByPayment(ctx context.Context, paymentReference string) ([]domain.AuditEntry, error) {
	query := `
		SELECT id, payment_reference, action, actor, detail, created_at
		FROM audit_log WHERE payment_reference = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, paymentReference)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditEntry, error) {
		var e domain.AuditEntry
		err := row.Scan(&e.ID, &e.PaymentReference, &e.Action, &e.Actor, &e.Detail, &e.CreatedAt)
		return e, err
	})

	if err != nil {
		return nil, fmt.Errorf("scan audit log: %w", err)
	}
	return entries, nil
}
