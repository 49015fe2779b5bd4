package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sankofatravel/booking-engine/internal/domain"
)

// ScheduleRepository persists completion-simulator jobs so they survive
// process restarts. One job per payment reference.
type ScheduleRepository struct {
	q Executor
}

func NewScheduleRepository(db *DB) *ScheduleRepository {
	return &ScheduleRepository{q: db.Pool}
}

func (r *ScheduleRepository) Schedule(ctx context.Context, job domain.ScheduledCompletion) error {
	query := `
		INSERT INTO scheduled_completions (payment_reference, due_at, success_probability, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (payment_reference) DO UPDATE
		SET due_at = EXCLUDED.due_at, success_probability = EXCLUDED.success_probability
	`

	_, err := r.q.Exec(ctx, query, job.PaymentReference, job.DueAt, job.SuccessProbability, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to schedule completion: %w", err)
	}
	return nil
}

// FindDue returns jobs whose due_at has elapsed, oldest first. SKIP LOCKED
// keeps concurrent workers from double-evaluating a job.
func (r *ScheduleRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledCompletion, error) {
	query := `
		SELECT payment_reference, due_at, success_probability, created_at
		FROM scheduled_completions
		WHERE due_at <= $1
		ORDER BY due_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`

	rows, err := r.q.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("query due completions: %w", err)
	}

	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ScheduledCompletion, error) {
		var job domain.ScheduledCompletion
		err := row.Scan(&job.PaymentReference, &job.DueAt, &job.SuccessProbability, &job.CreatedAt)
		return job, err
	})

	if err != nil {
		return nil, fmt.Errorf("scan due completions: %w", err)
	}
	return jobs, nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, paymentReference string) error {
	query := `DELETE FROM scheduled_completions WHERE payment_reference = $1`

	if _, err := r.q.Exec(ctx, query, paymentReference); err != nil {
		return fmt.Errorf("failed to delete completion job: %w", err)
	}
	return nil
}
