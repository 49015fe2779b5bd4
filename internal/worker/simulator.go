// Package worker hosts the background loops that run alongside the HTTP
// server: currently the completion simulator.
package worker

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/application/services"
	"github.com/sankofatravel/booking-engine/internal/domain"
)

// Simulator consumes persisted scheduled completions and drives the
// corresponding payments to a terminal status. Each schedule is a single
// delayed evaluation: one probability draw, one status transition, then
// the schedule is deleted. Surviving a restart costs nothing because the
// schedules live in the database, not in timers.
type Simulator struct {
	schedules  application.ScheduleRepository
	completion *services.CompletionService
	interval   time.Duration
	batchSize  int
	logger     *slog.Logger

	draw func() float64
}

func NewSimulator(
	schedules application.ScheduleRepository,
	completion *services.CompletionService,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Simulator {
	return &Simulator{
		schedules:  schedules,
		completion: completion,
		interval:   interval,
		batchSize:  batchSize,
		logger:     logger,
		draw:       rand.Float64,
	}
}

func (w *Simulator) Start(ctx context.Context) {
	w.logger.Info("completion simulator started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("completion simulator stopping")
			return
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error("simulation tick failed", "error", err)
			}
		}
	}
}

// RunOnce processes one batch of due schedules.
func (w *Simulator) RunOnce(ctx context.Context) error {
	due, err := w.schedules.FindDue(ctx, time.Now(), w.batchSize)
	if err != nil {
		return err
	}

	for _, job := range due {
		if err := w.evaluate(ctx, job); err != nil {
			w.logger.Error("simulated completion failed",
				"reference", job.PaymentReference,
				"error", err)
		}
	}
	return nil
}

func (w *Simulator) evaluate(ctx context.Context, job domain.ScheduledCompletion) error {
	target := domain.StatusFailed
	if w.draw() < job.SuccessProbability {
		target = domain.StatusSuccessful
	}

	if _, err := w.completion.Apply(ctx, job.PaymentReference, target, "simulator"); err != nil {
		return err
	}

	w.logger.Info("simulated payment completion",
		"reference", job.PaymentReference,
		"outcome", target,
		"success_probability", job.SuccessProbability,
	)

	return w.schedules.Delete(ctx, job.PaymentReference)
}
