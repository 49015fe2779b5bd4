package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/persistence/postgres"
)

// WebhookEvent is an inbound gateway notification. Delivery is
// at-least-once; duplicates must no-op.
type WebhookEvent struct {
	Reference        string
	EventType        string
	Status           string
	RawGatewayStatus string
}

// CompletionService owns every path that moves a payment toward a
// terminal status: webhook, polling verify, the completion simulator and
// the operator's force-complete. All of them funnel through Apply so one
// transition guard decides, and the first terminal write wins.
type CompletionService struct {
	tx         application.TransactionCoordinator
	gateway    application.GatewayClient
	reconciler *ReconciliationService
	logger     *slog.Logger
}

func NewCompletionService(
	tx application.TransactionCoordinator,
	gateway application.GatewayClient,
	reconciler *ReconciliationService,
	logger *slog.Logger,
) *CompletionService {
	return &CompletionService{
		tx:         tx,
		gateway:    gateway,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Apply advances the payment toward target through the shared guard. A
// rejected transition (payment already terminal) is logged and returned
// as a no-op, not an error; the status write and any reconciliation
// commit atomically.
func (s *CompletionService) Apply(ctx context.Context, reference string, target domain.PaymentStatus, source string) (*domain.Payment, error) {
	var payment *domain.Payment
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos application.TxRepos) error {
		p, err := repos.Payments.FindByReferenceForUpdate(ctx, reference)
		if err != nil {
			return err
		}
		payment = p

		changed, terr := p.ApplyGatewayStatus(target)
		if terr != nil {
			// Benign race: a webhook and the simulator both fired, or a
			// duplicate delivery arrived after the terminal write.
			s.logger.Warn("status transition rejected",
				"reference", reference,
				"current", p.Status,
				"target", target,
				"source", source,
				"error", terr,
			)
			return nil
		}
		if !changed {
			return nil
		}

		ok, err := repos.Payments.UpdateStatusGuarded(ctx, reference, p.Status, p.ProcessedAt)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("terminal write lost to concurrent writer",
				"reference", reference, "target", target, "source", source)
			return nil
		}

		s.logger.Info("payment status advanced",
			"reference", reference,
			"status", p.Status,
			"source", source,
		)

		if p.Status == domain.StatusSuccessful {
			if _, err := s.reconciler.ReconcileLocked(ctx, repos, p); err != nil {
				return err
			}
		}
		return nil
	})
	return payment, err
}

// HandleWebhook applies an inbound gateway event. The raw gateway status
// takes precedence over the event's coarse status; both go through the
// conservative mapping so unknown vocabularies park at processing.
func (s *CompletionService) HandleWebhook(ctx context.Context, ev WebhookEvent) error {
	if ev.Reference == "" {
		s.logger.Warn("webhook without reference dropped", "event_type", ev.EventType)
		return nil
	}

	raw := ev.RawGatewayStatus
	if raw == "" {
		raw = ev.Status
	}
	target := domain.MapGatewayStatus(raw)

	_, err := s.Apply(ctx, ev.Reference, target, "webhook")
	if err != nil && errors.Is(err, postgres.ErrPaymentNotFound) {
		// Unknown reference: acknowledged anyway per at-least-once
		// delivery; the gateway will not retry forever.
		s.logger.Warn("webhook for unknown payment", "reference", ev.Reference)
		return nil
	}
	return err
}

// Verify polls the gateway and applies the mapped status.
func (s *CompletionService) Verify(ctx context.Context, reference string) (*domain.Payment, error) {
	resp, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, application.NewGatewayError(err)
	}

	target := domain.MapGatewayStatus(resp.RawGatewayStatus)
	return s.Apply(ctx, reference, target, "verify")
}

// ForceComplete is the operator action behind the manual/force-complete
// endpoint. Non-terminal payments go through the normal guard; terminal
// payments are overridden, which is the only sanctioned post-terminal
// mutation. Every call appends an audit entry.
func (s *CompletionService) ForceComplete(ctx context.Context, reference string, rawStatus string, actor string) (*domain.Payment, error) {
	target := domain.PaymentStatus(rawStatus)
	if target != domain.StatusSuccessful && target != domain.StatusFailed {
		return nil, application.NewValidationError("status must be successful or failed")
	}

	var payment *domain.Payment
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos application.TxRepos) error {
		p, err := repos.Payments.FindByReferenceForUpdate(ctx, reference)
		if err != nil {
			return err
		}
		payment = p

		overridden := p.IsTerminal() && p.Status != target
		if overridden {
			p.ManualOverride(target)
			if err := repos.Payments.OverrideStatus(ctx, reference, p.Status, p.ProcessedAt); err != nil {
				return err
			}
		} else if changed, terr := p.ApplyGatewayStatus(target); terr == nil && changed {
			if _, err := repos.Payments.UpdateStatusGuarded(ctx, reference, p.Status, p.ProcessedAt); err != nil {
				return err
			}
		}

		entry := domain.NewAuditEntry(reference, domain.AuditManualOverride, actor,
			"forced status "+string(target))
		if err := repos.Audit.Append(ctx, entry); err != nil {
			return err
		}

		if p.Status == domain.StatusSuccessful {
			if _, err := s.reconciler.ReconcileLocked(ctx, repos, p); err != nil {
				return err
			}
		}
		return nil
	})
	return payment, err
}
