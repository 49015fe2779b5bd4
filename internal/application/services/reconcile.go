package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/domain"
)

// ReconciliationService materializes the downstream record for a
// successful payment: a Booking for destination-flavored payments, a
// TicketPurchase with redemption codes for ticket-flavored ones. Creation
// is idempotent per payment reference; concurrent triggers (webhook vs.
// simulator vs. duplicate webhook delivery) resolve to a single record.
type ReconciliationService struct {
	tx     application.TransactionCoordinator
	logger *slog.Logger
}

func NewReconciliationService(tx application.TransactionCoordinator, logger *slog.Logger) *ReconciliationService {
	return &ReconciliationService{tx: tx, logger: logger}
}

// ReconcileResult reports what the payment resolved to. For unknown
// classifications both records are nil and an audit entry exists.
type ReconcileResult struct {
	Kind     domain.BookingKind
	Booking  *domain.Booking
	Purchase *domain.TicketPurchase
}

// Reconcile runs the guard-then-create as one transaction with the
// payment row locked. A second concurrent caller blocks on the lock and
// then receives the first caller's record.
func (s *ReconciliationService) Reconcile(ctx context.Context, reference string) (*ReconcileResult, error) {
	var result *ReconcileResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos application.TxRepos) error {
		payment, err := repos.Payments.FindByReferenceForUpdate(ctx, reference)
		if err != nil {
			return err
		}

		if payment.Status != domain.StatusSuccessful {
			return application.NewInvalidStateError(
				fmt.Errorf("payment %s is %s, only successful payments reconcile", reference, payment.Status))
		}

		result, err = s.ReconcileLocked(ctx, repos, payment)
		return err
	})
	return result, err
}

// ReconcileLocked performs reconciliation inside a caller-held
// transaction where the payment row is already locked. Used by the
// completion path so the status write and the record creation commit as
// one atomic unit.
func (s *ReconciliationService) ReconcileLocked(ctx context.Context, repos application.TxRepos, payment *domain.Payment) (*ReconcileResult, error) {
	// Idempotency guard: an existing link wins over everything else.
	if payment.BookingRef != nil {
		booking, err := repos.Bookings.FindByReference(ctx, *payment.BookingRef)
		if err != nil {
			return nil, err
		}
		return &ReconcileResult{Kind: domain.KindDestination, Booking: booking}, nil
	}

	purchase, err := repos.Tickets.FindPurchaseByPayment(ctx, payment.Reference)
	if err != nil {
		return nil, err
	}
	if purchase != nil {
		// Client-created pending purchase: confirm it and issue its codes
		// instead of creating a second record.
		if purchase.Status != domain.PurchaseConfirmed {
			purchase.Confirm(payment.Reference)
			if err := repos.Tickets.ConfirmPurchase(ctx, purchase); err != nil {
				return nil, err
			}
		}
		return &ReconcileResult{Kind: domain.KindTicket, Purchase: purchase}, nil
	}

	kind := domain.Classify(payment.Description, payment.Metadata)
	switch kind {
	case domain.KindDestination:
		return s.createBooking(ctx, repos, payment)
	case domain.KindTicket:
		return s.createPurchase(ctx, repos, payment)
	default:
		// Not an error: recorded for operator follow-up, never guessed.
		entry := domain.NewAuditEntry(payment.Reference, domain.AuditClassifierUnknown, "system",
			fmt.Sprintf("could not classify payment: description=%q", payment.Description))
		if err := repos.Audit.Append(ctx, entry); err != nil {
			return nil, err
		}
		s.logger.Warn("payment classification unknown",
			"reference", payment.Reference,
			"description", payment.Description,
		)
		return &ReconcileResult{Kind: domain.KindUnknown}, nil
	}
}

func (s *ReconciliationService) createBooking(ctx context.Context, repos application.TxRepos, payment *domain.Payment) (*ReconcileResult, error) {
	destID, ok := destinationID(payment.Metadata)
	if !ok {
		return s.incomplete(ctx, repos, payment, domain.KindDestination, "destination payment without destination id")
	}

	dest, err := repos.Destinations.FindByID(ctx, destID)
	if err != nil {
		return nil, err
	}
	tiers, err := repos.Destinations.TiersFor(ctx, destID)
	if err != nil {
		return nil, err
	}

	participants := metadataInt(payment.Metadata, 1, "numberOfPeople", "number_of_people", "participants", "people")
	price := domain.PriceForGroup(tiers, dest.BasePrice, participants)

	booking := domain.NewBooking(destID, participants, price)
	if err := repos.Bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	payment.LinkBooking(booking.Reference)
	payment.Metadata["booking_details"] = map[string]any{
		"type":             string(domain.KindDestination),
		"destination_id":   destID,
		"participants":     participants,
		"bookingRef":       booking.Reference,
		"price_per_person": price.String(),
	}
	if err := repos.Payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("booking created from payment",
		"reference", payment.Reference,
		"booking_ref", booking.Reference,
		"destination_id", destID,
		"participants", participants,
	)
	return &ReconcileResult{Kind: domain.KindDestination, Booking: booking}, nil
}

func (s *ReconciliationService) createPurchase(ctx context.Context, repos application.TxRepos, payment *domain.Payment) (*ReconcileResult, error) {
	ticketID, ok := ticketID(payment.Metadata)
	if !ok {
		return s.incomplete(ctx, repos, payment, domain.KindTicket, "ticket payment without ticket id")
	}

	ticket, err := repos.Tickets.FindTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	quantity := metadataInt(payment.Metadata, 1, "quantity", "numberOfTickets")
	unitPrice := ticket.UnitPrice
	if raw, ok := payment.Metadata.StringValue("unit_price"); ok {
		if parsed, perr := parseDecimal(raw); perr == nil {
			unitPrice = parsed
		}
	}

	purchase := domain.NewTicketPurchase(ticketID, quantity, unitPrice)
	purchase.CustomerName, _ = payment.Metadata.StringValue("customer_name")
	purchase.CustomerEmail, _ = payment.Metadata.StringValue("customer_email")
	purchase.CustomerPhone, _ = payment.Metadata.StringValue("customer_phone")
	purchase.Confirm(payment.Reference)

	if err := repos.Tickets.CreatePurchase(ctx, purchase); err != nil {
		return nil, err
	}

	payment.Metadata["booking_details"] = map[string]any{
		"type":        string(domain.KindTicket),
		"ticket_id":   ticketID,
		"quantity":    quantity,
		"purchase_id": purchase.PurchaseID,
	}
	if err := repos.Payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("ticket purchase created from payment",
		"reference", payment.Reference,
		"purchase_id", purchase.PurchaseID,
		"ticket_id", ticketID,
		"quantity", quantity,
	)
	return &ReconcileResult{Kind: domain.KindTicket, Purchase: purchase}, nil
}

// incomplete records a reconciliation that classified but lacked the data
// to create a record. The payment keeps its terminal status; an operator
// follows up from the audit log.
func (s *ReconciliationService) incomplete(ctx context.Context, repos application.TxRepos, payment *domain.Payment, kind domain.BookingKind, detail string) (*ReconcileResult, error) {
	entry := domain.NewAuditEntry(payment.Reference, domain.AuditReconcileIncomplete, "system", detail)
	if err := repos.Audit.Append(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Warn("reconciliation incomplete", "reference", payment.Reference, "detail", detail)
	return &ReconcileResult{Kind: kind}, nil
}

func destinationID(md domain.Metadata) (int64, bool) {
	if v, ok := md.Value("destination"); ok {
		if obj, ok := v.(map[string]any); ok {
			if id, ok := numericID(obj["id"]); ok {
				return id, true
			}
		}
	}
	if id, ok := md.IntValue("destination_id"); ok {
		return int64(id), true
	}
	if id, ok := md.IntValue("destinationId"); ok {
		return int64(id), true
	}
	return 0, false
}

func ticketID(md domain.Metadata) (int64, bool) {
	for _, key := range []string{"ticket_id", "ticketId"} {
		if id, ok := md.IntValue(key); ok {
			return int64(id), true
		}
	}
	if v, ok := md.Value("ticket"); ok {
		if obj, ok := v.(map[string]any); ok {
			if id, ok := numericID(obj["id"]); ok {
				return id, true
			}
		}
	}
	return 0, false
}

func numericID(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func metadataInt(md domain.Metadata, fallback int, keys ...string) int {
	for _, key := range keys {
		if n, ok := md.IntValue(key); ok && n > 0 {
			return n
		}
	}
	return fallback
}
