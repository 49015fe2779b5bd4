package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/persistence/postgres"
)

// TicketService drives the client-side purchase flow and code redemption.
type TicketService struct {
	tx     application.TransactionCoordinator
	logger *slog.Logger
}

func NewTicketService(tx application.TransactionCoordinator, logger *slog.Logger) *TicketService {
	return &TicketService{tx: tx, logger: logger}
}

// PurchaseResult pairs the purchase with the current status of its
// payment, which the client polls separately.
type PurchaseResult struct {
	Purchase      *domain.TicketPurchase
	PaymentStatus domain.PaymentStatus
}

// DirectPurchase creates a purchase from the client-driven flow. When the
// referenced payment is already successful the purchase confirms
// immediately with its codes; otherwise it stays pending and the
// reconciliation service confirms it once the payment lands.
func (s *TicketService) DirectPurchase(ctx context.Context, cmd DirectPurchaseCommand) (*PurchaseResult, error) {
	if _, err := domain.ParsePaymentMethod(cmd.PaymentMethod); err != nil {
		return nil, application.NewValidationError("Invalid payment method")
	}
	if cmd.CustomerEmail == "" {
		return nil, application.NewValidationError("customer_email is required")
	}

	var result *PurchaseResult
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos application.TxRepos) error {
		ticket, err := repos.Tickets.FindTicket(ctx, cmd.TicketID)
		if err != nil {
			if errors.Is(err, postgres.ErrTicketNotFound) {
				return application.NewNotFoundError("ticket not found")
			}
			return err
		}

		paymentStatus := domain.StatusPending
		var payment *domain.Payment
		if cmd.PaymentReference != "" {
			payment, err = repos.Payments.FindByReferenceForUpdate(ctx, cmd.PaymentReference)
			if err != nil {
				if errors.Is(err, postgres.ErrPaymentNotFound) {
					return application.NewValidationError("unknown payment reference")
				}
				return err
			}
			paymentStatus = payment.Status

			// Guard against double-purchasing one payment.
			existing, err := repos.Tickets.FindPurchaseByPayment(ctx, cmd.PaymentReference)
			if err != nil {
				return err
			}
			if existing != nil {
				result = &PurchaseResult{Purchase: existing, PaymentStatus: paymentStatus}
				return nil
			}
		}

		purchase := domain.NewTicketPurchase(ticket.ID, cmd.Quantity, ticket.UnitPrice)
		purchase.CustomerName = cmd.CustomerName
		purchase.CustomerEmail = cmd.CustomerEmail
		purchase.CustomerPhone = cmd.CustomerPhone
		purchase.SpecialRequests = cmd.SpecialRequests

		if cmd.PaymentReference != "" {
			ref := cmd.PaymentReference
			purchase.PaymentReference = &ref
		}
		if payment != nil && payment.Status == domain.StatusSuccessful {
			purchase.Confirm(payment.Reference)
		}

		if err := repos.Tickets.CreatePurchase(ctx, purchase); err != nil {
			return err
		}

		s.logger.Info("direct ticket purchase created",
			"purchase_id", purchase.PurchaseID,
			"ticket_id", ticket.ID,
			"quantity", purchase.Quantity,
			"status", purchase.Status,
		)

		result = &PurchaseResult{Purchase: purchase, PaymentStatus: paymentStatus}
		return nil
	})
	return result, err
}

// RedeemCode moves a ticket code active -> used; used is terminal.
func (s *TicketService) RedeemCode(ctx context.Context, rawCode string) (*domain.TicketCode, error) {
	var code *domain.TicketCode
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos application.TxRepos) error {
		var err error
		code, err = repos.Tickets.FindCode(ctx, rawCode)
		if err != nil {
			if errors.Is(err, postgres.ErrCodeNotFound) {
				return application.NewNotFoundError("ticket code not found")
			}
			return err
		}

		if err := code.Redeem(); err != nil {
			return application.NewInvalidStateError(err)
		}

		return repos.Tickets.UpdateCode(ctx, code)
	})
	return code, err
}
