package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/config"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// CheckoutService creates payments and opens the gateway authorization.
// Gateway failures do not fail the request when the payment row exists;
// the failure reason travels back inside the creation response.
type CheckoutService struct {
	payments  application.PaymentRepository
	schedules application.ScheduleRepository
	gateway   application.GatewayClient
	simCfg    config.SimulatorConfig
	logger    *slog.Logger
}

func NewCheckoutService(
	payments application.PaymentRepository,
	schedules application.ScheduleRepository,
	gateway application.GatewayClient,
	simCfg config.SimulatorConfig,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		payments:  payments,
		schedules: schedules,
		gateway:   gateway,
		simCfg:    simCfg,
		logger:    logger,
	}
}

// CheckoutResult is the creation outcome. GatewayError is set when the
// gateway rejected initialization; the payment is then failed but the
// record still exists and is returned.
type CheckoutResult struct {
	Payment      *domain.Payment
	Gateway      *application.InitializeResponse
	GatewayError string
}

func (s *CheckoutService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*CheckoutResult, error) {
	if cmd.Email == "" {
		return nil, application.NewValidationError("email is required")
	}
	if cmd.Currency == "" {
		return nil, application.NewValidationError("currency is required")
	}
	if cmd.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, application.NewValidationError("amount must be greater than zero")
	}

	method, err := domain.ParsePaymentMethod(cmd.PaymentMethod)
	if err != nil {
		return nil, application.NewValidationError("invalid payment method")
	}

	metadata := domain.Metadata{}
	if cmd.BookingDetails != nil {
		metadata["booking_details"] = cmd.BookingDetails
	}

	payment, err := domain.NewPayment(cmd.Amount, cmd.Currency, method, metadata, cmd.Description)
	if err != nil {
		return nil, application.NewValidationError(err.Error())
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, application.NewInternalError(err)
	}

	s.logger.Info("payment created",
		"reference", payment.Reference,
		"amount", payment.Amount,
		"currency", payment.Currency,
		"method", payment.Method,
	)

	initResp, err := s.gateway.Initialize(ctx, payment, cmd.Email, cmd.PhoneNumber)
	if err != nil {
		// Gateway rejection fails the payment but not the request: the
		// caller gets the created record plus the reported reason. The
		// status goes through the terminal guard and the reason through a
		// metadata-only merge, so neither write can undo a concurrent
		// webhook's terminal write.
		gwErr := err
		payment.RecordGatewayError(gwErr.Error())
		if changed, terr := payment.ApplyGatewayStatus(domain.StatusFailed); terr == nil && changed {
			updated, perr := s.persistStatus(ctx, payment)
			if perr != nil {
				return nil, application.NewInternalError(perr)
			}
			payment = updated
		}
		if merr := s.payments.MergeMetadata(ctx, payment.Reference, domain.Metadata{"gateway_error": gwErr.Error()}); merr != nil {
			return nil, application.NewInternalError(merr)
		}

		s.logger.Error("gateway initialization failed",
			"reference", payment.Reference,
			"error", gwErr,
		)
		return &CheckoutResult{Payment: payment, GatewayError: gwErr.Error()}, nil
	}

	if changed, terr := payment.ApplyGatewayStatus(domain.StatusProcessing); terr == nil && changed {
		payment, err = s.persistStatus(ctx, payment)
		if err != nil {
			return nil, application.NewInternalError(err)
		}
	}

	// Only sandbox mobile-money payments still in flight get simulated; in
	// live mode the webhook/verify path is the sole driver.
	if method.MobileMoney() && initResp.TestMode && !payment.IsTerminal() {
		if err := s.scheduleCompletion(ctx, payment); err != nil {
			s.logger.Error("could not schedule completion simulation",
				"reference", payment.Reference, "error", err)
		}
	}

	return &CheckoutResult{Payment: payment, Gateway: initResp}, nil
}

// persistStatus writes the in-memory transition through the terminal
// guard. When another writer finalized the payment while the gateway call
// was in flight, their write stands and the stored payment replaces the
// stale in-memory one.
func (s *CheckoutService) persistStatus(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	ok, err := s.payments.UpdateStatusGuarded(ctx, payment.Reference, payment.Status, payment.ProcessedAt)
	if err != nil {
		return nil, err
	}
	if ok {
		return payment, nil
	}

	s.logger.Warn("status write lost to concurrent terminal write",
		"reference", payment.Reference,
		"attempted", payment.Status,
	)
	return s.payments.FindByReference(ctx, payment.Reference)
}

// scheduleCompletion books the simulator's single delayed evaluation.
// Ticket-flavored payments settle faster and more reliably than
// destination bookings; the flavor comes from the classifier.
func (s *CheckoutService) scheduleCompletion(ctx context.Context, payment *domain.Payment) error {
	delay := s.simCfg.BookingDelay
	probability := s.simCfg.BookingSuccessRate
	if domain.Classify(payment.Description, payment.Metadata) == domain.KindTicket {
		delay = s.simCfg.TicketDelay
		probability = s.simCfg.TicketSuccessRate
	}

	job := domain.ScheduledCompletion{
		PaymentReference:   payment.Reference,
		DueAt:              time.Now().Add(delay),
		SuccessProbability: probability,
		CreatedAt:          time.Now(),
	}

	if err := s.schedules.Schedule(ctx, job); err != nil {
		return err
	}

	s.logger.Info("completion simulation scheduled",
		"reference", payment.Reference,
		"due_at", job.DueAt,
		"success_probability", probability,
	)
	return nil
}

// GetPayment serves the status-check endpoint.
func (s *CheckoutService) GetPayment(ctx context.Context, reference string) (*domain.Payment, error) {
	return s.payments.FindByReference(ctx, reference)
}
