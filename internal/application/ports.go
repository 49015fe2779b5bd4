// Package application holds the service orchestration layer: ports to the
// gateway and the persistence layer, plus service-level errors.
package application

import (
	"context"
	"time"

	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/shopspring/decimal"
)

// InitializeResponse is what the gateway hands back when a transaction is
// opened. TestMode decides whether the completion simulator may run for
// mobile-money payments; in live mode only the webhook/verify path can
// move the payment.
type InitializeResponse struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
	TestMode         bool
}

// VerifyResponse is the gateway's view of a transaction on polling.
type VerifyResponse struct {
	Status           string
	RawGatewayStatus string
	AmountConfirmed  decimal.Decimal
}

// GatewayClient is the external-collaborator boundary to the payment
// gateway. Initialize and Verify are the only network round-trips in the
// engine.
type GatewayClient interface {
	Initialize(ctx context.Context, payment *domain.Payment, email, phoneNumber string) (*InitializeResponse, error)
	Verify(ctx context.Context, reference string) (*VerifyResponse, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	FindByReference(ctx context.Context, reference string) (*domain.Payment, error)
	// FindByReferenceForUpdate takes a row lock; only meaningful inside a
	// transaction handed out by the coordinator.
	FindByReferenceForUpdate(ctx context.Context, reference string) (*domain.Payment, error)
	Update(ctx context.Context, payment *domain.Payment) error
	// UpdateStatusGuarded writes a status transition conditionally scoped
	// to rows still in a non-terminal state. Returns false when another
	// writer already finalized the payment: first terminal write wins.
	UpdateStatusGuarded(ctx context.Context, reference string, status domain.PaymentStatus, processedAt *time.Time) (bool, error)
	// OverrideStatus writes a status unconditionally. Operator escape
	// hatch only.
	OverrideStatus(ctx context.Context, reference string, status domain.PaymentStatus, processedAt *time.Time) error
	// MergeMetadata folds the patch into the stored metadata without
	// touching status, processed_at or booking_ref, so callers racing a
	// terminal write cannot undo it.
	MergeMetadata(ctx context.Context, reference string, patch domain.Metadata) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	FindByReference(ctx context.Context, reference string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, reference string, status domain.BookingStatus) error
}

type TicketRepository interface {
	FindTicket(ctx context.Context, id int64) (*domain.Ticket, error)
	CreatePurchase(ctx context.Context, purchase *domain.TicketPurchase) error
	FindPurchaseByID(ctx context.Context, purchaseID string) (*domain.TicketPurchase, error)
	// FindPurchaseByPayment returns nil, nil when no purchase references
	// the payment yet.
	FindPurchaseByPayment(ctx context.Context, paymentReference string) (*domain.TicketPurchase, error)
	// ConfirmPurchase persists a confirmed purchase's status, payment link
	// and freshly issued codes in one statement batch.
	ConfirmPurchase(ctx context.Context, purchase *domain.TicketPurchase) error
	FindCode(ctx context.Context, code string) (*domain.TicketCode, error)
	UpdateCode(ctx context.Context, code *domain.TicketCode) error
}

type DestinationRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Destination, error)
	TiersFor(ctx context.Context, destinationID int64) ([]domain.PricingTier, error)
}

type ScheduleRepository interface {
	// Schedule upserts the single evaluation for a payment reference.
	Schedule(ctx context.Context, job domain.ScheduledCompletion) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledCompletion, error)
	Delete(ctx context.Context, paymentReference string) error
}

type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	ListByPayment(ctx context.Context, paymentReference string) ([]domain.AuditEntry, error)
}

// TxRepos bundles transaction-scoped repositories handed to a closure by
// the coordinator. All repos share one underlying transaction.
type TxRepos struct {
	Payments     PaymentRepository
	Bookings     BookingRepository
	Tickets      TicketRepository
	Destinations DestinationRepository
	Schedules    ScheduleRepository
	Audit        AuditRepository
}

// TransactionCoordinator runs a closure inside a single database
// transaction. The reconciliation existence-check-then-create executes
// under it so concurrent triggers cannot both create a record.
type TransactionCoordinator interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
