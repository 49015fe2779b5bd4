package services_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/sankofatravel/booking-engine/internal/application/services"
	"github.com/sankofatravel/booking-engine/internal/application/services/testhelpers"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/persistence/postgres"
)

type LifecycleSuite struct {
	suite.Suite
	testDB      *testhelpers.TestDatabase
	paymentRepo *postgres.PaymentRepository
	bookingRepo *postgres.BookingRepository
	ticketRepo  *postgres.TicketRepository
	auditRepo   *postgres.AuditRepository
	reconciler  *services.ReconciliationService
	completion  *services.CompletionService
}

func TestLifecycleSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed suite in short mode")
	}
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupSuite() {
	s.testDB = testhelpers.SetupTestDatabase(s.T())
	s.paymentRepo = postgres.NewPaymentRepository(s.testDB.DB)
	s.bookingRepo = postgres.NewBookingRepository(s.testDB.DB)
	s.ticketRepo = postgres.NewTicketRepository(s.testDB.DB)
	s.auditRepo = postgres.NewAuditRepository(s.testDB.DB)

	logger := slog.Default()
	tx := postgres.NewTransactionCoordinator(s.testDB.DB)
	s.reconciler = services.NewReconciliationService(tx, logger)
	s.completion = services.NewCompletionService(tx, &fakeGateway{}, s.reconciler, logger)
}

func (s *LifecycleSuite) TearDownSuite() {
	s.testDB.Cleanup(s.T())
}

func (s *LifecycleSuite) SetupTest() {
	s.testDB.CleanTables(s.T())
}

func (s *LifecycleSuite) seedProcessingPayment(description string, md domain.Metadata) *domain.Payment {
	t := s.T()
	ctx := context.Background()

	payment := testhelpers.NewTestPayment(t, "250", description, md)
	_, err := payment.ApplyGatewayStatus(domain.StatusProcessing)
	require.NoError(t, err)
	require.NoError(t, s.paymentRepo.Create(ctx, payment))
	return payment
}

func (s *LifecycleSuite) Test_GuardedUpdate_FirstTerminalWriteWins() {
	t := s.T()
	ctx := context.Background()
	payment := s.seedProcessingPayment("payment", nil)
	now := time.Now()

	ok, err := s.paymentRepo.UpdateStatusGuarded(ctx, payment.Reference, domain.StatusSuccessful, &now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.paymentRepo.UpdateStatusGuarded(ctx, payment.Reference, domain.StatusFailed, &now)
	require.NoError(t, err)
	assert.False(t, ok, "second terminal write must lose")

	stored, err := s.paymentRepo.FindByReference(ctx, payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccessful, stored.Status)
	assert.NotNil(t, stored.ProcessedAt)
}

func (s *LifecycleSuite) Test_Webhook_CreatesBookingOnce() {
	t := s.T()
	ctx := context.Background()

	destID := testhelpers.SeedDestination(t, s.testDB, "Kakum National Park", "150.00")
	testhelpers.SeedPricingTier(t, s.testDB, destID, 2, intPtr(5), "120.00")

	payment := s.seedProcessingPayment("Kakum National Park tour", domain.Metadata{
		"booking_details": map[string]any{
			"destination":    map[string]any{"id": float64(destID)},
			"numberOfPeople": float64(3),
		},
	})
	event := services.WebhookEvent{Reference: payment.Reference, Status: "success"}

	require.NoError(t, s.completion.HandleWebhook(ctx, event))
	require.NoError(t, s.completion.HandleWebhook(ctx, event))

	stored, err := s.paymentRepo.FindByReference(ctx, payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccessful, stored.Status)
	require.NotNil(t, stored.BookingRef)

	booking, err := s.bookingRepo.FindByReference(ctx, *stored.BookingRef)
	require.NoError(t, err)
	assert.Equal(t, 3, booking.Participants)
	assert.True(t, decimal.RequireFromString("120.00").Equal(booking.PricePerson))
}

func (s *LifecycleSuite) Test_ConcurrentReconcile_SingleRecord() {
	t := s.T()
	ctx := context.Background()

	destID := testhelpers.SeedDestination(t, s.testDB, "Wli Waterfall", "90.00")
	payment := testhelpers.NewTestPayment(t, "90", "Wli waterfall hike", domain.Metadata{
		"booking_details": map[string]any{"destination": map[string]any{"id": float64(destID)}},
	})
	_, err := payment.ApplyGatewayStatus(domain.StatusSuccessful)
	require.NoError(t, err)
	require.NoError(t, s.paymentRepo.Create(ctx, payment))

	refs := make([]string, 6)
	var wg sync.WaitGroup
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.reconciler.Reconcile(ctx, payment.Reference)
			if assert.NoError(t, err) && assert.NotNil(t, result.Booking) {
				refs[i] = result.Booking.Reference
			}
		}(i)
	}
	wg.Wait()

	for _, ref := range refs[1:] {
		assert.Equal(t, refs[0], ref)
	}

	var count int
	err = s.testDB.DB.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM bookings").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func (s *LifecycleSuite) Test_TicketReconcile_IssuesCodes() {
	t := s.T()
	ctx := context.Background()

	ticketID := testhelpers.SeedTicket(t, s.testDB, "Jazz Night", "50.00")
	payment := testhelpers.NewTestPayment(t, "100", "Ticket Purchase: Jazz Night (2 tickets)", domain.Metadata{
		"booking_details": map[string]any{
			"ticket_id": float64(ticketID),
			"quantity":  float64(2),
		},
	})
	_, err := payment.ApplyGatewayStatus(domain.StatusSuccessful)
	require.NoError(t, err)
	require.NoError(t, s.paymentRepo.Create(ctx, payment))

	result, err := s.reconciler.Reconcile(ctx, payment.Reference)
	require.NoError(t, err)
	require.NotNil(t, result.Purchase)

	stored, err := s.ticketRepo.FindPurchaseByPayment(ctx, payment.Reference)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, domain.PurchaseConfirmed, stored.Status)
	assert.Len(t, stored.Codes, 2)
}

func (s *LifecycleSuite) Test_ForceComplete_AuditTrailPersists() {
	t := s.T()
	ctx := context.Background()
	payment := s.seedProcessingPayment("payment", nil)

	_, err := s.completion.ForceComplete(ctx, payment.Reference, "failed", "ops@example.com")
	require.NoError(t, err)
	_, err = s.completion.ForceComplete(ctx, payment.Reference, "successful", "ops@example.com")
	require.NoError(t, err)

	entries, err := s.auditRepo.ListByPayment(ctx, payment.Reference)
	require.NoError(t, err)

	var overrides int
	for _, entry := range entries {
		if entry.Action == domain.AuditManualOverride {
			overrides++
		}
	}
	assert.Equal(t, 2, overrides)

	stored, err := s.paymentRepo.FindByReference(ctx, payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccessful, stored.Status)
}
