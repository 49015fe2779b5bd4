package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/persistence/postgres"
)

func intPtr(n int) *int { return &n }

// In-memory fakes implementing the application ports. FindByReference*
// hand out copies so the conditional status write keeps its meaning.

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[string]*domain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*domain.Payment)}
}

func copyPayment(p *domain.Payment) *domain.Payment {
	cp := *p
	return &cp
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.Reference] = copyPayment(payment)
	return nil
}

func (r *fakePaymentRepo) FindByReference(_ context.Context, reference string) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[reference]
	if !ok {
		return nil, postgres.ErrPaymentNotFound
	}
	return copyPayment(p), nil
}

func (r *fakePaymentRepo) FindByReferenceForUpdate(ctx context.Context, reference string) (*domain.Payment, error) {
	return r.FindByReference(ctx, reference)
}

func (r *fakePaymentRepo) Update(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.Reference]; !ok {
		return postgres.ErrPaymentNotFound
	}
	r.payments[payment.Reference] = copyPayment(payment)
	return nil
}

func (r *fakePaymentRepo) UpdateStatusGuarded(_ context.Context, reference string, status domain.PaymentStatus, processedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[reference]
	if !ok {
		return false, postgres.ErrPaymentNotFound
	}
	if p.Status.Terminal() {
		return false, nil
	}
	p.Status = status
	if p.ProcessedAt == nil {
		p.ProcessedAt = processedAt
	}
	return true, nil
}

func (r *fakePaymentRepo) OverrideStatus(_ context.Context, reference string, status domain.PaymentStatus, processedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[reference]
	if !ok {
		return postgres.ErrPaymentNotFound
	}
	p.Status = status
	if p.ProcessedAt == nil {
		p.ProcessedAt = processedAt
	}
	return nil
}

func (r *fakePaymentRepo) MergeMetadata(_ context.Context, reference string, patch domain.Metadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[reference]
	if !ok {
		return postgres.ErrPaymentNotFound
	}
	if p.Metadata == nil {
		p.Metadata = domain.Metadata{}
	}
	for k, v := range patch {
		p.Metadata[k] = v
	}
	return nil
}

func (r *fakePaymentRepo) get(reference string) *domain.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[reference]
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*domain.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*domain.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *booking
	r.bookings[booking.Reference] = &cp
	return nil
}

func (r *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[reference]
	if !ok {
		return nil, postgres.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, reference string, status domain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[reference]
	if !ok {
		return postgres.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

type fakeTicketRepo struct {
	mu        sync.Mutex
	tickets   map[int64]*domain.Ticket
	purchases map[string]*domain.TicketPurchase
	codes     map[string]*domain.TicketCode
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:   make(map[int64]*domain.Ticket),
		purchases: make(map[string]*domain.TicketPurchase),
		codes:     make(map[string]*domain.TicketCode),
	}
}

func (r *fakeTicketRepo) addTicket(ticket domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = &ticket
}

func (r *fakeTicketRepo) FindTicket(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, postgres.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTicketRepo) CreatePurchase(_ context.Context, purchase *domain.TicketPurchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *purchase
	r.purchases[purchase.PurchaseID] = &cp
	for _, code := range purchase.Codes {
		c := code
		r.codes[code.Code] = &c
	}
	return nil
}

func (r *fakeTicketRepo) FindPurchaseByID(_ context.Context, purchaseID string) (*domain.TicketPurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.purchases[purchaseID]
	if !ok {
		return nil, postgres.ErrPurchaseNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeTicketRepo) FindPurchaseByPayment(_ context.Context, paymentReference string) (*domain.TicketPurchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.purchases {
		if p.PaymentReference != nil && *p.PaymentReference == paymentReference {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) ConfirmPurchase(_ context.Context, purchase *domain.TicketPurchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *purchase
	r.purchases[purchase.PurchaseID] = &cp
	for _, code := range purchase.Codes {
		c := code
		r.codes[code.Code] = &c
	}
	return nil
}

func (r *fakeTicketRepo) FindCode(_ context.Context, code string) (*domain.TicketCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.codes[code]
	if !ok {
		return nil, postgres.ErrCodeNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeTicketRepo) UpdateCode(_ context.Context, code *domain.TicketCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *code
	r.codes[code.Code] = &cp
	return nil
}

func (r *fakeTicketRepo) purchaseCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.purchases)
}

type fakeDestinationRepo struct {
	destinations map[int64]*domain.Destination
	tiers        map[int64][]domain.PricingTier
}

func newFakeDestinationRepo() *fakeDestinationRepo {
	return &fakeDestinationRepo{
		destinations: make(map[int64]*domain.Destination),
		tiers:        make(map[int64][]domain.PricingTier),
	}
}

func (r *fakeDestinationRepo) add(dest domain.Destination, tiers ...domain.PricingTier) {
	r.destinations[dest.ID] = &dest
	r.tiers[dest.ID] = tiers
}

func (r *fakeDestinationRepo) FindByID(_ context.Context, id int64) (*domain.Destination, error) {
	d, ok := r.destinations[id]
	if !ok {
		return nil, postgres.ErrDestinationNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDestinationRepo) TiersFor(_ context.Context, destinationID int64) ([]domain.PricingTier, error) {
	return r.tiers[destinationID], nil
}

type fakeScheduleRepo struct {
	mu   sync.Mutex
	jobs map[string]domain.ScheduledCompletion
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{jobs: make(map[string]domain.ScheduledCompletion)}
}

func (r *fakeScheduleRepo) Schedule(_ context.Context, job domain.ScheduledCompletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.PaymentReference] = job
	return nil
}

func (r *fakeScheduleRepo) FindDue(_ context.Context, now time.Time, limit int) ([]domain.ScheduledCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []domain.ScheduledCompletion
	for _, job := range r.jobs {
		if !job.DueAt.After(now) && len(due) < limit {
			due = append(due, job)
		}
	}
	return due, nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, paymentReference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, paymentReference)
	return nil
}

func (r *fakeScheduleRepo) get(reference string) (domain.ScheduledCompletion, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[reference]
	return job, ok
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func newFakeAuditRepo() *fakeAuditRepo {
	return &fakeAuditRepo{}
}

func (r *fakeAuditRepo) Append(_ context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) ListByPayment(_ context.Context, paymentReference string) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.AuditEntry
	for _, e := range r.entries {
		if e.PaymentReference == paymentReference {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeTx hands the same repo bundle to every closure. The payment row
// lock is emulated with a single mutex so concurrent reconciliations
// serialize the way they would on the real row lock.
type fakeTx struct {
	mu    sync.Mutex
	repos application.TxRepos
}

func newFakeTx(repos application.TxRepos) *fakeTx {
	return &fakeTx{repos: repos}
}

func (tx *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos application.TxRepos) error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return fn(ctx, tx.repos)
}

type fakeGateway struct {
	initialize func(ctx context.Context, payment *domain.Payment, email, phone string) (*application.InitializeResponse, error)
	verify     func(ctx context.Context, reference string) (*application.VerifyResponse, error)
}

func (g *fakeGateway) Initialize(ctx context.Context, payment *domain.Payment, email, phone string) (*application.InitializeResponse, error) {
	if g.initialize == nil {
		return &application.InitializeResponse{
			AuthorizationURL: "https://checkout.example/" + payment.Reference,
			AccessCode:       "ac_" + payment.Reference,
			Reference:        payment.Reference,
			TestMode:         true,
		}, nil
	}
	return g.initialize(ctx, payment, email, phone)
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*application.VerifyResponse, error) {
	if g.verify == nil {
		return &application.VerifyResponse{Status: "success", RawGatewayStatus: "success"}, nil
	}
	return g.verify(ctx, reference)
}
