package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrPurchaseNotFound = errors.New("ticket purchase not found")
	ErrCodeNotFound     = errors.New("ticket code not found")
)

const purchaseColumns = `purchase_id, ticket_id, quantity, unit_price, total_amount,
	       status, payment_reference, customer_name, customer_email,
	       customer_phone, special_requests, created_at`

type TicketRepository struct {
	q Executor
}

func NewTicketRepository(db *DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

// FindTicket reads the catalog entry for a purchasable event ticket.
func (r *TicketRepository) FindTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT id, event_name, unit_price FROM tickets WHERE id = $1`

	var (
		ticket domain.Ticket
		price  string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(&ticket.ID, &ticket.EventName, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to scan ticket: %w", err)
	}

	ticket.UnitPrice, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse ticket price %q: %w", price, err)
	}
	return &ticket, nil
}

func (r *TicketRepository) CreatePurchase(ctx context.Context, purchase *domain.TicketPurchase) error {
	query := `
		INSERT INTO ticket_purchases (
            purchase_id, ticket_id, quantity, unit_price, total_amount,
            status, payment_reference, customer_name, customer_email,
            customer_phone, special_requests, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	m := toPurchaseModel(purchase)
	_, err := r.q.Exec(ctx, query,
		m.PurchaseID,
		m.TicketID,
		m.Quantity,
		m.UnitPrice,
		m.TotalAmount,
		m.Status,
		m.PaymentReference,
		m.CustomerName,
		m.CustomerEmail,
		m.CustomerPhone,
		m.SpecialRequests,
		m.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create ticket purchase: %w", err)
	}

	if len(purchase.Codes) > 0 {
		return r.insertCodes(ctx, purchase.Codes)
	}

	return nil
}

func (r *TicketRepository) FindPurchaseByID(ctx context.Context, purchaseID string) (*domain.TicketPurchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM ticket_purchases WHERE purchase_id = $1`

	purchase, err := r.scanPurchase(ctx, r.q.QueryRow(ctx, query, purchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return purchase, nil
}

// FindPurchaseByPayment returns nil, nil when no purchase references the
// payment: absence is a normal answer for the reconciliation guard, not an
// error.
func (r *TicketRepository) FindPurchaseByPayment(ctx context.Context, paymentReference string) (*domain.TicketPurchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM ticket_purchases WHERE payment_reference = $1`

	purchase, err := r.scanPurchase(ctx, r.q.QueryRow(ctx, query, paymentReference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return purchase, nil
}

// ConfirmPurchase persists the confirmed status, payment link and the
// issued codes.
func (r *TicketRepository) ConfirmPurchase(ctx context.Context, purchase *domain.TicketPurchase) error {
	query := `
		UPDATE ticket_purchases
		SET status = $1, payment_reference = $2
		WHERE purchase_id = $3
	`

	m := toPurchaseModel(purchase)
	result, err := r.q.Exec(ctx, query, m.Status, m.PaymentReference, m.PurchaseID)
	if err != nil {
		return fmt.Errorf("failed to confirm ticket purchase: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrPurchaseNotFound
	}

	return r.insertCodes(ctx, purchase.Codes)
}

func (r *TicketRepository) insertCodes(ctx context.Context, codes []domain.TicketCode) error {
	query := `
		INSERT INTO ticket_codes (code, purchase_id, status, used_at)
		VALUES ($1, $2, $3, $4)
	`

	for _, code := range codes {
		if _, err := r.q.Exec(ctx, query, code.Code, code.PurchaseID, string(code.Status), code.UsedAt); err != nil {
			return fmt.Errorf("failed to insert ticket code: %w", err)
		}
	}
	return nil
}

func (r *TicketRepository) FindCode(ctx context.Context, code string) (*domain.TicketCode, error) {
	query := `SELECT code, purchase_id, status, used_at FROM ticket_codes WHERE code = $1`

	var m TicketCodeModel
	err := r.q.QueryRow(ctx, query, code).Scan(&m.Code, &m.PurchaseID, &m.Status, &m.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to scan ticket code: %w", err)
	}

	return &domain.TicketCode{
		Code:       m.Code,
		PurchaseID: m.PurchaseID,
		Status:     domain.TicketCodeStatus(m.Status),
		UsedAt:     m.UsedAt,
	}, nil
}

func (r *TicketRepository) UpdateCode(ctx context.Context, code *domain.TicketCode) error {
	query := `UPDATE ticket_codes SET status = $1, used_at = $2 WHERE code = $3`

	result, err := r.q.Exec(ctx, query, string(code.Status), code.UsedAt, code.Code)
	if err != nil {
		return fmt.Errorf("failed to update ticket code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrCodeNotFound
	}
	return nil
}

func (r *TicketRepository) scanPurchase(ctx context.Context, row pgx.Row) (*domain.TicketPurchase, error) {
	var m TicketPurchaseModel
	err := row.Scan(
		&m.PurchaseID, &m.TicketID, &m.Quantity, &m.UnitPrice, &m.TotalAmount,
		&m.Status, &m.PaymentReference, &m.CustomerName, &m.CustomerEmail,
		&m.CustomerPhone, &m.SpecialRequests, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	purchase, err := toPurchaseDomain(m)
	if err != nil {
		return nil, err
	}

	purchase.Codes, err = r.codesForPurchase(ctx, purchase.PurchaseID)
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (r *TicketRepository) codesForPurchase(ctx context.Context, purchaseID string) ([]domain.TicketCode, error) {
	query := `SELECT code, purchase_id, status, used_at FROM ticket_codes WHERE purchase_id = $1 ORDER BY code`

	rows, err := r.q.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("query ticket codes: %w", err)
	}

	codes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TicketCode, error) {
		var m TicketCodeModel
		err := row.Scan(&m.Code, &m.PurchaseID, &m.Status, &m.UsedAt)
		return domain.TicketCode{
			Code:       m.Code,
			PurchaseID: m.PurchaseID,
			Status:     domain.TicketCodeStatus(m.Status),
			UsedAt:     m.UsedAt,
		}, err
	})

	if err != nil {
		return nil, fmt.Errorf("scan ticket codes: %w", err)
	}
	return codes, nil
}
