package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseStatus tracks a ticket purchase independently of its payment.
type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseConfirmed PurchaseStatus = "confirmed"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

// TicketCodeStatus is a two-state machine; used is terminal.
type TicketCodeStatus string

const (
	CodeActive TicketCodeStatus = "active"
	CodeUsed   TicketCodeStatus = "used"
)

// Ticket is the read-only catalog entry for a purchasable event ticket.
type Ticket struct {
	ID        int64
	EventName string
	UnitPrice decimal.Decimal
}

// TicketPurchase is the event-ticket record materialized from a successful
// payment, or created pending by the direct purchase endpoint and confirmed
// later. A confirmed purchase of quantity q owns exactly q codes.
type TicketPurchase struct {
	PurchaseID       string
	TicketID         int64
	Quantity         int
	UnitPrice        decimal.Decimal
	TotalAmount      decimal.Decimal
	Status           PurchaseStatus
	PaymentReference *string
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	SpecialRequests  string
	Codes            []TicketCode
	CreatedAt        time.Time
}

// TicketCode is a unique redemption token issued once per purchased unit.
type TicketCode struct {
	Code       string
	PurchaseID string
	Status     TicketCodeStatus
	UsedAt     *time.Time
}

// NewTicketPurchase creates a pending purchase. Codes are only generated
// on confirmation.
func NewTicketPurchase(ticketID int64, quantity int, unitPrice decimal.Decimal) *TicketPurchase {
	if quantity < 1 {
		quantity = 1
	}
	return &TicketPurchase{
		PurchaseID:  uuid.New().String(),
		TicketID:    ticketID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalAmount: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Status:      PurchasePending,
		CreatedAt:   time.Now(),
	}
}

// Confirm marks the purchase confirmed, links its payment and issues
// exactly Quantity unique codes. Calling Confirm on an already-confirmed
// purchase is a no-op so reconciliation retries stay idempotent.
func (tp *TicketPurchase) Confirm(paymentReference string) {
	if tp.Status == PurchaseConfirmed {
		return
	}
	tp.Status = PurchaseConfirmed
	tp.PaymentReference = &paymentReference
	tp.Codes = make([]TicketCode, tp.Quantity)
	for i := range tp.Codes {
		tp.Codes[i] = TicketCode{
			Code:       NewTicketCode(),
			PurchaseID: tp.PurchaseID,
			Status:     CodeActive,
		}
	}
}

// Redeem transitions a code active -> used. Used is terminal.
func (c *TicketCode) Redeem() error {
	if c.Status == CodeUsed {
		return ErrCodeAlreadyUsed
	}
	c.Status = CodeUsed
	now := time.Now()
	c.UsedAt = &now
	return nil
}

// NewTicketCode generates a cryptographically-unique redemption code.
func NewTicketCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		panic("read random bytes: " + err.Error())
	}
	return "TKT-" + strings.ToUpper(hex.EncodeToString(buf))
}
