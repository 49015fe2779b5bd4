// Package domain encodes the payment lifecycle and the booking records
// reconciled from it.
package domain

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current state of a payment in its lifecycle
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusSuccessful PaymentStatus = "successful"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
)

// Metadata is the schemaless payload attached to a payment at creation.
// It may carry a booking_details sub-object used by the classifier and
// the reconciliation service.
type Metadata map[string]any

// Value looks a key up at the top level first, then inside booking_details.
func (m Metadata) Value(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if v, ok := m[key]; ok {
		return v, true
	}
	if bd := m.BookingDetails(); bd != nil {
		if v, ok := bd[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// BookingDetails returns the booking_details sub-object, if any.
func (m Metadata) BookingDetails() map[string]any {
	if m == nil {
		return nil
	}
	if bd, ok := m["booking_details"].(map[string]any); ok {
		return bd
	}
	return nil
}

// StringValue returns the key's value when it is a string.
func (m Metadata) StringValue(key string) (string, bool) {
	v, ok := m.Value(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// IntValue coerces numeric metadata (JSON numbers decode as float64).
func (m Metadata) IntValue(key string) (int, bool) {
	v, ok := m.Value(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		var parsed int
		if _, err := fmt.Sscanf(n, "%d", &parsed); err == nil {
			return parsed, true
		}
	}
	return 0, false
}

type Payment struct {
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	Method      PaymentMethod
	Status      PaymentStatus
	Metadata    Metadata
	Description string

	BookingRef *string

	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// NewPayment creates a pending payment with a generated reference.
// No gateway call happens here.
func NewPayment(amount decimal.Decimal, currency string, method PaymentMethod, metadata Metadata, description string) (*Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		return nil, ErrCurrencyRequired
	}
	if !method.Valid() {
		return nil, ErrUnknownPaymentMethod
	}
	if metadata == nil {
		metadata = Metadata{}
	}

	return &Payment{
		Reference:   NewPaymentReference(),
		Amount:      amount,
		Currency:    currency,
		Method:      method,
		Status:      StatusPending,
		Metadata:    metadata,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// IsTerminal reports whether the payment has reached a final status.
func (p *Payment) IsTerminal() bool {
	return p.Status.Terminal()
}

// Terminal reports whether a status is final.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusSuccessful, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// MapGatewayStatus translates the gateway's status vocabulary onto ours.
// Unrecognized statuses map to processing, never silently to a terminal
// value.
func MapGatewayStatus(raw string) PaymentStatus {
	switch raw {
	case "success":
		return StatusSuccessful
	case "failed":
		return StatusFailed
	case "abandoned", "reversed":
		return StatusCancelled
	default:
		return StatusProcessing
	}
}

// ApplyGatewayStatus advances the payment toward target. It is the single
// transition guard shared by the webhook path, the verify path and the
// completion simulator.
//
// Returns changed=false with a nil error when the write is a benign no-op
// (same terminal status re-applied, or target equals current status).
// Attempts to move a terminal payment anywhere else return
// ErrTerminalState; callers log and move on rather than surfacing it.
func (p *Payment) ApplyGatewayStatus(target PaymentStatus) (changed bool, err error) {
	if p.IsTerminal() {
		if target == p.Status {
			return false, nil
		}
		return false, ErrTerminalState
	}

	if target == p.Status {
		return false, nil
	}

	switch target {
	case StatusProcessing:
		// pending -> processing only; processing -> processing handled above
		if p.Status != StatusPending {
			return false, ErrInvalidTransition
		}
	case StatusSuccessful, StatusFailed, StatusCancelled:
		// pending or processing may jump straight to terminal
	default:
		return false, ErrInvalidTransition
	}

	p.Status = target
	if target.Terminal() {
		p.markProcessed()
	}
	return true, nil
}

// ManualOverride is the operator escape hatch. It bypasses the transition
// guard entirely and is the only sanctioned post-terminal mutation. The
// caller records an audit entry.
func (p *Payment) ManualOverride(target PaymentStatus) {
	p.Status = target
	if target.Terminal() {
		p.markProcessed()
	}
}

// markProcessed sets processed_at at most once; it is never rolled back
// by automated processes.
func (p *Payment) markProcessed() {
	if p.ProcessedAt == nil {
		now := time.Now()
		p.ProcessedAt = &now
	}
}

// LinkBooking records the downstream booking created for this payment.
func (p *Payment) LinkBooking(bookingRef string) {
	p.BookingRef = &bookingRef
}

// RecordGatewayError stores the gateway's reported failure reason in
// metadata so the creation response can surface it.
func (p *Payment) RecordGatewayError(reason string) {
	if p.Metadata == nil {
		p.Metadata = Metadata{}
	}
	p.Metadata["gateway_error"] = reason
}

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewPaymentReference generates a PAY-<yyyymmddHHMMSS>-<6 alnum> reference.
func NewPaymentReference() string {
	return newReference("PAY")
}

// NewBookingReference generates a BKG-<yyyymmddHHMMSS>-<6 alnum> reference.
func NewBookingReference() string {
	return newReference("BKG")
}

func newReference(prefix string) string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	for i, b := range suffix {
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102150405"), suffix)
}
