package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus mirrors but is independent of the payment status: a
// confirmed booking can be cancelled without touching its payment.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is the destination record materialized from a successful
// payment. Created at most once per payment reference.
type Booking struct {
	Reference     string
	DestinationID int64
	Participants  int
	PricePerson   decimal.Decimal
	TotalAmount   decimal.Decimal
	Status        BookingStatus
	CreatedAt     time.Time
}

// NewBooking builds a confirmed booking for the given destination and
// group size at the resolved per-person price.
func NewBooking(destinationID int64, participants int, pricePerson decimal.Decimal) *Booking {
	if participants < 1 {
		participants = 1
	}
	return &Booking{
		Reference:     NewBookingReference(),
		DestinationID: destinationID,
		Participants:  participants,
		PricePerson:   pricePerson,
		TotalAmount:   pricePerson.Mul(decimal.NewFromInt(int64(participants))),
		Status:        BookingConfirmed,
		CreatedAt:     time.Now(),
	}
}

// Cancel marks the booking cancelled. Idempotent.
func (b *Booking) Cancel() error {
	if b.Status == BookingCancelled {
		return ErrBookingCancelled
	}
	b.Status = BookingCancelled
	return nil
}
