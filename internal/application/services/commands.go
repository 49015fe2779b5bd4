// Package services orchestrates the payment lifecycle: checkout, status
// transitions, reconciliation into bookings or ticket purchases, and the
// direct ticket-purchase path.
package services

import "github.com/shopspring/decimal"

// CreatePaymentCommand is the checkout request.
type CreatePaymentCommand struct {
	Amount         decimal.Decimal
	Currency       string
	PaymentMethod  string
	Email          string
	PhoneNumber    string
	Description    string
	BookingDetails map[string]any
}

// DirectPurchaseCommand creates a ticket purchase from the client-driven
// flow, optionally pre-linked to a payment reference.
type DirectPurchaseCommand struct {
	TicketID         int64
	Quantity         int
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	PaymentMethod    string
	PaymentReference string
	SpecialRequests  string
}
