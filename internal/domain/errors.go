package domain

import "errors"

var (
	ErrInvalidTransition    = errors.New("invalid payment status transition")
	ErrTerminalState        = errors.New("payment already in terminal state")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrCurrencyRequired     = errors.New("currency is required")
	ErrUnknownPaymentMethod = errors.New("invalid payment method")
	ErrCodeAlreadyUsed      = errors.New("ticket code already used")
	ErrBookingCancelled     = errors.New("booking already cancelled")
)
