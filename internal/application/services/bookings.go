package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/persistence/postgres"
)

// BookingService serves booking lookups and operator cancellation.
type BookingService struct {
	bookings application.BookingRepository
	tx       application.TransactionCoordinator
	logger   *slog.Logger
}

func NewBookingService(bookings application.BookingRepository, tx application.TransactionCoordinator, logger *slog.Logger) *BookingService {
	return &BookingService{bookings: bookings, tx: tx, logger: logger}
}

func (s *BookingService) GetBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := s.bookings.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, postgres.ErrBookingNotFound) {
			return nil, application.NewNotFoundError("booking not found")
		}
		return nil, err
	}
	return booking, nil
}

// CancelBooking cancels a confirmed booking. Cancelling twice is an
// invalid-state error; the payment record is untouched.
func (s *BookingService) CancelBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.tx.WithTransaction(ctx, func(ctx context.Context, repos application.TxRepos) error {
		var err error
		booking, err = repos.Bookings.FindByReference(ctx, reference)
		if err != nil {
			if errors.Is(err, postgres.ErrBookingNotFound) {
				return application.NewNotFoundError("booking not found")
			}
			return err
		}

		if err := booking.Cancel(); err != nil {
			return application.NewInvalidStateError(err)
		}

		if err := repos.Bookings.UpdateStatus(ctx, reference, booking.Status); err != nil {
			return err
		}

		s.logger.Info("booking cancelled", "booking_ref", reference)
		return nil
	})
	return booking, err
}
