package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sankofatravel/booking-engine/internal/domain"
)

func TestNewBooking(t *testing.T) {
	t.Run("computes the total from the group size", func(t *testing.T) {
		booking := domain.NewBooking(7, 3, decimal.NewFromInt(120))

		assert.Equal(t, domain.BookingConfirmed, booking.Status)
		assert.Equal(t, int64(7), booking.DestinationID)
		assert.True(t, decimal.NewFromInt(360).Equal(booking.TotalAmount))
		assert.Regexp(t, `^BKG-\d{14}-[A-Z0-9]{6}$`, booking.Reference)
	})

	t.Run("clamps participants to at least one", func(t *testing.T) {
		booking := domain.NewBooking(7, 0, decimal.NewFromInt(120))

		assert.Equal(t, 1, booking.Participants)
		assert.True(t, decimal.NewFromInt(120).Equal(booking.TotalAmount))
	})
}

func TestBooking_Cancel(t *testing.T) {
	booking := domain.NewBooking(7, 2, decimal.NewFromInt(100))

	require.NoError(t, booking.Cancel())
	assert.Equal(t, domain.BookingCancelled, booking.Status)

	assert.ErrorIs(t, booking.Cancel(), domain.ErrBookingCancelled)
}
