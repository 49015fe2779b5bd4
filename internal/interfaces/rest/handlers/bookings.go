package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/sankofatravel/booking-engine/internal/interfaces/rest"
)

type bookingResponse struct {
	Reference     string          `json:"reference"`
	DestinationID int64           `json:"destination_id"`
	Participants  int             `json:"participants"`
	PricePerson   decimal.Decimal `json:"price_per_person"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		Reference:     b.Reference,
		DestinationID: b.DestinationID,
		Participants:  b.Participants,
		PricePerson:   b.PricePerson,
		TotalAmount:   b.TotalAmount,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
	}
}

func (h *Handlers) GetBooking(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")

	booking, err := h.bookings.GetBooking(r.Context(), reference)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, toBookingResponse(booking))
}

func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")

	booking, err := h.bookings.CancelBooking(r.Context(), reference)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, toBookingResponse(booking))
}
