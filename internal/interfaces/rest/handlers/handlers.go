// Package handlers wires the HTTP surface to the application services.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sankofatravel/booking-engine/internal/application/services"
)

type Handlers struct {
	checkout   *services.CheckoutService
	completion *services.CompletionService
	tickets    *services.TicketService
	bookings   *services.BookingService
	logger     *slog.Logger
}

func NewHandlers(
	checkout *services.CheckoutService,
	completion *services.CompletionService,
	tickets *services.TicketService,
	bookings *services.BookingService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		checkout:   checkout,
		completion: completion,
		tickets:    tickets,
		bookings:   bookings,
		logger:     logger,
	}
}

// Register mounts every route on the mux using method patterns.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/payments", h.CreatePayment)
	mux.HandleFunc("GET /api/payments/{reference}", h.GetPayment)
	mux.HandleFunc("POST /api/payments/{reference}/complete", h.ForceComplete)
	mux.HandleFunc("POST /api/webhooks/gateway", h.GatewayWebhook)
	mux.HandleFunc("POST /api/tickets/purchase", h.PurchaseTicket)
	mux.HandleFunc("POST /api/tickets/codes/{code}/redeem", h.RedeemCode)
	mux.HandleFunc("GET /api/bookings/{reference}", h.GetBooking)
	mux.HandleFunc("POST /api/bookings/{reference}/cancel", h.CancelBooking)
}
