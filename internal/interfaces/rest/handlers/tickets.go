package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/application/services"
	"github.com/sankofatravel/booking-engine/internal/interfaces/rest"
)

type purchaseTicketRequest struct {
	TicketID         int64  `json:"ticket_id"`
	Quantity         int    `json:"quantity"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	PaymentMethod    string `json:"payment_method"`
	PaymentReference string `json:"payment_reference"`
	SpecialRequests  string `json:"special_requests"`
}

type purchaseTicketResponse struct {
	Success  bool         `json:"success"`
	Purchase purchaseBody `json:"purchase"`
}

type purchaseBody struct {
	PurchaseID    string          `json:"purchase_id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Quantity      int             `json:"quantity"`
}

func (h *Handlers) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	var req purchaseTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewValidationError("invalid request body"), h.logger)
		return
	}

	result, err := h.tickets.DirectPurchase(r.Context(), services.DirectPurchaseCommand{
		TicketID:         req.TicketID,
		Quantity:         req.Quantity,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: req.PaymentReference,
		SpecialRequests:  req.SpecialRequests,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, purchaseTicketResponse{
		Success: true,
		Purchase: purchaseBody{
			PurchaseID:    result.Purchase.PurchaseID,
			Status:        string(result.Purchase.Status),
			PaymentStatus: string(result.PaymentStatus),
			TotalAmount:   result.Purchase.TotalAmount,
			Quantity:      result.Purchase.Quantity,
		},
	})
}

type redeemCodeResponse struct {
	Code   string `json:"code"`
	Status string `json:"status"`
}

func (h *Handlers) RedeemCode(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("code")

	code, err := h.tickets.RedeemCode(r.Context(), raw)
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteData(w, http.StatusOK, redeemCodeResponse{
		Code:   code.Code,
		Status: string(code.Status),
	})
}
