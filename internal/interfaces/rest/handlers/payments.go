package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sankofatravel/booking-engine/internal/application"
	"github.com/sankofatravel/booking-engine/internal/application/services"
	"github.com/sankofatravel/booking-engine/internal/domain"
	"github.com/sankofatravel/booking-engine/internal/infrastructure/persistence/postgres"
	"github.com/sankofatravel/booking-engine/internal/interfaces/rest"
)

type createPaymentRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	PaymentMethod  string          `json:"payment_method"`
	Email          string          `json:"email"`
	PhoneNumber    string          `json:"phone_number"`
	Description    string          `json:"description"`
	BookingDetails map[string]any  `json:"booking_details"`
}

type paymentResponse struct {
	Reference   string          `json:"reference"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at"`
}

type paymentBrief struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

type gatewayResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	TestMode         bool   `json:"test_mode"`
}

type createPaymentResponse struct {
	Payment      paymentBrief     `json:"payment"`
	Gateway      *gatewayResponse `json:"gateway,omitempty"`
	GatewayError string           `json:"gateway_error,omitempty"`
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		Reference:   p.Reference,
		Status:      string(p.Status),
		Amount:      p.Amount,
		Currency:    p.Currency,
		CreatedAt:   p.CreatedAt,
		ProcessedAt: p.ProcessedAt,
	}
}

func (h *Handlers) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewValidationError("invalid request body"), h.logger)
		return
	}

	result, err := h.checkout.CreatePayment(r.Context(), services.CreatePaymentCommand{
		Amount:         req.Amount,
		Currency:       req.Currency,
		PaymentMethod:  req.PaymentMethod,
		Email:          req.Email,
		PhoneNumber:    req.PhoneNumber,
		Description:    req.Description,
		BookingDetails: req.BookingDetails,
	})
	if err != nil {
		rest.WriteError(w, err, h.logger)
		return
	}

	resp := createPaymentResponse{
		Payment: paymentBrief{
			Reference: result.Payment.Reference,
			Status:    string(result.Payment.Status),
			Amount:    result.Payment.Amount,
			Currency:  result.Payment.Currency,
		},
		GatewayError: result.GatewayError,
	}
	if result.Gateway != nil {
		resp.Gateway = &gatewayResponse{
			AuthorizationURL: result.Gateway.AuthorizationURL,
			AccessCode:       result.Gateway.AccessCode,
			TestMode:         result.Gateway.TestMode,
		}
	}

	rest.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")

	payment, err := h.checkout.GetPayment(r.Context(), reference)
	if err != nil {
		if errors.Is(err, postgres.ErrPaymentNotFound) {
			rest.WriteError(w, application.NewNotFoundError("payment not found"), h.logger)
			return
		}
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toPaymentResponse(payment))
}

type forceCompleteRequest struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

func (h *Handlers) ForceComplete(w http.ResponseWriter, r *http.Request) {
	reference := r.PathValue("reference")

	var req forceCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewValidationError("invalid request body"), h.logger)
		return
	}

	actor := req.Actor
	if actor == "" {
		actor = "operator"
	}

	payment, err := h.completion.ForceComplete(r.Context(), reference, req.Status, actor)
	if err != nil {
		if errors.Is(err, postgres.ErrPaymentNotFound) {
			rest.WriteError(w, application.NewNotFoundError("payment not found"), h.logger)
			return
		}
		rest.WriteError(w, err, h.logger)
		return
	}

	rest.WriteJSON(w, http.StatusOK, toPaymentResponse(payment))
}
