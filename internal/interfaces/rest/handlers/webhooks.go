package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sankofatravel/booking-engine/internal/application/services"
	"github.com/sankofatravel/booking-engine/internal/interfaces/rest"
)

type gatewayWebhookRequest struct {
	Reference        string `json:"reference"`
	EventType        string `json:"event_type"`
	Status           string `json:"status"`
	RawGatewayStatus string `json:"raw_gateway_status"`
}

// GatewayWebhook ingests gateway notifications. The gateway retries on
// non-200, so the handler acknowledges everything; failures are logged
// and left for the verify path or the operator.
func (h *Handlers) GatewayWebhook(w http.ResponseWriter, r *http.Request) {
	var req gatewayWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("undecodable webhook payload", "error", err)
		rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
		return
	}

	err := h.completion.HandleWebhook(r.Context(), services.WebhookEvent{
		Reference:        req.Reference,
		EventType:        req.EventType,
		Status:           req.Status,
		RawGatewayStatus: req.RawGatewayStatus,
	})
	if err != nil {
		h.logger.Error("webhook processing failed",
			"reference", req.Reference,
			"event_type", req.EventType,
			"error", err,
		)
	}

	rest.WriteJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
