// Package rest carries the JSON response envelope and the error mapping
// shared by every handler.
package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sankofatravel/booking-engine/internal/application"
)

type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes an arbitrary payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// WriteData wraps a payload in the success envelope.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Success: true, Data: data})
}

// WriteError maps service errors to HTTP responses. Validation failures
// use the flat {"error": msg} shape the API contract fixes; everything
// else uses the envelope.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	svcErr, ok := application.IsServiceError(err)
	if !ok {
		svcErr = application.NewInternalError(err)
	}

	if svcErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed", "code", svcErr.Code, "error", err)
	}

	if svcErr.Code == application.ErrCodeValidation {
		WriteJSON(w, svcErr.HTTPStatus, map[string]string{"error": svcErr.Message})
		return
	}

	WriteJSON(w, svcErr.HTTPStatus, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: svcErr.Code, Message: svcErr.Message},
	})
}
