package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sankofatravel/booking-engine/internal/interfaces/rest"
)

// Timeout bounds request handling. Requests that overrun are answered
// with the same JSON error envelope the handlers use.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(rest.Envelope{
		Success: false,
		Error:   &rest.ErrorBody{Code: "TIMEOUT", Message: "request timed out"},
	})

	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, string(body))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			bounded.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
