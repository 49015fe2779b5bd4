package gateway

import (
	"errors"
	"fmt"
)

// GatewayError is a structured rejection from the payment gateway.
type GatewayError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error [%s] (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

// IsGatewayError unwraps a GatewayError from an error chain.
func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
