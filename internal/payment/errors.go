package payment

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when a provider is constructed or used
// without credentials. It marks an operator mistake, never a payment
// failure, so callers can surface it differently.
var ErrNotConfigured = errors.New("payment provider is not configured")

// TransportError wraps a network-level failure talking to a gateway.
// Safe for the caller to retry manually.
type TransportError struct {
	Gateway string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Gateway, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GatewayError is a non-2xx or explicitly reported gateway-side failure.
// Distinct from a definitive payment status: the gateway answered, but
// not with one.
type GatewayError struct {
	Gateway    string
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: gateway error: %s", e.Gateway, e.Message)
	}
	return fmt.Sprintf("%s: gateway returned HTTP %d", e.Gateway, e.StatusCode)
}
