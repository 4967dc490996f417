package amazon

import (
	"encoding/json"
	"fmt"
)

// AuthError means no access token could be obtained. Requests are never
// attempted without one.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("failed to obtain access token: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError wraps a network-level failure (DNS, connect, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is an HTTP >= 400 response from SP-API. Message is the first
// entry of the provider's error list; Raw keeps the full payload for
// diagnostics.
type APIError struct {
	Message    string
	StatusCode int
	Raw        json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Message)
}
