package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a failure reported by the server, either through a non-2xx
// status or an envelope with success=false.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// newAPIError builds an APIError, falling back to the raw body or the status text
// when the server did not answer with an envelope.
func newAPIError(status int, message string, raw []byte, decodeErr error) *APIError {
	if message == "" && decodeErr != nil {
		message = strings.TrimSpace(string(raw))
		if len(message) > 200 {
			message = message[:197] + "..."
		}
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &APIError{Status: status, Message: message}
}

// IsUnauthorized reports whether err is a 401 from the server.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsForbidden reports whether err is a 403 from the server.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden
}

// Message returns the text to show a user for err: the server's message when
// there is one, otherwise the error string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
