package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnexpectedFormat is returned when a response body matches none of the
// envelope shapes the merchant API is known to produce. The text is shown to
// users as-is.
var ErrUnexpectedFormat = errors.New("Unexpected response format from server") //nolint:staticcheck // user-facing text

// ErrRequestFailed is the fallback message for failed envelopes without a message.
const ErrRequestFailed = "Request failed"

// APIError is a failed call to the merchant API.
// StatusCode is zero when the backend reported failure inside a 2xx body
// ({"success": false, ...}).
type APIError struct {
	StatusCode     int
	Message        string // user-facing
	BackendMessage string
	Code           string
	Method         string
	Path           string
	RequestID      string
	Err            error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// WithMessage returns a copy of e carrying a different user-facing message.
func (e *APIError) WithMessage(msg string) *APIError {
	cp := *e
	cp.Message = msg
	return &cp
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// StatusMessage maps an HTTP status to the message shown to the merchant.
// Codes without a dedicated message pass the backend message through.
func StatusMessage(status int, backendMessage string) string {
	switch {
	case status == http.StatusBadRequest:
		return "Invalid data provided"
	case status == http.StatusUnauthorized:
		return "Authentication failed"
	case status == http.StatusForbidden:
		return "No permission"
	case status == http.StatusNotFound:
		return "Not found, may have been deleted"
	case status == http.StatusConflict:
		return "Name or slug already exists"
	case status == http.StatusUnprocessableEntity:
		return "Invalid data format"
	case status >= http.StatusInternalServerError:
		return "Server error, try again later"
	case backendMessage != "":
		return backendMessage
	default:
		return fmt.Sprintf("Request failed with status %d", status)
	}
}

func newStatusError(resp *Response, req Request, requestID string) *APIError {
	backend, code := ExtractMessage(resp.Body)
	return &APIError{
		StatusCode:     resp.StatusCode,
		Message:        StatusMessage(resp.StatusCode, backend),
		BackendMessage: backend,
		Code:           code,
		Method:         req.Method,
		Path:           req.Path,
		RequestID:      requestID,
	}
}
