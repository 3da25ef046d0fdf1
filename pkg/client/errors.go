package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	// ServerMessage is true when Message came from a detail/message/error
	// field rather than the raw body.
	ServerMessage bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// MalformedError reports a 2xx reply whose body could not be decoded.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return "malformed response: " + e.Reason
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// ServerMessage returns the message the API attached to a failed request,
// or "" if there was none.
func ServerMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.ServerMessage {
		return httpErr.Message
	}
	return ""
}

// IsMalformed reports whether err is a MalformedError.
func IsMalformed(err error) bool {
	var m *MalformedError
	return errors.As(err, &m)
}

// IsNetwork reports whether err means no HTTP response was received:
// connection refused, DNS failure, timeout. Cancellation is not a network error.
func IsNetwork(err error) bool {
	if err == nil || IsCanceled(err) {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsCanceled reports whether err stems from a canceled context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
