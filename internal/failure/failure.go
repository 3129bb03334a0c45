// Package failure classifies provider call failures for logging and metrics.
package failure

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Kind labels a provider failure.
type Kind string

const (
	KindNone      Kind = ""
	KindTransient Kind = "transient" // timeouts, throttling, 5xx
	KindPermanent Kind = "permanent" // auth, bad request, malformed body
	KindCanceled  Kind = "canceled"
)

// StatusError is returned by provider clients for non-2xx HTTP responses.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Transient reports whether the status indicates a temporary upstream issue.
func (e *StatusError) Transient() bool {
	return IsTransientHTTPStatus(e.StatusCode)
}

// Classify returns the failure kind for err. A nil error is KindNone.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if IsTransient(err) {
		return KindTransient
	}
	return KindPermanent
}

// IsTransient reports whether err (or any error in its chain) is a transient
// status error, a network timeout, a deadline or a connection-level failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Transient()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// String-based heuristics for wrapped errors from HTTP clients.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"connection refused",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus returns true for statuses that indicate a transient
// server-side issue.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, // Request Timeout
		429, // Too Many Requests
		500, // Internal Server Error
		502, // Bad Gateway
		503, // Service Unavailable
		504: // Gateway Timeout
		return true
	default:
		return false
	}
}
