package integration

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies why a push failed.
type Kind int

const (
	// KindHTTPStatus means the service answered with a non-2xx status.
	// Invalid or revoked credentials land here with the service's status.
	KindHTTPStatus Kind = iota

	// KindMalformedResponse means a 2xx body could not be interpreted.
	KindMalformedResponse

	// KindNetworkUnreachable means the request never completed.
	KindNetworkUnreachable

	// KindTimeout means the push deadline expired.
	KindTimeout
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindHTTPStatus:
		return "http_status"
	case KindMalformedResponse:
		return "malformed_response"
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// PushError is returned by StoreContent when the external call does not
// yield a usable reference.
type PushError struct {
	Kind Kind

	// Key is the integration key the push was aimed at.
	Key string

	// Status is the HTTP status when Kind is KindHTTPStatus, zero otherwise.
	Status int

	// Detail is a short human readable description, the service-reported
	// message when there is one.
	Detail string

	Cause error
}

func (e *PushError) Error() string {
	var msg string
	switch e.Kind {
	case KindHTTPStatus:
		msg = fmt.Sprintf("%s: push failed with HTTP %d", e.Key, e.Status)
	case KindMalformedResponse:
		msg = e.Key + ": malformed response"
	case KindNetworkUnreachable:
		msg = e.Key + ": network unreachable"
	case KindTimeout:
		msg = e.Key + ": push timed out"
	default:
		msg = e.Key + ": push failed"
	}

	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	if e.Cause != nil && e.Kind != KindHTTPStatus {
		msg += " (" + e.Cause.Error() + ")"
	}

	return msg
}

func (e *PushError) Unwrap() error {
	return e.Cause
}

// StatusError builds a KindHTTPStatus error. An empty detail falls back to
// the status text.
func StatusError(key string, status int, detail string) *PushError {
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &PushError{Kind: KindHTTPStatus, Key: key, Status: status, Detail: detail}
}

// MalformedError builds a KindMalformedResponse error.
func MalformedError(key, detail string, cause error) *PushError {
	return &PushError{Kind: KindMalformedResponse, Key: key, Detail: detail, Cause: cause}
}

// TransportError classifies a failed round trip. Deadline expiry, from the
// context or the client, is KindTimeout; anything else, caller cancellation
// included, is KindNetworkUnreachable.
func TransportError(key string, err error) *PushError {
	kind := KindNetworkUnreachable

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}

	return &PushError{Kind: kind, Key: key, Cause: err}
}

// NotConfiguredError is returned when no stored configuration exists for
// an integration key.
type NotConfiguredError struct {
	Key string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("integration %q is not configured", e.Key)
}

// IsNotConfigured reports whether err is, or wraps, a *NotConfiguredError.
func IsNotConfigured(err error) bool {
	var nc *NotConfiguredError
	return errors.As(err, &nc)
}

// AsPushError unwraps err into a *PushError.
func AsPushError(err error) (*PushError, bool) {
	var pe *PushError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
