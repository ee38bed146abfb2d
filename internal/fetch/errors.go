package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a failed request.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation      // rejected locally, nothing was sent
	KindNotFound        // 404
	KindNetwork         // no response
	KindTimeout         // deadline exceeded
	KindBadRequest      // 400
	KindServer          // 5xx
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindBadRequest:
		return "bad_request"
	case KindServer:
		return "server"
	default:
		return "unexpected"
	}
}

// Error is the error type returned by every Client operation.
type Error struct {
	Kind   Kind
	Op     string // "list", "search", "get", "get_many"
	Status int    // HTTP status, 0 when no response was received
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s (HTTP %d): %v", e.Op, e.Kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid returns a KindValidation error. Nothing is sent for invalid input.
func Invalid(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of err. Errors that did not come from this
// package are KindUnexpected.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnexpected
}

// Is reports whether err is a fetch error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Transient reports whether retrying the same request may succeed.
// Callers surface this as a retry affordance; nothing is retried automatically.
func Transient(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout, KindServer:
		return err != nil
	}
	return false
}

// Message is the user-facing text for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if !errors.As(err, &fe) {
		return "Something went wrong. Please try again."
	}
	switch fe.Kind {
	case KindValidation:
		if fe.Err != nil {
			return "Invalid request: " + fe.Err.Error()
		}
		return "Invalid request."
	case KindNotFound:
		if fe.Op == "search" {
			return "No characters match that search."
		}
		return "Character not found."
	case KindNetwork:
		return "Network error. Check your connection and try again."
	case KindTimeout:
		return "The request timed out. Please try again."
	case KindBadRequest:
		return "The API rejected the request."
	case KindServer:
		return "The API is having trouble. Please try again later."
	default:
		return "Unexpected response from the API."
	}
}

// classifyTransport maps an error from http.Client.Do.
func classifyTransport(op string, err error) *Error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}

// classifyStatus maps a non-2xx response status.
func classifyStatus(op string, status int) *Error {
	k := KindUnexpected
	switch {
	case status == http.StatusNotFound:
		k = KindNotFound
	case status == http.StatusBadRequest:
		k = KindBadRequest
	case status >= 500:
		k = KindServer
	}
	return &Error{Kind: k, Op: op, Status: status}
}
