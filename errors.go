package scoreline

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed classification taxonomy for failed calls.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindTimeout      Kind = "timeout"
	KindServerError  Kind = "server_error"
	KindNotFound     Kind = "not_found"
	KindRateLimited  Kind = "rate_limited"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindUnknown      Kind = "unknown"
)

// User-presentable messages. The classifier is the single source of truth
// for these strings; callers must never surface raw status codes.
const (
	msgNetwork     = "Network error. Please check your connection."
	msgTimeout     = "Request timeout. Please try again."
	msgValidation  = "Invalid request parameters"
	msgAuthNeeded  = "Authentication required"
	msgForbidden   = "Access forbidden"
	msgRateLimited = "Too many requests. Please wait and try again."
	msgServer      = "Server error. Please try again later."
	msgUnknown     = "Something went wrong. Please try again."
)

// Error is the classified failure returned by every operation. It carries
// the upstream status code when one was received and the attempt count once
// the retry scheduler has given up.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int // 0 when no HTTP response was received
	Attempts   int // attempts made before the error was surfaced
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s (after %d attempts)", msg, e.Attempts)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches errors by Kind, so callers can write
// errors.Is(err, &scoreline.Error{Kind: scoreline.KindNotFound}).
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Retryable reports whether re-attempting the same operation is expected to
// sometimes succeed. The retryable set is exactly {Network, Timeout,
// ServerError, RateLimited} and is the sole input to the retry scheduler's
// continue/stop decision.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case KindNetwork, KindTimeout, KindServerError, KindRateLimited:
		return true
	default:
		return false
	}
}

// networkClass reports whether the failure means the service itself was
// unreachable, as opposed to reachable but unhappy.
func (e *Error) networkClass() bool {
	return e != nil && (e.Kind == KindNetwork || e.Kind == KindTimeout)
}

// Classify maps a transport outcome onto the error taxonomy. A response
// below 400 classifies to nil. The resource name is only used for not-found
// messages ("Player not found"). Classify is total and deterministic.
func Classify(resp *Response, err error, resource string) *Error {
	if err != nil {
		var terr *transportError
		if errors.As(err, &terr) && terr.timeout {
			return &Error{Kind: KindTimeout, Message: msgTimeout, Cause: terr.cause}
		}
		return &Error{Kind: KindNetwork, Message: msgNetwork, Cause: err}
	}

	if resp == nil {
		return &Error{Kind: KindNetwork, Message: msgNetwork}
	}
	if resp.StatusCode < 400 {
		return nil
	}

	serverMsg := serverMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return &Error{Kind: KindValidation, Message: orDefault(serverMsg, msgValidation), StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, Message: msgAuthNeeded, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusForbidden:
		return &Error{Kind: KindUnauthorized, Message: msgForbidden, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		if resource == "" {
			resource = "Resource"
		}
		return &Error{Kind: KindNotFound, Message: resource + " not found", StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Message: msgRateLimited, StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return &Error{Kind: KindServerError, Message: orDefault(serverMsg, msgServer), StatusCode: resp.StatusCode}
	default:
		return &Error{Kind: KindUnknown, Message: orDefault(serverMsg, msgUnknown), StatusCode: resp.StatusCode}
	}
}

// serverMessage extracts the service's own error text, when the body carries
// one, so validation and server errors can surface it verbatim.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	return firstNonEmpty(payload.Error, payload.Message)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func validationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Attempts: 0}
}

func decodeError(cause error) *Error {
	return &Error{Kind: KindUnknown, Message: msgUnknown, Cause: cause}
}
