// Package apierr classifies command, HTTP and transport failures into a
// fixed taxonomy. Every classified error renders as one line prefixed with
// its kind, e.g. "[Unauthorized] Search rejected the API key".
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"jinaai/internal/wire"
)

// Kind is a stable failure tag.
type Kind string

const (
	InvalidCommand          Kind = "InvalidCommand"
	MissingRequiredField    Kind = "MissingRequiredField"
	Unauthorized            Kind = "Unauthorized"
	RateLimited             Kind = "RateLimited"
	ContentUnavailableLegal Kind = "ContentUnavailableLegal"
	ServiceUnavailable      Kind = "ServiceUnavailable"
	BadRequest              Kind = "BadRequest"
	ValidationFailed        Kind = "ValidationFailed"
	InternalServerError     Kind = "InternalServerError"
	Timeout                 Kind = "Timeout"
	NetworkUnreachable      Kind = "NetworkUnreachable"
	GenericApiError         Kind = "GenericApiError"
	TransportError          Kind = "TransportError"
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when the failure came from upstream
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind that unwraps to err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of a classified error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPError is a non-2xx upstream response.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// maxBodyInMessage bounds how much of an upstream error body is echoed.
const maxBodyInMessage = 500

// Classify maps err to the taxonomy for the given capability. Already
// classified errors are returned unchanged; nil stays nil.
func Classify(err error, capability wire.Capability) *Error {
	if err == nil {
		return nil
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}

	op := capability.Label()

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return classifyStatus(httpErr, capability, op, err)
	}

	if isTimeout(err) {
		return Wrap(Timeout, err, "%s request timed out: %v", op, err)
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && (dnsErr.IsNotFound || !dnsErr.IsTemporary) {
		return Wrap(NetworkUnreachable, err, "%s host %q could not be resolved", op, dnsErr.Name)
	}

	return Wrap(TransportError, err, "%s request failed: %v", op, err)
}

func classifyStatus(httpErr *HTTPError, capability wire.Capability, op string, err error) *Error {
	status := httpErr.Status
	build := func(kind Kind, format string, args ...any) *Error {
		e := Wrap(kind, err, format, args...)
		e.Status = status
		return e
	}

	switch {
	case status == http.StatusUnauthorized:
		return build(Unauthorized, "%s rejected the API key. Please check your JINA_API_KEY.", op)
	case status == http.StatusTooManyRequests:
		return build(RateLimited, "%s rate limit exceeded. Please retry later.", op)
	case status == http.StatusUnavailableForLegalReasons && capability == wire.Reader:
		return build(ContentUnavailableLegal, "%s: the target content is unavailable for legal reasons.", op)
	case status == http.StatusNotFound && capability == wire.Grounding:
		return build(ServiceUnavailable, "%s service endpoint not found (HTTP 404). The service may be unavailable.", op)
	case status == http.StatusBadRequest:
		return build(BadRequest, "%s bad request: %s", op, trimBody(httpErr.Body))
	case status == http.StatusUnprocessableEntity:
		return build(ValidationFailed, "%s parameter validation failed: %s", op, trimBody(httpErr.Body))
	case status == http.StatusInternalServerError:
		return build(InternalServerError, "%s internal server error: %s", op, trimBody(httpErr.Body))
	case status == http.StatusServiceUnavailable:
		return build(ServiceUnavailable, "%s service temporarily unavailable (HTTP 503).", op)
	}
	return build(GenericApiError, "%s API failed with status %d: %s", op, status, trimBody(httpErr.Body))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func trimBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return "(empty body)"
	}
	if len(body) > maxBodyInMessage {
		return body[:maxBodyInMessage] + "..."
	}
	return body
}
