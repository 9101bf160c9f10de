package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories the service distinguishes.
// Every error that crosses the orchestrator boundary is classified into
// exactly one kind; the kind decides the user-facing message.
type Kind string

const (
	KindLocationNotFound   Kind = "location_not_found"
	KindMapDataUnavailable Kind = "map_data_unavailable"
	KindAreaTooLarge       Kind = "area_too_large"
	KindRenderFailed       Kind = "render_failed"
	KindTimeout            Kind = "timeout"
	KindRateLimited        Kind = "rate_limited"
	KindAtCapacity         Kind = "at_capacity"
	KindNotFound           Kind = "not_found"
	KindAccessDenied       Kind = "access_denied"
	KindInternal           Kind = "internal"
)

// Error carries a failure kind together with an optional human message and
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given kind with a fixed message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf classifies an arbitrary error. Errors that do not carry a kind are
// treated as internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage returns the short actionable sentence shown to users for err.
// Errors constructed with an explicit message keep it; everything else falls
// back to the canonical sentence for the kind.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	switch KindOf(err) {
	case KindLocationNotFound:
		return "City not found — check the spelling or try adding a country"
	case KindMapDataUnavailable:
		return "Could not fetch street data — try a smaller distance or different city"
	case KindAreaTooLarge:
		return "Area too large — try a smaller distance"
	case KindRenderFailed:
		return "Poster rendering failed — please try again"
	case KindTimeout:
		return "Generation timed out — try a smaller distance"
	case KindRateLimited:
		return "Too many requests — please try again later"
	case KindAtCapacity:
		return "Server is at capacity — please try again later"
	case KindNotFound:
		return "Resource not found"
	case KindAccessDenied:
		return "Access denied"
	default:
		return "Something went wrong — please try again"
	}
}
