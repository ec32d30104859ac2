// Package gwerr defines the typed error kinds the gateway surfaces to
// clients, per spec.md §7. Every kind carries the HTTP status it maps to
// and renders through the same {error:{message,type,code}} envelope.
package gwerr

import (
	"net/http"

	"github.com/Laisky/errors/v2"
)

// Kind identifies one of the error kinds from spec.md §7.
type Kind string

const (
	KindClientMalformed   Kind = "client_malformed"
	KindUnauthorized      Kind = "unauthorized"
	KindUpstreamTransient Kind = "upstream_transient"
	KindPoolExhausted     Kind = "pool_exhausted"
	KindInternalBug       Kind = "internal_bug"
)

// Error is a typed gateway error carrying the HTTP status and error kind
// needed to build the client-facing envelope.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, status int, message string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Message: message, cause: cause}
}

// ClientMalformed wraps a 400/404-class input error. Never retried.
func ClientMalformed(status int, message string) *Error {
	if status == 0 {
		status = http.StatusBadRequest
	}
	return newErr(KindClientMalformed, status, message, nil)
}

// Unauthorized wraps a 401/403-class auth error. Never retried.
func Unauthorized(status int, message string) *Error {
	if status == 0 {
		status = http.StatusUnauthorized
	}
	return newErr(KindUnauthorized, status, message, nil)
}

// UpstreamTransient wraps a non-2xx or transport failure from upstream.
// In pool mode the caller retries with the next credential; in
// passthrough mode it is returned verbatim.
func UpstreamTransient(status int, message string, cause error) *Error {
	if status == 0 {
		status = http.StatusBadGateway
	}
	return newErr(KindUpstreamTransient, status, message, cause)
}

// PoolExhausted signals the retry budget was consumed without a 2xx.
func PoolExhausted(message string) *Error {
	return newErr(KindPoolExhausted, http.StatusServiceUnavailable, message, nil)
}

// InternalBug wraps an unexpected failure inside a translator or the
// stream transformer.
func InternalBug(err error) *Error {
	return newErr(KindInternalBug, http.StatusInternalServerError, "internal error", err)
}

// Wrap annotates err with additional context using Laisky/errors,
// preserving *Error-ness when err already is one.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Envelope is the wire shape rendered for every gateway error response.
type Envelope struct {
	Error EnvelopeBody `json:"error"`
}

// EnvelopeBody is the nested body of Envelope.
type EnvelopeBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// ToEnvelope renders any error into the client-facing envelope and status
// code. Non-*Error values are treated as InternalBug.
func ToEnvelope(err error) (int, Envelope) {
	var ge *Error
	if !errors.As(err, &ge) {
		ge = InternalBug(err)
	}
	return ge.Status, Envelope{Error: EnvelopeBody{
		Message: ge.Error(),
		Type:    string(ge.Kind),
		Code:    string(ge.Kind),
	}}
}
