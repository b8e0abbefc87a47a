// Package apperr classifies the failures the client can run into so every
// caller can decide how to present them.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure class of an *Error.
type Kind string

const (
	// Authority is a 401 from the API. The gateway has already cleared the
	// session and redirected to the login view when a caller sees it.
	Authority Kind = "authority"
	// Validation is a local input failure caught before dispatch.
	Validation Kind = "validation"
	// NotFound is a 404 from the API.
	NotFound Kind = "not_found"
	// Remote covers every other HTTP failure and transport errors.
	Remote Kind = "remote"
)

// Error is the typed error returned across module boundaries.
type Error struct {
	Kind      Kind
	Status    int               // HTTP status, 0 for local or transport failures
	PublicMsg string            // message safe to show the operator
	Fields    map[string]string // per-field validation messages (optional)
	Err       error             // underlying cause (for logs)
}

func (e *Error) Error() string {
	switch {
	case e.PublicMsg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.PublicMsg, e.Err)
	case e.PublicMsg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.PublicMsg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// ── Constructors ─────────────────────────────────────────────────────────────

func AuthorityErr(publicMsg string) *Error {
	return &Error{Kind: Authority, Status: http.StatusUnauthorized, PublicMsg: publicMsg}
}

func ValidationErr(publicMsg string, fields map[string]string) *Error {
	return &Error{Kind: Validation, PublicMsg: publicMsg, Fields: fields}
}

// RemoteErr classifies a non-2xx response. A 404 becomes NotFound.
func RemoteErr(status int, publicMsg string) *Error {
	kind := Remote
	if status == http.StatusNotFound {
		kind = NotFound
	}
	return &Error{Kind: kind, Status: status, PublicMsg: publicMsg}
}

// TransportErr wraps a failure that never produced a response.
func TransportErr(err error) *Error {
	return &Error{Kind: Remote, Err: err}
}

// ── Inspection ───────────────────────────────────────────────────────────────

func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}

// PublicMessage returns the operator-facing text of err, or fallback when
// err carries none.
func PublicMessage(err error, fallback string) string {
	if ae, ok := As(err); ok && ae.PublicMsg != "" {
		return ae.PublicMsg
	}
	return fallback
}
