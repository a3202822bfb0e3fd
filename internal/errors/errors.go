// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so commands can decide how to present a failure
// without string matching.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// PersistenceFailed indicates the credential store could not be written.
	PersistenceFailed Kind = "persistence_failed"
	// RemoteFailed indicates the backend rejected or could not complete a request.
	RemoteFailed Kind = "remote_failed"
	// InvalidCallback indicates a login callback URL could not be used.
	InvalidCallback Kind = "invalid_callback"
	// LoginCancelled indicates the browser login finished without credentials.
	LoginCancelled Kind = "login_cancelled"
	// NotAuthenticated indicates an operation needs a signed-in user.
	NotAuthenticated Kind = "not_authenticated"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// Is reports whether any error in err's chain is an *E of the given kind.
func Is(err error, kind Kind) bool {
	var e *E
	for err != nil {
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
