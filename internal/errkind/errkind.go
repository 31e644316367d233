// Package errkind classifies failures so callers can branch on what went
// wrong instead of matching error strings. Nothing here is fatal to the
// process: every kind degrades to "fewer items reported this run".
package errkind

import (
	"errors"
	"fmt"
)

// Kind is the failure taxonomy.
type Kind int

const (
	// Transient covers network errors and timeouts; the source or stage is
	// retried on the next run.
	Transient Kind = iota + 1
	// Parse covers malformed documents that yielded zero usable entries.
	Parse
	// Unavailable covers missing models or credentials; the stage is skipped
	// until the operator resolves it.
	Unavailable
	// Persistence covers ledger or cache write failures; in-memory state is
	// still used for the remainder of the run.
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Transient:
		return "transient"
	case Parse:
		return "parse"
	case Unavailable:
		return "unavailable"
	case Persistence:
		return "persistence"
	}
	return "unknown"
}

// Error pairs a wrapped cause with its kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error from a format string.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies an existing error. A nil err yields nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind == kind
	}
	return false
}

// Of returns the kind carried by err, or zero if it is unclassified.
func Of(err error) Kind {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return 0
}
