// Package errs carries SoupDB's error-kind taxonomy across package
// boundaries (parser, page file, buffer manager, executor).
//
// What: a small closed set of error kinds, each wrapping an optional
// message and cause.
// How: *Error implements the standard error interface and Unwrap, and is
// built/inspected with github.com/pkg/errors so every kind also carries a
// stack trace at the point it was wrapped, giving a caller both a concrete
// Kind to branch on and a trace for diagnostics.
// Why: the parser, page I/O layer, and executor each need to signal
// distinct failure categories (parse vs I/O vs "stub not implemented yet")
// without each package inventing its own sentinel error values.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind is one of the closed set of error categories.
type Kind int

const (
	// NotYetImplemented marks an operation that reached a stub command path.
	NotYetImplemented Kind = iota
	// TypeError is a semantic type mismatch.
	TypeError
	// IoError is a filesystem or page-io failure.
	IoError
	// ParseError is a grammar failure, incomplete input, or trailing
	// unparsed content.
	ParseError
	// Custom is an escape hatch for anything not covered above.
	Custom
)

func (k Kind) String() string {
	switch k {
	case NotYetImplemented:
		return "NotYetImplemented"
	case TypeError:
		return "TypeError"
	case IoError:
		return "IoError"
	case ParseError:
		return "ParseError"
	case Custom:
		return "Custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is SoupDB's tagged error value.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error of the given kind with a formatted message.
func New(kind Kind, format string, a ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// Wrap builds an *Error of the given kind around an existing cause, with a
// stack trace attached via github.com/pkg/errors.
func Wrap(kind Kind, cause error, format string, a ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...), Err: errors.WithStack(cause)}
}

// NotImplemented is shorthand for the stub-dispatch case every executor
// command path not yet given a real implementation returns.
func NotImplemented(what string) *Error {
	return New(NotYetImplemented, "%s is not yet implemented", what)
}

// Is reports whether err is a SoupDB *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if se, ok := err.(*Error); ok {
			e = se
			break
		}
		err = errors.Unwrap(err)
	}
	return e != nil && e.Kind == kind
}
