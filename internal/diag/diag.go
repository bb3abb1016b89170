// Package diag defines the diagnostic taxonomy shared by every stage of the
// graph-to-derivation pipeline: parsing, validation, and emission all raise
// errors through this package so a caller can distinguish a malformed input
// from an internal inconsistency without string-matching error text.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a diagnostic. Every fatal error produced by this module
// carries exactly one Kind; UnresolvableSource is the only Kind that may
// also be raised as a non-fatal warning.
type Kind int

const (
	// InputMalformed means the input JSON was not valid JSON, or did not
	// match the unit-graph schema.
	InputMalformed Kind = iota
	// GraphInconsistent means the JSON parsed but violates a structural
	// invariant: a dangling index, an unpaired build script, a bad root.
	GraphInconsistent
	// UnknownVariant means a union-typed field held a value this module
	// does not recognize and has no documented alias for.
	UnknownVariant
	// UnresolvableSource means a source path fell outside the workspace
	// and did not match the registry vendoring pattern.
	UnresolvableSource
)

func (k Kind) String() string {
	switch k {
	case InputMalformed:
		return "InputMalformed"
	case GraphInconsistent:
		return "GraphInconsistent"
	case UnknownVariant:
		return "UnknownVariant"
	case UnresolvableSource:
		return "UnresolvableSource"
	default:
		return "Unknown"
	}
}

// Error is a taxonomy-tagged diagnostic. It wraps an underlying cause
// (which may itself carry a pkg/errors stack) and names the offending
// field or unit index so the message is actionable without a debugger.
type Error struct {
	Kind    Kind
	Subject string // offending field name, unit index, or pkg_id
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Subject, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a taxonomy error with no wrapped cause.
func New(kind Kind, subject string) *Error {
	return &Error{Kind: kind, Subject: subject}
}

// Wrap attaches a taxonomy and subject to an existing error, preserving its
// stack trace via pkg/errors.
func Wrap(kind Kind, subject string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Subject: subject, cause: errors.WithStack(cause)}
}

// Wrapf is Wrap with a formatted subject.
func Wrapf(kind Kind, cause error, format string, args ...any) *Error {
	return Wrap(kind, fmt.Sprintf(format, args...), cause)
}

// Is reports whether err is a *Error of the given Kind, unwrapping as
// needed.
func Is(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}
