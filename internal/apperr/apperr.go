package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a moderation error. Handlers map kinds to HTTP status
// codes; services construct errors through the helpers below instead of
// keeping per-module error state.
type Kind int

const (
	KindValidation Kind = iota
	KindPermission
	KindNotFound
	KindParse
	KindAmbiguousMatch
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPermission:
		return "permission"
	case KindNotFound:
		return "not_found"
	case KindParse:
		return "parse"
	case KindAmbiguousMatch:
		return "ambiguous_match"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a typed domain error with a human-readable message meant to be
// shown inline at the call site.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports empty, too-long or non-printable input.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// Permission reports an actor that is not allowed to perform the operation.
func Permission(format string, args ...any) *Error {
	return newError(KindPermission, format, args...)
}

// NotFound reports a row that no longer exists or was never selected.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// Parse reports rendered text that does not match the expected shape.
func Parse(format string, args ...any) *Error {
	return newError(KindParse, format, args...)
}

// Ambiguous reports a natural-key lookup matching more than one row.
func Ambiguous(format string, args ...any) *Error {
	return newError(KindAmbiguousMatch, format, args...)
}

// Conflict reports a concurrent mutation detected by the version check.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
