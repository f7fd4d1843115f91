package fserr

import "fmt"

// Error is the concrete error type returned by every OANIX file service
// operation. It is private in spirit (construct only through New/Wrap) but
// exported so callers can errors.As into it to inspect Op and Path.
type Error struct {
	// Op is the operation that failed, e.g. "open", "readdir", "rename".
	Op string

	// Path is the path the operation was acting on. For two-path
	// operations (rename), this is the "to" path when the destination
	// already exists (AlreadyExists) and the "from" path otherwise; the
	// message names only this one path.
	Path string

	// Kind categorizes the failure for programmatic handling.
	Kind Kind

	// Cause is the underlying error, if any (e.g. a FuncFs producer's
	// error). May be nil.
	Cause error
}

// New constructs an *Error with no wrapped cause.
func New(op, path string, kind Kind) *Error {
	return &Error{Op: op, Path: path, Kind: kind}
}

// Wrap constructs an *Error that wraps cause, classified as kind.
// cause is stored unchanged, even when it is itself an *Error; the
// result then carries both frames, and Error() includes the inner
// message after the outer Op/Path/Kind.
func Wrap(op, path string, kind Kind, cause error) *Error {
	return &Error{Op: op, Path: path, Kind: kind, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
}

// Unwrap returns the wrapped cause, enabling errors.As to reach deeper
// error chains (e.g. a FuncFs producer's own error).
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is the Kind this error is classified as,
// enabling errors.Is(err, fserr.NotFound) without exposing Kind equality
// checks at every call site.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}
