// Package fserr provides the structured error taxonomy shared by every
// OANIX file service: a small, closed set of Kind values plus a concrete
// error type that carries the failing operation and path, wraps an
// optional underlying cause, and is compatible with errors.Is/errors.As.
//
// Callers should never compare error strings. Use errors.Is against the
// Kind sentinel values (NotFound, AlreadyExists, ...) or errors.As to
// recover the *Error and inspect Op/Path/Kind directly.
package fserr
