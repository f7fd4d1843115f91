package fserr

// Kind identifies the category of a filesystem failure. Kind values are
// themselves errors so they can be used directly as errors.Is targets:
//
//	if errors.Is(err, fserr.NotFound) { ... }
type Kind string

// Error implements the error interface so a bare Kind can be returned or
// compared on its own, without constructing a full *Error.
func (k Kind) Error() string { return string(k) }

const (
	// NotFound indicates the path does not exist, or is tombstoned in a
	// CowFs overlay.
	NotFound Kind = "not found"

	// AlreadyExists indicates the target of a create/mkdir/rename already
	// exists.
	AlreadyExists Kind = "already exists"

	// NotADirectory indicates a directory operation was attempted on a
	// file.
	NotADirectory Kind = "not a directory"

	// IsDirectory indicates a file operation was attempted on a
	// directory.
	IsDirectory Kind = "is a directory"

	// DirectoryNotEmpty indicates Remove was attempted on a non-empty
	// directory.
	DirectoryNotEmpty Kind = "directory not empty"

	// ReadOnly indicates a mutation was attempted against an immutable
	// service or handle.
	ReadOnly Kind = "read-only"

	// InvalidArgument indicates a malformed path, contradictory open
	// flags, a cross-service rename, or a rename into one's own
	// subtree.
	InvalidArgument Kind = "invalid argument"

	// IO indicates a lower-level failure surfaced by a producer/consumer
	// closure (FuncFs) or an external backing service.
	IO Kind = "i/o error"
)
