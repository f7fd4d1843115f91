// Package fileservice defines the contract every OANIX file service and
// file handle must satisfy: the Service/Handle interfaces, the
// OpenFlags/DirEntry/Metadata value types, and the shared buffered-handle
// machinery that concrete services (memfs, mapfs, funcfs, cowfs) build
// their handles on top of.
package fileservice

import "io"

// Kind distinguishes a file entry from a directory entry.
type Kind int

const (
	// FileKind marks a leaf, byte-addressable entry.
	FileKind Kind = iota
	// DirKind marks an interior, container entry.
	DirKind
)

// String renders Kind for logging and test failure messages.
func (k Kind) String() string {
	if k == DirKind {
		return "dir"
	}
	return "file"
}

// DirEntry describes one child returned by ReadDir. Size is always 0 for
// directories.
type DirEntry struct {
	Name string
	Kind Kind
	Size uint64
}

// Metadata describes a single path returned by Stat.
type Metadata struct {
	Kind     Kind
	Size     uint64
	Modified int64 // epoch seconds
	ReadOnly bool
}

// OpenFlags controls how Open behaves.
type OpenFlags struct {
	Read     bool
	Write    bool
	Create   bool
	Truncate bool
	Append   bool
}

// ReadOnly returns the canonical flag set for reading an existing file.
func ReadOnly() OpenFlags { return OpenFlags{Read: true} }

// WriteCreate returns the canonical flag set for creating (or truncating,
// via the truncate argument) a file for writing.
func WriteCreate(truncate bool) OpenFlags {
	return OpenFlags{Write: true, Create: true, Truncate: truncate}
}

// Validate checks the flag combination for internal contradictions,
// independent of anything about the target path: truncate requires
// write, and at least one of read/write must be set. It returns a
// human-readable reason, or "" if the flags are consistent; callers wrap
// the reason into a *fserr.Error carrying their own Op/Path.
func (f OpenFlags) Validate() string {
	switch {
	case !f.Read && !f.Write:
		return "at least one of read or write must be set"
	case f.Truncate && !f.Write:
		return "truncate requires write"
	case f.Append && !f.Write:
		return "append requires write"
	default:
		return ""
	}
}

// Service is the capability set exposed by every OANIX file service. All
// paths passed to a Service are canonical and relative to that service's
// own root; the Namespace is responsible for stripping mount prefixes
// before dispatch.
type Service interface {
	// Open returns a Handle bound to this service for path, honoring
	// flags.
	Open(path string, flags OpenFlags) (Handle, error)

	// ReadDir lists the direct children of path, sorted ascending by
	// byte-wise name.
	ReadDir(path string) ([]DirEntry, error)

	// Stat returns metadata for path.
	Stat(path string) (Metadata, error)

	// Mkdir creates path as a directory; its parent must already exist.
	Mkdir(path string) error

	// Remove deletes the file or empty directory at path.
	Remove(path string) error

	// Rename moves from to to within this service.
	Rename(from, to string) error
}

// Handle is a position-tracked, owned view over a single open file. Seek
// follows io.Seeker's whence values (io.SeekStart/Current/End).
type Handle interface {
	io.Reader
	io.Writer
	io.Seeker

	// Flush commits buffered writes back to the owning service if the
	// handle is dirty. A second Flush with no intervening write is a
	// no-op.
	Flush() error

	// Close is a best-effort Flush: any write-back error is logged, not
	// returned. Callers that need to observe a write-back failure must
	// call Flush explicitly before Close.
	Close() error
}
