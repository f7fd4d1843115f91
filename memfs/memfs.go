// Package memfs implements a mutable, in-memory fileservice.Service with
// full read/write/create/remove/rename support.
//
// Storage is delegated to github.com/go-git/go-billy/v5's in-memory
// filesystem the same way a billy.Filesystem adapter wraps
// billy.Filesystem — but where a passthrough adapter hands billy.File
// straight through as an fs.File, MemFs interposes
// fileservice.BufferedHandle so every open honors the buffer/dirty/
// write-back handle contract instead of a passthrough stream. A single
// RWMutex at the service root serializes structural operations
// regardless of any concurrency billy.Filesystem itself provides.
package memfs

import (
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/pathutil"
)

// MemFs is a mutable, in-memory fileservice.Service.
type MemFs struct {
	mu  sync.RWMutex
	bfs billy.Filesystem
	log *slog.Logger
}

// Option configures a MemFs at construction time.
type Option func(*MemFs)

// WithLogger overrides the default slog.Default() logger used for
// diagnostic messages (currently: none are emitted directly by MemFs,
// but handles created by it log swallowed flush errors through this
// logger).
func WithLogger(log *slog.Logger) Option {
	return func(m *MemFs) { m.log = log }
}

// New returns an empty MemFs.
func New(opts ...Option) *MemFs {
	m := &MemFs{bfs: memfs.New(), log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemFs) normalize(op, p string) (string, error) {
	np, err := pathutil.Normalize(p)
	if err != nil {
		return "", fserr.Wrap(op, p, fserr.InvalidArgument, err)
	}
	return np, nil
}

// Open implements fileservice.Service.
func (m *MemFs) Open(path string, flags fileservice.OpenFlags) (fileservice.Handle, error) {
	p, err := m.normalize("open", path)
	if err != nil {
		return nil, err
	}
	if reason := flags.Validate(); reason != "" {
		return nil, fserr.New("open", p, fserr.InvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	info, statErr := m.bfs.Stat(p)
	switch {
	case statErr == nil && info.IsDir():
		return nil, fserr.New("open", p, fserr.IsDirectory)
	case statErr == nil:
		// existing file
		if flags.Truncate {
			if err := m.writeAllLocked(p, nil); err != nil {
				return nil, fserr.Wrap("open", p, fserr.IO, err)
			}
		}
	case !flags.Create:
		return nil, fserr.New("open", p, fserr.NotFound)
	default:
		parent := pathutil.Parent(p)
		if parent != "" {
			if pinfo, perr := m.bfs.Stat(parent); perr != nil {
				return nil, fserr.New("open", p, fserr.NotFound)
			} else if !pinfo.IsDir() {
				return nil, fserr.New("open", p, fserr.NotADirectory)
			}
		}
		if err := m.writeAllLocked(p, nil); err != nil {
			return nil, fserr.Wrap("open", p, fserr.IO, err)
		}
	}

	data, err := m.readAllLocked(p)
	if err != nil {
		return nil, fserr.Wrap("open", p, fserr.IO, err)
	}

	writeback := func(newData []byte) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.writeAllLocked(p, newData)
	}
	return fileservice.NewHandle(p, data, flags, writeback, m.log), nil
}

// ReadDir implements fileservice.Service.
func (m *MemFs) ReadDir(path string) ([]fileservice.DirEntry, error) {
	p, err := m.normalize("readdir", path)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if p != pathutil.Root {
		info, err := m.bfs.Stat(p)
		if err != nil {
			return nil, fserr.New("readdir", p, fserr.NotFound)
		}
		if !info.IsDir() {
			return nil, fserr.New("readdir", p, fserr.NotADirectory)
		}
	}

	infos, err := m.bfs.ReadDir(p)
	if err != nil {
		return nil, fserr.Wrap("readdir", p, fserr.IO, err)
	}
	entries := make([]fileservice.DirEntry, 0, len(infos))
	for _, info := range infos {
		kind := fileservice.FileKind
		size := uint64(info.Size())
		if info.IsDir() {
			kind = fileservice.DirKind
			size = 0
		}
		entries = append(entries, fileservice.DirEntry{Name: info.Name(), Kind: kind, Size: size})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat implements fileservice.Service.
func (m *MemFs) Stat(path string) (fileservice.Metadata, error) {
	p, err := m.normalize("stat", path)
	if err != nil {
		return fileservice.Metadata{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statLocked(p)
}

func (m *MemFs) statLocked(p string) (fileservice.Metadata, error) {
	info, err := m.bfs.Stat(p)
	if err != nil {
		return fileservice.Metadata{}, fserr.New("stat", p, fserr.NotFound)
	}
	kind := fileservice.FileKind
	size := uint64(info.Size())
	if info.IsDir() {
		kind = fileservice.DirKind
		size = 0
	}
	return fileservice.Metadata{Kind: kind, Size: size, Modified: info.ModTime().Unix()}, nil
}

// Mkdir implements fileservice.Service.
func (m *MemFs) Mkdir(path string) error {
	p, err := m.normalize("mkdir", path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.bfs.Stat(p); err == nil {
		return fserr.New("mkdir", p, fserr.AlreadyExists)
	}
	parent := pathutil.Parent(p)
	if parent != "" {
		pinfo, err := m.bfs.Stat(parent)
		if err != nil {
			return fserr.New("mkdir", p, fserr.NotFound)
		}
		if !pinfo.IsDir() {
			return fserr.New("mkdir", p, fserr.NotADirectory)
		}
	}
	if err := m.bfs.MkdirAll(p, 0o755); err != nil {
		return fserr.Wrap("mkdir", p, fserr.IO, err)
	}
	return nil
}

// Remove implements fileservice.Service.
func (m *MemFs) Remove(path string) error {
	p, err := m.normalize("remove", path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	info, err := m.bfs.Stat(p)
	if err != nil {
		return fserr.New("remove", p, fserr.NotFound)
	}
	if info.IsDir() {
		children, err := m.bfs.ReadDir(p)
		if err != nil {
			return fserr.Wrap("remove", p, fserr.IO, err)
		}
		if len(children) > 0 {
			return fserr.New("remove", p, fserr.DirectoryNotEmpty)
		}
	}
	if err := m.bfs.Remove(p); err != nil {
		return fserr.Wrap("remove", p, fserr.IO, err)
	}
	return nil
}

// Rename implements fileservice.Service.
func (m *MemFs) Rename(from, to string) error {
	f, err := m.normalize("rename", from)
	if err != nil {
		return err
	}
	t, err := m.normalize("rename", to)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.bfs.Stat(f); err != nil {
		return fserr.New("rename", f, fserr.NotFound)
	}
	if pathutil.HasPrefix(t, f) {
		return fserr.New("rename", f, fserr.InvalidArgument)
	}
	if _, err := m.bfs.Stat(t); err == nil {
		return fserr.New("rename", t, fserr.AlreadyExists)
	}
	if err := m.bfs.Rename(f, t); err != nil {
		return fserr.Wrap("rename", f, fserr.IO, err)
	}
	return nil
}

// readAllLocked reads the full contents of an existing file. Caller must
// hold m.mu.
func (m *MemFs) readAllLocked(p string) ([]byte, error) {
	f, err := m.bfs.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// writeAllLocked replaces the full contents of p, creating it if absent.
// Caller must hold m.mu.
func (m *MemFs) writeAllLocked(p string, data []byte) error {
	f, err := m.bfs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.Write(data)
	return err
}

var _ fileservice.Service = (*MemFs)(nil)
