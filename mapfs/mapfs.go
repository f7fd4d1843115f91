// Package mapfs implements an immutable, read-only fileservice.Service
// built once via a Builder. Every mutating operation fails
// fserr.ReadOnly, and Open only honors read-only flag sets.
//
// MapFs is grounded on fs/billy's functional-options New* constructors,
// generalized here into a dedicated Builder since MapFs needs to accept
// an arbitrary number of files/directories rather than a fixed option
// set, and is the read-only companion to memfs.MemFs that cowfs
// composes on top of as a base layer.
package mapfs

import (
	"log/slog"
	"sort"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/pathutil"
)

type node struct {
	isDir    bool
	data     []byte
	modified int64
}

// MapFs is an immutable, read-only fileservice.Service.
type MapFs struct {
	nodes map[string]*node // canonical path -> node, root "/" excluded (handled specially)
	log   *slog.Logger
}

// Builder accumulates files and directories for a single MapFs.
type Builder struct {
	nodes map[string]*node
	now   int64
}

// NewBuilder returns an empty Builder. modified is the modification
// timestamp (epoch seconds) stamped on every file added via File.
func NewBuilder(modified int64) *Builder {
	return &Builder{nodes: map[string]*node{}, now: modified}
}

// Dir registers path as a directory, auto-creating any missing ancestor
// directories.
func (b *Builder) Dir(path string) *Builder {
	p := pathutil.MustNormalize(path)
	b.ensureDir(p)
	return b
}

// File registers path as a file with the given contents, auto-creating
// any missing ancestor directories.
func (b *Builder) File(path string, data []byte) *Builder {
	p := pathutil.MustNormalize(path)
	parent := pathutil.Parent(p)
	if parent != "" {
		b.ensureDir(parent)
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	b.nodes[p] = &node{data: buf, modified: b.now}
	return b
}

func (b *Builder) ensureDir(p string) {
	if p == pathutil.Root {
		return
	}
	if n, ok := b.nodes[p]; ok {
		n.isDir = true
		return
	}
	if parent := pathutil.Parent(p); parent != "" {
		b.ensureDir(parent)
	}
	b.nodes[p] = &node{isDir: true, modified: b.now}
}

// Build finalizes the Builder into an immutable MapFs. The Builder
// remains usable but further mutation does not affect the returned
// MapFs.
func (b *Builder) Build(opts ...Option) *MapFs {
	nodes := make(map[string]*node, len(b.nodes))
	for k, v := range b.nodes {
		cp := *v
		nodes[k] = &cp
	}
	m := &MapFs{nodes: nodes, log: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Option configures a MapFs at Build time.
type Option func(*MapFs)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *MapFs) { m.log = log }
}

func (m *MapFs) lookup(p string) (*node, bool) {
	if p == pathutil.Root {
		return &node{isDir: true}, true
	}
	n, ok := m.nodes[p]
	return n, ok
}

// Open implements fileservice.Service. Only read-only flag sets are
// accepted; any flag that could mutate (write/create/truncate/append)
// fails fserr.ReadOnly.
func (m *MapFs) Open(path string, flags fileservice.OpenFlags) (fileservice.Handle, error) {
	p, err := normalize("open", path)
	if err != nil {
		return nil, err
	}
	if flags.Write || flags.Create || flags.Truncate || flags.Append {
		return nil, fserr.New("open", p, fserr.ReadOnly)
	}
	if reason := flags.Validate(); reason != "" {
		return nil, fserr.New("open", p, fserr.InvalidArgument)
	}

	n, ok := m.lookup(p)
	if !ok {
		return nil, fserr.New("open", p, fserr.NotFound)
	}
	if n.isDir {
		return nil, fserr.New("open", p, fserr.IsDirectory)
	}
	return fileservice.NewHandle(p, n.data, flags, nil, m.log), nil
}

// ReadDir implements fileservice.Service.
func (m *MapFs) ReadDir(path string) ([]fileservice.DirEntry, error) {
	p, err := normalize("readdir", path)
	if err != nil {
		return nil, err
	}
	n, ok := m.lookup(p)
	if !ok {
		return nil, fserr.New("readdir", p, fserr.NotFound)
	}
	if !n.isDir {
		return nil, fserr.New("readdir", p, fserr.NotADirectory)
	}

	var entries []fileservice.DirEntry
	for childPath, child := range m.nodes {
		if pathutil.Parent(childPath) != p {
			continue
		}
		_, name := pathutil.Split(childPath)
		kind := fileservice.FileKind
		size := uint64(len(child.data))
		if child.isDir {
			kind = fileservice.DirKind
			size = 0
		}
		entries = append(entries, fileservice.DirEntry{Name: name, Kind: kind, Size: size})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat implements fileservice.Service.
func (m *MapFs) Stat(path string) (fileservice.Metadata, error) {
	p, err := normalize("stat", path)
	if err != nil {
		return fileservice.Metadata{}, err
	}
	n, ok := m.lookup(p)
	if !ok {
		return fileservice.Metadata{}, fserr.New("stat", p, fserr.NotFound)
	}
	kind := fileservice.FileKind
	size := uint64(len(n.data))
	if n.isDir {
		kind = fileservice.DirKind
		size = 0
	}
	return fileservice.Metadata{Kind: kind, Size: size, Modified: n.modified, ReadOnly: true}, nil
}

// Mkdir implements fileservice.Service; always fails fserr.ReadOnly.
func (m *MapFs) Mkdir(path string) error {
	p, _ := normalize("mkdir", path)
	return fserr.New("mkdir", p, fserr.ReadOnly)
}

// Remove implements fileservice.Service; always fails fserr.ReadOnly.
func (m *MapFs) Remove(path string) error {
	p, _ := normalize("remove", path)
	return fserr.New("remove", p, fserr.ReadOnly)
}

// Rename implements fileservice.Service; always fails fserr.ReadOnly.
func (m *MapFs) Rename(from, to string) error {
	p, _ := normalize("rename", from)
	return fserr.New("rename", p, fserr.ReadOnly)
}

func normalize(op, p string) (string, error) {
	np, err := pathutil.Normalize(p)
	if err != nil {
		return "", fserr.Wrap(op, p, fserr.InvalidArgument, err)
	}
	return np, nil
}

var _ fileservice.Service = (*MapFs)(nil)
