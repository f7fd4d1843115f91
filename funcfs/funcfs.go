// Package funcfs implements a fileservice.Service whose files are
// logical entries backed by caller-supplied producer/consumer closures
// rather than stored bytes. Directories are derived implicitly from the
// set of registered file paths, computed once at Build time and cached.
package funcfs

import (
	"log/slog"
	"sort"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/pathutil"
)

// Producer computes a file's content on open (or on stat, to report
// size). It is invoked fresh on every call; FuncFs never caches results.
type Producer func() ([]byte, error)

// Consumer receives a file's full written content on flush.
type Consumer func(data []byte) error

type entry struct {
	producer Producer
	consumer Consumer
}

func (e *entry) readable() bool { return e.producer != nil }
func (e *entry) writable() bool { return e.consumer != nil }

// FuncFs is a computed-content fileservice.Service.
type FuncFs struct {
	entries map[string]*entry // canonical path -> entry
	dirs    map[string]bool   // canonical path -> derived directory
	log     *slog.Logger
}

// Builder registers FuncFs entries before a single Build call.
type Builder struct {
	entries map[string]*entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entries: map[string]*entry{}}
}

// ReadOnlyEntry registers path as a read-only file: producer supplies
// content on every open; writes fail InvalidArgument.
func (b *Builder) ReadOnlyEntry(path string, producer Producer) *Builder {
	b.entries[pathutil.MustNormalize(path)] = &entry{producer: producer}
	return b
}

// WriteOnlyEntry registers path as a write-only file: consumer receives
// content on flush; reads fail InvalidArgument.
func (b *Builder) WriteOnlyEntry(path string, consumer Consumer) *Builder {
	b.entries[pathutil.MustNormalize(path)] = &entry{consumer: consumer}
	return b
}

// ReadWriteEntry registers path as a file supporting both directions.
func (b *Builder) ReadWriteEntry(path string, producer Producer, consumer Consumer) *Builder {
	b.entries[pathutil.MustNormalize(path)] = &entry{producer: producer, consumer: consumer}
	return b
}

// Option configures a FuncFs at Build time.
type Option func(*FuncFs)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *FuncFs) { f.log = log }
}

// Build finalizes the Builder, computing and caching the derived
// directory set once.
func (b *Builder) Build(opts ...Option) *FuncFs {
	entries := make(map[string]*entry, len(b.entries))
	dirs := map[string]bool{}
	for path, e := range b.entries {
		entries[path] = e
		for parent := pathutil.Parent(path); parent != ""; parent = pathutil.Parent(parent) {
			dirs[parent] = true
		}
	}
	f := &FuncFs{entries: entries, dirs: dirs, log: slog.Default()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open implements fileservice.Service.
func (f *FuncFs) Open(path string, flags fileservice.OpenFlags) (fileservice.Handle, error) {
	p, err := normalize("open", path)
	if err != nil {
		return nil, err
	}
	if reason := flags.Validate(); reason != "" {
		return nil, fserr.New("open", p, fserr.InvalidArgument)
	}
	if f.dirs[p] || p == pathutil.Root {
		return nil, fserr.New("open", p, fserr.IsDirectory)
	}
	e, ok := f.entries[p]
	if !ok {
		return nil, fserr.New("open", p, fserr.NotFound)
	}
	if flags.Read && !e.readable() {
		return nil, fserr.New("open", p, fserr.InvalidArgument)
	}
	if flags.Write && !e.writable() {
		return nil, fserr.New("open", p, fserr.InvalidArgument)
	}

	var initial []byte
	if flags.Read {
		data, err := e.producer()
		if err != nil {
			return nil, fserr.Wrap("open", p, fserr.IO, err)
		}
		initial = data
	}

	var writeback fileservice.WriteBack
	if e.writable() {
		writeback = func(data []byte) error {
			if err := e.consumer(data); err != nil {
				return fserr.Wrap("flush", p, fserr.IO, err)
			}
			return nil
		}
	}
	return fileservice.NewHandle(p, initial, flags, writeback, f.log), nil
}

// ReadDir implements fileservice.Service.
func (f *FuncFs) ReadDir(path string) ([]fileservice.DirEntry, error) {
	p, err := normalize("readdir", path)
	if err != nil {
		return nil, err
	}
	if p != pathutil.Root && !f.dirs[p] {
		if _, ok := f.entries[p]; ok {
			return nil, fserr.New("readdir", p, fserr.NotADirectory)
		}
		return nil, fserr.New("readdir", p, fserr.NotFound)
	}

	seen := map[string]fileservice.DirEntry{}
	for path := range f.entries {
		if pathutil.Parent(path) != p {
			continue
		}
		_, name := pathutil.Split(path)
		seen[name] = fileservice.DirEntry{Name: name, Kind: fileservice.FileKind}
	}
	for dir := range f.dirs {
		if pathutil.Parent(dir) != p {
			continue
		}
		_, name := pathutil.Split(dir)
		seen[name] = fileservice.DirEntry{Name: name, Kind: fileservice.DirKind}
	}

	entries := make([]fileservice.DirEntry, 0, len(seen))
	for _, e := range seen {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat implements fileservice.Service. For a file entry's Size, the
// producer is invoked once (discarding the result) since FuncFs never
// stores content; a write-only entry reports size 0.
func (f *FuncFs) Stat(path string) (fileservice.Metadata, error) {
	p, err := normalize("stat", path)
	if err != nil {
		return fileservice.Metadata{}, err
	}
	if p == pathutil.Root || f.dirs[p] {
		return fileservice.Metadata{Kind: fileservice.DirKind}, nil
	}
	e, ok := f.entries[p]
	if !ok {
		return fileservice.Metadata{}, fserr.New("stat", p, fserr.NotFound)
	}
	size := uint64(0)
	if e.readable() {
		data, err := e.producer()
		if err != nil {
			return fileservice.Metadata{}, fserr.Wrap("stat", p, fserr.IO, err)
		}
		size = uint64(len(data))
	}
	return fileservice.Metadata{Kind: fileservice.FileKind, Size: size, ReadOnly: !e.writable()}, nil
}

// Mkdir implements fileservice.Service; the tree is fixed at Build time.
func (f *FuncFs) Mkdir(path string) error {
	p, _ := normalize("mkdir", path)
	return fserr.New("mkdir", p, fserr.ReadOnly)
}

// Remove implements fileservice.Service; the tree is fixed at Build time.
func (f *FuncFs) Remove(path string) error {
	p, _ := normalize("remove", path)
	return fserr.New("remove", p, fserr.ReadOnly)
}

// Rename implements fileservice.Service; the tree is fixed at Build time.
func (f *FuncFs) Rename(from, to string) error {
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

var _ fileservice.Service = (*FuncFs)(nil)
