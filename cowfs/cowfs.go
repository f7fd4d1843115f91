// Package cowfs implements a copy-on-write overlay: a writable memfs.MemFs
// layered over an arbitrary read-only (or merely unmodified) base
// fileservice.Service. Reads are served from the overlay when present,
// falling back to the base; the first write to a base-resident file
// copies its full contents into the overlay ("copy-up") before the write
// proceeds, so the base is never mutated. Deletions of base-resident
// entries are recorded as tombstones rather than performed in place,
// since the base cannot be touched.
package cowfs

import (
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/memfs"
	"github.com/OpenAgentsInc/oanix/pathutil"
)

// CowFs is a copy-on-write fileservice.Service.
type CowFs struct {
	mu         sync.RWMutex
	base       fileservice.Service
	overlay    *memfs.MemFs
	tombstones map[string]bool
	log        *slog.Logger
}

// Option configures a CowFs at construction time.
type Option func(*CowFs)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *CowFs) { c.log = log }
}

// New layers a writable overlay over base, which is never mutated.
func New(base fileservice.Service, opts ...Option) *CowFs {
	c := &CowFs{
		base:       base,
		overlay:    memfs.New(),
		tombstones: map[string]bool{},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open implements fileservice.Service.
func (c *CowFs) Open(path string, flags fileservice.OpenFlags) (fileservice.Handle, error) {
	p, err := normalize("open", path)
	if err != nil {
		return nil, err
	}
	if reason := flags.Validate(); reason != "" {
		return nil, fserr.New("open", p, fserr.InvalidArgument)
	}

	if flags.Write {
		c.mu.Lock()
		defer c.mu.Unlock()
	} else {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}

	tomb := c.tombstones[p]

	if !tomb {
		// A write must not let the overlay create an empty file over a
		// base-resident one; creation happens only after the base check.
		ovFlags := flags
		if flags.Write {
			ovFlags.Create = false
		}
		h, err := c.overlay.Open(p, ovFlags)
		switch {
		case err == nil:
			return h, nil
		case !errors.Is(err, fserr.NotFound):
			return nil, err
		}
	}

	if !flags.Write {
		if tomb {
			return nil, fserr.New("open", p, fserr.NotFound)
		}
		return c.base.Open(p, flags)
	}

	if !tomb {
		md, err := c.base.Stat(p)
		switch {
		case err == nil:
			if md.Kind == fileservice.DirKind {
				return nil, fserr.New("open", p, fserr.IsDirectory)
			}
			if err := c.copyUpLocked(p); err != nil {
				return nil, err
			}
			return c.overlay.Open(p, flags)
		case !errors.Is(err, fserr.NotFound):
			return nil, err
		}
	}

	if !flags.Create {
		return nil, fserr.New("open", p, fserr.NotFound)
	}
	if parent := pathutil.Parent(p); parent != "" {
		if err := c.ensureOverlayDirLocked(parent); err != nil {
			return nil, err
		}
	}
	h, err := c.overlay.Open(p, flags)
	if err != nil {
		return nil, err
	}
	delete(c.tombstones, p)
	return h, nil
}

// copyUpLocked copies a base-resident file into the overlay. Callers
// must hold c.mu for writing and must have already established that the
// overlay does not yet have path and that it is not tombstoned.
func (c *CowFs) copyUpLocked(path string) error {
	c.log.Debug("copy-up", "path", path)
	rh, err := c.base.Open(path, fileservice.ReadOnly())
	if err != nil {
		return err
	}
	data, err := io.ReadAll(rh)
	_ = rh.Close()
	if err != nil {
		return fserr.Wrap("open", path, fserr.IO, err)
	}

	if parent := pathutil.Parent(path); parent != "" {
		if err := c.ensureOverlayDirLocked(parent); err != nil {
			return err
		}
	}
	wh, err := c.overlay.Open(path, fileservice.WriteCreate(true))
	if err != nil {
		return err
	}
	if _, err := wh.Write(data); err != nil {
		_ = wh.Close()
		return err
	}
	if err := wh.Flush(); err != nil {
		_ = wh.Close()
		return err
	}
	return wh.Close()
}

// ensureOverlayDirLocked mirrors a base directory (and its ancestors)
// into the overlay on demand, so writes and mkdirs below a base-only
// directory have somewhere to land without ever touching base. Callers
// must hold c.mu for writing.
func (c *CowFs) ensureOverlayDirLocked(path string) error {
	if path == pathutil.Root {
		return nil
	}
	if md, err := c.overlay.Stat(path); err == nil {
		if md.Kind != fileservice.DirKind {
			return fserr.New("mkdir", path, fserr.NotADirectory)
		}
		return nil
	}
	if parent := pathutil.Parent(path); parent != "" {
		if err := c.ensureOverlayDirLocked(parent); err != nil {
			return err
		}
	}
	if c.tombstones[path] {
		return fserr.New("mkdir", path, fserr.NotFound)
	}
	md, err := c.base.Stat(path)
	if err != nil {
		if errors.Is(err, fserr.NotFound) {
			return fserr.New("mkdir", path, fserr.NotFound)
		}
		return err
	}
	if md.Kind != fileservice.DirKind {
		return fserr.New("mkdir", path, fserr.NotADirectory)
	}
	return c.overlay.Mkdir(path)
}

// ReadDir implements fileservice.Service, merging overlay entries over
// base entries and omitting anything tombstoned.
func (c *CowFs) ReadDir(path string) ([]fileservice.DirEntry, error) {
	p, err := normalize("readdir", path)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readDirLocked(p)
}

func (c *CowFs) readDirLocked(p string) ([]fileservice.DirEntry, error) {
	if c.tombstones[p] {
		return nil, fserr.New("readdir", p, fserr.NotFound)
	}

	merged := map[string]fileservice.DirEntry{}
	haveDir := false

	if entries, err := c.overlay.ReadDir(p); err == nil {
		haveDir = true
		for _, e := range entries {
			merged[e.Name] = e
		}
	} else if !errors.Is(err, fserr.NotFound) {
		return nil, err
	}

	if entries, err := c.base.ReadDir(p); err == nil {
		haveDir = true
		for _, e := range entries {
			if c.tombstones[pathutil.Join(p, e.Name)] {
				continue
			}
			if _, overridden := merged[e.Name]; overridden {
				continue
			}
			merged[e.Name] = e
		}
	} else if !errors.Is(err, fserr.NotFound) && !haveDir {
		return nil, err
	}

	if !haveDir {
		return nil, fserr.New("readdir", p, fserr.NotFound)
	}

	out := make([]fileservice.DirEntry, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Stat implements fileservice.Service.
func (c *CowFs) Stat(path string) (fileservice.Metadata, error) {
	p, err := normalize("stat", path)
	if err != nil {
		return fileservice.Metadata{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statLocked(p)
}

func (c *CowFs) statLocked(p string) (fileservice.Metadata, error) {
	if p == pathutil.Root {
		return fileservice.Metadata{Kind: fileservice.DirKind}, nil
	}
	if c.tombstones[p] {
		return fileservice.Metadata{}, fserr.New("stat", p, fserr.NotFound)
	}
	if md, err := c.overlay.Stat(p); err == nil {
		return md, nil
	} else if !errors.Is(err, fserr.NotFound) {
		return fileservice.Metadata{}, err
	}
	return c.base.Stat(p)
}

// Mkdir implements fileservice.Service; directories are always created
// in the overlay, shadowing any base directory tree above them.
func (c *CowFs) Mkdir(path string) error {
	p, err := normalize("mkdir", path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if p == pathutil.Root {
		return fserr.New("mkdir", p, fserr.AlreadyExists)
	}

	tomb := c.tombstones[p]
	if !tomb {
		if _, err := c.statLocked(p); err == nil {
			return fserr.New("mkdir", p, fserr.AlreadyExists)
		} else if !errors.Is(err, fserr.NotFound) {
			return err
		}
	}

	parent := pathutil.Parent(p)
	if err := c.ensureOverlayDirLocked(parent); err != nil {
		return err
	}
	if err := c.overlay.Mkdir(p); err != nil {
		return err
	}
	delete(c.tombstones, p)
	return nil
}

// Remove implements fileservice.Service. Removing an overlay-only entry
// deletes it outright; removing anything with base coverage records a
// tombstone instead, since base itself is never mutated.
func (c *CowFs) Remove(path string) error {
	p, err := normalize("remove", path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tombstones[p] {
		return fserr.New("remove", p, fserr.NotFound)
	}

	if md, err := c.overlay.Stat(p); err == nil {
		if md.Kind == fileservice.DirKind {
			entries, err := c.readDirLocked(p)
			if err != nil {
				return err
			}
			if len(entries) > 0 {
				return fserr.New("remove", p, fserr.DirectoryNotEmpty)
			}
		}
		if err := c.overlay.Remove(p); err != nil {
			return err
		}
		if _, baseErr := c.base.Stat(p); baseErr == nil {
			c.log.Debug("tombstone recorded", "path", p)
			c.tombstones[p] = true
		}
		return nil
	} else if !errors.Is(err, fserr.NotFound) {
		return err
	}

	md, err := c.base.Stat(p)
	if err != nil {
		return err
	}
	if md.Kind == fileservice.DirKind {
		entries, err := c.readDirLocked(p)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return fserr.New("remove", p, fserr.DirectoryNotEmpty)
		}
	}
	c.log.Debug("tombstone recorded", "path", p)
	c.tombstones[p] = true
	return nil
}

// Rename implements fileservice.Service. Overlay-resident entries move
// within the overlay; base-only files are copied up and the base path is
// tombstoned. Renaming a base-only directory is not supported (it would
// require recursively copying an unbounded base subtree) and fails
// InvalidArgument; callers needing that must copy the directory's files
// individually.
func (c *CowFs) Rename(from, to string) error {
	pf, err := normalize("rename", from)
	if err != nil {
		return err
	}
	pt, err := normalize("rename", to)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if pathutil.HasPrefix(pt, pf) {
		return fserr.New("rename", pf, fserr.InvalidArgument)
	}
	if _, err := c.statLocked(pt); err == nil {
		return fserr.New("rename", pt, fserr.AlreadyExists)
	} else if !errors.Is(err, fserr.NotFound) {
		return err
	}
	if c.tombstones[pf] {
		return fserr.New("rename", pf, fserr.NotFound)
	}

	if _, err := c.overlay.Stat(pf); err == nil {
		if newParent := pathutil.Parent(pt); newParent != "" {
			if err := c.ensureOverlayDirLocked(newParent); err != nil {
				return err
			}
		}
		if err := c.overlay.Rename(pf, pt); err != nil {
			return err
		}
		if _, baseErr := c.base.Stat(pf); baseErr == nil {
			c.log.Debug("tombstone recorded", "path", pf)
			c.tombstones[pf] = true
		}
		delete(c.tombstones, pt)
		return nil
	} else if !errors.Is(err, fserr.NotFound) {
		return err
	}

	md, err := c.base.Stat(pf)
	if err != nil {
		return err
	}
	if md.Kind == fileservice.DirKind {
		return fserr.New("rename", pf, fserr.InvalidArgument)
	}
	if err := c.copyUpLocked(pf); err != nil {
		return err
	}
	if newParent := pathutil.Parent(pt); newParent != "" {
		if err := c.ensureOverlayDirLocked(newParent); err != nil {
			return err
		}
	}
	if err := c.overlay.Rename(pf, pt); err != nil {
		return err
	}
	c.log.Debug("tombstone recorded", "path", pf)
	c.tombstones[pf] = true
	delete(c.tombstones, pt)
	return nil
}

func normalize(op, p string) (string, error) {
	np, err := pathutil.Normalize(p)
	if err != nil {
		return "", fserr.Wrap(op, p, fserr.InvalidArgument, err)
	}
	return np, nil
}

var _ fileservice.Service = (*CowFs)(nil)
