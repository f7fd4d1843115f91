// Package namespace composes multiple fileservice.Service instances into
// a single virtual tree via a mount table: each mount binds an absolute
// path prefix to a backing Service, and every operation dispatches to the
// mount whose prefix is the longest match for the requested path (the
// Plan 9 "union mount" resolution rule, without the union — exactly one
// Service answers for any given path).
package namespace

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/pathutil"
)

type mount struct {
	prefix string
	svc    fileservice.Service
}

// Namespace is a mount-table fileservice.Service. Paths presented to a
// Namespace are the full virtual path; each mount's backing Service only
// ever sees the path with its prefix stripped.
type Namespace struct {
	mounts []mount // sorted by descending prefix length
	log    *slog.Logger
}

// Builder accumulates mounts before a single Build call.
type Builder struct {
	mounts map[string]fileservice.Service
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{mounts: map[string]fileservice.Service{}}
}

// Mount binds prefix to svc. Mounting the same prefix twice replaces the
// earlier binding.
func (b *Builder) Mount(prefix string, svc fileservice.Service) *Builder {
	b.mounts[pathutil.MustNormalize(prefix)] = svc
	return b
}

// Option configures a Namespace at Build time.
type Option func(*Namespace)

// WithLogger overrides the default slog.Default() logger.
func WithLogger(log *slog.Logger) Option {
	return func(n *Namespace) { n.log = log }
}

// Build finalizes the Builder into a Namespace. A mount at "/" is
// required so every path resolves to some Service.
func (b *Builder) Build(opts ...Option) (*Namespace, error) {
	if _, ok := b.mounts[pathutil.Root]; !ok {
		return nil, errors.New("namespace: no mount registered at \"/\"")
	}
	mounts := make([]mount, 0, len(b.mounts))
	for prefix, svc := range b.mounts {
		mounts = append(mounts, mount{prefix: prefix, svc: svc})
	}
	sort.Slice(mounts, func(i, j int) bool { return len(mounts[i].prefix) > len(mounts[j].prefix) })

	ns := &Namespace{mounts: mounts, log: slog.Default()}
	for _, opt := range opts {
		opt(ns)
	}
	return ns, nil
}

// resolve returns the mount covering p and the path relative to that
// mount's own root. Since "/" is always mounted, resolution never fails.
func (ns *Namespace) resolve(p string) (mount, string) {
	for _, m := range ns.mounts {
		if pathutil.HasPrefix(p, m.prefix) {
			ns.log.Debug("mount selected", "prefix", m.prefix, "path", p)
			return m, pathutil.TrimPrefix(p, m.prefix)
		}
	}
	// unreachable: Build guarantees a "/" mount, which matches everything.
	return mount{prefix: pathutil.Root, svc: ns.mounts[len(ns.mounts)-1].svc}, p
}

// Mounts reports the registered mount points, sorted ascending.
func (ns *Namespace) Mounts() []string {
	out := make([]string, len(ns.mounts))
	for i, m := range ns.mounts {
		out[i] = m.prefix
	}
	sort.Strings(out)
	return out
}

// Open implements fileservice.Service.
func (ns *Namespace) Open(path string, flags fileservice.OpenFlags) (fileservice.Handle, error) {
	p, err := normalize("open", path)
	if err != nil {
		return nil, err
	}
	m, rel := ns.resolve(p)
	h, err := m.svc.Open(rel, flags)
	if err != nil {
		return nil, rewritePath(err, p)
	}
	return h, nil
}

// ReadDir implements fileservice.Service. Entries from the owning mount
// are merged with a one-segment synthetic directory entry for every
// other mount point whose immediate parent is path, so descendant mounts
// remain visible even when the owning mount's own backing store has no
// real entry for that name.
func (ns *Namespace) ReadDir(path string) ([]fileservice.DirEntry, error) {
	p, err := normalize("readdir", path)
	if err != nil {
		return nil, err
	}
	m, rel := ns.resolve(p)

	merged := map[string]fileservice.DirEntry{}
	var baseErr error
	haveDir := false
	if entries, err := m.svc.ReadDir(rel); err == nil {
		haveDir = true
		for _, e := range entries {
			merged[e.Name] = e
		}
	} else {
		baseErr = err
	}

	for _, mm := range ns.mounts {
		if mm.prefix == pathutil.Root {
			continue
		}
		if pathutil.Parent(mm.prefix) != p {
			continue
		}
		_, name := pathutil.Split(mm.prefix)
		merged[name] = fileservice.DirEntry{Name: name, Kind: fileservice.DirKind}
		haveDir = true
	}

	if !haveDir {
		return nil, rewritePath(baseErr, p)
	}

	out := make([]fileservice.DirEntry, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Stat implements fileservice.Service.
func (ns *Namespace) Stat(path string) (fileservice.Metadata, error) {
	p, err := normalize("stat", path)
	if err != nil {
		return fileservice.Metadata{}, err
	}
	m, rel := ns.resolve(p)
	md, err := m.svc.Stat(rel)
	if err != nil {
		return fileservice.Metadata{}, rewritePath(err, p)
	}
	return md, nil
}

// Mkdir implements fileservice.Service.
func (ns *Namespace) Mkdir(path string) error {
	p, err := normalize("mkdir", path)
	if err != nil {
		return err
	}
	m, rel := ns.resolve(p)
	if err := m.svc.Mkdir(rel); err != nil {
		return rewritePath(err, p)
	}
	return nil
}

// Remove implements fileservice.Service.
func (ns *Namespace) Remove(path string) error {
	p, err := normalize("remove", path)
	if err != nil {
		return err
	}
	m, rel := ns.resolve(p)
	if err := m.svc.Remove(rel); err != nil {
		return rewritePath(err, p)
	}
	return nil
}

// Rename implements fileservice.Service. Renaming across two different
// mounts is not supported, since the underlying Services cannot move
// bytes between themselves; it fails InvalidArgument.
func (ns *Namespace) Rename(from, to string) error {
	pf, err := normalize("rename", from)
	if err != nil {
		return err
	}
	pt, err := normalize("rename", to)
	if err != nil {
		return err
	}
	mf, relFrom := ns.resolve(pf)
	mt, relTo := ns.resolve(pt)
	if mf.prefix != mt.prefix {
		return fserr.New("rename", pf, fserr.InvalidArgument)
	}
	if err := mf.svc.Rename(relFrom, relTo); err != nil {
		if errors.Is(err, fserr.AlreadyExists) {
			return rewritePath(err, pt)
		}
		return rewritePath(err, pf)
	}
	return nil
}

// rewritePath replaces a *fserr.Error's Path with the full virtual path,
// since the backing Service only ever saw the mount-relative path.
func rewritePath(err error, fullPath string) error {
	var fe *fserr.Error
	if errors.As(err, &fe) {
		return fserr.Wrap(fe.Op, fullPath, fe.Kind, fe.Cause)
	}
	return err
}

func normalize(op, p string) (string, error) {
	np, err := pathutil.Normalize(p)
	if err != nil {
		return "", fserr.Wrap(op, p, fserr.InvalidArgument, err)
	}
	return np, nil
}

var _ fileservice.Service = (*Namespace)(nil)
