// Package wasipreopen provides the enumerate/stream surface an external
// WASI runtime bridge needs to mirror a Namespace's mount table and a
// Service's tree: it lists mount points and walks a service's contents
// into a deterministic manifest. It is deliberately a thin surface, not
// a WASI runtime or preopen implementation — it exists so a bridge can
// be built without this module depending on a WASM toolchain.
package wasipreopen

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/namespace"
	"github.com/OpenAgentsInc/oanix/pathutil"
)

// Mounts returns ns's mount prefixes, sorted ascending, the candidate set
// a WASI bridge would offer the guest as preopens.
func Mounts(ns *namespace.Namespace) []string {
	return ns.Mounts()
}

// Stream walks svc's tree depth-first from "/" and writes one line per
// entry to w: "kind\tsize\tpath". Directories are visited before their
// children, children are visited in sorted order, so two calls over an
// unchanged tree always produce byte-identical output.
func Stream(ctx context.Context, svc fileservice.Service, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := streamDir(ctx, svc, pathutil.Root, bw); err != nil {
		return err
	}
	return bw.Flush()
}

func streamDir(ctx context.Context, svc fileservice.Service, dir string, w *bufio.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	md, err := svc.Stat(dir)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", md.Kind, md.Size, dir); err != nil {
		return err
	}

	entries, err := svc.ReadDir(dir)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	for _, e := range entries {
		child := pathutil.Join(dir, e.Name)
		if e.Kind == fileservice.DirKind {
			if err := streamDir(ctx, svc, child, w); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\t%d\t%s\n", e.Kind, e.Size, child); err != nil {
			return err
		}
	}
	return nil
}
