// Package pathutil implements the path-normalization and longest-prefix
// matching rules shared by every OANIX file service: canonical absolute,
// slash-separated paths with no empty segments, no "." or ".." components,
// and no trailing slash except for the root itself.
package pathutil

import (
	"strings"

	"github.com/OpenAgentsInc/oanix/fserr"
)

// Root is the canonical form of the filesystem root.
const Root = "/"

// Normalize validates and canonicalizes an absolute, slash-separated path.
//
//   - "" or any path not starting with "/" fails InvalidArgument.
//   - Consecutive slashes collapse.
//   - "." segments are dropped.
//   - ".." segments pop the previous segment; popping past the root fails
//     InvalidArgument.
//   - The canonical root is "/"; every other canonical path has no
//     trailing slash.
func Normalize(p string) (string, error) {
	if p == "" || p[0] != '/' {
		return "", fserr.New("normalize", p, fserr.InvalidArgument)
	}

	segments := strings.Split(p, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", fserr.New("normalize", p, fserr.InvalidArgument)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, seg)
		}
	}

	if len(out) == 0 {
		return Root, nil
	}
	return "/" + strings.Join(out, "/"), nil
}

// MustNormalize is Normalize but panics on error. Intended for constant,
// compile-time-known paths (test fixtures, builder literals), never for
// caller-supplied input.
func MustNormalize(p string) string {
	out, err := Normalize(p)
	if err != nil {
		panic(err)
	}
	return out
}

// Split divides a canonical path into its parent directory and final
// element. Split("/") returns ("/", "").
func Split(p string) (dir, name string) {
	if p == Root {
		return Root, ""
	}
	idx := strings.LastIndexByte(p, '/')
	name = p[idx+1:]
	if idx == 0 {
		return Root, name
	}
	return p[:idx], name
}

// Segments splits a canonical path into its non-empty components.
// Segments("/") returns nil.
func Segments(p string) []string {
	if p == Root {
		return nil
	}
	return strings.Split(strings.TrimPrefix(p, "/"), "/")
}

// Join appends a canonical relative path fragment (no leading slash
// required) to a canonical absolute base, returning a canonical result.
func Join(base, elem string) string {
	if elem == "" {
		return base
	}
	if base == Root {
		return Root + strings.TrimPrefix(elem, "/")
	}
	return base + "/" + strings.TrimPrefix(elem, "/")
}

// HasPrefix reports whether prefix is a path-aligned prefix of p: either
// prefix equals p, or prefix is the root, or p continues immediately
// after prefix with a "/". This prevents a mount at "/foo" from
// capturing "/foobar".
func HasPrefix(p, prefix string) bool {
	if prefix == Root {
		return true
	}
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// TrimPrefix strips prefix from p (which must satisfy HasPrefix(p,
// prefix)) and returns the remainder as a canonical absolute path,
// prepending "/" when the remainder would otherwise be empty.
func TrimPrefix(p, prefix string) string {
	if prefix == Root {
		return p
	}
	rest := strings.TrimPrefix(p, prefix)
	if rest == "" {
		return Root
	}
	return rest
}

// Parent returns the canonical parent of p, or "" if p is the root.
func Parent(p string) string {
	dir, _ := Split(p)
	if p == Root {
		return ""
	}
	return dir
}
