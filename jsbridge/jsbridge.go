// Package jsbridge defines the JSON-ready shapes and conversion
// functions a browser/JS binding would marshal across a syscall/js (or
// WASM import) boundary. No syscall/js binding lives here — that belongs
// to an external collaborator — this package is only the seam such a
// binding sits behind, decoupling fileservice's Go-native types from any
// particular wire encoding the browser side expects.
package jsbridge

import (
	"encoding/json"
	"errors"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
)

// DirEntryJSON is the wire shape of a fileservice.DirEntry.
type DirEntryJSON struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	Size uint64 `json:"size"`
}

// MetadataJSON is the wire shape of a fileservice.Metadata.
type MetadataJSON struct {
	Kind     string `json:"kind"`
	Size     uint64 `json:"size"`
	Modified int64  `json:"modified"`
	ReadOnly bool   `json:"readOnly"`
}

// ErrorJSON is the wire shape of a *fserr.Error, tagged with the error
// Kind's stable string name so browser-side code can branch on it
// without parsing the human-readable message.
type ErrorJSON struct {
	Kind string `json:"kind"`
	Op   string `json:"op"`
	Path string `json:"path"`
	Msg  string `json:"message"`
}

func kindString(k fileservice.Kind) string {
	if k == fileservice.DirKind {
		return "dir"
	}
	return "file"
}

// EncodeDirEntries converts a ReadDir result into its wire shape.
func EncodeDirEntries(entries []fileservice.DirEntry) []DirEntryJSON {
	out := make([]DirEntryJSON, len(entries))
	for i, e := range entries {
		out[i] = DirEntryJSON{Name: e.Name, Kind: kindString(e.Kind), Size: e.Size}
	}
	return out
}

// EncodeMetadata converts a Stat result into its wire shape.
func EncodeMetadata(md fileservice.Metadata) MetadataJSON {
	return MetadataJSON{
		Kind:     kindString(md.Kind),
		Size:     md.Size,
		Modified: md.Modified,
		ReadOnly: md.ReadOnly,
	}
}

// EncodeError converts any error returned by a fileservice.Service into
// its wire shape. Errors that are not a *fserr.Error are reported with
// Kind "i/o error" (the string of fserr.IO) and Op/Path left empty.
func EncodeError(err error) ErrorJSON {
	var fe *fserr.Error
	if errors.As(err, &fe) {
		return ErrorJSON{Kind: string(fe.Kind), Op: fe.Op, Path: fe.Path, Msg: fe.Error()}
	}
	return ErrorJSON{Kind: string(fserr.IO), Msg: err.Error()}
}

// MarshalDirEntries is a convenience wrapper around
// json.Marshal(EncodeDirEntries(entries)) for callers that just want
// bytes to hand across the boundary.
func MarshalDirEntries(entries []fileservice.DirEntry) ([]byte, error) {
	return json.Marshal(EncodeDirEntries(entries))
}
