package jsbridge_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/jsbridge"
)

func TestEncodeDirEntries(t *testing.T) {
	entries := []fileservice.DirEntry{
		{Name: "a", Kind: fileservice.FileKind, Size: 3},
		{Name: "b", Kind: fileservice.DirKind},
	}
	out := jsbridge.EncodeDirEntries(entries)
	require.Equal(t, []jsbridge.DirEntryJSON{
		{Name: "a", Kind: "file", Size: 3},
		{Name: "b", Kind: "dir", Size: 0},
	}, out)
}

func TestEncodeMetadata(t *testing.T) {
	md := fileservice.Metadata{Kind: fileservice.FileKind, Size: 10, Modified: 42, ReadOnly: true}
	out := jsbridge.EncodeMetadata(md)
	require.Equal(t, jsbridge.MetadataJSON{Kind: "file", Size: 10, Modified: 42, ReadOnly: true}, out)
}

func TestEncodeErrorFromFserr(t *testing.T) {
	err := fserr.New("open", "/missing", fserr.NotFound)
	out := jsbridge.EncodeError(err)
	require.Equal(t, "not found", out.Kind)
	require.Equal(t, "open", out.Op)
	require.Equal(t, "/missing", out.Path)
}

func TestEncodeErrorFromPlainError(t *testing.T) {
	out := jsbridge.EncodeError(assertErr{})
	require.Equal(t, "i/o error", out.Kind)
	require.Empty(t, out.Op)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestMarshalDirEntriesProducesJSON(t *testing.T) {
	data, err := jsbridge.MarshalDirEntries([]fileservice.DirEntry{{Name: "x", Kind: fileservice.FileKind, Size: 1}})
	require.NoError(t, err)
	require.JSONEq(t, `[{"name":"x","kind":"file","size":1}]`, string(data))
}
