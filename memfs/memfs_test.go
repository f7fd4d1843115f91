package memfs_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fstest"
	"github.com/OpenAgentsInc/oanix/memfs"
)

func TestConformance(t *testing.T) {
	fstest.TestSuite(t, func() fileservice.Service { return memfs.New() }, fstest.Config{})
}

func TestMkdirWriteReadRoundTrip(t *testing.T) {
	m := memfs.New()

	require.NoError(t, m.Mkdir("/a"))

	h, err := m.Open("/a/x", fileservice.WriteCreate(false))
	require.NoError(t, err)
	n, err := h.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.NoError(t, h.Flush())
	require.NoError(t, h.Close())

	md, err := m.Stat("/a/x")
	require.NoError(t, err)
	require.Equal(t, fileservice.FileKind, md.Kind)
	require.Equal(t, uint64(5), md.Size)

	entries, err := m.ReadDir("/a")
	require.NoError(t, err)
	require.Equal(t, []fileservice.DirEntry{{Name: "x", Kind: fileservice.FileKind, Size: 5}}, entries)

	rh, err := m.Open("/a/x", fileservice.ReadOnly())
	require.NoError(t, err)
	data, err := io.ReadAll(rh)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
	require.NoError(t, rh.Close())
}

func TestTruncateOnOpen(t *testing.T) {
	m := memfs.New()
	h, err := m.Open("/x", fileservice.WriteCreate(false))
	require.NoError(t, err)
	_, err = h.Write([]byte("0123456789"))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	h2, err := m.Open("/x", fileservice.WriteCreate(true))
	require.NoError(t, err)
	md, err := m.Stat("/x")
	require.NoError(t, err)
	require.Equal(t, uint64(0), md.Size)
	require.NoError(t, h2.Close())
}

func TestRenameIntoOwnSubtreeFails(t *testing.T) {
	m := memfs.New()
	require.NoError(t, m.Mkdir("/a"))
	require.NoError(t, m.Mkdir("/a/b"))

	err := m.Rename("/a", "/a/b/c")
	require.Error(t, err)
}

func TestInvalidPathRejected(t *testing.T) {
	m := memfs.New()
	_, err := m.Open("relative", fileservice.ReadOnly())
	require.Error(t, err)

	_, err = m.Open("/a/../../b", fileservice.ReadOnly())
	require.Error(t, err)
}
