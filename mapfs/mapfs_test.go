package mapfs_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/fstest"
	"github.com/OpenAgentsInc/oanix/mapfs"
)

func build() *mapfs.MapFs {
	return mapfs.NewBuilder(1700000000).File("/readme", []byte("hi")).Build()
}

func TestConformance(t *testing.T) {
	fstest.TestSuite(t, func() fileservice.Service { return build() }, fstest.Config{
		ReadOnly: true,
		Seed:     func(t *testing.T, svc fileservice.Service) {},
	})
}

func TestReadOnlyRejectsWriteMkdirRemove(t *testing.T) {
	m := build()

	h, err := m.Open("/readme", fileservice.ReadOnly())
	require.NoError(t, err)
	data, err := io.ReadAll(h)
	require.NoError(t, err)
	require.Equal(t, "hi", string(data))
	require.NoError(t, h.Close())

	_, err = m.Open("/readme", fileservice.OpenFlags{Write: true})
	require.True(t, errors.Is(err, fserr.ReadOnly))

	err = m.Remove("/readme")
	require.True(t, errors.Is(err, fserr.ReadOnly))

	err = m.Mkdir("/x")
	require.True(t, errors.Is(err, fserr.ReadOnly))
}

func TestBuilderAutoCreatesParents(t *testing.T) {
	m := mapfs.NewBuilder(0).File("/a/b/c.txt", []byte("x")).Build()

	md, err := m.Stat("/a")
	require.NoError(t, err)
	require.Equal(t, fileservice.DirKind, md.Kind)

	md, err = m.Stat("/a/b")
	require.NoError(t, err)
	require.Equal(t, fileservice.DirKind, md.Kind)

	entries, err := m.ReadDir("/a/b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "c.txt", entries[0].Name)
}
