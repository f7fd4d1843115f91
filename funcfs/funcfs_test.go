package funcfs_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/funcfs"
)

// FuncFs mixes read-only, write-only, and read-write entries, so it does
// not fit either branch of the shared conformance suite (which assumes a
// service is either fully mutable or uniformly read-only); it is
// exercised here with bespoke tests instead.

func TestReadOnlyEntryRejectsWrite(t *testing.T) {
	f := funcfs.NewBuilder().
		ReadOnlyEntry("/clock/now", func() ([]byte, error) { return []byte("12:00"), nil }).
		Build()

	h, err := f.Open("/clock/now", fileservice.ReadOnly())
	require.NoError(t, err)
	data, err := io.ReadAll(h)
	require.NoError(t, err)
	require.Equal(t, "12:00", string(data))
	require.NoError(t, h.Close())

	_, err = f.Open("/clock/now", fileservice.OpenFlags{Write: true})
	require.True(t, errors.Is(err, fserr.InvalidArgument))
}

func TestWriteOnlyEntryRejectsRead(t *testing.T) {
	var received []byte
	f := funcfs.NewBuilder().
		WriteOnlyEntry("/ctl/command", func(data []byte) error {
			received = data
			return nil
		}).
		Build()

	_, err := f.Open("/ctl/command", fileservice.ReadOnly())
	require.True(t, errors.Is(err, fserr.InvalidArgument))

	h, err := f.Open("/ctl/command", fileservice.OpenFlags{Write: true})
	require.NoError(t, err)
	_, err = h.Write([]byte("stop"))
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.Equal(t, "stop", string(received))
}

func TestReadWriteEntryRoundTrip(t *testing.T) {
	store := []byte("initial")
	f := funcfs.NewBuilder().
		ReadWriteEntry("/config/name",
			func() ([]byte, error) { return store, nil },
			func(data []byte) error { store = append([]byte(nil), data...); return nil },
		).
		Build()

	h, err := f.Open("/config/name", fileservice.OpenFlags{Read: true, Write: true})
	require.NoError(t, err)
	_, err = h.Write([]byte("renamed"))
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.Equal(t, "renamed", string(store))
}

func TestDirectoriesDerivedFromRegisteredPaths(t *testing.T) {
	f := funcfs.NewBuilder().
		ReadOnlyEntry("/proc/1/status", func() ([]byte, error) { return nil, nil }).
		ReadOnlyEntry("/proc/2/status", func() ([]byte, error) { return nil, nil }).
		Build()

	md, err := f.Stat("/proc")
	require.NoError(t, err)
	require.Equal(t, fileservice.DirKind, md.Kind)

	entries, err := f.ReadDir("/proc")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = f.ReadDir("/proc/1")
	require.NoError(t, err)
	require.Equal(t, []fileservice.DirEntry{{Name: "status", Kind: fileservice.FileKind}}, entries)

	_, err = f.Open("/proc", fileservice.ReadOnly())
	require.True(t, errors.Is(err, fserr.IsDirectory))
}

func TestTreeMutationAlwaysReadOnly(t *testing.T) {
	f := funcfs.NewBuilder().
		ReadOnlyEntry("/x", func() ([]byte, error) { return nil, nil }).
		Build()

	require.True(t, errors.Is(f.Mkdir("/y"), fserr.ReadOnly))
	require.True(t, errors.Is(f.Remove("/x"), fserr.ReadOnly))
	require.True(t, errors.Is(f.Rename("/x", "/y"), fserr.ReadOnly))
}

func TestUnregisteredPathNotFound(t *testing.T) {
	f := funcfs.NewBuilder().Build()
	_, err := f.Open("/nope", fileservice.ReadOnly())
	require.True(t, errors.Is(err, fserr.NotFound))
}
