// Package fstest provides a shared conformance test suite for validating
// fileservice.Service implementations against the common contract every
// provider must honor. It mirrors the shape of fs/fstest: a TestSuite
// function that any provider's own _test.go calls with a factory for a
// fresh instance.
package fstest

import (
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
)

// Config describes behavioral characteristics of the service under test
// so the shared suite can skip assertions that do not apply.
type Config struct {
	// ReadOnly means every mutating operation must fail fserr.ReadOnly.
	// When true, the suite runs only the root-directory check and the
	// P7-style mutation-rejection assertions.
	ReadOnly bool

	// Seed is called with the fresh service before the read-only
	// assertions run. Required (non-nil) when ReadOnly is true. The
	// read-only assertions depend on no particular file, so a Seed that
	// does nothing is valid for a service built with its content.
	Seed func(t *testing.T, svc fileservice.Service)
}

// TestSuite runs the full battery of assertions appropriate to cfg
// against a fresh service returned by newSvc for each sub-test.
func TestSuite(t *testing.T, newSvc func() fileservice.Service, cfg Config) {
	t.Run("RootIsDirectory", func(t *testing.T) { testRootIsDirectory(t, newSvc()) })

	if cfg.ReadOnly {
		t.Run("ReadOnlyRejectsMutation", func(t *testing.T) {
			svc := newSvc()
			require.NotNil(t, cfg.Seed, "ReadOnly config requires Seed")
			cfg.Seed(t, svc)
			testReadOnlyRejectsMutation(t, svc)
		})
		return
	}

	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newSvc()) })
	t.Run("DirectoryConsistency", func(t *testing.T) { testDirectoryConsistency(t, newSvc()) })
	t.Run("LexicographicOrder", func(t *testing.T) { testLexicographicOrder(t, newSvc()) })
	t.Run("RemoveThenNotFound", func(t *testing.T) { testRemoveThenNotFound(t, newSvc()) })
	t.Run("RemoveNonEmptyDirFails", func(t *testing.T) { testRemoveNonEmptyDirFails(t, newSvc()) })
	t.Run("RenameMovesEntry", func(t *testing.T) { testRenameMovesEntry(t, newSvc()) })
	t.Run("OpenMissingWithoutCreateFails", func(t *testing.T) { testOpenMissingWithoutCreateFails(t, newSvc()) })
	t.Run("MkdirMissingParentFails", func(t *testing.T) { testMkdirMissingParentFails(t, newSvc()) })
}

func testRootIsDirectory(t *testing.T, svc fileservice.Service) {
	md, err := svc.Stat("/")
	require.NoError(t, err)
	require.Equal(t, fileservice.DirKind, md.Kind)

	_, err = svc.ReadDir("/")
	require.NoError(t, err)
}

func testRoundTrip(t *testing.T, svc fileservice.Service) {
	require.NoError(t, svc.Mkdir("/a"))

	h, err := svc.Open("/a/x", fileservice.WriteCreate(false))
	require.NoError(t, err)
	_, err = h.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, h.Flush())
	require.NoError(t, h.Close())

	md, err := svc.Stat("/a/x")
	require.NoError(t, err)
	require.Equal(t, fileservice.FileKind, md.Kind)
	require.Equal(t, uint64(5), md.Size)

	rh, err := svc.Open("/a/x", fileservice.ReadOnly())
	require.NoError(t, err)
	data, err := io.ReadAll(rh)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
	require.NoError(t, rh.Close())
}

func testDirectoryConsistency(t *testing.T, svc fileservice.Service) {
	require.NoError(t, svc.Mkdir("/d"))
	for _, name := range []string{"/d/a", "/d/b"} {
		h, err := svc.Open(name, fileservice.WriteCreate(false))
		require.NoError(t, err)
		_, err = h.Write([]byte(name))
		require.NoError(t, err)
		require.NoError(t, h.Close())
	}

	entries, err := svc.ReadDir("/d")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		md, err := svc.Stat("/d/" + e.Name)
		require.NoError(t, err)
		require.Equal(t, e.Kind, md.Kind)
		require.Equal(t, e.Size, md.Size)
	}
}

func testLexicographicOrder(t *testing.T, svc fileservice.Service) {
	for _, name := range []string{"/c", "/a", "/b"} {
		h, err := svc.Open(name, fileservice.WriteCreate(false))
		require.NoError(t, err)
		require.NoError(t, h.Close())
	}
	entries, err := svc.ReadDir("/")
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	require.True(t, sort.StringsAreSorted(names))
}

func testRemoveThenNotFound(t *testing.T, svc fileservice.Service) {
	h, err := svc.Open("/f", fileservice.WriteCreate(false))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	require.NoError(t, svc.Remove("/f"))
	_, err = svc.Stat("/f")
	require.True(t, errors.Is(err, fserr.NotFound))
}

func testRemoveNonEmptyDirFails(t *testing.T, svc fileservice.Service) {
	require.NoError(t, svc.Mkdir("/nd"))
	h, err := svc.Open("/nd/child", fileservice.WriteCreate(false))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	err = svc.Remove("/nd")
	require.True(t, errors.Is(err, fserr.DirectoryNotEmpty))
}

func testRenameMovesEntry(t *testing.T, svc fileservice.Service) {
	h, err := svc.Open("/old", fileservice.WriteCreate(false))
	require.NoError(t, err)
	_, err = h.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, h.Close())

	require.NoError(t, svc.Rename("/old", "/new"))
	_, err = svc.Stat("/old")
	require.True(t, errors.Is(err, fserr.NotFound))
	md, err := svc.Stat("/new")
	require.NoError(t, err)
	require.Equal(t, uint64(1), md.Size)
}

func testOpenMissingWithoutCreateFails(t *testing.T, svc fileservice.Service) {
	_, err := svc.Open("/nope", fileservice.ReadOnly())
	require.True(t, errors.Is(err, fserr.NotFound))
}

func testMkdirMissingParentFails(t *testing.T, svc fileservice.Service) {
	err := svc.Mkdir("/missing/child")
	require.True(t, errors.Is(err, fserr.NotFound))
}

func testReadOnlyRejectsMutation(t *testing.T, svc fileservice.Service) {
	_, err := svc.Open("/anything", fileservice.WriteCreate(false))
	require.True(t, errors.Is(err, fserr.ReadOnly))

	err = svc.Mkdir("/anything")
	require.True(t, errors.Is(err, fserr.ReadOnly))

	err = svc.Remove("/anything")
	require.True(t, errors.Is(err, fserr.ReadOnly))

	err = svc.Rename("/a", "/b")
	require.True(t, errors.Is(err, fserr.ReadOnly))
}
