package namespace_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/oanix/fileservice"
	"github.com/OpenAgentsInc/oanix/fserr"
	"github.com/OpenAgentsInc/oanix/fstest"
	"github.com/OpenAgentsInc/oanix/mapfs"
	"github.com/OpenAgentsInc/oanix/memfs"
	"github.com/OpenAgentsInc/oanix/namespace"
)

func TestBuildRequiresRootMount(t *testing.T) {
	_, err := namespace.NewBuilder().Mount("/data", memfs.New()).Build()
	require.Error(t, err)
}

func TestConformance(t *testing.T) {
	fstest.TestSuite(t, func() fileservice.Service {
		ns, err := namespace.NewBuilder().Mount("/", memfs.New()).Build()
		require.NoError(t, err)
		return ns
	}, fstest.Config{})
}

func TestLongestPrefixWins(t *testing.T) {
	root := memfs.New()
	data := mapfs.NewBuilder(0).File("/readme", []byte("from data mount")).Build()

	ns, err := namespace.NewBuilder().
		Mount("/", root).
		Mount("/data", data).
		Build()
	require.NoError(t, err)

	h, err := ns.Open("/data/readme", fileservice.ReadOnly())
	require.NoError(t, err)
	content, err := io.ReadAll(h)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.Equal(t, "from data mount", string(content))

	_, err = ns.Open("/data/readme", fileservice.OpenFlags{Write: true})
	require.True(t, errors.Is(err, fserr.ReadOnly))
}

func TestReadDirSynthesizesMountPoint(t *testing.T) {
	root := memfs.New()
	data := mapfs.NewBuilder(0).File("/a", nil).Build()

	ns, err := namespace.NewBuilder().
		Mount("/", root).
		Mount("/data", data).
		Build()
	require.NoError(t, err)

	entries, err := ns.ReadDir("/")
	require.NoError(t, err)
	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name] = true
	}
	require.True(t, names["data"])
}

func TestErrorPathIsRewrittenToFullPath(t *testing.T) {
	ns, err := namespace.NewBuilder().
		Mount("/", memfs.New()).
		Mount("/data", mapfs.NewBuilder(0).Build()).
		Build()
	require.NoError(t, err)

	_, statErr := ns.Stat("/data/missing")
	require.True(t, errors.Is(statErr, fserr.NotFound))

	var fe *fserr.Error
	require.True(t, errors.As(statErr, &fe))
	require.Equal(t, "/data/missing", fe.Path)
}

func TestRenameAcrossMountsRejected(t *testing.T) {
	root := memfs.New()
	require.NoError(t, root.Mkdir("/tmp"))
	ns, err := namespace.NewBuilder().
		Mount("/", root).
		Mount("/data", mapfs.NewBuilder(0).File("/x", []byte("x")).Build()).
		Build()
	require.NoError(t, err)

	err = ns.Rename("/data/x", "/tmp/x")
	require.True(t, errors.Is(err, fserr.InvalidArgument))
}

func TestMountsReportsSortedPrefixes(t *testing.T) {
	ns, err := namespace.NewBuilder().
		Mount("/", memfs.New()).
		Mount("/b", memfs.New()).
		Mount("/a", memfs.New()).
		Build()
	require.NoError(t, err)
	require.Equal(t, []string{"/", "/a", "/b"}, ns.Mounts())
}
