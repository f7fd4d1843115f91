package fileservice_test

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/oanix/fileservice"
)

func TestHandleRoundTrip(t *testing.T) {
	var committed []byte
	h := fileservice.NewHandle("/a/x", nil, fileservice.OpenFlags{Read: true, Write: true, Create: true},
		func(data []byte) error { committed = data; return nil }, nil)

	n, err := h.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	require.NoError(t, h.Flush())
	require.Equal(t, []byte("hello"), committed)

	_, err = h.Seek(0, io.SeekStart)
	require.NoError(t, err)

	buf := make([]byte, 16)
	n, err = h.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestHandleFlushIsIdempotentWithoutWrite(t *testing.T) {
	calls := 0
	h := fileservice.NewHandle("/a/x", nil, fileservice.WriteCreate(false),
		func(data []byte) error { calls++; return nil }, nil)

	_, err := h.Write([]byte("a"))
	require.NoError(t, err)
	require.NoError(t, h.Flush())
	require.NoError(t, h.Flush())
	require.Equal(t, 1, calls)
}

func TestHandleReadOnlyRejectsWrite(t *testing.T) {
	h := fileservice.NewHandle("/a/x", []byte("data"), fileservice.ReadOnly(), nil, nil)
	_, err := h.Write([]byte("x"))
	require.Error(t, err)
}

func TestHandleWriteOnlyRejectsRead(t *testing.T) {
	h := fileservice.NewHandle("/a/x", nil, fileservice.OpenFlags{Write: true}, func([]byte) error { return nil }, nil)
	_, err := h.Read(make([]byte, 1))
	require.Error(t, err)
}

func TestHandleAppendForcesCursorToEnd(t *testing.T) {
	var committed []byte
	h := fileservice.NewHandle("/a/x", []byte("abc"), fileservice.OpenFlags{Write: true, Append: true},
		func(data []byte) error { committed = data; return nil }, nil)

	_, err := h.Write([]byte("def"))
	require.NoError(t, err)
	require.NoError(t, h.Flush())
	require.Equal(t, "abcdef", string(committed))
}

func TestHandleSeekPastEndThenWriteZeroFills(t *testing.T) {
	var committed []byte
	h := fileservice.NewHandle("/a/x", []byte("ab"), fileservice.OpenFlags{Read: true, Write: true},
		func(data []byte) error { committed = data; return nil }, nil)

	_, err := h.Seek(4, io.SeekStart)
	require.NoError(t, err)
	_, err = h.Write([]byte("z"))
	require.NoError(t, err)
	require.NoError(t, h.Flush())
	require.Equal(t, []byte{'a', 'b', 0, 0, 'z'}, committed)
}

func TestHandleCloseSwallowsWriteBackError(t *testing.T) {
	h := fileservice.NewHandle("/a/x", nil, fileservice.WriteCreate(false),
		func([]byte) error { return io.ErrClosedPipe }, nil)

	_, err := h.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, h.Close())
}

func TestOpenFlagsValidate(t *testing.T) {
	require.Equal(t, "", fileservice.ReadOnly().Validate())
	require.Equal(t, "", fileservice.WriteCreate(true).Validate())
	require.NotEqual(t, "", fileservice.OpenFlags{}.Validate())
	require.NotEqual(t, "", fileservice.OpenFlags{Truncate: true, Read: true}.Validate())
	require.NotEqual(t, "", fileservice.OpenFlags{Append: true, Read: true}.Validate())
}
