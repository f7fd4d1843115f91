package fserr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/OpenAgentsInc/oanix/fserr"
)

func TestNew(t *testing.T) {
	err := fserr.New("stat", "/a/x", fserr.NotFound)

	require.Equal(t, "stat /a/x: not found", err.Error())
	require.True(t, errors.Is(err, fserr.NotFound))
	require.False(t, errors.Is(err, fserr.AlreadyExists))
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fserr.Wrap("open", "/control", fserr.IO, cause)

	require.True(t, errors.Is(err, fserr.IO))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "boom")
}

func TestKindAsError(t *testing.T) {
	var err error = fserr.ReadOnly
	require.EqualError(t, err, "read-only")
}

func TestErrorAs(t *testing.T) {
	err := fserr.New("remove", "/a", fserr.DirectoryNotEmpty)

	var fe *fserr.Error
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "remove", fe.Op)
	require.Equal(t, "/a", fe.Path)
	require.Equal(t, fserr.DirectoryNotEmpty, fe.Kind)
}
