package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"cairogen/errors"
)

func TestWrite(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "bindings.go")
	w := New(nil)

	require.NoError(w.Write(path, []byte("package a\n\nconst long = 1\n")))
	require.NoError(w.Write(path, []byte("package b\n")))

	got, err := os.ReadFile(path)
	require.NoError(err)
	require.Equal("package b\n", string(got))
}

func TestWrite_MissingDirectory(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "missing", "bindings.go")
	err := New(nil).Write(path, []byte("package a\n"))
	require.ErrorIs(err, errors.ErrWriteFailure)

	var e *errors.Error
	require.ErrorAs(err, &e)
	require.Equal(path, e.Item)
	require.Equal(errors.PhaseWrite, e.Phase)

	_, statErr := os.Stat(filepath.Join(dir, "missing"))
	require.True(os.IsNotExist(statErr))
}

func TestWrite_ParentIsFile(t *testing.T) {
	require := require.New(t)

	parent := filepath.Join(t.TempDir(), "existing.go")
	require.NoError(os.WriteFile(parent, []byte("package keep\n"), 0o644))

	err := New(nil).Write(filepath.Join(parent, "bindings.go"), []byte("package a\n"))
	require.ErrorIs(err, errors.ErrWriteFailure)

	got, readErr := os.ReadFile(parent)
	require.NoError(readErr)
	require.Equal("package keep\n", string(got))
}

func TestWrite_DestinationIsDirectory(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "bindings.go")
	require.NoError(os.Mkdir(path, 0o755))
	kept := filepath.Join(path, "keep.go")
	require.NoError(os.WriteFile(kept, []byte("package keep\n"), 0o644))

	err := New(nil).Write(path, []byte("package a\n"))
	require.ErrorIs(err, errors.ErrWriteFailure)

	info, statErr := os.Stat(path)
	require.NoError(statErr)
	require.True(info.IsDir())
	got, readErr := os.ReadFile(kept)
	require.NoError(readErr)
	require.Equal("package keep\n", string(got))
}

func TestWrite_ReadOnlyDestination(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions do not apply to root")
	}
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "bindings.go")
	require.NoError(os.WriteFile(path, []byte("package keep\n"), 0o444))

	err := New(nil).Write(path, []byte("package a\n"))
	require.ErrorIs(err, errors.ErrWriteFailure)

	got, readErr := os.ReadFile(path)
	require.NoError(readErr)
	require.Equal("package keep\n", string(got))
}
