package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.sph")
	require.NoError(t, os.WriteFile(path, []byte("echo 1;"), 0o644))

	b, err := ReadAll(path)
	require.NoError(t, err)
	require.Equal(t, "echo 1;", string(b))
}

func TestReadAllNotFound(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "missing.sph"))
	require.Error(t, err)
	var serr *Error
	require.ErrorAs(t, err, &serr)
}
