// Package gold implements golden-file comparisons for binary wire output:
// encode once, commit the bytes under testdata/, and fail future runs if
// the encoding drifts.
package gold

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

// Bytes compares data against testdata/<name>.golden, writing it if either
// the file is missing or -update was passed.
func Bytes(t testing.TB, data []byte, name string) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")

	if *update {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return
	}
	require.NoError(t, err)
	require.Equal(t, expected, data, "golden file %s mismatch, rerun with -update", path)
}
