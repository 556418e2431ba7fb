package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBackupPathSitsNextToDatabase(t *testing.T) {
	t.Parallel()

	got := DefaultBackupPath(filepath.Join("data", "nutrilog.db"), "20240101-120000")
	assert.Equal(t, filepath.Join("data", "backups", "nutrilog-20240101-120000.db"), got)
}

func TestEnsureDBDirCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "nutrilog.db")
	require.NoError(t, EnsureDBDir(path))
	st, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}
