package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateFile will test that files are created along with any missing parent directories
func TestCreateFile(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "logs", "nested")

	file, err := CreateFile(directory, "out.log")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	info, err := os.Stat(filepath.Join(directory, "out.log"))
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	// Creating a directory over an existing file fails
	err = MakeDirectory(filepath.Join(directory, "out.log"))
	assert.Error(t, err)

	// An existing directory is accepted
	assert.NoError(t, MakeDirectory(directory))
}
