package types_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renmod/renmod/pkg/filesystem"
	"github.com/renmod/renmod/pkg/types"
)

func TestNewMod(t *testing.T) {
	path := filepath.Join("mods", "Overhaul")
	mod := types.NewMod(path, 3)

	assert.Equal(t, "Overhaul", mod.Name)
	assert.Equal(t, path, mod.Path)
	assert.Equal(t, 3, mod.Priority)
	assert.Equal(t, path, mod.ContentRoot)
	assert.False(t, mod.HasGameSubfolder)
}

func TestModFileExists(t *testing.T) {
	fs := filesystem.NewMemory()
	root := filepath.Join("mods", "Overhaul")
	require.NoError(t, fs.MkdirAll(root, 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(root, "script.rpy"), []byte("x"), 0644))

	mod := types.NewMod(root, 1)

	exists, err := mod.FileExists(fs, "script.rpy")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = mod.FileExists(fs, "absent.rpy")
	require.NoError(t, err)
	assert.False(t, exists)
}
