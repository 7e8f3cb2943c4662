package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMod represents a mod fixture on a real temp filesystem.
type TestMod struct {
	// Root is the parent directory holding mod and game trees
	Root string

	// Dir is the mod directory itself
	Dir string
}

// SetupTestMod creates an empty mod directory inside a fresh temp root.
func SetupTestMod(t *testing.T, modName string) *TestMod {
	t.Helper()

	root := t.TempDir()
	modDir := filepath.Join(root, modName)
	require.NoError(t, os.MkdirAll(modDir, 0755))

	return &TestMod{Root: root, Dir: modDir}
}

// AddFile adds a file (creating parents) under the mod directory.
// relPath uses forward slashes.
func (m *TestMod) AddFile(t *testing.T, relPath, content string) string {
	t.Helper()
	return WriteTreeFile(t, m.Dir, relPath, content)
}

// AddDir creates a directory under the mod directory.
func (m *TestMod) AddDir(t *testing.T, relPath string) string {
	t.Helper()

	dir := filepath.Join(m.Dir, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(dir, 0755))
	return dir
}

// SetupGameDir creates a game content directory with the given pre-existing
// files, next to the mod fixtures.
func SetupGameDir(t *testing.T, root string, files map[string]string) string {
	t.Helper()

	gameDir := filepath.Join(root, "game")
	require.NoError(t, os.MkdirAll(gameDir, 0755))
	for relPath, content := range files {
		WriteTreeFile(t, gameDir, relPath, content)
	}
	return gameDir
}

// WriteTreeFile writes a file under root, creating parent directories.
// relPath uses forward slashes.
func WriteTreeFile(t *testing.T, root, relPath, content string) string {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
