package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renmod/renmod/pkg/filesystem"
	"github.com/renmod/renmod/pkg/types"
)

// Both implementations must behave the same for the operations the scanner
// and installer rely on.
func TestFSImplementations(t *testing.T) {
	impls := []struct {
		name string
		make func(t *testing.T) (types.FS, string)
	}{
		{
			"os",
			func(t *testing.T) (types.FS, string) {
				return filesystem.NewOS(), t.TempDir()
			},
		},
		{
			"memory",
			func(t *testing.T) (types.FS, string) {
				return filesystem.NewMemory(), filepath.FromSlash("work")
			},
		},
	}

	for _, impl := range impls {
		t.Run(impl.name, func(t *testing.T) {
			fs, root := impl.make(t)

			sub := filepath.Join(root, "a", "b")
			require.NoError(t, fs.MkdirAll(sub, 0755))

			path := filepath.Join(sub, "file.txt")
			require.NoError(t, fs.WriteFile(path, []byte("hello"), 0644))

			data, err := fs.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), data)

			info, err := fs.Stat(path)
			require.NoError(t, err)
			assert.False(t, info.IsDir())
			assert.Equal(t, int64(5), info.Size())

			entries, err := fs.ReadDir(filepath.Join(root, "a"))
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.True(t, entries[0].IsDir())
			assert.Equal(t, "b", entries[0].Name())

			_, err = fs.Stat(filepath.Join(root, "missing"))
			assert.True(t, os.IsNotExist(err))

			_, err = fs.ReadFile(sub)
			assert.Error(t, err, "reading a directory must fail")

			require.NoError(t, fs.Remove(path))
			_, err = fs.Stat(path)
			assert.True(t, os.IsNotExist(err))

			require.NoError(t, fs.RemoveAll(filepath.Join(root, "a")))
			_, err = fs.Stat(sub)
			assert.True(t, os.IsNotExist(err))
		})
	}
}
