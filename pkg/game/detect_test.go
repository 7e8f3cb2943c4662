package game_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renmod/renmod/pkg/config"
	"github.com/renmod/renmod/pkg/errors"
	"github.com/renmod/renmod/pkg/filesystem"
	"github.com/renmod/renmod/pkg/game"
	"github.com/renmod/renmod/pkg/types"
)

func seedTree(t *testing.T, files []string) types.FS {
	t.Helper()

	fs := filesystem.NewMemory()
	for _, path := range files {
		path = filepath.FromSlash(path)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fs.WriteFile(path, []byte("x"), 0644))
	}
	return fs
}

func newDetector(fs types.FS) *game.Detector {
	return game.NewDetector(fs, config.Default())
}

func TestDetect_CommonLocations(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{
			"plain desktop layout",
			[]string{
				"root/game/script.rpyc",
				"root/game/options.rpyc",
			},
			"game",
		},
		{
			"apk assets layout",
			[]string{
				"root/assets/game/scripts.rpa",
				"root/AndroidManifest.xml",
			},
			"assets/game",
		},
		{
			"x-game apk layout",
			[]string{
				"root/assets/x-game/script.rpyc",
				"root/assets/x-game/options.rpyc",
			},
			"assets/x-game",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := newDetector(seedTree(t, tt.files)).Detect("root")
			require.NoError(t, err)
			assert.Equal(t, tt.want, found)
		})
	}
}

func TestDetect_RecursiveSearch(t *testing.T) {
	fs := seedTree(t, []string{
		"root/assets/bundle/renpy-content/archive.rpa",
		"root/assets/bundle/other/readme.txt",
	})

	// The parent qualifies through the one-level-down script check, so the
	// search stops there rather than descending into renpy-content.
	found, err := newDetector(fs).Detect("root")
	require.NoError(t, err)
	assert.Equal(t, "assets/bundle", found)
}

func TestDetect_SkipsNonContentDirs(t *testing.T) {
	// lib/ carries plenty of files in real APKs; it must never win over the
	// actual content folder.
	fs := seedTree(t, []string{
		"root/lib/armeabi/fake.rpa",
		"root/assets/x-game/scripts.rpa",
	})

	found, err := newDetector(fs).Detect("root")
	require.NoError(t, err)
	assert.Equal(t, "assets/x-game", found)
}

func TestDetect_MarkerWithScripts(t *testing.T) {
	fs := seedTree(t, []string{
		"root/data/screens.rpyc",
		"root/data/notes.md",
	})

	found, err := newDetector(fs).Detect("root")
	require.NoError(t, err)
	assert.Equal(t, "data", found)
}

func TestDetect_ScriptCountHeuristics(t *testing.T) {
	t.Run("three rpyc files qualify", func(t *testing.T) {
		fs := seedTree(t, []string{
			"root/assets/content/a.rpyc",
			"root/assets/content/b.rpyc",
			"root/assets/content/c.rpyc",
		})
		found, err := newDetector(fs).Detect("root")
		require.NoError(t, err)
		assert.Equal(t, "assets/content", found)
	})

	t.Run("two rpyc files do not", func(t *testing.T) {
		fs := seedTree(t, []string{
			"root/assets/content/a.rpyc",
			"root/assets/content/b.rpyc",
		})
		_, err := newDetector(fs).Detect("root")
		require.Error(t, err)
	})

	t.Run("five mixed scripts qualify", func(t *testing.T) {
		fs := seedTree(t, []string{
			"root/assets/content/a.rpy",
			"root/assets/content/b.rpy",
			"root/assets/content/c.rpy",
			"root/assets/content/d.rpy",
			"root/assets/content/e.rpyc",
		})
		found, err := newDetector(fs).Detect("root")
		require.NoError(t, err)
		assert.Equal(t, "assets/content", found)
	})
}

func TestDetect_ScriptsOneLevelDown(t *testing.T) {
	fs := seedTree(t, []string{
		"root/assets/content/scripts/archive.rpa",
		"root/assets/content/images/bg.png",
	})

	found, err := newDetector(fs).Detect("root")
	require.NoError(t, err)
	assert.Equal(t, "assets/content", found)
}

func TestDetect_NotFound(t *testing.T) {
	fs := seedTree(t, []string{
		"root/docs/readme.txt",
	})

	_, err := newDetector(fs).Detect("root")
	require.Error(t, err)
	assert.Equal(t, errors.ErrGameNotFound, errors.GetCode(err))
}
