package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renmod/renmod/pkg/config"
	"github.com/renmod/renmod/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "z", cfg.Mods.Prefix)
	assert.Equal(t, []string{".rpy", ".rpyc"}, cfg.Mods.ScriptExtensions)
	assert.Equal(t, []string{"game", "Game", "GAME", "renpy/game"}, cfg.Mods.ContentRootCandidates)
	assert.Empty(t, cfg.Mods.IgnorePatterns)

	assert.Contains(t, cfg.Game.Markers, "options.rpyc")
	assert.Contains(t, cfg.Game.CommonLocations, "assets/x-game")
	assert.Contains(t, cfg.Game.SkipDirs, "lib")
}

func TestLoad_NoOverrideFile(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_OverrideFile(t *testing.T) {
	dir := t.TempDir()
	override := `
[mods]
prefix = "zz"
ignore_patterns = ["*.bak"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "renmod.toml"), []byte(override), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "zz", cfg.Mods.Prefix)
	assert.Equal(t, []string{"*.bak"}, cfg.Mods.IgnorePatterns)
	// Untouched keys keep their defaults.
	assert.Equal(t, []string{".rpy", ".rpyc"}, cfg.Mods.ScriptExtensions)
}

func TestLoad_HiddenFileWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".renmod.toml"),
		[]byte("[mods]\nprefix = \"a\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "renmod.toml"),
		[]byte("[mods]\nprefix = \"b\"\n"), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.Mods.Prefix)
}

func TestLoad_MalformedOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "renmod.toml"),
		[]byte("[mods\nprefix="), 0644))

	_, err := config.Load(dir)
	require.Error(t, err)
	assert.Equal(t, errors.ErrConfigLoad, errors.GetCode(err))
}
