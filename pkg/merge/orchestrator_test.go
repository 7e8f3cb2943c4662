package merge_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renmod/renmod/pkg/config"
	"github.com/renmod/renmod/pkg/errors"
	"github.com/renmod/renmod/pkg/filesystem"
	"github.com/renmod/renmod/pkg/merge"
	"github.com/renmod/renmod/pkg/types"
)

// memTree seeds an in-memory filesystem with file contents keyed by
// slash-separated path.
func memTree(t *testing.T, files map[string]string) types.FS {
	t.Helper()

	fs := filesystem.NewMemory()
	for path, content := range files {
		path = filepath.FromSlash(path)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, fs.WriteFile(path, []byte(content), 0644))
	}
	return fs
}

func readMemFile(t *testing.T, fs types.FS, path string) string {
	t.Helper()

	data, err := fs.ReadFile(filepath.FromSlash(path))
	require.NoError(t, err)
	return string(data)
}

func TestInstallAll_NewFileStrategy(t *testing.T) {
	fs := memTree(t, map[string]string{
		"game/script.rpy":      "original",
		"mods/ModA/script.rpy": "from A",
		"mods/ModB/script.rpy": "from B",
		"mods/ModB/extra.rpy":  "only in B",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategyNewFile)
	require.NoError(t, err)

	prepared := orchestrator.PrepareMods(
		[]string{filepath.FromSlash("mods/ModA"), filepath.FromSlash("mods/ModB")}, "game")
	result := orchestrator.InstallAll(prepared)

	// Both mods conflict on script.rpy against the pre-install tree and get
	// priority-distinct renames; the original stays untouched.
	assert.Equal(t, "original", readMemFile(t, fs, "game/script.rpy"))
	assert.Equal(t, "from A", readMemFile(t, fs, "game/z01_script.rpy"))
	assert.Equal(t, "from B", readMemFile(t, fs, "game/z02_script.rpy"))
	assert.Equal(t, "only in B", readMemFile(t, fs, "game/extra.rpy"))

	require.Len(t, result.Mods, 2)
	assert.Equal(t, types.InstallStats{Installed: 1, NewFiles: 1}, result.Mods[0].Stats)
	assert.Equal(t, types.InstallStats{Installed: 2, NewFiles: 1}, result.Mods[1].Stats)
	assert.Equal(t, types.InstallStats{Installed: 3, NewFiles: 2}, result.Total)

	assert.Equal(t, types.ConflictReport{
		"script.rpy": {"Mod 1", "Mod 2"},
	}, result.Conflicts)
}

func TestInstallAll_ReplaceStrategy(t *testing.T) {
	fs := memTree(t, map[string]string{
		"game/script.rpy":      "original",
		"mods/ModA/script.rpy": "from A",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategyReplace)
	require.NoError(t, err)

	prepared := orchestrator.PrepareMods([]string{filepath.FromSlash("mods/ModA")}, "game")
	result := orchestrator.InstallAll(prepared)

	assert.Equal(t, "from A", readMemFile(t, fs, "game/script.rpy"))
	assert.Equal(t, types.InstallStats{Installed: 1, Replaced: 1}, result.Total)
}

func TestInstallAll_SkipStrategy(t *testing.T) {
	fs := memTree(t, map[string]string{
		"game/script.rpy":      "original",
		"mods/ModA/script.rpy": "from A",
		"mods/ModA/new.rpy":    "brand new",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategySkip)
	require.NoError(t, err)

	prepared := orchestrator.PrepareMods([]string{filepath.FromSlash("mods/ModA")}, "game")
	result := orchestrator.InstallAll(prepared)

	assert.Equal(t, "original", readMemFile(t, fs, "game/script.rpy"))
	assert.Equal(t, "brand new", readMemFile(t, fs, "game/new.rpy"))
	assert.Equal(t, types.InstallStats{Installed: 1, Skipped: 1}, result.Total)

	_, err = fs.Stat(filepath.FromSlash("game/z01_script.rpy"))
	assert.Error(t, err, "skip must not create a renamed copy")
}

func TestInstallAll_ConflictsOnlyAgainstPreInstallState(t *testing.T) {
	// ModA introduces a file the game does not have. ModB ships the same
	// file: it must not be flagged as a conflict, because conflicts are
	// computed before any mod writes. The later mod wins the target path.
	fs := memTree(t, map[string]string{
		"game/script.rpy":      "original",
		"mods/ModA/hotfix.rpy": "from A",
		"mods/ModB/hotfix.rpy": "from B",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategyNewFile)
	require.NoError(t, err)

	prepared := orchestrator.PrepareMods(
		[]string{filepath.FromSlash("mods/ModA"), filepath.FromSlash("mods/ModB")}, "game")
	result := orchestrator.InstallAll(prepared)

	assert.Empty(t, result.Conflicts)
	assert.Equal(t, types.InstallStats{Installed: 2}, result.Total)
	assert.Equal(t, "from B", readMemFile(t, fs, "game/hotfix.rpy"))
}

func TestInstallAll_GameSubfolderMod(t *testing.T) {
	fs := memTree(t, map[string]string{
		"game/script.rpy":           "original",
		"mods/ModA/game/script.rpy": "from A",
		"mods/ModA/readme.txt":      "outside the content root",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategyReplace)
	require.NoError(t, err)

	prepared := orchestrator.PrepareMods([]string{filepath.FromSlash("mods/ModA")}, "game")
	require.Len(t, prepared, 1)
	assert.True(t, prepared[0].Mod.HasGameSubfolder)
	require.Len(t, prepared[0].Candidates, 1, "files outside the content root are not candidates")

	result := orchestrator.InstallAll(prepared)
	assert.Equal(t, "from A", readMemFile(t, fs, "game/script.rpy"))
	assert.Equal(t, types.InstallStats{Installed: 1, Replaced: 1}, result.Total)
}

func TestInstallAll_DryRun(t *testing.T) {
	fs := memTree(t, map[string]string{
		"game/script.rpy":      "original",
		"mods/ModA/script.rpy": "from A",
		"mods/ModA/new.rpy":    "new",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategyNewFile)
	require.NoError(t, err)
	orchestrator.DryRun = true

	prepared := orchestrator.PrepareMods([]string{filepath.FromSlash("mods/ModA")}, "game")
	result := orchestrator.InstallAll(prepared)

	assert.Equal(t, types.InstallStats{Installed: 2, NewFiles: 1}, result.Total)

	assert.Equal(t, "original", readMemFile(t, fs, "game/script.rpy"))
	_, err = fs.Stat(filepath.FromSlash("game/z01_script.rpy"))
	assert.Error(t, err, "dry run must not write")
	_, err = fs.Stat(filepath.FromSlash("game/new.rpy"))
	assert.Error(t, err, "dry run must not write")
}

func TestInstallMod_CopyFailureIsRecoverable(t *testing.T) {
	fs := memTree(t, map[string]string{
		"mods/ModA/good.rpy": "fine",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategyNewFile)
	require.NoError(t, err)

	pm := merge.PreparedMod{
		Mod: types.NewMod(filepath.FromSlash("mods/ModA"), 1),
		Candidates: []types.CandidateFile{
			{
				SourcePath: filepath.FromSlash("mods/ModA/missing.rpy"),
				TargetPath: filepath.FromSlash("game/missing.rpy"),
				Filename:   "missing.rpy",
			},
			{
				SourcePath: filepath.FromSlash("mods/ModA/good.rpy"),
				TargetPath: filepath.FromSlash("game/good.rpy"),
				Filename:   "good.rpy",
			},
		},
	}

	stats := orchestrator.InstallMod(pm)
	assert.Equal(t, types.InstallStats{Installed: 1, Errors: 1}, stats)
	assert.Equal(t, "fine", readMemFile(t, fs, "game/good.rpy"))
}

func TestPrepareMods_ScanFailureIsRecoverable(t *testing.T) {
	fs := memTree(t, map[string]string{
		"game/script.rpy":   "original",
		"mods/Good/new.rpy": "content",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategyNewFile)
	require.NoError(t, err)

	prepared := orchestrator.PrepareMods(
		[]string{filepath.FromSlash("mods/Missing"), filepath.FromSlash("mods/Good")}, "game")
	require.Len(t, prepared, 2)
	assert.Empty(t, prepared[0].Candidates)
	assert.Len(t, prepared[1].Candidates, 1)

	result := orchestrator.InstallAll(prepared)
	assert.Equal(t, types.InstallStats{Installed: 1}, result.Total)
}

func TestPrepareMods_DescriptorOverrides(t *testing.T) {
	fs := memTree(t, map[string]string{
		"mods/ModA/.renmod.toml": "name = \"Renamed\"\nignore_patterns = [\"*.psd\"]\n",
		"mods/ModA/art.psd":      "source art",
		"mods/ModA/art.png":      "exported art",
	})

	orchestrator, err := merge.NewOrchestrator(fs, config.Default(), types.StrategyNewFile)
	require.NoError(t, err)

	prepared := orchestrator.PrepareMods([]string{filepath.FromSlash("mods/ModA")}, "game")
	require.Len(t, prepared, 1)
	assert.Equal(t, "Renamed", prepared[0].Mod.Name)

	var rels []string
	for _, c := range prepared[0].Candidates {
		rels = append(rels, c.RelativePath)
	}
	assert.NotContains(t, rels, "art.psd")
	assert.Contains(t, rels, "art.png")
}

func TestNewOrchestrator_InvalidStrategy(t *testing.T) {
	_, err := merge.NewOrchestrator(filesystem.NewMemory(), config.Default(), types.ConflictStrategy("merge"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrInvalidInput, errors.GetCode(err))
}

func TestReorderMods(t *testing.T) {
	prepared := []merge.PreparedMod{
		{Mod: types.Mod{Name: "A", Priority: 1}},
		{Mod: types.Mod{Name: "B", Priority: 2}},
		{Mod: types.Mod{Name: "C", Priority: 3}},
	}

	reordered := merge.ReorderMods(prepared, []int{3, 1, 2})
	require.Len(t, reordered, 3)
	assert.Equal(t, "C", reordered[0].Mod.Name)
	assert.Equal(t, 1, reordered[0].Mod.Priority)
	assert.Equal(t, "A", reordered[1].Mod.Name)
	assert.Equal(t, 2, reordered[1].Mod.Priority)
	assert.Equal(t, "B", reordered[2].Mod.Name)
	assert.Equal(t, 3, reordered[2].Mod.Priority)

	dropped := merge.ReorderMods(prepared, []int{2, 9})
	require.Len(t, dropped, 1)
	assert.Equal(t, "B", dropped[0].Mod.Name)
	assert.Equal(t, 1, dropped[0].Mod.Priority)
}
