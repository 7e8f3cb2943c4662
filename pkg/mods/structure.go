package mods

import (
	"path/filepath"

	"github.com/renmod/renmod/pkg/logging"
	"github.com/renmod/renmod/pkg/types"
)

// DetectStructure resolves a mod's content root. Candidates are checked in
// their configured order ("game", "Game", "GAME", "renpy/game" by default)
// and the first existing directory wins; the priority list is fixed, never
// merged. When no candidate exists the mod root itself is the content root.
func DetectStructure(fs types.FS, modRoot string, candidates []string) (bool, string) {
	logger := logging.GetLogger("mods.structure")
	logger.Debug().Str("mod", filepath.Base(modRoot)).Msg("Analyzing mod structure")

	for _, candidate := range candidates {
		candidatePath := filepath.Join(modRoot, filepath.FromSlash(candidate))
		info, err := fs.Stat(candidatePath)
		if err != nil || !info.IsDir() {
			continue
		}
		logger.Info().
			Str("mod", filepath.Base(modRoot)).
			Str("subfolder", candidate).
			Msg("Found conventional content subfolder")
		return true, candidatePath
	}

	logger.Debug().
		Str("mod", filepath.Base(modRoot)).
		Msg("No conventional subfolder found, using mod root")
	return false, modRoot
}

// ResolveContentRoot runs structure detection for a mod and records the
// result on it.
func ResolveContentRoot(fs types.FS, mod *types.Mod, candidates []string) {
	hasSubfolder, contentRoot := DetectStructure(fs, mod.Path, candidates)
	mod.HasGameSubfolder = hasSubfolder
	mod.ContentRoot = contentRoot
}
