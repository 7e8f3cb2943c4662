package merge

import (
	"fmt"
	"path/filepath"

	"github.com/renmod/renmod/pkg/types"
)

// Resolve maps a candidate file, the run's conflict strategy and the owning
// mod's priority to the final target path. An empty path signals "skip".
//
// Files without a conflict keep their target path regardless of strategy.
// For conflicts:
//
//   - Replace keeps the original target path (overwrite in place)
//   - Skip returns the empty path
//   - NewFile renames to {prefix}{priority:02d}_{filename} in the same
//     directory, e.g. z01_script.rpy. The priority digits keep same-named
//     outputs from different mods distinct from each other; they only ever
//     shadow the original game file, by lexicographic script load order.
func Resolve(candidate types.CandidateFile, strategy types.ConflictStrategy, priority int, prefix string) string {
	if !candidate.HasConflict {
		return candidate.TargetPath
	}

	switch strategy {
	case types.StrategyReplace:
		return candidate.TargetPath
	case types.StrategySkip:
		return ""
	case types.StrategyNewFile:
		dir := filepath.Dir(candidate.TargetPath)
		filename := filepath.Base(candidate.TargetPath)
		return filepath.Join(dir, fmt.Sprintf("%s%02d_%s", prefix, priority, filename))
	}

	return candidate.TargetPath
}
