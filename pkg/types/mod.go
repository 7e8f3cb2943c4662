package types

import (
	"os"
	"path/filepath"
)

// Mod represents a single mod directory queued for installation.
type Mod struct {
	// Name is the mod name (usually the directory name)
	Name string

	// Path is the absolute path to the mod directory
	Path string

	// Priority determines load order; 1-based, ascending = installed later
	Priority int

	// ContentRoot is the directory inside the mod that mirrors the game's
	// content tree. It is Path itself when no conventional subfolder exists.
	ContentRoot string

	// HasGameSubfolder reports whether ContentRoot was resolved to a
	// conventional game/ subfolder rather than the mod root
	HasGameSubfolder bool
}

// NewMod creates a Mod for the given directory with the given priority.
// ContentRoot defaults to the mod root until structure detection runs.
func NewMod(path string, priority int) Mod {
	return Mod{
		Name:        filepath.Base(path),
		Path:        path,
		Priority:    priority,
		ContentRoot: path,
	}
}

// FileExists checks if a file exists within the mod's content root.
func (m *Mod) FileExists(fs FS, filename string) (bool, error) {
	_, err := fs.Stat(filepath.Join(m.ContentRoot, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CandidateFile is one file discovered during a mod scan, together with
// its conflict status against the target tree at scan time.
type CandidateFile struct {
	// SourcePath is the absolute path of the file inside the mod
	SourcePath string

	// RelativePath is the path relative to the mod's content root,
	// forward-slash separated
	RelativePath string

	// TargetPath is RelativePath resolved against the installation's
	// content tree
	TargetPath string

	// Filename is the base name of the file
	Filename string

	// IsScript reports whether the file is a Ren'Py script (.rpy/.rpyc)
	IsScript bool

	// HasConflict is true when TargetPath already existed at scan time.
	// Conflicts are always computed against the pre-install state of the
	// target tree, never against another mod's pending output.
	HasConflict bool

	// ResolvedStrategy records which strategy the resolution engine applied
	// to this file. Empty until the install pass runs; informational only.
	ResolvedStrategy ConflictStrategy
}
