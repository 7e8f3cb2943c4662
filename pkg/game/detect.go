package game

import (
	"path/filepath"
	"strings"

	"github.com/renmod/renmod/pkg/config"
	"github.com/renmod/renmod/pkg/errors"
	"github.com/renmod/renmod/pkg/logging"
	"github.com/renmod/renmod/pkg/types"
)

// Detector locates the Ren'Py game folder inside an extracted game or APK
// tree so the installer knows where the content tree lives.
type Detector struct {
	fs  types.FS
	cfg *config.Config
}

// NewDetector creates a detector using the configured markers, common
// locations and skip list.
func NewDetector(fs types.FS, cfg *config.Config) *Detector {
	return &Detector{fs: fs, cfg: cfg}
}

// Detect returns the game folder path relative to root, forward-slash
// separated. Common locations are checked first; when none match, the tree
// is searched recursively starting under assets/ (or root when there is no
// assets folder), skipping directories that cannot contain game content.
func (d *Detector) Detect(root string) (string, error) {
	logger := logging.GetLogger("game.detect")
	logger.Debug().Str("root", root).Msg("Searching for Ren'Py game folder")

	for _, common := range d.cfg.Game.CommonLocations {
		fullPath := filepath.Join(root, filepath.FromSlash(common))
		if d.isGameFolder(fullPath) {
			logger.Info().Str("path", common).Msg("Found game folder at common location")
			return common, nil
		}
	}

	searchRoot := filepath.Join(root, "assets")
	if info, err := d.fs.Stat(searchRoot); err != nil || !info.IsDir() {
		searchRoot = root
	}

	if found := d.search(searchRoot, root); found != "" {
		logger.Info().Str("path", found).Msg("Found game folder by recursive search")
		return found, nil
	}

	return "", errors.Newf(errors.ErrGameNotFound, "no Ren'Py game folder found under %s", root)
}

// search walks dir depth-first and returns the first game folder as a
// root-relative slash path, or "".
func (d *Detector) search(dir, root string) string {
	if d.isGameFolder(dir) {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return ""
		}
		return filepath.ToSlash(rel)
	}

	entries, err := d.fs.ReadDir(dir)
	if err != nil {
		return ""
	}

	for _, entry := range entries {
		if !entry.IsDir() || d.shouldSkip(entry.Name()) {
			continue
		}
		if found := d.search(filepath.Join(dir, entry.Name()), root); found != "" {
			return found
		}
	}
	return ""
}

// isGameFolder applies the marker and script-count heuristics to one folder.
func (d *Detector) isGameFolder(dir string) bool {
	info, err := d.fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}

	entries, err := d.fs.ReadDir(dir)
	if err != nil {
		return false
	}

	var rpyCount, rpycCount int
	var hasArchive bool
	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		names[name] = true
		switch strings.ToLower(filepath.Ext(name)) {
		case ".rpy":
			rpyCount++
		case ".rpyc":
			rpycCount++
		case ".rpa":
			hasArchive = true
		}
	}

	// Marker files plus any script or archive content
	for _, marker := range d.cfg.Game.Markers {
		if names[marker] && (rpyCount+rpycCount > 0 || hasArchive) {
			return true
		}
	}

	// A folder with an archive or a meaningful number of scripts qualifies
	// even without the canonical markers (some games rename them).
	if hasArchive || rpycCount >= 3 || rpyCount+rpycCount >= 5 {
		return true
	}

	// Scripts may sit one level down in subfolders
	var childRpy, childRpyc int
	var childArchive bool
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		children, err := d.fs.ReadDir(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		for _, child := range children {
			if child.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(child.Name())) {
			case ".rpy":
				childRpy++
			case ".rpyc":
				childRpyc++
			case ".rpa":
				childArchive = true
			}
		}
		if childArchive || childRpyc >= 3 || childRpy+childRpyc >= 5 {
			return true
		}
	}

	return false
}

func (d *Detector) shouldSkip(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, skip := range d.cfg.Game.SkipDirs {
		if name == skip {
			return true
		}
	}
	return false
}
