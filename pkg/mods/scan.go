package mods

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/woozymasta/pathrules"

	"github.com/renmod/renmod/pkg/config"
	"github.com/renmod/renmod/pkg/errors"
	"github.com/renmod/renmod/pkg/logging"
	"github.com/renmod/renmod/pkg/types"
)

// Scanner walks a mod's content root and builds the candidate file set,
// flagging conflicts against the target tree's current state.
type Scanner struct {
	fs      types.FS
	cfg     *config.Config
	matcher *pathrules.Matcher
}

// NewScanner creates a scanner. The configured ignore patterns (plus any
// extra per-mod patterns) are compiled into a pathrules matcher; an empty
// pattern set excludes nothing.
func NewScanner(fs types.FS, cfg *config.Config, extraIgnores ...string) (*Scanner, error) {
	patterns := append([]string{}, cfg.Mods.IgnorePatterns...)
	patterns = append(patterns, extraIgnores...)

	var matcher *pathrules.Matcher
	if len(patterns) > 0 {
		rules := make([]pathrules.Rule, 0, len(patterns))
		for _, pattern := range patterns {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			rules = append(rules, pathrules.Rule{
				Action:  pathrules.ActionExclude,
				Pattern: pattern,
			})
		}
		if len(rules) > 0 {
			m, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{
				CaseInsensitive: true,
				DefaultAction:   pathrules.ActionInclude,
			})
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid ignore patterns")
			}
			matcher = m
		}
	}

	return &Scanner{fs: fs, cfg: cfg, matcher: matcher}, nil
}

// Scan enumerates every file under contentRoot and returns one candidate
// per file. Conflicts are computed against the target tree as it exists
// right now: when several mods are scanned in one run, all of them see the
// tree's pre-install state, so a candidate is never flagged against another
// mod's yet-to-be-installed output.
func (s *Scanner) Scan(contentRoot, targetRoot string) ([]types.CandidateFile, error) {
	logger := logging.GetLogger("mods.scan")

	var candidates []types.CandidateFile
	if err := s.walk(contentRoot, contentRoot, targetRoot, &candidates); err != nil {
		return nil, errors.Wrapf(err, errors.ErrModScan, "cannot scan %s", contentRoot)
	}

	conflicts := 0
	for _, c := range candidates {
		if c.HasConflict {
			conflicts++
		}
	}

	logger.Info().
		Str("contentRoot", contentRoot).
		Int("files", len(candidates)).
		Int("conflicts", conflicts).
		Msg("Scanned mod files")

	return candidates, nil
}

func (s *Scanner) walk(contentRoot, dir, targetRoot string, out *[]types.CandidateFile) error {
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		sourcePath := filepath.Join(dir, entry.Name())

		rel, err := filepath.Rel(contentRoot, sourcePath)
		if err != nil {
			return err
		}
		relSlash := filepath.ToSlash(rel)

		if entry.IsDir() {
			if s.ignored(relSlash, true) {
				continue
			}
			if err := s.walk(contentRoot, sourcePath, targetRoot, out); err != nil {
				return err
			}
			continue
		}

		if s.ignored(relSlash, false) {
			continue
		}

		candidate := types.CandidateFile{
			SourcePath:   sourcePath,
			RelativePath: relSlash,
			TargetPath:   filepath.Join(targetRoot, rel),
			Filename:     entry.Name(),
			IsScript:     s.isScript(entry.Name()),
		}

		if _, err := s.fs.Stat(candidate.TargetPath); err == nil {
			candidate.HasConflict = true
			logger := logging.GetLogger("mods.scan")
			logger.Warn().
				Str("file", relSlash).
				Msg("Conflict detected")
		}

		*out = append(*out, candidate)
	}

	return nil
}

func (s *Scanner) ignored(relPath string, isDir bool) bool {
	if s.matcher == nil {
		return false
	}
	return !s.matcher.Included(relPath, isDir)
}

func (s *Scanner) isScript(filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	for _, scriptExt := range s.cfg.Mods.ScriptExtensions {
		if ext == strings.ToLower(scriptExt) {
			return true
		}
	}
	return false
}
