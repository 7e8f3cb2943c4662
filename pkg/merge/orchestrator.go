package merge

import (
	"path/filepath"
	"strconv"

	"github.com/renmod/renmod/pkg/config"
	"github.com/renmod/renmod/pkg/errors"
	"github.com/renmod/renmod/pkg/logging"
	"github.com/renmod/renmod/pkg/mods"
	"github.com/renmod/renmod/pkg/types"
)

// PreparedMod is one mod after structure detection and scanning, ready for
// the install pass.
type PreparedMod struct {
	Mod        types.Mod
	Candidates []types.CandidateFile
}

// ModResult is the install outcome of a single mod.
type ModResult struct {
	Name     string             `yaml:"name"`
	Priority int                `yaml:"priority"`
	Stats    types.InstallStats `yaml:"stats"`
}

// RunResult aggregates a whole install run: per-mod stats, the run total
// and the cross-mod conflict report from the scan phase.
type RunResult struct {
	Mods      []ModResult          `yaml:"mods"`
	Total     types.InstallStats   `yaml:"total"`
	Conflicts types.ConflictReport `yaml:"conflicts,omitempty"`
}

// Orchestrator drives multiple mods through scan, resolve and copy in
// priority order.
type Orchestrator struct {
	fs       types.FS
	cfg      *config.Config
	strategy types.ConflictStrategy

	// DryRun resolves and counts without writing any file
	DryRun bool
}

// NewOrchestrator creates an orchestrator using the given default conflict
// strategy. The strategy is a single run-level setting; candidates record
// which strategy was applied to them, for reporting only.
func NewOrchestrator(fs types.FS, cfg *config.Config, strategy types.ConflictStrategy) (*Orchestrator, error) {
	if !strategy.Valid() {
		return nil, errors.Newf(errors.ErrInvalidInput, "invalid conflict strategy %q", strategy)
	}
	return &Orchestrator{fs: fs, cfg: cfg, strategy: strategy}, nil
}

// PrepareMods runs structure detection and scanning for every mod path, in
// order; the 1-based position is the mod's priority. All mods are scanned
// against the target tree's pre-install state. A scan failure is recoverable
// per mod: that mod contributes zero candidates and the rest continue.
func (o *Orchestrator) PrepareMods(modPaths []string, targetRoot string) []PreparedMod {
	logger := logging.GetLogger("merge.prepare")

	prepared := make([]PreparedMod, 0, len(modPaths))
	for i, modPath := range modPaths {
		mod := types.NewMod(modPath, i+1)

		modCfg, err := mods.LoadModConfig(o.fs, modPath)
		if err != nil {
			logger.Warn().Err(err).Str("mod", mod.Name).Msg("Ignoring unreadable mod descriptor")
		}
		if modCfg.Name != "" {
			mod.Name = modCfg.Name
		}

		mods.ResolveContentRoot(o.fs, &mod, o.cfg.Mods.ContentRootCandidates)

		candidates, err := o.scanMod(mod, modCfg, targetRoot)
		if err != nil {
			logger.Error().Err(err).Str("mod", mod.Name).Msg("Scan failed, mod contributes no files")
			candidates = nil
		}

		prepared = append(prepared, PreparedMod{Mod: mod, Candidates: candidates})
	}

	return prepared
}

func (o *Orchestrator) scanMod(mod types.Mod, modCfg mods.ModConfig, targetRoot string) ([]types.CandidateFile, error) {
	// The descriptor file is metadata, never content.
	ignores := append([]string{mods.ModConfigFilename}, modCfg.IgnorePatterns...)
	scanner, err := mods.NewScanner(o.fs, o.cfg, ignores...)
	if err != nil {
		return nil, err
	}
	return scanner.Scan(mod.ContentRoot, targetRoot)
}

// BuildConflictReport maps each conflicting target filename to the mods
// that produced a candidate for it. Built purely from scan output, before
// and independent of installation order.
func BuildConflictReport(prepared []PreparedMod) types.ConflictReport {
	report := make(types.ConflictReport)
	for _, pm := range prepared {
		for _, candidate := range pm.Candidates {
			if !candidate.HasConflict {
				continue
			}
			key := filepath.Base(candidate.TargetPath)
			report[key] = append(report[key], modIdentifier(pm.Mod))
		}
	}
	return report
}

func modIdentifier(mod types.Mod) string {
	return "Mod " + strconv.Itoa(mod.Priority)
}

// InstallAll installs every prepared mod in ascending priority order and
// returns per-mod stats, the run total and the conflict report.
func (o *Orchestrator) InstallAll(prepared []PreparedMod) RunResult {
	result := RunResult{
		Conflicts: BuildConflictReport(prepared),
	}

	for _, pm := range prepared {
		stats := o.InstallMod(pm)
		result.Mods = append(result.Mods, ModResult{
			Name:     pm.Mod.Name,
			Priority: pm.Mod.Priority,
			Stats:    stats,
		})
		result.Total.Add(stats)
	}

	return result
}

// InstallMod resolves and copies one mod's candidates. A single copy
// failure increments Errors and continues with the remaining files; it
// never aborts the mod or subsequent mods.
func (o *Orchestrator) InstallMod(pm PreparedMod) types.InstallStats {
	logger := logging.GetLogger("merge.install")
	defer logging.LogOperationStart(logger, "install "+pm.Mod.Name)()

	var stats types.InstallStats
	for i := range pm.Candidates {
		candidate := &pm.Candidates[i]

		strategy := o.strategy
		candidate.ResolvedStrategy = strategy

		targetPath := Resolve(*candidate, strategy, pm.Mod.Priority, o.cfg.Mods.Prefix)
		if targetPath == "" {
			stats.Skipped++
			logger.Debug().Str("file", candidate.Filename).Msg("Skipped conflicting file")
			continue
		}

		if err := o.copyFile(candidate.SourcePath, targetPath); err != nil {
			stats.Errors++
			logger.Error().Err(err).Str("file", candidate.Filename).Msg("Failed to install file")
			continue
		}

		stats.Installed++
		if candidate.HasConflict {
			switch strategy {
			case types.StrategyReplace:
				stats.Replaced++
			case types.StrategyNewFile:
				stats.NewFiles++
			}
		}

		logger.Debug().Str("target", targetPath).Msg("Installed file")
	}

	logger.Info().
		Str("mod", pm.Mod.Name).
		Int("installed", stats.Installed).
		Int("skipped", stats.Skipped).
		Int("replaced", stats.Replaced).
		Int("newFiles", stats.NewFiles).
		Int("errors", stats.Errors).
		Msg("Mod install finished")

	return stats
}

func (o *Orchestrator) copyFile(sourcePath, targetPath string) error {
	if o.DryRun {
		return nil
	}

	data, err := o.fs.ReadFile(sourcePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInstallCopy, "cannot read %s", sourcePath)
	}

	if dir := filepath.Dir(targetPath); dir != "" {
		if err := o.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
		}
	}

	if err := o.fs.WriteFile(targetPath, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrInstallCopy, "cannot write %s", targetPath)
	}
	return nil
}

// ReorderMods re-numbers prepared mods by the given permutation of current
// priorities: newOrder[0] is the priority of the mod that should run first.
// Unknown priorities are dropped.
func ReorderMods(prepared []PreparedMod, newOrder []int) []PreparedMod {
	reordered := make([]PreparedMod, 0, len(prepared))
	for _, oldPriority := range newOrder {
		for _, pm := range prepared {
			if pm.Mod.Priority != oldPriority {
				continue
			}
			pm.Mod.Priority = len(reordered) + 1
			reordered = append(reordered, pm)
			break
		}
	}
	return reordered
}
