package types

import "sort"

// InstallStats accumulates the outcome of one mod's install pass.
// Stats from multiple mods are summable into a run total via Add.
type InstallStats struct {
	Installed int `yaml:"installed"`
	Skipped   int `yaml:"skipped"`
	Replaced  int `yaml:"replaced"`
	NewFiles  int `yaml:"new_files"`
	Errors    int `yaml:"errors"`
}

// Add folds other into s.
func (s *InstallStats) Add(other InstallStats) {
	s.Installed += other.Installed
	s.Skipped += other.Skipped
	s.Replaced += other.Replaced
	s.NewFiles += other.NewFiles
	s.Errors += other.Errors
}

// ConflictReport maps a conflicting target filename to the identifiers of
// every mod that produced a candidate for it. Built from the scan phase,
// before and independent of any installation.
type ConflictReport map[string][]string

// Filenames returns the conflicting filenames in sorted order.
func (r ConflictReport) Filenames() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
