package types

import "fmt"

// ConflictStrategy decides what happens to a candidate file whose target
// path already exists in the game's content tree.
type ConflictStrategy string

const (
	// StrategyNewFile writes the file under a priority-prefixed name so it
	// shadows the original via Ren'Py's lexicographic script load order.
	// This is the recommended default.
	StrategyNewFile ConflictStrategy = "new_file"

	// StrategyReplace overwrites the existing file in place
	StrategyReplace ConflictStrategy = "replace"

	// StrategySkip leaves the existing file untouched and drops the candidate
	StrategySkip ConflictStrategy = "skip"
)

// ParseStrategy converts a user-supplied strategy name into a
// ConflictStrategy. Both "new_file" and "new-file" spellings are accepted.
func ParseStrategy(s string) (ConflictStrategy, error) {
	switch s {
	case "new_file", "new-file", "newfile":
		return StrategyNewFile, nil
	case "replace":
		return StrategyReplace, nil
	case "skip":
		return StrategySkip, nil
	}
	return "", fmt.Errorf("unknown conflict strategy %q (want new-file, replace or skip)", s)
}

// Valid reports whether s is one of the known strategies.
func (s ConflictStrategy) Valid() bool {
	switch s {
	case StrategyNewFile, StrategyReplace, StrategySkip:
		return true
	}
	return false
}
