package types

import (
	"io/fs"
)

// FS is the filesystem interface required for renmod operations.
// The scanner and installer go through this interface so tests can
// run against an in-memory filesystem.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Lstat can fall back to Stat for implementations without symlink support
	Lstat(name string) (fs.FileInfo, error)
}
