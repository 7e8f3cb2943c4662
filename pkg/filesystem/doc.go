// Package filesystem provides implementations of the types.FS interface:
// a thin OS-backed one for production and an afero-backed one so tests can
// run against an in-memory filesystem.
package filesystem
