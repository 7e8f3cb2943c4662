// Package types holds the core value types shared by the renmod packages:
// mods, candidate files, conflict strategies, install statistics, and the
// filesystem interface the scanner and installer operate through.
package types
