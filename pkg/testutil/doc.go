// Package testutil provides shared test fixtures: temp mod and game trees,
// and a reference archive writer for round-trip tests of the read-only
// rpa package.
package testutil
