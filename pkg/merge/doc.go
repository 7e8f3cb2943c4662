// Package merge resolves file conflicts and drives multi-mod installs in
// priority order, aggregating per-mod statistics and a cross-mod conflict
// report.
package merge
