// Package game finds the Ren'Py game content folder inside an extracted
// game or APK tree using marker files and script-count heuristics.
package game
