package rpa

import (
	"sort"
)

// Version identifies the archive format revision encoded in the header magic.
type Version int

// Supported archive versions.
const (
	V2 Version = 2
	V3 Version = 3
	V4 Version = 4
)

// headerMagicLen is the length of the version magic at the start of the file.
const headerMagicLen = 8

// magicVersions maps the 8-byte header magic to the archive version.
var magicVersions = map[string]Version{
	"RPA-2.0 ": V2,
	"RPA-3.0 ": V3,
	"RPA-4.0 ": V4,
}

// String returns the canonical version label, e.g. "RPA-3.0".
func (v Version) String() string {
	switch v {
	case V2:
		return "RPA-2.0"
	case V3:
		return "RPA-3.0"
	case V4:
		return "RPA-4.0"
	}
	return "RPA-?"
}

// IndexEntry locates one stored file inside the archive.
type IndexEntry struct {
	// Offset is the absolute byte offset of the stored data
	Offset uint64

	// Length is the stored data length in bytes
	Length uint64

	// Key is the per-entry XOR obfuscation key. A nil or empty key means
	// the bytes are stored as plaintext.
	Key []byte
}

// Obfuscated reports whether the entry's bytes need XOR decoding.
func (e IndexEntry) Obfuscated() bool {
	return len(e.Key) > 0
}

// Index maps archive-relative filenames (forward-slash separated) to their
// entries. It is built once per archive read and treated as immutable.
type Index map[string]IndexEntry

// Names returns all filenames in the index, sorted.
func (idx Index) Names() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EntryInfo is a read-only listing view of one index entry.
type EntryInfo struct {
	// Name is the archive-relative filename
	Name string

	// Size is the stored length in bytes
	Size uint64

	// SizeFormatted is Size rendered human-readable
	SizeFormatted string

	// Offset is the absolute byte offset inside the archive
	Offset uint64
}

// Info summarizes a parsed archive.
type Info struct {
	// Version is the canonical version label, e.g. "RPA-3.0"
	Version string

	// FileCount is the number of entries in the index
	FileCount int

	// TotalSize is the sum of all entry lengths
	TotalSize uint64

	// TotalSizeFormatted is TotalSize rendered human-readable
	TotalSizeFormatted string

	// FileTypes counts entries per lowercase extension; entries without a
	// dot land in the "no_extension" bucket
	FileTypes map[string]int

	// ArchiveSize is the archive file size on disk
	ArchiveSize uint64

	// ArchiveSizeFormatted is ArchiveSize rendered human-readable
	ArchiveSizeFormatted string
}
