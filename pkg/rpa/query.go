package rpa

import (
	"path"
	"strings"

	"github.com/dustin/go-humanize"
)

// noExtensionBucket is the Info bucket for entries without a dot in their name.
const noExtensionBucket = "no_extension"

// List returns a read-only listing of every entry, sorted by name.
// Repeated calls return identical results.
func (r *Reader) List() []EntryInfo {
	names := r.index.Names()
	infos := make([]EntryInfo, 0, len(names))
	for _, name := range names {
		entry := r.index[name]
		infos = append(infos, EntryInfo{
			Name:          name,
			Size:          entry.Length,
			SizeFormatted: humanize.IBytes(entry.Length),
			Offset:        entry.Offset,
		})
	}
	return infos
}

// Info summarizes the archive: version, entry count, total stored size and
// per-extension buckets.
func (r *Reader) Info() Info {
	var totalSize uint64
	fileTypes := make(map[string]int)

	for name, entry := range r.index {
		totalSize += entry.Length

		ext := strings.ToLower(path.Ext(name))
		if ext == "" {
			ext = noExtensionBucket
		}
		fileTypes[ext]++
	}

	return Info{
		Version:              r.version.String(),
		FileCount:            len(r.index),
		TotalSize:            totalSize,
		TotalSizeFormatted:   humanize.IBytes(totalSize),
		FileTypes:            fileTypes,
		ArchiveSize:          uint64(r.size),
		ArchiveSizeFormatted: humanize.IBytes(uint64(r.size)),
	}
}
