// Package rpa reads Ren'Py RPA archives (versions 2.0, 3.0 and 4.0).
//
// An archive starts with an 8-byte magic ("RPA-2.0 ", "RPA-3.0 " or
// "RPA-4.0 ") followed by the hexadecimal byte offset of the index and a
// newline. The index is a zlib-compressed (sometimes raw) Python pickle
// mapping archive-relative filenames to (offset, length[, key]) tuples;
// entries with a non-empty key are XOR-obfuscated with that key repeated
// cyclically.
//
// The package is strictly read-only: it parses the index once into an
// immutable table, extracts entries on demand, and offers listing and
// summary views over the parsed index. Format problems (unknown magic,
// malformed header, undecodable index) are fatal for the archive and
// reported with the ARCHIVE_* error codes; a failure extracting one entry
// is logged and counted without stopping the rest of the extraction.
package rpa
