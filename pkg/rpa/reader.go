package rpa

import (
	"bytes"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"

	"github.com/renmod/renmod/pkg/errors"
	"github.com/renmod/renmod/pkg/logging"
)

// headerReadSize covers the magic, the hex index offset and the newline for
// every supported version.
const headerReadSize = 64

// Reader provides read-only access to a parsed archive. The index is built
// once when the reader is created and never mutated afterwards.
type Reader struct {
	ra      io.ReaderAt
	file    *os.File
	size    int64
	version Version
	index   Index
}

// Open opens an archive by path and parses its index.
func Open(archivePath string) (*Reader, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot open archive %s", archivePath)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot stat archive")
	}

	r, err := NewReader(f, fi.Size())
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r.file = f
	return r, nil
}

// NewReader parses an archive from a random-access reader of the given size.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	logger := logging.GetLogger("rpa.reader")

	version, indexOffset, err := readHeader(ra, size)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Str("version", version.String()).
		Int64("indexOffset", indexOffset).
		Msg("Parsed archive header")

	index, err := readIndex(ra, size, indexOffset)
	if err != nil {
		return nil, err
	}

	logger.Debug().Int("files", len(index)).Msg("Parsed archive index")

	return &Reader{
		ra:      ra,
		size:    size,
		version: version,
		index:   index,
	}, nil
}

// Close releases the underlying file when the reader owns one.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// Version returns the archive format version.
func (r *Reader) Version() Version {
	return r.version
}

// Index returns the parsed index. Callers must treat it as read-only.
func (r *Reader) Index() Index {
	return r.index
}

// Size returns the archive size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// readHeader parses the magic and the hex index offset from the first line.
func readHeader(ra io.ReaderAt, size int64) (Version, int64, error) {
	buf := make([]byte, headerReadSize)
	n, err := ra.ReadAt(buf, 0)
	if err != nil && err != io.EOF {
		return 0, 0, errors.Wrap(err, errors.ErrFileAccess, "cannot read archive header")
	}
	buf = buf[:n]

	if len(buf) < headerMagicLen {
		return 0, 0, errors.New(errors.ErrArchiveFormat, "file too short for an archive header")
	}

	version, ok := magicVersions[string(buf[:headerMagicLen])]
	if !ok {
		return 0, 0, errors.Newf(errors.ErrArchiveVersion,
			"unsupported archive magic %q", string(buf[:headerMagicLen]))
	}

	newline := bytes.IndexByte(buf, '\n')
	if newline < 0 {
		return 0, 0, errors.New(errors.ErrArchiveFormat, "archive header has no newline")
	}

	offsetField := strings.TrimSpace(string(buf[headerMagicLen:newline]))
	indexOffset, err := strconv.ParseInt(offsetField, 16, 64)
	if err != nil {
		return 0, 0, errors.Wrapf(err, errors.ErrArchiveFormat,
			"malformed index offset %q", offsetField)
	}

	if indexOffset <= 0 || indexOffset >= size {
		return 0, 0, errors.Newf(errors.ErrArchiveFormat,
			"index offset %d outside archive of %d bytes", indexOffset, size)
	}

	return version, indexOffset, nil
}

// readIndex reads the index blob, decompresses it (falling back to a raw
// blob for archives with an uncompressed index) and normalizes the pickled
// mapping into typed entries.
func readIndex(ra io.ReaderAt, size, offset int64) (Index, error) {
	blob := make([]byte, size-offset)
	sr := io.NewSectionReader(ra, offset, size-offset)
	if _, err := io.ReadFull(sr, blob); err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read archive index")
	}

	raw, err := unpickleIndexBlob(blob)
	if err != nil {
		return nil, err
	}

	return normalizeIndex(raw, size)
}

// unpickleIndexBlob tries zlib first, then the raw blob.
func unpickleIndexBlob(blob []byte) (map[string]any, error) {
	if zr, err := zlib.NewReader(bytes.NewReader(blob)); err == nil {
		decompressed, readErr := io.ReadAll(zr)
		_ = zr.Close()
		if readErr == nil {
			if m, err := unpickleIndexMap(decompressed); err == nil {
				return m, nil
			}
		}
	}

	m, err := unpickleIndexMap(blob)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveIndex,
			"cannot deserialize archive index (tried compressed and raw)")
	}
	return m, nil
}

func unpickleIndexMap(data []byte) (map[string]any, error) {
	v, err := unpickle(data)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Newf(errors.ErrArchiveIndex, "index is %T, want a mapping", v)
	}
	return m, nil
}

// normalizeIndex converts the loosely-typed pickled mapping into typed
// entries, validating arity, field types and byte ranges at the boundary.
func normalizeIndex(raw map[string]any, archiveSize int64) (Index, error) {
	index := make(Index, len(raw))
	for name, value := range raw {
		entry, err := normalizeEntry(name, value, archiveSize)
		if err != nil {
			return nil, err
		}
		index[path.Clean(strings.ReplaceAll(name, "\\", "/"))] = entry
	}
	return index, nil
}

func normalizeEntry(name string, value any, archiveSize int64) (IndexEntry, error) {
	tuple, ok := value.([]any)
	if !ok {
		return IndexEntry{}, errors.Newf(errors.ErrArchiveIndex,
			"index entry %q is %T, want a tuple", name, value)
	}

	// Some archives wrap the tuple in a one-element list.
	if len(tuple) == 1 {
		if inner, ok := tuple[0].([]any); ok {
			tuple = inner
		}
	}

	if len(tuple) < 2 || len(tuple) > 3 {
		return IndexEntry{}, errors.Newf(errors.ErrArchiveIndex,
			"index entry %q has %d fields, want 2 or 3", name, len(tuple))
	}

	offset, err := entryInt(name, "offset", tuple[0])
	if err != nil {
		return IndexEntry{}, err
	}
	length, err := entryInt(name, "length", tuple[1])
	if err != nil {
		return IndexEntry{}, err
	}

	if offset+length > uint64(archiveSize) {
		return IndexEntry{}, errors.Newf(errors.ErrArchiveIndex,
			"index entry %q spans [%d, %d) beyond archive of %d bytes",
			name, offset, offset+length, archiveSize)
	}

	entry := IndexEntry{Offset: offset, Length: length}

	if len(tuple) == 3 {
		key, err := entryKey(name, tuple[2])
		if err != nil {
			return IndexEntry{}, err
		}
		entry.Key = key
	}

	return entry, nil
}

func entryInt(name, field string, v any) (uint64, error) {
	n, ok := v.(int64)
	if !ok {
		return 0, errors.Newf(errors.ErrArchiveIndex,
			"index entry %q: %s is %T, want an integer", name, field, v)
	}
	if n < 0 {
		return 0, errors.Newf(errors.ErrArchiveIndex,
			"index entry %q: negative %s %d", name, field, n)
	}
	return uint64(n), nil
}

// entryKey extracts the per-entry obfuscation key. An empty key means "no
// obfuscation", the same as an absent one.
func entryKey(name string, v any) ([]byte, error) {
	switch key := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		if len(key) == 0 {
			return nil, nil
		}
		return key, nil
	case string:
		if len(key) == 0 {
			return nil, nil
		}
		return []byte(key), nil
	}
	return nil, errors.Newf(errors.ErrArchiveIndex,
		"index entry %q: key is %T, want bytes", name, v)
}
