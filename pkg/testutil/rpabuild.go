package testutil

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// ArchiveEntry describes one file to store in a test archive. A non-empty
// Key stores the data XOR-obfuscated with that key.
type ArchiveEntry struct {
	Name string
	Data []byte
	Key  []byte
}

// ArchiveOptions controls the reference archive writer.
type ArchiveOptions struct {
	// Magic is the 8-byte header magic; defaults to "RPA-3.0 "
	Magic string

	// RawIndex stores the pickled index uncompressed instead of zlib
	RawIndex bool
}

// BuildArchive builds an archive in memory using the reference layout:
// header line, entry payloads, then the pickled (and normally
// zlib-compressed) index at the offset named in the header. It exists only
// so round-trip tests have a known-good writer; the production code is
// strictly read-only.
func BuildArchive(t *testing.T, entries []ArchiveEntry, opts ArchiveOptions) []byte {
	t.Helper()

	magic := opts.Magic
	if magic == "" {
		magic = "RPA-3.0 "
	}
	require.Len(t, magic, 8, "archive magic must be 8 bytes")

	// Header is fixed-width so payload offsets are known up front.
	headerLen := len(magic) + 16 + 1

	var payload bytes.Buffer
	index := make(map[string][]any, len(entries))
	for _, entry := range entries {
		offset := headerLen + payload.Len()
		stored := make([]byte, len(entry.Data))
		copy(stored, entry.Data)
		for i := range stored {
			if len(entry.Key) > 0 {
				stored[i] ^= entry.Key[i%len(entry.Key)]
			}
		}
		payload.Write(stored)

		tuple := []any{offset, len(entry.Data)}
		if len(entry.Key) > 0 {
			tuple = append(tuple, entry.Key)
		}
		index[entry.Name] = tuple
	}

	indexOffset := headerLen + payload.Len()

	pickled := pickleIndex(t, index)
	indexBlob := pickled
	if !opts.RawIndex {
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		_, err := zw.Write(pickled)
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		indexBlob = compressed.Bytes()
	}

	var archive bytes.Buffer
	fmt.Fprintf(&archive, "%s%016x\n", magic, indexOffset)
	archive.Write(payload.Bytes())
	archive.Write(indexBlob)
	return archive.Bytes()
}

// WriteArchive builds an archive and writes it to dir, returning its path.
func WriteArchive(t *testing.T, dir, name string, entries []ArchiveEntry, opts ArchiveOptions) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, BuildArchive(t, entries, opts), 0644))
	return path
}

// pickleIndex encodes the index as a pickle protocol-2 stream the way
// Python 2 would: BINUNICODE names, BININT offsets and SHORT_BINSTRING
// obfuscation keys.
func pickleIndex(t *testing.T, index map[string][]any) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write([]byte{0x80, 0x02}) // PROTO 2
	buf.WriteByte('}')            // EMPTY_DICT
	buf.WriteByte('(')            // MARK

	for name, tuple := range index {
		pickleString(&buf, name)
		for _, field := range tuple {
			switch v := field.(type) {
			case int:
				pickleInt(&buf, int32(v))
			case []byte:
				require.Less(t, len(v), 256, "test obfuscation keys must be short")
				buf.WriteByte('U') // SHORT_BINSTRING
				buf.WriteByte(byte(len(v)))
				buf.Write(v)
			default:
				t.Fatalf("unsupported index field type %T", field)
			}
		}
		switch len(tuple) {
		case 2:
			buf.WriteByte(0x86) // TUPLE2
		case 3:
			buf.WriteByte(0x87) // TUPLE3
		default:
			t.Fatalf("index tuple has %d fields", len(tuple))
		}
	}

	buf.WriteByte('u') // SETITEMS
	buf.WriteByte('.') // STOP
	return buf.Bytes()
}

func pickleString(buf *bytes.Buffer, s string) {
	buf.WriteByte('X') // BINUNICODE
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(s)))
	buf.Write(length[:])
	buf.WriteString(s)
}

func pickleInt(buf *bytes.Buffer, n int32) {
	buf.WriteByte('J') // BININT
	var val [4]byte
	binary.LittleEndian.PutUint32(val[:], uint32(n))
	buf.Write(val[:])
}
