package rpa

import (
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/renmod/renmod/pkg/errors"
	"github.com/renmod/renmod/pkg/filesystem"
	"github.com/renmod/renmod/pkg/logging"
	"github.com/renmod/renmod/pkg/types"
)

// ExtractOptions controls archive extraction.
type ExtractOptions struct {
	// Files restricts extraction to the given archive-relative names.
	// Nil extracts everything.
	Files []string

	// FS is the destination filesystem; defaults to the OS filesystem.
	FS types.FS
}

// ExtractResult reports the outcome of an extraction run. Per-entry
// failures do not abort the run; they are counted here and logged.
type ExtractResult struct {
	Extracted int
	Failed    int
}

// ReadEntry reads and deobfuscates the bytes of one index entry.
func (r *Reader) ReadEntry(name string) ([]byte, error) {
	entry, ok := r.index[name]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "entry %q not in archive index", name)
	}

	data := make([]byte, entry.Length)
	if _, err := r.ra.ReadAt(data, int64(entry.Offset)); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, errors.ErrEntryExtract, "cannot read entry %q", name)
	}

	return deobfuscate(data, entry.Key), nil
}

// Extract writes entries to outputRoot, creating parent directories as
// needed. Archive forward slashes are translated to the host separator.
func (r *Reader) Extract(outputRoot string, opts ExtractOptions) (ExtractResult, error) {
	logger := logging.GetLogger("rpa.extract")

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	var only map[string]bool
	if opts.Files != nil {
		only = make(map[string]bool, len(opts.Files))
		for _, name := range opts.Files {
			only[name] = true
		}
	}

	if err := fs.MkdirAll(outputRoot, 0755); err != nil {
		return ExtractResult{}, errors.Wrap(err, errors.ErrDirCreate, "cannot create output directory")
	}

	var result ExtractResult
	for _, name := range r.index.Names() {
		if only != nil && !only[name] {
			continue
		}

		if err := r.extractEntry(fs, outputRoot, name); err != nil {
			result.Failed++
			logger.Error().Err(err).Str("entry", name).Msg("Failed to extract entry")
			continue
		}
		result.Extracted++
		logger.Trace().Str("entry", name).Msg("Extracted entry")
	}

	logger.Info().
		Int("extracted", result.Extracted).
		Int("failed", result.Failed).
		Str("output", outputRoot).
		Msg("Extraction finished")

	return result, nil
}

func (r *Reader) extractEntry(fs types.FS, outputRoot, name string) error {
	relPath, err := sanitizeEntryPath(name)
	if err != nil {
		return err
	}

	data, err := r.ReadEntry(name)
	if err != nil {
		return err
	}

	outPath := filepath.Join(outputRoot, filepath.FromSlash(relPath))
	if dir := filepath.Dir(outPath); dir != "" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for %q", name)
		}
	}

	if err := fs.WriteFile(outPath, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrEntryExtract, "cannot write %q", name)
	}
	return nil
}

// sanitizeEntryPath rejects entry names that would escape the output root.
func sanitizeEntryPath(name string) (string, error) {
	cleaned := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if cleaned == "." || cleaned == "" ||
		strings.HasPrefix(cleaned, "/") ||
		cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.Newf(errors.ErrEntryExtract, "entry path %q escapes output root", name)
	}
	if len(cleaned) > 1 && cleaned[1] == ':' {
		return "", errors.Newf(errors.ErrEntryExtract, "entry path %q has a drive prefix", name)
	}
	return cleaned, nil
}

// deobfuscate XORs data with a repeating key. A nil or empty key means the
// entry is stored as plaintext and the data is returned unchanged.
func deobfuscate(data, key []byte) []byte {
	if len(key) == 0 {
		return data
	}
	for i := range data {
		data[i] ^= key[i%len(key)]
	}
	return data
}
