package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	renmoderr "github.com/renmod/renmod/pkg/errors"
)

//go:embed embedded/renmod.toml
var defaultConfig []byte

// Mods holds mod scanning and conflict-resolution settings
type Mods struct {
	// Prefix is prepended (with the mod priority) to conflict-renamed files
	Prefix string `koanf:"prefix"`

	// ScriptExtensions are the extensions recognized as Ren'Py scripts
	ScriptExtensions []string `koanf:"script_extensions"`

	// ContentRootCandidates are checked in order when resolving a mod's
	// content root; the first existing directory wins
	ContentRootCandidates []string `koanf:"content_root_candidates"`

	// IgnorePatterns are pathrules patterns excluded from mod scans
	IgnorePatterns []string `koanf:"ignore_patterns"`
}

// Game holds Ren'Py game folder detection settings
type Game struct {
	// Markers are filenames whose presence identifies a game folder
	Markers []string `koanf:"markers"`

	// CommonLocations are checked before falling back to a recursive search
	CommonLocations []string `koanf:"common_locations"`

	// SkipDirs are directory names excluded from the recursive search
	SkipDirs []string `koanf:"skip_dirs"`
}

// Config is the root configuration structure
type Config struct {
	Mods Mods `koanf:"mods"`
	Game Game `koanf:"game"`
}

// rawBytesProvider implements a koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Default returns the built-in configuration without any file overrides.
func Default() *Config {
	cfg, err := load("")
	if err != nil {
		// The embedded defaults are validated by tests; a parse failure
		// here is a build defect, not a runtime condition.
		panic(err)
	}
	return cfg
}

// Load returns the configuration for a run rooted at dir: built-in defaults
// overridden by renmod.toml / .renmod.toml in dir when present.
func Load(dir string) (*Config, error) {
	return load(dir)
}

func load(dir string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, renmoderr.Wrap(err, renmoderr.ErrConfigParse, "failed to load built-in defaults")
	}

	if dir != "" {
		for _, filename := range []string{".renmod.toml", "renmod.toml"} {
			path := filepath.Join(dir, filename)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, renmoderr.Wrapf(err, renmoderr.ErrConfigLoad, "failed to load config from %s", path)
				}
				break
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, renmoderr.Wrap(err, renmoderr.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}
