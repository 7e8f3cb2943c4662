package mods

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/renmod/renmod/pkg/errors"
	"github.com/renmod/renmod/pkg/types"
)

// ModConfigFilename is the optional per-mod descriptor file.
const ModConfigFilename = ".renmod.toml"

// ModConfig is a mod author's optional descriptor. All fields are optional;
// a missing file yields the zero value.
type ModConfig struct {
	// Name overrides the directory-derived mod name
	Name string `toml:"name"`

	// IgnorePatterns are additional scan excludes for this mod only
	IgnorePatterns []string `toml:"ignore_patterns"`
}

// LoadModConfig reads a mod's descriptor file when present.
func LoadModConfig(fs types.FS, modRoot string) (ModConfig, error) {
	var cfg ModConfig

	data, err := fs.ReadFile(filepath.Join(modRoot, ModConfigFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", ModConfigFilename)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, errors.ErrModInvalid, "malformed %s", ModConfigFilename)
	}
	return cfg, nil
}
