// Package config loads apkgraph configuration files.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
)

// Config describes where indexes and recipes live and how ambiguous
// providers are resolved.
type Config struct {
	// Arch is the package architecture the indexes were built for.
	Arch string `toml:"arch"`

	// Indexes lists APKINDEX paths in priority order.
	Indexes []string `toml:"indexes"`

	// Recipes is the root of the recipe tree. Optional.
	Recipes string `toml:"recipes"`

	// InstalledDB is the installed database of the target environment,
	// consulted when picking between multiple providers. Optional.
	InstalledDB string `toml:"installed_db"`

	// Providers maps a provided name to the package that should
	// provide it.
	Providers map[string]string `toml:"providers"`
}

// Default returns a config with no indexes and the native architecture
// unset; callers are expected to fill in at least Indexes.
func Default() *Config {
	return &Config{Providers: make(map[string]string)}
}

// Load reads a TOML config file. Unknown keys are fatal, so typos do
// not silently disable settings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apkerr.Wrap(apkerr.ErrCodeFileNotFound, err, "read config %s", path)
	}
	cfg := Default()
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, apkerr.Wrap(apkerr.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, apkerr.New(apkerr.ErrCodeInvalidConfig,
			"unknown key %q in config %s", undecoded[0].String(), path)
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]string)
	}
	return cfg, nil
}
