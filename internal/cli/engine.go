package cli

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/kalimokai/apkgraph/pkg/config"
	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
	"github.com/kalimokai/apkgraph/pkg/index"
	"github.com/kalimokai/apkgraph/pkg/recipe"
	"github.com/kalimokai/apkgraph/pkg/resolve"
)

// engineOpts holds the flags shared by commands that resolve against
// indexes: where the indexes, recipes and installed database live.
// Flags override values from the config file.
type engineOpts struct {
	configPath  string
	indexes     []string
	recipes     string
	installedDB string
}

func (o *engineOpts) register(flags *pflag.FlagSet) {
	flags.StringVarP(&o.configPath, "config", "c", "", "config file (TOML)")
	flags.StringArrayVarP(&o.indexes, "index", "i", nil, "APKINDEX path, repeatable, in priority order")
	flags.StringVar(&o.recipes, "recipes", "", "recipe tree root")
	flags.StringVar(&o.installedDB, "installed-db", "", "installed database of the target environment")
}

// load merges the config file (when given) with the flags, flags
// winning.
func (o *engineOpts) load() (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if len(o.indexes) > 0 {
		cfg.Indexes = o.indexes
	}
	if o.recipes != "" {
		cfg.Recipes = o.recipes
	}
	if o.installedDB != "" {
		cfg.InstalledDB = o.installedDB
	}
	return cfg, nil
}

// engine builds the resolver from the merged configuration. At least
// one index is required.
func (o *engineOpts) engine(ctx context.Context) (*resolve.Engine, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, err
	}
	if len(cfg.Indexes) == 0 {
		return nil, apkerr.New(apkerr.ErrCodeInvalidConfig,
			"no indexes configured, pass --index or set indexes in the config file")
	}

	logger := loggerFromContext(ctx)
	engine := &resolve.Engine{
		Loader:      index.NewLoader(logger),
		Indexes:     cfg.Indexes,
		InstalledDB: cfg.InstalledDB,
		Overrides:   cfg.Providers,
		Logger:      logger,
	}
	if cfg.Recipes != "" {
		engine.Recipes = recipe.NewTree(cfg.Recipes, logger)
	}
	return engine, nil
}
