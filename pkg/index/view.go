package index

import (
	"github.com/charmbracelet/log"

	"github.com/kalimokai/apkgraph/pkg/version"
)

// addProvider registers block under alias, keeping the existing entry
// when it has a strictly higher version. Alias is the provided name the
// block is reachable under; keyed per providing package so two packages
// providing the same alias coexist.
func (v View) addProvider(alias string, block *Package) {
	set, ok := v[alias]
	if !ok {
		set = NewProviderSet()
		v[alias] = set
	}
	if existing, ok := set.Get(block.Name); ok {
		if version.Compare(existing.Version, block.Version) == 1 {
			return
		}
	}
	set.Set(block.Name, block)
}

// addProvider registers block under alias in a single-provider view.
// Later blocks replace earlier ones unless the earlier version is
// strictly higher.
func (v InstalledView) addProvider(alias string, block *Package) {
	if existing, ok := v[alias]; ok {
		if version.Compare(existing.Version, block.Version) == 1 {
			return
		}
	}
	v[alias] = block
}

// buildView assembles the multi-provider view from parsed blocks.
// Virtual packages are skipped; every other block is registered under
// its own name and under each of its provides entries.
func buildView(blocks []*Package, logger *log.Logger) View {
	ret := make(View)
	for _, block := range blocks {
		if block.Virtual() {
			logger.Debug("skipping virtual package", "pkgname", block.Name)
			continue
		}
		ret.addProvider(block.Name, block)
		for _, alias := range block.Provides {
			ret.addProvider(alias, block)
		}
	}
	return ret
}

// buildInstalledView assembles the single-provider view used for
// installed databases, where each provided name maps to exactly one
// package.
func buildInstalledView(blocks []*Package, logger *log.Logger) InstalledView {
	ret := make(InstalledView)
	for _, block := range blocks {
		if block.Virtual() {
			logger.Debug("skipping virtual package", "pkgname", block.Name)
			continue
		}
		ret.addProvider(block.Name, block)
		for _, alias := range block.Provides {
			ret.addProvider(alias, block)
		}
	}
	return ret
}
