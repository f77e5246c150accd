// Package resolve turns package names into install plans.
//
// It answers two questions: which package provides a given name, and
// what is the full dependency closure of a set of packages. Providers
// are merged across all configured indexes, and when several packages
// provide the same name a fixed chain of tie-breakers picks one:
//
//  1. A single provider wins outright.
//  2. A provider whose own name matches the requested name.
//  3. A provider that is already part of the install set.
//  4. A provider that is installed in the target environment.
//  5. A provider explicitly selected via overrides.
//  6. The provider(s) with the highest declared priority.
//  7. The provider with the shortest name.
//
// Rule 7 is a guess and is reported through the ambiguity hook; apk
// itself would refuse to choose at that point.
package resolve

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
	"github.com/kalimokai/apkgraph/pkg/index"
	"github.com/kalimokai/apkgraph/pkg/observability"
	"github.com/kalimokai/apkgraph/pkg/version"
)

// Selection carries the context consulted when more than one package
// provides a name. All fields are optional; a zero Selection disables
// rules 3 to 5.
type Selection struct {
	// InstallSet contains the packages that will be installed anyway.
	InstallSet []string

	// Installed is the view of the target environment's installed
	// database.
	Installed index.InstalledView

	// Overrides maps a provided name to the provider the user selected
	// for it.
	Overrides map[string]string

	Logger *log.Logger
}

func (s Selection) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// PickProvider chooses one provider for name out of providers,
// following the tie-breaker chain documented on the package. It returns
// nil when providers is empty; with at least one provider it always
// chooses.
func PickProvider(ctx context.Context, name string, providers *index.ProviderSet, sel Selection) *index.Package {
	if providers.Len() == 0 {
		return nil
	}
	logger := sel.logger()
	names := providers.Names()
	logger.Debug("providers found", "pkgname", name, "providers", strings.Join(names, ", "))

	// Only one provider.
	if providers.Len() == 1 {
		pkg, _ := providers.Get(names[0])
		return pkg
	}

	// Provider with the same package name.
	if pkg, ok := providers.Get(name); ok {
		logger.Debug("choosing provider of the same name", "pkgname", name)
		return pkg
	}

	// Provider that will be installed anyway.
	for _, providerName := range names {
		if slices.Contains(sel.InstallSet, providerName) {
			logger.Debug("choosing provider that will be installed anyway",
				"pkgname", name, "provider", providerName)
			pkg, _ := providers.Get(providerName)
			return pkg
		}
	}

	// Provider that is already installed.
	for _, providerName := range names {
		if _, ok := sel.Installed[providerName]; ok {
			logger.Debug("choosing provider that is already installed",
				"pkgname", name, "provider", providerName)
			pkg, _ := providers.Get(providerName)
			return pkg
		}
	}

	// Explicitly selected provider.
	if override := sel.Overrides[name]; override != "" {
		if pkg, ok := providers.Get(override); ok {
			logger.Debug("choosing explicitly selected provider",
				"pkgname", name, "provider", override)
			return pkg
		}
	}

	// Highest declared priority.
	best := HighestPriority(providers, name, logger)
	if best.Len() == 1 {
		pkg, _ := best.Get(best.Names()[0])
		return pkg
	}

	// Shortest name. Note: apk itself would fail here.
	chosen := Shortest(best, name, logger)
	observability.Resolve().OnAmbiguousProvider(ctx, name, best.Names(), chosen.Name)
	return chosen
}

// HighestPriority filters providers down to the ones sharing the
// highest declared provider priority. Undeclared priorities (-1) never
// make the cut, but a declared priority of zero does: the running
// maximum starts at zero, so explicit zeroes are collected until a
// higher declaration clears them. When nothing declares a priority the
// input is returned unchanged.
func HighestPriority(providers *index.ProviderSet, name string, logger *log.Logger) *index.ProviderSet {
	if logger == nil {
		logger = log.Default()
	}
	maxPriority := 0
	picked := index.NewProviderSet()
	for _, providerName := range providers.Names() {
		provider, _ := providers.Get(providerName)
		if provider.ProviderPriority > maxPriority {
			picked = index.NewProviderSet()
			maxPriority = provider.ProviderPriority
		}
		if provider.ProviderPriority == maxPriority {
			picked.Set(providerName, provider)
		}
	}
	if picked.Len() > 0 {
		logger.Debug("picked providers with highest priority", "pkgname", name,
			"priority", maxPriority, "providers", strings.Join(picked.Names(), ", "))
		return picked
	}
	return providers
}

// Shortest returns the provider with the shortest package name,
// preferring the earliest added on equal length. Must not be called
// with an empty set.
func Shortest(providers *index.ProviderSet, name string, logger *log.Logger) *index.Package {
	if logger == nil {
		logger = log.Default()
	}
	names := providers.Names()
	shortest := names[0]
	for _, candidate := range names[1:] {
		if len(candidate) < len(shortest) {
			shortest = candidate
		}
	}
	if len(names) != 1 {
		logger.Debug("multiple providers, picked shortest", "pkgname", name,
			"providers", strings.Join(names, ", "), "picked", shortest)
	}
	pkg, _ := providers.Get(shortest)
	return pkg
}

// Providers merges the provider sets for name across the engine's
// indexes, in index order. When the same provider appears in several
// indexes the higher version wins; on a tie the later index wins.
// With mustExist set, an empty result is an error.
func (e *Engine) Providers(ctx context.Context, name string, mustExist bool) (*index.ProviderSet, error) {
	name = index.StripConstraint(name)
	logger := e.logger()

	ret := index.NewProviderSet()
	for _, path := range e.Indexes {
		view, err := e.Loader.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		set, ok := view[name]
		if !ok {
			continue
		}
		for _, providerName := range set.Names() {
			provider, _ := set.Get(providerName)
			if existing, ok := ret.Get(providerName); ok {
				if version.Compare(provider.Version, existing.Version) == -1 {
					logger.Debug("skipping lower provider version", "pkgname", name,
						"provider", providerName, "version", provider.Version,
						"higher", existing.Version, "index", path)
					continue
				}
			}
			ret.Set(providerName, provider)
		}
	}

	if ret.Len() == 0 && mustExist {
		logger.Debug("searched indexes", "indexes", strings.Join(e.Indexes, ", "))
		return nil, apkerr.New(apkerr.ErrCodePackageNotFound,
			"could not find package %q in any index", name)
	}
	return ret, nil
}

// Package resolves name to a single package: the provider of the same
// name when present, otherwise the shortest-named provider. With
// mustExist unset a missing package yields (nil, nil).
func (e *Engine) Package(ctx context.Context, name string, mustExist bool) (*index.Package, error) {
	name = index.StripConstraint(name)
	providers, err := e.Providers(ctx, name, mustExist)
	if err != nil {
		return nil, err
	}
	if pkg, ok := providers.Get(name); ok {
		return pkg, nil
	}
	if providers.Len() > 0 {
		return Shortest(providers, name, e.logger()), nil
	}
	if mustExist {
		return nil, apkerr.New(apkerr.ErrCodePackageNotFound,
			"package %q not found in any index", name)
	}
	return nil, nil
}
