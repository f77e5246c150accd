package resolve

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
	"github.com/kalimokai/apkgraph/pkg/index"
	"github.com/kalimokai/apkgraph/pkg/observability"
	"github.com/kalimokai/apkgraph/pkg/version"
)

// Candidate is a resolvable package: either a binary package from an
// index or a recipe that would build one.
type Candidate struct {
	Name    string
	Version string
	Depends []string
}

// RecipeSource supplies build recipes by package name. Candidate
// returns (nil, nil) when no recipe exists for the name.
type RecipeSource interface {
	Candidate(name string) (*Candidate, error)
}

// Plan is the result of a dependency recursion: the initial packages
// plus their full closure, in resolution order. Conflicting packages
// keep their "!" prefix.
type Plan struct {
	Packages []string

	// RequiredBy maps each dependency, as spelled in the depending
	// package, to the packages that pulled it in. Initial packages are
	// absent; they are required by the request itself.
	RequiredBy map[string][]string
}

// Engine resolves dependency closures against a set of indexes and an
// optional recipe tree.
type Engine struct {
	Loader  *index.Loader
	Indexes []string

	// Recipes supplies build recipes that can shadow binary packages.
	// Optional.
	Recipes RecipeSource

	// InstalledDB is the path to the installed database of the target
	// environment, consulted for provider selection. Optional.
	InstalledDB string

	// Overrides maps provided names to explicitly selected providers.
	Overrides map[string]string

	Logger *log.Logger
}

func (e *Engine) logger() *log.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return log.Default()
}

// Recurse computes the dependency closure of names. The result contains
// the initial names plus every transitive dependency, each resolved to
// its providing package, in the order they were first resolved.
//
// A dependency that cannot be resolved is fatal, unless it is marked
// conflicting ("!pkg"): a conflict with a provider ends up in the plan
// with its marker, a conflict without one is dropped, since a package
// that no longer exists cannot be installed either way.
func (e *Engine) Recurse(ctx context.Context, names []string) (*Plan, error) {
	logger := e.logger()
	for _, name := range names {
		if err := apkerr.ValidatePackageName(strings.TrimLeft(name, "!")); err != nil {
			return nil, err
		}
	}
	logger.Debug("calculating dependencies", "packages", strings.Join(names, ", "))

	observability.Resolve().OnRecurseStart(ctx, names)
	start := time.Now()
	plan, err := e.recurse(ctx, names)
	if err != nil {
		observability.Resolve().OnRecurseComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}
	observability.Resolve().OnRecurseComplete(ctx, len(plan.Packages), time.Since(start), nil)
	return plan, nil
}

func (e *Engine) recurse(ctx context.Context, names []string) (*Plan, error) {
	logger := e.logger()

	todo := slices.Clone(names)
	requiredBy := make(map[string][]string)
	var ret []string

	for len(todo) > 0 {
		entry := todo[0]
		todo = todo[1:]

		// Skip entries that already resolved to themselves.
		if slices.Contains(ret, entry) {
			continue
		}

		isConflict := strings.HasPrefix(entry, "!")
		name := strings.TrimLeft(entry, "!")

		// Everything resolved or queued so far counts as "will be
		// installed anyway" for provider selection.
		installSet := append(slices.Clone(ret), todo...)

		candidate, err := e.fromRecipes(name)
		if err != nil {
			return nil, err
		}
		candidate, err = e.fromIndex(ctx, name, installSet, candidate)
		if err != nil {
			return nil, err
		}

		if candidate == nil {
			if isConflict {
				// A conflicting dependency that no longer exists would
				// not be installed anyway.
				continue
			}
			source := "world"
			if by := requiredBy[name]; len(by) > 0 {
				source = strings.Join(by, ", ")
			}
			return nil, apkerr.New(apkerr.ErrCodeMissingDependency,
				"could not find dependency %q in the recipe tree or any package index (required by %q)",
				name, source)
		}

		resolved := candidate.Name
		if isConflict {
			resolved = "!" + resolved
		}

		if slices.Contains(ret, resolved) {
			logger.Debug("already resolved", "pkgname", resolved)
			continue
		}
		if !isConflict && len(candidate.Depends) > 0 {
			logger.Debug("depends on", "pkgname", resolved,
				"depends", strings.Join(candidate.Depends, ", "))
			todo = append(todo, candidate.Depends...)
			for _, dep := range candidate.Depends {
				if !slices.Contains(requiredBy[dep], name) {
					requiredBy[dep] = append(requiredBy[dep], name)
				}
			}
		}
		ret = append(ret, resolved)
	}

	return &Plan{Packages: ret, RequiredBy: requiredBy}, nil
}

// fromRecipes looks name up in the recipe tree.
func (e *Engine) fromRecipes(name string) (*Candidate, error) {
	if e.Recipes == nil {
		return nil, nil
	}
	candidate, err := e.Recipes.Candidate(name)
	if err != nil {
		return nil, err
	}
	if candidate != nil {
		e.logger().Debug("provided by recipe", "pkgname", name,
			"provider", candidate.Name, "version", candidate.Version)
	}
	return candidate, nil
}

// fromIndex resolves name against the indexes and weighs the result
// against the recipe candidate: the binary package wins unless the
// recipe version is strictly higher, so the closure sees the binary's
// dependencies (including sonames) whenever the binary is current.
func (e *Engine) fromIndex(ctx context.Context, name string, installSet []string, recipe *Candidate) (*Candidate, error) {
	provider, err := e.provider(ctx, name, installSet)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return recipe, nil
	}
	logger := e.logger()
	if recipe != nil {
		if version.Compare(recipe.Version, provider.Version) == 1 {
			logger.Debug("binary package is outdated", "pkgname", name,
				"recipe", recipe.Version, "binary", provider.Version)
			return recipe, nil
		}
		logger.Debug("binary package is up to date, using binary dependencies", "pkgname", name)
	}
	return &Candidate{
		Name:    provider.Name,
		Version: provider.Version,
		Depends: provider.Depends,
	}, nil
}

// Pick resolves name to the provider the tie-breaker chain would
// choose, without recursing into dependencies. A name with no provider
// is an error.
func (e *Engine) Pick(ctx context.Context, name string) (*index.Package, error) {
	pkg, err := e.provider(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apkerr.New(apkerr.ErrCodePackageNotFound,
			"could not find package %q in any index", index.StripConstraint(name))
	}
	return pkg, nil
}

// provider picks one provider for name, consulting the installed
// database of the target environment when configured.
func (e *Engine) provider(ctx context.Context, name string, installSet []string) (*index.Package, error) {
	providers, err := e.Providers(ctx, name, false)
	if err != nil {
		return nil, err
	}
	if providers.Len() == 0 {
		return nil, nil
	}
	sel := Selection{
		InstallSet: installSet,
		Overrides:  e.Overrides,
		Logger:     e.Logger,
	}
	if providers.Len() > 1 && e.InstalledDB != "" {
		installed, err := e.Loader.LoadInstalled(ctx, e.InstalledDB)
		if err != nil {
			return nil, err
		}
		sel.Installed = installed
	}
	return PickProvider(ctx, index.StripConstraint(name), providers, sel), nil
}
