// Package recipe loads build recipes from a recipe tree.
//
// A recipe tree is a directory hierarchy where each package lives in a
// directory named after it, containing a recipe.toml with at least a
// name and version. Recipes shadow binary packages during resolution
// when their version is newer than what the indexes offer.
package recipe

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
	"github.com/kalimokai/apkgraph/pkg/resolve"
	"github.com/kalimokai/apkgraph/pkg/version"
)

// FileName is the recipe file looked for in each package directory.
const FileName = "recipe.toml"

// Recipe describes how one package is built.
type Recipe struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Release int    `toml:"release"`

	Depends []string `toml:"depends"`
}

// FullVersion combines version and release the way binary packages
// carry them.
func (r *Recipe) FullVersion() string {
	return fmt.Sprintf("%s-r%d", r.Version, r.Release)
}

// Parse reads and validates a single recipe file.
func Parse(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apkerr.Wrap(apkerr.ErrCodeFileNotFound, err, "read recipe %s", path)
	}
	var r Recipe
	if err := toml.Unmarshal(data, &r); err != nil {
		return nil, apkerr.Wrap(apkerr.ErrCodeInvalidRecipe, err, "parse recipe %s", path)
	}
	if r.Name == "" {
		return nil, apkerr.New(apkerr.ErrCodeInvalidRecipe, "recipe %s has no name", path)
	}
	if r.Version == "" {
		return nil, apkerr.New(apkerr.ErrCodeInvalidRecipe, "recipe %s has no version", path)
	}
	if !version.Validate(r.FullVersion()) {
		return nil, apkerr.New(apkerr.ErrCodeInvalidRecipe,
			"recipe %s has invalid version %q", path, r.FullVersion())
	}
	return &r, nil
}

// Tree is a lazily scanned recipe tree. The scan runs once on first
// use and maps each package name to its directory; a package appearing
// in more than one directory is fatal. Safe for concurrent use.
type Tree struct {
	Root   string
	Logger *log.Logger

	mu      sync.Mutex
	scanned bool
	scanErr error
	dirs    map[string]string
}

// NewTree creates a Tree rooted at root. A nil logger falls back to the
// package default.
func NewTree(root string, logger *log.Logger) *Tree {
	if logger == nil {
		logger = log.Default()
	}
	return &Tree{Root: root, Logger: logger}
}

func (t *Tree) scan() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.scanned {
		return t.scanErr
	}
	t.scanned = true
	t.dirs = make(map[string]string)

	t.scanErr = filepath.WalkDir(t.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != FileName {
			return nil
		}
		dir := filepath.Dir(path)
		name := filepath.Base(dir)
		if existing, ok := t.dirs[name]; ok {
			return apkerr.New(apkerr.ErrCodeDuplicateRecipe,
				"package %q exists in multiple directories: %s, %s", name, existing, dir)
		}
		t.dirs[name] = dir
		return nil
	})
	if t.scanErr != nil && apkerr.GetCode(t.scanErr) == "" {
		t.scanErr = apkerr.Wrap(apkerr.ErrCodeInvalidRecipe, t.scanErr, "scan recipe tree %s", t.Root)
	}
	return t.scanErr
}

// Find returns the directory of the recipe for name, or "" when the
// tree has none.
func (t *Tree) Find(name string) (string, error) {
	if err := t.scan(); err != nil {
		return "", err
	}
	dir, ok := t.dirs[name]
	if !ok {
		return "", nil
	}
	return dir, nil
}

// Load parses the recipe for name. Returns (nil, nil) when the tree has
// no recipe for it; a recipe whose declared name does not match its
// directory is fatal.
func (t *Tree) Load(name string) (*Recipe, error) {
	dir, err := t.Find(name)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, nil
	}
	r, err := Parse(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	if r.Name != name {
		return nil, apkerr.New(apkerr.ErrCodeInvalidRecipe,
			"recipe in %s declares name %q, expected %q", dir, r.Name, name)
	}
	return r, nil
}

// Candidate implements resolve.RecipeSource.
func (t *Tree) Candidate(name string) (*resolve.Candidate, error) {
	r, err := t.Load(name)
	if err != nil || r == nil {
		return nil, err
	}
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Debug("recipe found", "pkgname", name, "version", r.FullVersion())
	return &resolve.Candidate{
		Name:    r.Name,
		Version: r.FullVersion(),
		Depends: r.Depends,
	}, nil
}
