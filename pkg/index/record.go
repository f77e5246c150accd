// Package index parses APKINDEX files and installed-package databases
// into provider views, with an mtime-keyed parse cache.
//
// An APKINDEX describes the binary packages of one repository: a series
// of blocks separated by blank lines, each block a set of single-letter
// keys ("P:" for the package name, "V:" for the version and so on). The
// same format is used for the installed database inside a rootfs, which
// is why both loaders share one parser.
//
// Views are keyed by provided name, not package name: a package is
// reachable under its own name and under every entry of its "p:" list.
// Multiple packages may provide the same name, so the multi-provider
// View keeps an insertion-ordered ProviderSet per name. Order matters
// downstream, where provider selection breaks ties by scan order.
package index

// Package is one parsed APKINDEX block.
//
// Depends and Provides carry bare names: version constraints are cut
// off during parsing, so "musl>=1.2" is stored as "musl". Conflict
// markers ("!pkg") are kept as-is.
type Package struct {
	Name      string
	Version   string
	Arch      string
	Origin    string
	Timestamp string
	Depends   []string
	Provides  []string

	// ProviderPriority is the value of the "k:" key, or -1 when the
	// block does not declare one. Zero is a meaningful declared value
	// and must stay distinguishable from absent.
	ProviderPriority int
}

// Virtual reports whether the block describes a virtual package. Virtual
// packages have no timestamp and no downloadable artifact; they are
// skipped when building views.
func (p *Package) Virtual() bool {
	return p.Timestamp == ""
}

// ProviderSet is an insertion-ordered set of packages providing one
// name. Iteration order is the order blocks were first added, which
// downstream heuristics rely on; replacing an existing entry keeps its
// original position.
type ProviderSet struct {
	names  []string
	byName map[string]*Package
}

// NewProviderSet returns an empty set.
func NewProviderSet() *ProviderSet {
	return &ProviderSet{byName: make(map[string]*Package)}
}

// Len returns the number of distinct providing packages.
func (s *ProviderSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the providing package names in insertion order. The
// returned slice is shared; callers must not modify it.
func (s *ProviderSet) Names() []string {
	if s == nil {
		return nil
	}
	return s.names
}

// Get returns the package stored under name.
func (s *ProviderSet) Get(name string) (*Package, bool) {
	if s == nil {
		return nil, false
	}
	pkg, ok := s.byName[name]
	return pkg, ok
}

// Set stores pkg under name, preserving the position of an existing
// entry.
func (s *ProviderSet) Set(name string, pkg *Package) {
	if _, ok := s.byName[name]; !ok {
		s.names = append(s.names, name)
	}
	s.byName[name] = pkg
}

// Packages returns the stored packages in insertion order.
func (s *ProviderSet) Packages() []*Package {
	if s == nil {
		return nil
	}
	out := make([]*Package, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, s.byName[name])
	}
	return out
}

// View maps each provided name to the set of packages providing it.
// Built from an index parsed in multi-provider mode.
type View map[string]*ProviderSet

// InstalledView maps each provided name to the single package providing
// it, as parsed from an installed database where at most one provider
// per name is present.
type InstalledView map[string]*Package
