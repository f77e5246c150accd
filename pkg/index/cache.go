package index

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	apkerr "github.com/kalimokai/apkgraph/pkg/errors"
	"github.com/kalimokai/apkgraph/pkg/observability"
)

// cacheEntry holds the parse results for one file at one modification
// time. The two view shapes are cached independently: parsing the same
// file in multi- and single-provider mode yields different structures.
type cacheEntry struct {
	modTime time.Time
	multi   View
	single  InstalledView
}

// Loader parses index files into views and caches the results keyed by
// path and modification time. A changed mtime invalidates both cached
// shapes for that path. Safe for concurrent use.
type Loader struct {
	// Stat reads file metadata for cache validation. Defaults to
	// os.Stat; replaceable to control mtime observation.
	Stat func(name string) (os.FileInfo, error)

	logger  *log.Logger
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewLoader creates a Loader. A nil logger falls back to the package
// default.
func NewLoader(logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		Stat:    os.Stat,
		logger:  logger,
		entries: make(map[string]*cacheEntry),
	}
}

// Load parses the index at path in multi-provider mode, returning the
// cached view when the file has not changed since the last parse. A
// missing file is not an error: repositories without packages for an
// architecture simply have no index, so an empty view is returned.
func (l *Loader) Load(ctx context.Context, path string) (View, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, blocks, parsed, err := l.lookup(ctx, path, func(e *cacheEntry) bool { return e.multi != nil })
	if err != nil {
		return nil, err
	}
	if e == nil {
		return View{}, nil
	}
	if parsed {
		e.multi = buildView(blocks, l.logger)
	}
	return e.multi, nil
}

// LoadInstalled parses the database at path in single-provider mode.
// Caching behaves like Load; a missing database yields an empty view.
func (l *Loader) LoadInstalled(ctx context.Context, path string) (InstalledView, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, blocks, parsed, err := l.lookup(ctx, path, func(e *cacheEntry) bool { return e.single != nil })
	if err != nil {
		return nil, err
	}
	if e == nil {
		return InstalledView{}, nil
	}
	if parsed {
		e.single = buildInstalledView(blocks, l.logger)
	}
	return e.single, nil
}

// lookup validates the cache entry for path and parses the file when
// needed. A nil entry means the file does not exist. Otherwise parsed
// reports whether the caller must build its view shape from blocks; a
// false value is a cache hit for the requested shape. Caller holds the
// mutex.
func (l *Loader) lookup(ctx context.Context, path string, hit func(*cacheEntry) bool) (e *cacheEntry, blocks []*Package, parsed bool, err error) {
	fi, err := l.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Debug("index does not exist, assuming empty", "path", path)
			delete(l.entries, path)
			return nil, nil, false, nil
		}
		return nil, nil, false, apkerr.Wrap(apkerr.ErrCodeFileNotFound, err, "stat index %s", path)
	}

	e = l.entries[path]
	if e != nil && !e.modTime.Equal(fi.ModTime()) {
		observability.Cache().OnInvalidate(ctx, path)
		delete(l.entries, path)
		e = nil
	}
	if e != nil && hit(e) {
		observability.Cache().OnHit(ctx, path)
		return e, nil, false, nil
	}
	observability.Cache().OnMiss(ctx, path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, false, apkerr.Wrap(apkerr.ErrCodeFileNotFound, err, "read index %s", path)
	}
	blocks, err = parseBlocks(path, data)
	if err != nil {
		return nil, nil, false, err
	}
	if e == nil {
		e = &cacheEntry{modTime: fi.ModTime()}
		l.entries[path] = e
	}
	return e, blocks, true, nil
}

// Invalidate drops any cached views for path, reporting whether an
// entry was present.
func (l *Loader) Invalidate(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[path]
	delete(l.entries, path)
	return ok
}
