// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about index cache operations and
// dependency resolution.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, plain counters)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    observability.SetResolveHooks(&myResolveHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Cache().OnHit(ctx, path)
//	observability.Resolve().OnAmbiguousProvider(ctx, capability, names, picked)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the index parse cache.
type CacheHooks interface {
	// OnHit records a cache hit for an index path.
	OnHit(ctx context.Context, path string)

	// OnMiss records a cache miss for an index path.
	OnMiss(ctx context.Context, path string)

	// OnInvalidate records a cache invalidation caused by a changed
	// file modification time.
	OnInvalidate(ctx context.Context, path string)
}

// =============================================================================
// Resolve Hooks
// =============================================================================

// ResolveHooks receives events from dependency resolution.
type ResolveHooks interface {
	// OnRecurseStart records the beginning of a dependency recursion.
	OnRecurseStart(ctx context.Context, names []string)

	// OnRecurseComplete records the end of a dependency recursion.
	OnRecurseComplete(ctx context.Context, resolved int, duration time.Duration, err error)

	// OnAmbiguousProvider records that the shortest-name fallback picked
	// among multiple providers (a known divergence from apk's behavior).
	OnAmbiguousProvider(ctx context.Context, capability string, candidates []string, picked string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnHit(context.Context, string)        {}
func (NoopCacheHooks) OnMiss(context.Context, string)       {}
func (NoopCacheHooks) OnInvalidate(context.Context, string) {}

// NoopResolveHooks is a no-op implementation of ResolveHooks.
type NoopResolveHooks struct{}

func (NoopResolveHooks) OnRecurseStart(context.Context, []string)                      {}
func (NoopResolveHooks) OnRecurseComplete(context.Context, int, time.Duration, error)  {}
func (NoopResolveHooks) OnAmbiguousProvider(context.Context, string, []string, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	resolveHooks ResolveHooks = NoopResolveHooks{}
	hooksMu      sync.RWMutex
)

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetResolveHooks registers custom resolve hooks.
// This should be called once at application startup before any resolution.
func SetResolveHooks(h ResolveHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		resolveHooks = h
	}
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Resolve returns the registered resolve hooks.
func Resolve() ResolveHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return resolveHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	cacheHooks = NoopCacheHooks{}
	resolveHooks = NoopResolveHooks{}
}
