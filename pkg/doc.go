// Package pkg provides the core libraries of apkgraph, a package metadata
// engine for Alpine-style binary package repositories.
//
// # Overview
//
// apkgraph answers one question: given a set of requested package names,
// which packages (and which versions) need to be installed or removed. It
// does not install anything; it parses indexes and recipes, resolves
// providers and computes plans for an external installer.
//
// The typical data flow:
//
//	APKINDEX text / installed database
//	         ↓
//	    [index] package (block parser, alias views, mtime cache)
//	         ↓
//	    [resolve] package (provider selection, dependency recursion)
//	         ↓
//	    flattened install/removal plan → [export] (DOT/SVG)
//
// # Main Packages
//
// [version] - apk-tools-compatible version comparison and validation. The
// foundation for everything above it: index views keep the higher version
// per provider, and the recursion engine prefers up-to-date binaries.
//
// [index] - APKINDEX block parser with capability alias views and a
// modification-time-keyed cache.
//
// [resolve] - Provider disambiguation (an ordered heuristic chain) and the
// breadth-first dependency recursion engine.
//
// [recipe] - Local TOML recipe tree, the source-package side of resolution.
//
// [config] - TOML configuration: index paths, recipe tree, provider
// overrides.
//
// [export] - Plan-to-DOT conversion and SVG rendering via Graphviz.
//
// [errors] - Structured errors with machine-readable codes.
//
// [observability] - Optional hooks for cache and resolution events.
//
// [version]: https://pkg.go.dev/github.com/kalimokai/apkgraph/pkg/version
// [index]: https://pkg.go.dev/github.com/kalimokai/apkgraph/pkg/index
// [resolve]: https://pkg.go.dev/github.com/kalimokai/apkgraph/pkg/resolve
// [recipe]: https://pkg.go.dev/github.com/kalimokai/apkgraph/pkg/recipe
// [config]: https://pkg.go.dev/github.com/kalimokai/apkgraph/pkg/config
// [export]: https://pkg.go.dev/github.com/kalimokai/apkgraph/pkg/export
// [errors]: https://pkg.go.dev/github.com/kalimokai/apkgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/kalimokai/apkgraph/pkg/observability
package pkg
