// Package export renders install plans as Graphviz graphs.
package export

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/kalimokai/apkgraph/pkg/resolve"
)

// ToDOT converts a plan to Graphviz DOT format. Each resolved package
// becomes a node and each required-by relation an edge from the
// requiring package to its dependency. Conflicting packages ("!pkg")
// and dependencies spelled under a provided name rather than a package
// name are drawn dashed. Output is deterministic.
func ToDOT(plan *resolve.Plan) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	packages := make(map[string]bool, len(plan.Packages))
	for _, name := range plan.Packages {
		packages[name] = true
		attrs := []string{}
		if strings.HasPrefix(name, "!") {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %q;\n", name)
		}
	}

	buf.WriteString("\n")
	for _, dep := range slices.Sorted(maps.Keys(plan.RequiredBy)) {
		// A dependency may be spelled under a provided name that no
		// package in the plan carries; keep the edge but mark the
		// target as an alias.
		if !packages[dep] && !packages["!"+dep] {
			fmt.Fprintf(&buf, "  %q [shape=ellipse, style=dashed];\n", dep)
		}
		target := dep
		if !packages[dep] && packages["!"+dep] {
			target = "!" + dep
		}
		requesters := slices.Clone(plan.RequiredBy[dep])
		slices.Sort(requesters)
		for _, from := range requesters {
			fmt.Fprintf(&buf, "  %q -> %q;\n", from, target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
