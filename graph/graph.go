// Copyright 2024 The University of Queensland
// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graph shapes a successful solve's Solution into a form a
// consumer (a lockfile writer, an installer) can walk directly, without
// reasoning about PubGrub's Package variants or its assignment trail.
package graph

import (
	"fmt"
	"sort"

	"github.com/corvidlabs/pyresolve/pubgrub"
)

// Node is one resolved package in the graph: a base package (never an
// extra or URL variant — those fold into Extras/DirectURL below) pinned to
// exactly one version.
type Node struct {
	Name    string
	Version string

	// Extras lists the extras of this package that were activated anywhere
	// in the resolve (the union across every requirement that asked for
	// this package, possibly with different extras).
	Extras []string

	// DirectURL is set when this package was resolved from a direct URL
	// reference rather than from the index.
	DirectURL string

	// Dependencies are the base packages (by name) this node depends on in
	// the resolved graph, deduplicated and sorted.
	Dependencies []string
}

// ResolutionGraph is a solved dependency set: one Node per distinct base
// package name, plus the root's direct dependency edges for callers that
// want to distinguish top-level requirements from transitive ones.
type ResolutionGraph struct {
	Nodes map[string]*Node
	Root  []string
}

// Build assembles a ResolutionGraph from a solved pubgrub.Solution and the
// dependency edges the provider reported for each decided package/version
// (edges is keyed the same way Solution.All() enumerates: one entry per
// decided Package). Build does not itself call the provider; the caller
// (typically the orchestration that ran Solver.Solve) supplies edges
// gathered during the solve.
func Build(solution pubgrub.Solution, edges map[pubgrub.Package][]pubgrub.DependencyEdge) ResolutionGraph {
	g := ResolutionGraph{Nodes: make(map[string]*Node)}

	for pv := range solution.All() {
		if pv.Package.Kind == pubgrub.KindRoot {
			continue
		}
		base := pv.Package.Base()
		name := base.Name.Value()

		node := g.Nodes[name]
		if node == nil {
			node = &Node{Name: name}
			g.Nodes[name] = node
		}

		switch pv.Package.Kind {
		case pubgrub.KindExtra:
			node.Extras = append(node.Extras, pv.Package.Extra)
		case pubgrub.KindURL:
			node.DirectURL = pv.Package.URL
		case pubgrub.KindPackage:
			node.Version = pv.Version.String()
		}
	}

	for pkg, pkgEdges := range edges {
		deps := make(map[string]bool)
		for _, e := range pkgEdges {
			target := e.Package.Base()
			if target.Kind == pubgrub.KindRoot {
				continue
			}
			deps[target.Name.Value()] = true
		}

		if pkg.Kind == pubgrub.KindRoot {
			g.Root = sortedKeys(deps)
			continue
		}
		node := g.Nodes[pkg.Base().Name.Value()]
		if node == nil {
			continue
		}
		for dep := range deps {
			if !contains(node.Dependencies, dep) {
				node.Dependencies = append(node.Dependencies, dep)
			}
		}
		sort.Strings(node.Dependencies)
	}

	for _, node := range g.Nodes {
		sort.Strings(node.Extras)
	}

	return g
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// String renders the graph as a flat, sorted "name==version" listing, one
// per line, for quick inspection or a minimal lockfile.
func (g ResolutionGraph) String() string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for _, name := range names {
		n := g.Nodes[name]
		switch {
		case n.DirectURL != "":
			out += fmt.Sprintf("%s @ %s\n", n.Name, n.DirectURL)
		default:
			out += fmt.Sprintf("%s==%s\n", n.Name, n.Version)
		}
	}
	return out
}
