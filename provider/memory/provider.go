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

// Package memory implements pubgrub.Provider entirely in memory, for tests
// and for building example dependency graphs without a network index.
package memory

import (
	"context"
	"errors"
	"iter"
	"slices"

	"github.com/corvidlabs/pyresolve/pep440"
	"github.com/corvidlabs/pyresolve/pubgrub"
)

// ErrPackageNotFound is returned when a queried package has no registered
// versions at all.
var ErrPackageNotFound = errors.New("package not found")

// ErrVersionNotFound is returned when a queried package/version pair was
// never registered.
var ErrVersionNotFound = errors.New("package version not found")

// Provider is an in-memory pubgrub.Provider: every package version and its
// dependency edges are registered ahead of time with AddVersion.
type Provider struct {
	packages map[pubgrub.Package]map[string]entry
}

type entry struct {
	version pep440.Version
	deps    []pubgrub.DependencyEdge
}

// New returns an empty Provider.
func New() *Provider {
	return &Provider{packages: make(map[pubgrub.Package]map[string]entry)}
}

// AddVersion registers pkg at version with the given dependency edges.
func (p *Provider) AddVersion(pkg pubgrub.Package, version pep440.Version, deps []pubgrub.DependencyEdge) {
	if p.packages[pkg] == nil {
		p.packages[pkg] = make(map[string]entry)
	}
	p.packages[pkg][version.String()] = entry{version: version, deps: deps}
}

func (p *Provider) versionsOf(pkg pubgrub.Package) []pep440.Version {
	versions := make([]pep440.Version, 0, len(p.packages[pkg]))
	for _, e := range p.packages[pkg] {
		versions = append(versions, e.version)
	}
	slices.SortFunc(versions, func(a, b pep440.Version) int { return a.Compare(b) })
	return versions
}

// ChoosePackageVersion implements pubgrub.Provider, picking the highest
// registered version of the first candidate package that lies in its allowed
// range. Only the first candidate is considered: if none of its registered
// versions is in range, it is returned with a nil Version.
func (p *Provider) ChoosePackageVersion(ctx context.Context, candidates iter.Seq2[pubgrub.Package, pubgrub.Range]) (pubgrub.Package, pubgrub.Version, error) {
	for pkg, allowed := range candidates {
		versions := p.versionsOf(pkg)
		for i := len(versions) - 1; i >= 0; i-- {
			if allowed.Contains(versions[i]) {
				return pkg, versions[i], nil
			}
		}
		return pkg, nil, nil
	}
	return pubgrub.Package{}, nil, nil
}

// GetDependencies implements pubgrub.Provider.
func (p *Provider) GetDependencies(ctx context.Context, pkg pubgrub.Package, version pubgrub.Version) (pubgrub.Dependencies, error) {
	versions, ok := p.packages[pkg]
	if !ok {
		return pubgrub.Dependencies{}, ErrPackageNotFound
	}
	e, ok := versions[version.String()]
	if !ok {
		return pubgrub.Dependencies{}, ErrVersionNotFound
	}
	return pubgrub.Dependencies{Known: true, Edges: e.deps}, nil
}

// ShouldCancel implements pubgrub.Provider by deferring to ctx's own
// cancellation; an in-memory provider has nothing else to check.
func (p *Provider) ShouldCancel(ctx context.Context) error {
	return ctx.Err()
}

var _ pubgrub.Provider = (*Provider)(nil)
