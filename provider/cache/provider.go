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

// Package cache wraps a pubgrub.Provider with request memoization and,
// separately, manages an on-disk content-addressed cache of downloaded
// wheel/sdist files.
package cache

import (
	"context"
	"fmt"
	"iter"
	"sync"

	"github.com/corvidlabs/pyresolve/pubgrub"
)

// Provider memoizes GetDependencies calls against an underlying
// pubgrub.Provider, for the common case where the same package version is
// asked about repeatedly across a solve (e.g. after backtracking re-queries
// the same candidate).
type Provider struct {
	inner pubgrub.Provider

	mu       sync.Mutex
	depsHit  int
	depsMiss int
	deps     map[string]pubgrub.Dependencies
}

// New wraps inner with memoization.
func New(inner pubgrub.Provider) *Provider {
	return &Provider{inner: inner, deps: make(map[string]pubgrub.Dependencies)}
}

func depsKey(pkg pubgrub.Package, version pubgrub.Version) string {
	return fmt.Sprintf("%s@%s", pkg, version)
}

// GetDependencies implements pubgrub.Provider, caching the underlying
// provider's response keyed by package and version.
func (p *Provider) GetDependencies(ctx context.Context, pkg pubgrub.Package, version pubgrub.Version) (pubgrub.Dependencies, error) {
	key := depsKey(pkg, version)

	p.mu.Lock()
	if deps, ok := p.deps[key]; ok {
		p.depsHit++
		p.mu.Unlock()
		return deps, nil
	}
	p.depsMiss++
	p.mu.Unlock()

	deps, err := p.inner.GetDependencies(ctx, pkg, version)
	if err != nil {
		return pubgrub.Dependencies{}, err
	}

	p.mu.Lock()
	p.deps[key] = deps
	p.mu.Unlock()

	return deps, nil
}

// ChoosePackageVersion delegates to the underlying provider unmemoized:
// candidate sets vary with the caller's current Range, so there is nothing
// stable to key a cache entry on.
func (p *Provider) ChoosePackageVersion(ctx context.Context, candidates iter.Seq2[pubgrub.Package, pubgrub.Range]) (pubgrub.Package, pubgrub.Version, error) {
	return p.inner.ChoosePackageVersion(ctx, candidates)
}

// ShouldCancel delegates to the underlying provider.
func (p *Provider) ShouldCancel(ctx context.Context) error {
	return p.inner.ShouldCancel(ctx)
}

// Stats reports memoization effectiveness.
type Stats struct {
	DependencyCalls    int
	DependencyCacheHit int
}

// Stats returns the current hit/miss counters.
func (p *Provider) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{DependencyCalls: p.depsHit + p.depsMiss, DependencyCacheHit: p.depsHit}
}

var _ pubgrub.Provider = (*Provider)(nil)
