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

package cache_test

import (
	"context"
	"testing"

	"github.com/corvidlabs/pyresolve/pep440"
	"github.com/corvidlabs/pyresolve/provider/cache"
	"github.com/corvidlabs/pyresolve/provider/memory"
	"github.com/corvidlabs/pyresolve/pubgrub"
)

func TestCacheProviderMemoizesDependencyCalls(t *testing.T) {
	t.Parallel()

	inner := memory.New()
	pkg := pubgrub.NewPackage("a")
	inner.AddVersion(pkg, pep440.MustParse("1.0.0"), nil)

	p := cache.New(inner)

	ctx := context.Background()
	ver := pep440.MustParse("1.0.0")

	if _, err := p.GetDependencies(ctx, pkg, ver); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.GetDependencies(ctx, pkg, ver); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := p.Stats()
	if stats.DependencyCalls != 2 {
		t.Fatalf("expected 2 total calls, got %d", stats.DependencyCalls)
	}
	if stats.DependencyCacheHit != 1 {
		t.Fatalf("expected exactly 1 cache hit (the second call), got %d", stats.DependencyCacheHit)
	}
}

func TestCacheProviderDistinguishesVersions(t *testing.T) {
	t.Parallel()

	inner := memory.New()
	pkg := pubgrub.NewPackage("a")
	inner.AddVersion(pkg, pep440.MustParse("1.0.0"), nil)
	inner.AddVersion(pkg, pep440.MustParse("2.0.0"), nil)

	p := cache.New(inner)
	ctx := context.Background()

	if _, err := p.GetDependencies(ctx, pkg, pep440.MustParse("1.0.0")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.GetDependencies(ctx, pkg, pep440.MustParse("2.0.0")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := p.Stats()
	if stats.DependencyCacheHit != 0 {
		t.Fatalf("expected no cache hits across two distinct versions, got %d", stats.DependencyCacheHit)
	}
}

func TestCacheProviderPropagatesUnderlyingError(t *testing.T) {
	t.Parallel()

	inner := memory.New()
	p := cache.New(inner)

	_, err := p.GetDependencies(context.Background(), pubgrub.NewPackage("ghost"), pep440.MustParse("1.0.0"))
	if err == nil {
		t.Fatal("expected the underlying provider's error to propagate")
	}
}
