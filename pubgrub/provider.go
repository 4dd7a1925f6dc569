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

package pubgrub

import (
	"context"
	"iter"
)

// Dependencies is what Provider.GetDependencies returns for one package at
// one version. Known is false when the provider could not determine the
// dependencies (e.g. a network failure tolerated as "unknown" rather than a
// hard error); the solver then treats that version as unselectable instead
// of aborting the whole solve.
type Dependencies struct {
	Known bool
	Edges []DependencyEdge
}

// DependencyEdge is one dependency of a package version, expressed as a
// constraint term on another package.
type DependencyEdge struct {
	Package Package
	Range   Range
}

// Provider is the external interface the Solver calls to learn about
// packages: their candidate versions and their dependencies. A Provider may
// be backed by an in-memory map, an on-disk cache, or a network index; the
// interface is synchronous from the Solver's point of view regardless of
// what happens underneath, but every call is given a context so a Provider
// backed by network I/O can respect cancellation and the Solver can poll
// ShouldCancel between steps of its own loop.
type Provider interface {
	// ChoosePackageVersion selects, among the given candidate packages and
	// their currently allowed Range, the next package+version the solver
	// should try. Implementations typically prefer packages with fewer
	// candidate versions first (to fail fast) and the newest allowed
	// version of the chosen package, subject to the active
	// PrereleasePolicy. A nil Version means no acceptable version exists.
	ChoosePackageVersion(ctx context.Context, candidates iter.Seq2[Package, Range]) (Package, Version, error)

	// GetDependencies returns the dependency edges of pkg at version.
	GetDependencies(ctx context.Context, pkg Package, version Version) (Dependencies, error)

	// ShouldCancel lets a long-running solve be aborted cooperatively; it
	// is polled once per propagation step. A non-nil error stops the solve
	// and is wrapped in ErrCancelled.
	ShouldCancel(ctx context.Context) error
}
