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

// Package pubgrub implements the PubGrub dependency resolution algorithm:
// conflict-driven clause learning over Package/Range/Term/Incompatibility,
// delegating candidate discovery to a caller-supplied Provider.
package pubgrub

import "context"

// rootVersion is the synthetic version assigned to RootPackage(). The
// returned Solution includes the root package at this version, rendered as
// "<root>".
type rootVersion struct{}

func (rootVersion) String() string        { return "<root>" }
func (rootVersion) Sort(Version) int      { return 0 }

// Solver runs PubGrub resolution against a Provider.
type Solver struct {
	provider Provider
	options  SolverOptions
}

// NewSolver creates a Solver that queries provider for candidates and
// dependencies.
func NewSolver(provider Provider, opts ...SolverOption) *Solver {
	options := defaultSolverOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return &Solver{provider: provider, options: options}
}

// Solve finds a consistent set of package versions satisfying
// rootRequirements, or returns a *NoSolutionError explaining why none
// exists.
func (s *Solver) Solve(ctx context.Context, rootRequirements []DependencyEdge) (Solution, error) {
	root := RootPackage()
	if s.options.Logger != nil {
		s.options.Logger.Debug("starting solve", "requirements", len(rootRequirements))
	}

	state := newSolverState(s.provider, s.options, root)

	assign := state.partial.seedRoot(root, rootVersion{})

	var conflict *Incompatibility
	if depConflict, err := state.registerDependencies(root, rootVersion{}, rootRequirements); err != nil {
		return nil, err
	} else if depConflict != nil {
		conflict = depConflict
	}

	state.enqueue(assign.pkg)

	var propagateSeed Package

	for steps := 0; ; steps++ {
		if s.options.MaxSteps > 0 && steps >= s.options.MaxSteps {
			return nil, &ErrIterationLimit{Steps: s.options.MaxSteps}
		}
		if err := s.provider.ShouldCancel(ctx); err != nil {
			return nil, &ErrCancelled{Cause: err}
		}

		if conflict != nil {
			if s.options.Logger != nil {
				s.options.Logger.Debug("resolving conflict", "step", steps, "conflict", conflict.String())
			}
			_, pivot, err := state.resolveConflict(conflict)
			if err != nil {
				if ns, ok := err.(*NoSolutionError); ok {
					if !s.options.TrackIncompatibilities {
						ns = ns.WithReporter(&CollapsedReporter{arena: state.arena})
					}
					return nil, ns
				}
				return nil, err
			}
			conflict = nil
			if pivot != (Package{}) {
				propagateSeed = pivot
			}
			continue
		}

		seed := propagateSeed
		propagateSeed = Package{}
		propConflict, err := state.propagate(ctx, seed)
		if err != nil {
			return nil, err
		}
		if propConflict != nil {
			conflict = propConflict
			continue
		}

		nextPkg, ok := state.partial.nextDecisionCandidate()
		if !ok {
			return state.partial.buildSolution(), nil
		}

		if s.options.Logger != nil {
			s.options.Logger.Debug("selecting package", "step", steps, "package", nextPkg.String())
		}

		ver, found, err := state.pickVersion(ctx, nextPkg)
		if err != nil {
			return nil, err
		}
		if !found {
			allowed := state.partial.allowedRange(nextPkg)
			conflict = NewIncompatibilityNoVersions(NewTerm(nextPkg, allowed))
			state.addIncompatibility(conflict)
			continue
		}

		if s.options.Logger != nil {
			s.options.Logger.Debug("making decision", "step", steps, "package", nextPkg.String(), "version", ver.String())
		}

		decided := state.partial.addDecision(nextPkg, ver)

		deps, err := s.provider.GetDependencies(ctx, nextPkg, ver)
		if err != nil {
			return nil, &ProviderError{Package: nextPkg, Err: err}
		}
		if !deps.Known {
			conflict = NewIncompatibilityUnavailable(nextPkg, ver)
			state.addIncompatibility(conflict)
			continue
		}

		if err := checkSelfDependency(nextPkg, ver, deps.Edges); err != nil {
			return nil, err
		}

		if depConflict, err := state.registerDependencies(nextPkg, ver, deps.Edges); err != nil {
			return nil, err
		} else if depConflict != nil {
			conflict = depConflict
			continue
		}

		state.enqueue(decided.pkg)
	}
}

func checkSelfDependency(pkg Package, ver Version, edges []DependencyEdge) error {
	for _, edge := range edges {
		if edge.Package == pkg {
			return &ErrSelfDependency{Package: pkg, Version: ver}
		}
	}
	return nil
}
