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
	"errors"
)

type solverState struct {
	provider Provider
	options  SolverOptions
	arena    *incompatibilityArena

	partial           *partialSolution
	incompatibilities map[Package][]IncompatibilityID

	queue  []Package
	queued map[Package]bool
}

func newSolverState(provider Provider, options SolverOptions, root Package) *solverState {
	return &solverState{
		provider:          provider,
		options:           options,
		arena:             newIncompatibilityArena(),
		partial:           newPartialSolution(root),
		incompatibilities: make(map[Package][]IncompatibilityID),
		queued:            make(map[Package]bool),
	}
}

func (st *solverState) enqueue(pkg Package) {
	if st.queued[pkg] {
		return
	}
	st.queue = append(st.queue, pkg)
	st.queued[pkg] = true
}

func (st *solverState) dequeue() (Package, bool) {
	if len(st.queue) == 0 {
		return Package{}, false
	}
	pkg := st.queue[0]
	st.queue = st.queue[1:]
	delete(st.queued, pkg)
	return pkg, true
}

func (st *solverState) addIncompatibility(inc *Incompatibility) IncompatibilityID {
	id := st.arena.add(inc)
	for _, t := range inc.Terms {
		st.incompatibilities[t.Package] = append(st.incompatibilities[t.Package], id)
	}
	return id
}

type incompatibilityRelation int

const (
	relationSatisfied incompatibilityRelation = iota
	relationAlmostSatisfied
	relationContradicted
	relationInconclusive
)

func (st *solverState) evaluateIncompatibility(inc *Incompatibility) (incompatibilityRelation, *Term, error) {
	var unsatisfied *Term

	for i := range inc.Terms {
		term := inc.Terms[i]
		allowed := st.partial.allowedRange(term.Package)
		rel := relationForTerm(term, allowed, st.partial.hasAssignments(term.Package))

		switch rel {
		case relationContradicted:
			return relationContradicted, nil, nil
		case relationSatisfied:
			continue
		case relationInconclusive:
			if unsatisfied != nil {
				return relationInconclusive, nil, nil
			}
			unsatisfied = &inc.Terms[i]
		}
	}

	if unsatisfied == nil {
		return relationSatisfied, nil, nil
	}
	return relationAlmostSatisfied, unsatisfied, nil
}

func relationForTerm(term Term, allowed Range, hasAssignment bool) incompatibilityRelation {
	required := term.allowedRange()

	if allowed.Subset(required) {
		if hasAssignment {
			return relationSatisfied
		}
		return relationInconclusive
	}
	if allowed.Disjoint(required) {
		return relationContradicted
	}
	return relationInconclusive
}

// propagate runs unit propagation starting from start (or resuming whatever
// is already queued, if start is the zero Package), returning the first
// incompatibility that becomes fully satisfied (a conflict) if any.
func (st *solverState) propagate(ctx context.Context, start Package) (*Incompatibility, error) {
	if start != (Package{}) {
		st.enqueue(start)
	}

	for {
		if err := st.provider.ShouldCancel(ctx); err != nil {
			return nil, &ErrCancelled{Cause: err}
		}

		pkg, ok := st.dequeue()
		if !ok {
			return nil, nil
		}

		for _, id := range st.incompatibilities[pkg] {
			inc := st.arena.get(id)
			rel, unsatisfied, err := st.evaluateIncompatibility(inc)
			if err != nil {
				return nil, err
			}

			switch rel {
			case relationSatisfied:
				return inc, nil
			case relationAlmostSatisfied:
				if unsatisfied == nil {
					continue
				}
				a, changed, err := st.partial.addDerivation(unsatisfied.Negate(), id)
				if errors.Is(err, errNoAllowedVersions) {
					return inc, nil
				}
				if err != nil {
					return nil, err
				}
				if changed && a != nil {
					st.enqueue(a.pkg)
				}
			}
		}
	}
}

// registerDependencies turns each of pkg@version's dependency edges into an
// incompatibility and applies it, returning the first resulting conflict.
func (st *solverState) registerDependencies(pkg Package, version Version, edges []DependencyEdge) (*Incompatibility, error) {
	for _, edge := range edges {
		dep := NewTerm(edge.Package, edge.Range)
		inc := NewIncompatibilityFromDependency(pkg, version, dep)
		st.addIncompatibility(inc)

		conflict, err := st.applyConstraint(dep, inc)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return conflict, nil
		}
	}
	return nil, nil
}

func (st *solverState) applyConstraint(term Term, cause *Incompatibility) (*Incompatibility, error) {
	causeID := noCause
	if cause != nil {
		causeID = cause.id
	}

	a, _, err := st.partial.addDerivation(term, causeID)
	if errors.Is(err, errNoAllowedVersions) {
		base := NewIncompatibilityNoVersions(term)
		if cause != nil {
			terms := append(append([]Term{}, cause.Terms...), base.Terms...)
			return NewIncompatibilityConflict(terms, cause.id, noCause), nil
		}
		return base, nil
	}
	if err != nil {
		return nil, err
	}
	if a != nil {
		st.enqueue(a.pkg)
	}
	return nil, nil
}

// pickVersion asks the Provider for the best version of pkg within its
// currently allowed range.
func (st *solverState) pickVersion(ctx context.Context, pkg Package) (Version, bool, error) {
	allowed := st.partial.allowedRange(pkg)
	if allowed.IsEmpty() {
		return nil, false, nil
	}

	_, version, err := st.provider.ChoosePackageVersion(ctx, singleCandidate(pkg, allowed))
	if err != nil {
		return nil, false, &ProviderError{Package: pkg, Err: err}
	}
	if version == nil {
		return nil, false, nil
	}
	return version, true, nil
}

func singleCandidate(pkg Package, r Range) func(yield func(Package, Range) bool) {
	return func(yield func(Package, Range) bool) {
		yield(pkg, r)
	}
}

// resolveConflict walks the conflict back through its satisfier chain,
// merging incompatibilities (conflict-driven clause learning) until it
// finds the decision level to backtrack to, or determines there is no
// solution.
func (st *solverState) resolveConflict(conflict *Incompatibility) (*Incompatibility, Package, error) {
	for {
		satisfier := st.partial.satisfier(conflict)
		if satisfier == nil {
			return nil, Package{}, NewNoSolutionError(conflict, st.arena)
		}

		prevLevel := st.partial.previousDecisionLevel(conflict, satisfier)

		if satisfier.decisionLevel == 0 && satisfier.isDecision() {
			return nil, Package{}, NewNoSolutionError(conflict, st.arena)
		}

		if satisfier.isDecision() && prevLevel < satisfier.decisionLevel {
			st.partial.backtrack(prevLevel)
			id := st.addIncompatibility(conflict)
			conflict.id = id
			return nil, satisfier.pkg, nil
		}

		if satisfier.cause == noCause {
			return nil, Package{}, errors.New("derived assignment missing cause")
		}

		conflict = resolveIncompatibility(conflict, st.arena.get(satisfier.cause), satisfier.pkg)
	}
}

func resolveIncompatibility(conflict, cause *Incompatibility, pkg Package) *Incompatibility {
	terms := make(map[Package]Term)
	var order []Package

	for _, t := range conflict.Terms {
		if t.Package == pkg {
			continue
		}
		terms[t.Package] = t
		order = append(order, t.Package)
	}

	for _, t := range cause.Terms {
		if t.Package == pkg {
			continue
		}
		if existing, ok := terms[t.Package]; ok {
			if merged, ok := mergeTerms(existing, t); ok {
				terms[t.Package] = merged
				continue
			}
		} else {
			order = append(order, t.Package)
		}
		terms[t.Package] = t
	}

	merged := make([]Term, 0, len(order))
	seen := make(map[Package]bool, len(order))
	for _, pkg := range order {
		if seen[pkg] {
			continue
		}
		seen[pkg] = true
		merged = append(merged, terms[pkg])
	}

	return NewIncompatibilityConflict(merged, conflict.id, cause.id)
}

func mergeTerms(a, b Term) (Term, bool) {
	if a.Package != b.Package {
		return Term{}, false
	}
	switch {
	case a.Positive && b.Positive:
		return NewTerm(a.Package, a.Range.Intersection(b.Range)), true
	case !a.Positive && !b.Positive:
		return NewNegativeTerm(a.Package, a.Range.Union(b.Range)), true
	default:
		return Term{}, false
	}
}
