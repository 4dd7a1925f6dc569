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

import "testing"

func TestPartialSolutionSeedAndDecide(t *testing.T) {
	t.Parallel()

	root := RootPackage()
	pkgA := NewPackage("a")

	ps := newPartialSolution(root)
	ps.seedRoot(root, fakeVersion(0))

	if ps.decisionLvl != 0 {
		t.Fatalf("expected seeding the root to leave decision level at 0, got %d", ps.decisionLvl)
	}
	if !ps.hasDecision(root) {
		t.Fatal("expected root to have a decision after seeding")
	}

	ps.addDecision(pkgA, fakeVersion(1))
	if ps.decisionLvl != 1 {
		t.Fatalf("expected deciding a second package to open decision level 1, got %d", ps.decisionLvl)
	}
	if !ps.hasDecision(pkgA) {
		t.Fatal("expected pkgA to have a decision")
	}

	rng := ps.allowedRange(pkgA)
	v, ok := rng.Singleton()
	if !ok || v.(fakeVersion) != 1 {
		t.Fatalf("expected pkgA's allowed range to be pinned to version 1, got %v", rng)
	}
}

func TestPartialSolutionAddDerivationNarrows(t *testing.T) {
	t.Parallel()

	pkgA := NewPackage("a")
	ps := newPartialSolution(RootPackage())

	term := NewTerm(pkgA, Between(fakeVersion(1), fakeVersion(5)))
	a, changed, err := ps.addDerivation(term, noCause)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !changed {
		t.Fatal("expected the first derivation to change the allowed range")
	}
	if a.kind != assignmentDerivation {
		t.Fatal("expected addDerivation to record a derivation assignment")
	}

	narrower := NewTerm(pkgA, Between(fakeVersion(2), fakeVersion(4)))
	_, changed, err = ps.addDerivation(narrower, noCause)
	if err != nil {
		t.Fatalf("unexpected error narrowing further: %v", err)
	}
	if !changed {
		t.Fatal("expected a strictly narrower derivation to change the allowed range")
	}

	redundant := NewTerm(pkgA, Between(fakeVersion(1), fakeVersion(10)))
	_, changed, err = ps.addDerivation(redundant, noCause)
	if err != nil {
		t.Fatalf("unexpected error on redundant derivation: %v", err)
	}
	if changed {
		t.Fatal("expected a wider, already-implied derivation to leave the allowed range unchanged")
	}
}

func TestPartialSolutionAddDerivationConflict(t *testing.T) {
	t.Parallel()

	pkgA := NewPackage("a")
	ps := newPartialSolution(RootPackage())

	if _, _, err := ps.addDerivation(NewTerm(pkgA, Between(fakeVersion(1), fakeVersion(3))), noCause); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err := ps.addDerivation(NewTerm(pkgA, Between(fakeVersion(5), fakeVersion(8))), noCause)
	if err != errNoAllowedVersions {
		t.Fatalf("expected errNoAllowedVersions for a disjoint derivation, got %v", err)
	}
}

func TestPartialSolutionBacktrack(t *testing.T) {
	t.Parallel()

	root := RootPackage()
	pkgA, pkgB := NewPackage("a"), NewPackage("b")

	ps := newPartialSolution(root)
	ps.seedRoot(root, fakeVersion(0))
	ps.addDecision(pkgA, fakeVersion(1))
	ps.addDecision(pkgB, fakeVersion(2))

	if ps.decisionLvl != 2 {
		t.Fatalf("expected decision level 2 before backtracking, got %d", ps.decisionLvl)
	}

	ps.backtrack(1)

	if ps.decisionLvl != 1 {
		t.Fatalf("expected decision level 1 after backtracking, got %d", ps.decisionLvl)
	}
	if !ps.hasDecision(pkgA) {
		t.Fatal("expected pkgA's decision (level 1) to survive backtracking to level 1")
	}
	if ps.hasAssignments(pkgB) {
		t.Fatal("expected pkgB's decision (level 2) to be dropped by backtracking to level 1")
	}
}

func TestPartialSolutionIsCompleteAndNextDecisionCandidate(t *testing.T) {
	t.Parallel()

	root := RootPackage()
	pkgA, pkgB := NewPackage("a"), NewPackage("b")

	ps := newPartialSolution(root)
	ps.seedRoot(root, fakeVersion(0))

	if !ps.isComplete() {
		t.Fatal("expected an empty solution to be complete trivially (no non-root packages mentioned yet)")
	}

	if _, _, err := ps.addDerivation(NewTerm(pkgA, HigherThanOrEqual(fakeVersion(1))), noCause); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ps.isComplete() {
		t.Fatal("expected the solution to be incomplete while pkgA has a derivation but no decision")
	}

	pkg, ok := ps.nextDecisionCandidate()
	if !ok || pkg != pkgA {
		t.Fatalf("expected pkgA as the next decision candidate, got %v (ok=%v)", pkg, ok)
	}

	ps.addDecision(pkgA, fakeVersion(1))
	if !ps.isComplete() {
		t.Fatal("expected the solution to be complete once pkgA has a decision")
	}

	if _, ok := ps.nextDecisionCandidate(); ok {
		t.Fatal("expected no further decision candidates once every mentioned package is decided")
	}

	_ = pkgB // referenced only to document it was never mentioned, hence irrelevant to completeness
}

func TestPartialSolutionBuildSolution(t *testing.T) {
	t.Parallel()

	root := RootPackage()
	pkgA := NewPackage("a")

	ps := newPartialSolution(root)
	ps.seedRoot(root, fakeVersion(0))
	ps.addDecision(pkgA, fakeVersion(3))

	solution := ps.buildSolution()

	ver, ok := solution.GetVersion(pkgA)
	if !ok || ver.(fakeVersion) != 3 {
		t.Fatalf("expected buildSolution to report pkgA at version 3, got %v (ok=%v)", ver, ok)
	}
}

func TestPartialSolutionSatisfierAndPreviousDecisionLevel(t *testing.T) {
	t.Parallel()

	root := RootPackage()
	pkgA, pkgB := NewPackage("a"), NewPackage("b")

	ps := newPartialSolution(root)
	ps.seedRoot(root, fakeVersion(0))
	ps.addDecision(pkgA, fakeVersion(1))
	ps.addDecision(pkgB, fakeVersion(2))

	// An incompatibility {a != 1, b != 2}: both of its terms are already
	// decided by the current assignments (here contradicted, which
	// termSatisfiedByAssignment counts as decided as well); the satisfier is
	// whichever of the two decisions was made last (pkgB, at decision level 2).
	inc := &Incompatibility{
		Terms: []Term{
			NewNegativeTerm(pkgA, SingletonRange(fakeVersion(1))),
			NewNegativeTerm(pkgB, SingletonRange(fakeVersion(2))),
		},
		Kind: KindConflict,
	}

	satisfier := ps.satisfier(inc)
	if satisfier == nil {
		t.Fatal("expected a satisfier to be found")
	}
	if satisfier.pkg != pkgB {
		t.Fatalf("expected pkgB's decision (made last) to be the satisfier, got %v", satisfier.pkg)
	}

	level := ps.previousDecisionLevel(inc, satisfier)
	if level != 1 {
		t.Fatalf("expected the previous decision level to be 1 (pkgA's level), got %d", level)
	}
}
