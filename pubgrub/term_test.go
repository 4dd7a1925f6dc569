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

func TestTermSatisfiedBy(t *testing.T) {
	t.Parallel()

	pkg := NewPackage("a")
	positive := NewTerm(pkg, Between(fakeVersion(1), fakeVersion(5)))
	negative := positive.Negate()

	tests := []struct {
		name   string
		term   Term
		ver    Version
		expect bool
	}{
		{"positive contains", positive, fakeVersion(3), true},
		{"positive excludes", positive, fakeVersion(9), false},
		{"positive nil version means unselected, so false", positive, nil, false},
		{"negative excludes what positive contains", negative, fakeVersion(3), false},
		{"negative contains what positive excludes", negative, fakeVersion(9), true},
		{"negative nil version means unselected, so true", negative, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.term.SatisfiedBy(tt.ver); got != tt.expect {
				t.Fatalf("SatisfiedBy(%v) = %v, want %v", tt.ver, got, tt.expect)
			}
		})
	}
}

func TestTermNegate(t *testing.T) {
	t.Parallel()

	pkg := NewPackage("a")
	term := NewTerm(pkg, HigherThanOrEqual(fakeVersion(1)))

	negated := term.Negate()
	if negated.Positive {
		t.Fatal("expected Negate to flip polarity")
	}
	if !negated.Range.Equal(term.Range) {
		t.Fatal("expected Negate to leave the underlying range untouched")
	}
	if !negated.Negate().Positive {
		t.Fatal("expected double negation to restore positivity")
	}
}

func TestTermIntersect(t *testing.T) {
	t.Parallel()

	pkg := NewPackage("a")
	low := NewTerm(pkg, Between(fakeVersion(1), fakeVersion(5)))
	high := NewTerm(pkg, Between(fakeVersion(3), fakeVersion(8)))

	inter := low.Intersect(high)
	if !inter.Positive {
		t.Fatal("expected Intersect to produce a positive term")
	}
	if !inter.SatisfiedBy(fakeVersion(4)) {
		t.Fatal("expected intersection to be satisfied within the overlap")
	}
	if inter.SatisfiedBy(fakeVersion(2)) || inter.SatisfiedBy(fakeVersion(6)) {
		t.Fatal("expected intersection to exclude versions outside the overlap")
	}
}

func TestTermRelationTo(t *testing.T) {
	t.Parallel()

	pkg := NewPackage("a")

	wide := NewTerm(pkg, HigherThanOrEqual(fakeVersion(1)))
	narrow := NewTerm(pkg, Between(fakeVersion(2), fakeVersion(4)))
	disjoint := NewTerm(pkg, StrictlyLowerThan(fakeVersion(0)))
	overlapping := NewTerm(pkg, Between(fakeVersion(3), fakeVersion(10)))

	tests := []struct {
		name   string
		a, b   Term
		expect Relation
	}{
		{"narrow satisfies wide", narrow, wide, RelationSatisfies},
		{"wide does not satisfy narrow", wide, narrow, RelationUnrelated},
		{"disjoint contradicts wide's complement region", narrow, disjoint, RelationContradicts},
		{"overlapping but neither subset", narrow, overlapping, RelationUnrelated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.RelationTo(tt.b); got != tt.expect {
				t.Fatalf("RelationTo = %v, want %v", got, tt.expect)
			}
		})
	}
}

func TestTermString(t *testing.T) {
	t.Parallel()

	pkg := NewPackage("a")

	full := NewTerm(pkg, FullRange())
	if got := full.String(); got != pkg.String() {
		t.Fatalf("expected full positive term to render as the bare package, got %q", got)
	}

	negatedFull := full.Negate()
	if got := negatedFull.String(); got == full.String() {
		t.Fatalf("expected negated full term to render differently from the positive form, got %q", got)
	}
}
