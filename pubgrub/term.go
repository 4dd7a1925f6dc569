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

import "fmt"

// Term represents a dependency constraint on one package, either positive
// ("package must fall within Range") or negative ("package must not fall
// within Range"). Terms are the building blocks of Incompatibility.
type Term struct {
	Package  Package
	Range    Range
	Positive bool
}

// NewTerm creates a positive term requiring pkg's version to lie in r.
func NewTerm(pkg Package, r Range) Term {
	return Term{Package: pkg, Range: r, Positive: true}
}

// NewNegativeTerm creates a negative term excluding versions of pkg in r.
func NewNegativeTerm(pkg Package, r Range) Term {
	return Term{Package: pkg, Range: r, Positive: false}
}

// Negate returns the logical negation of the term.
func (t Term) Negate() Term {
	return Term{Package: t.Package, Range: t.Range, Positive: !t.Positive}
}

// allowedRange returns the Range of versions that satisfy the term
// (identical to Range for positive terms, its complement for negative ones).
func (t Term) allowedRange() Range {
	if t.Positive {
		return t.Range
	}
	return t.Range.Complement()
}

// SatisfiedBy reports whether ver satisfies the term. A nil version means
// the package was not selected at all.
func (t Term) SatisfiedBy(ver Version) bool {
	if ver == nil {
		return !t.Positive
	}
	return t.allowedRange().Contains(ver)
}

// Intersect returns the term representing "both t and other hold", which
// must share the same Package. The result is always expressed as a
// positive term over the intersection of each side's allowed range.
func (t Term) Intersect(other Term) Term {
	return NewTerm(t.Package, t.allowedRange().Intersection(other.allowedRange()))
}

// Relation describes how one term relates to another over the same package.
type Relation int

const (
	// RelationUnrelated means neither term implies nor contradicts the other.
	RelationUnrelated Relation = iota
	// RelationSatisfies means t being true implies other is true.
	RelationSatisfies
	// RelationContradicts means t and other cannot both be true.
	RelationContradicts
)

// RelationTo computes how t relates to other, both over the same Package.
func (t Term) RelationTo(other Term) Relation {
	allowedT := t.allowedRange()
	allowedOther := other.allowedRange()

	if allowedT.Disjoint(allowedOther) {
		return RelationContradicts
	}
	if allowedT.Subset(allowedOther) {
		return RelationSatisfies
	}
	return RelationUnrelated
}

func (t Term) String() string {
	r := t.Range.String()
	if t.Positive {
		if t.Range.IsFull() {
			return t.Package.String()
		}
		return fmt.Sprintf("%s %s", t.Package, r)
	}
	if t.Range.IsFull() {
		return fmt.Sprintf("not %s", t.Package)
	}
	return fmt.Sprintf("not %s %s", t.Package, r)
}
