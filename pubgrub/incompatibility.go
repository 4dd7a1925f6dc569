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
	"fmt"
	"strings"
)

// IncompatibilityKind records why an Incompatibility was created.
type IncompatibilityKind int

const (
	// KindNoVersions means no versions of the package satisfy the term.
	KindNoVersions IncompatibilityKind = iota
	// KindFromDependency means the incompatibility encodes "package at
	// version depends on dependency".
	KindFromDependency
	// KindConflict means the incompatibility was derived during conflict
	// resolution from two earlier incompatibilities.
	KindConflict
	// KindNotRoot is the initial incompatibility asserting the root package
	// must be selected.
	KindNotRoot
	// KindUnavailableDependencies means GetDependencies reported the
	// package's dependencies as unknown (Provider couldn't determine them).
	KindUnavailableDependencies
)

// Incompatibility is a set of terms that cannot all be true simultaneously.
// Derived incompatibilities (Kind == KindConflict) reference their two
// causes by IncompatibilityID into the owning Solver's arena rather than by
// direct pointer.
type Incompatibility struct {
	Terms []Term
	Kind  IncompatibilityKind

	Cause1, Cause2 IncompatibilityID

	// Package and Version are set for KindFromDependency.
	Package Package
	Version Version

	id IncompatibilityID
}

// NewIncompatibilityNoVersions creates an incompatibility for the case
// where no published version of term's package satisfies term.
func NewIncompatibilityNoVersions(term Term) *Incompatibility {
	return &Incompatibility{Terms: []Term{term}, Kind: KindNoVersions, Cause1: noCause, Cause2: noCause}
}

// NewIncompatibilityRoot creates the initial incompatibility requiring the
// root package to be selected.
func NewIncompatibilityRoot(root Package) *Incompatibility {
	return &Incompatibility{
		Terms:  []Term{NewNegativeTerm(root, FullRange())},
		Kind:   KindNotRoot,
		Cause1: noCause, Cause2: noCause,
	}
}

// NewIncompatibilityUnavailable creates an incompatibility recording that
// pkg at ver's dependencies could not be determined.
func NewIncompatibilityUnavailable(pkg Package, ver Version) *Incompatibility {
	return &Incompatibility{
		Terms:   []Term{NewTerm(pkg, SingletonRange(ver))},
		Kind:    KindUnavailableDependencies,
		Package: pkg,
		Version: ver,
		Cause1:  noCause, Cause2: noCause,
	}
}

// NewIncompatibilityFromDependency encodes "pkg at ver depends on dep":
// {pkg ver, not dep}.
func NewIncompatibilityFromDependency(pkg Package, ver Version, dep Term) *Incompatibility {
	base := NewTerm(pkg, SingletonRange(ver))
	return &Incompatibility{
		Terms:   []Term{base, dep.Negate()},
		Kind:    KindFromDependency,
		Package: pkg,
		Version: ver,
		Cause1:  noCause, Cause2: noCause,
	}
}

// NewIncompatibilityConflict creates a derived incompatibility from two
// prior incompatibilities identified by ID, deduplicating terms by package.
func NewIncompatibilityConflict(terms []Term, cause1, cause2 IncompatibilityID) *Incompatibility {
	seen := make(map[Package]bool, len(terms))
	deduped := make([]Term, 0, len(terms))
	for _, t := range terms {
		if seen[t.Package] {
			continue
		}
		seen[t.Package] = true
		deduped = append(deduped, t)
	}

	return &Incompatibility{
		Terms:  deduped,
		Kind:   KindConflict,
		Cause1: cause1,
		Cause2: cause2,
	}
}

// IsDerived reports whether inc was produced by conflict resolution rather
// than being an original fact fed to the solver.
func (inc *Incompatibility) IsDerived() bool {
	return inc.Kind == KindConflict
}

func (inc *Incompatibility) String() string {
	if len(inc.Terms) == 0 {
		return "version solving failed"
	}

	if len(inc.Terms) == 1 {
		return fmt.Sprintf("%s is forbidden", inc.Terms[0])
	}

	if inc.Kind == KindFromDependency && len(inc.Terms) == 2 {
		dep := inc.Terms[1]
		if inc.Terms[0].Package == inc.Package {
			dep = inc.Terms[1]
		} else {
			dep = inc.Terms[0]
		}
		if !dep.Positive {
			dep = dep.Negate()
		}
		return fmt.Sprintf("%s %s depends on %s", inc.Package, inc.Version, dep)
	}

	parts := make([]string, len(inc.Terms))
	for i, t := range inc.Terms {
		parts[i] = t.String()
	}
	return fmt.Sprintf("%s are incompatible", strings.Join(parts, " and "))
}
