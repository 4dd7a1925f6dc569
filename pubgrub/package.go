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

// Kind distinguishes the variants a Package can take. The solver itself
// never conditions on Kind; it exists so Provider and Reporter implementations
// can render and dispatch on the package's nature.
type Kind int

const (
	// KindRoot is the synthetic package representing the resolution root.
	KindRoot Kind = iota
	// KindPackage is an ordinary named package resolved by version.
	KindPackage
	// KindExtra is a virtual package representing one extra of a package,
	// e.g. requests[socks]. It depends on the base package at an exact
	// version plus that extra's additional requirements.
	KindExtra
	// KindURL is a package pinned to a direct URL (sdist, wheel, or VCS
	// reference) rather than resolved from an index.
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindPackage:
		return "package"
	case KindExtra:
		return "extra"
	case KindURL:
		return "url"
	default:
		return "unknown"
	}
}

// Package identifies one of the PubGrub-level "packages" this resolver
// reasons about, which includes the synthetic root, virtual extras, and
// URL-pinned packages alongside ordinary named packages. Package is
// comparable and fit for use as a map key.
type Package struct {
	Kind Kind
	Name PackageName

	// Extra is set only when Kind == KindExtra: the extra name, e.g. "socks".
	Extra string

	// URL is set only when Kind == KindURL: the canonicalized direct URL
	// this package is pinned to.
	URL string
}

// RootPackage is the synthetic package PartialSolution decides first.
func RootPackage() Package {
	return Package{Kind: KindRoot, Name: MakeName("<root>")}
}

// pythonPackageName names the synthetic package representing the resolve's
// target Python interpreter version.
const pythonPackageName = "python"

// PythonPackage is the synthetic package standing in for the resolve's
// target Python version. A Provider that wants Requires-Python metadata to
// participate in conflict derivation resolves this package to the
// configured interpreter version and adds a dependency edge against it
// wherever a candidate's Requires-Python constrains it, so an incompatible
// interpreter surfaces as an ordinary solver contradiction rather than a
// silently filtered-out version.
func PythonPackage() Package {
	return Package{Kind: KindPackage, Name: MakeName(pythonPackageName)}
}

// IsPythonPackage reports whether p is the synthetic Python-version package.
func IsPythonPackage(p Package) bool {
	return p.Kind == KindPackage && p.Name == MakeName(pythonPackageName)
}

// NewPackage returns an ordinary named package.
func NewPackage(name string) Package {
	return Package{Kind: KindPackage, Name: MakeName(name)}
}

// NewExtraPackage returns the virtual package for one extra of name.
func NewExtraPackage(name, extra string) Package {
	return Package{Kind: KindExtra, Name: MakeName(name), Extra: extra}
}

// NewURLPackage returns the package for name pinned to url, canonicalized
// with CanonicalizeURL.
func NewURLPackage(name, url string) Package {
	return Package{Kind: KindURL, Name: MakeName(name), URL: CanonicalizeURL(url)}
}

// Base returns the ordinary named package underlying p: itself if p is
// already KindPackage, or the base package of an extra/URL variant.
func (p Package) Base() Package {
	switch p.Kind {
	case KindExtra, KindURL:
		return Package{Kind: KindPackage, Name: p.Name}
	default:
		return p
	}
}

func (p Package) String() string {
	switch p.Kind {
	case KindRoot:
		return "<root>"
	case KindExtra:
		return fmt.Sprintf("%s[%s]", p.Name.Value(), p.Extra)
	case KindURL:
		return fmt.Sprintf("%s @ %s", p.Name.Value(), p.URL)
	default:
		return p.Name.Value()
	}
}
