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

// Package pep440 adapts github.com/aquasecurity/go-pep440-version's PEP 440
// version and specifier types to the pubgrub package's Version interface and
// Range algebra.
package pep440

import (
	"fmt"

	upstream "github.com/aquasecurity/go-pep440-version"

	"github.com/corvidlabs/pyresolve/pubgrub"
)

// Version is a parsed PEP 440 version, ordering identically to the upstream
// library (epoch, release segments, pre/post/dev components, local suffix).
type Version struct {
	raw string
	v   upstream.Version
}

// Parse parses a PEP 440 version string.
func Parse(s string) (Version, error) {
	v, err := upstream.Parse(s)
	if err != nil {
		return Version{}, fmt.Errorf("parsing version %q: %w", s, err)
	}
	return Version{raw: s, v: v}, nil
}

// MustParse parses s, panicking on failure. Intended for tests and literal
// constants, never for untrusted input.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original, unnormalized version string.
func (v Version) String() string {
	if v.raw != "" {
		return v.raw
	}
	return v.v.String()
}

// Sort implements pubgrub.Version.
func (v Version) Sort(other pubgrub.Version) int {
	o, ok := other.(Version)
	if !ok {
		return 0
	}
	return v.v.Compare(o.v)
}

// Compare orders v against other using PEP 440 precedence.
func (v Version) Compare(other Version) int {
	return v.v.Compare(other.v)
}

// IsPreRelease reports whether v carries a pre-release or dev segment.
func (v Version) IsPreRelease() bool {
	return v.v.IsPreRelease()
}

var _ pubgrub.Version = Version{}
