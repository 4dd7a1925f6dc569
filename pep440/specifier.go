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

package pep440

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	upstream "github.com/aquasecurity/go-pep440-version"

	"github.com/corvidlabs/pyresolve/pubgrub"
)

// Specifier is a PEP 440 version specifier such as ">=1,<2" or "~=1.4".
type Specifier struct {
	raw      string
	clauses  []clause
	specSet  upstream.Specifiers
}

type clause struct {
	op      string
	version Version
}

var clauseRe = regexp.MustCompile(`^\s*(===|~=|==|!=|<=|>=|<|>)\s*(.+?)\s*$`)

// ParseSpecifier parses a comma-separated PEP 440 specifier string.
func ParseSpecifier(s string) (Specifier, error) {
	specSet, err := upstream.NewSpecifiers(s)
	if err != nil {
		return Specifier{}, fmt.Errorf("parsing specifier %q: %w", s, err)
	}

	spec := Specifier{raw: s, specSet: specSet}

	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		m := clauseRe.FindStringSubmatch(part)
		if m == nil {
			return Specifier{}, fmt.Errorf("unrecognized version clause %q", part)
		}

		ver, err := Parse(strings.TrimSuffix(m[2], ".*"))
		if err != nil {
			// "==1.2.*" style wildcards parse once the trailing ".*" is
			// stripped; anything else is a genuine parse failure.
			if m[1] == "==" && strings.HasSuffix(m[2], ".*") {
				ver, err = Parse(strings.TrimSuffix(m[2], ".*"))
			}
			if err != nil {
				return Specifier{}, err
			}
		}

		spec.clauses = append(spec.clauses, clause{op: m[1], version: ver})
	}

	return spec, nil
}

// String returns the original specifier text.
func (s Specifier) String() string { return s.raw }

// Matches reports whether v satisfies every clause of the specifier,
// delegating entirely to the upstream library's own PEP 440 semantics
// (pre-release gating, wildcard matching, local-version handling).
func (s Specifier) Matches(v Version) bool {
	return s.specSet.Check(v.v)
}

// ToRange converts the specifier into the equivalent pubgrub.Range: the
// intersection of every comma-separated clause.
func (s Specifier) ToRange() (pubgrub.Range, error) {
	result := pubgrub.FullRange()

	for _, c := range s.clauses {
		r, err := clauseRange(c)
		if err != nil {
			return pubgrub.Range{}, err
		}
		result = result.Intersection(r)
	}

	return result, nil
}

func clauseRange(c clause) (pubgrub.Range, error) {
	switch c.op {
	case ">=":
		return pubgrub.HigherThanOrEqual(c.version), nil
	case ">":
		return pubgrub.HigherThan(c.version), nil
	case "<=":
		return pubgrub.LowerThanOrEqual(c.version), nil
	case "<":
		return pubgrub.StrictlyLowerThan(c.version), nil
	case "==", "===":
		return pubgrub.SingletonRange(c.version), nil
	case "!=":
		return pubgrub.SingletonRange(c.version).Complement(), nil
	case "~=":
		upper, err := compatibleUpperBound(c.version)
		if err != nil {
			return pubgrub.Range{}, err
		}
		return pubgrub.Between(c.version, upper), nil
	default:
		return pubgrub.Range{}, fmt.Errorf("unsupported specifier operator %q", c.op)
	}
}

// compatibleUpperBound computes the exclusive upper bound for "~=X.Y[.Z]":
// the release segment is truncated to all but its last component and that
// component is incremented, per PEP 440's "compatible release" clause.
func compatibleUpperBound(v Version) (Version, error) {
	release := releaseSegments(v.String())
	if len(release) < 2 {
		return Version{}, fmt.Errorf("~= requires at least two release segments, got %q", v.String())
	}

	bumped := make([]int, len(release)-1)
	copy(bumped, release[:len(release)-1])
	bumped[len(bumped)-1]++

	parts := make([]string, len(bumped))
	for i, n := range bumped {
		parts[i] = strconv.Itoa(n)
	}

	return Parse(strings.Join(parts, "."))
}

var releaseRe = regexp.MustCompile(`^[vV]?(?:\d+!)?(\d+(?:\.\d+)*)`)

func releaseSegments(raw string) []int {
	m := releaseRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}

	parts := strings.Split(m[1], ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, _ := strconv.Atoi(p)
		out[i] = n
	}
	return out
}
