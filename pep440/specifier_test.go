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

package pep440_test

import (
	"testing"

	"github.com/corvidlabs/pyresolve/pep440"
)

func TestSpecifierMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		version string
		expect  bool
	}{
		{">=1.0.0", "1.0.0", true},
		{">=1.0.0", "0.9.9", false},
		{">=1.0.0,<2.0.0", "1.5.0", true},
		{">=1.0.0,<2.0.0", "2.0.0", false},
		{"==1.5.0", "1.5.0", true},
		{"==1.5.0", "1.5.1", false},
		{"!=1.5.0", "1.5.0", false},
		{"!=1.5.0", "1.6.0", true},
		{"~=1.4.2", "1.4.5", true},
		{"~=1.4.2", "1.5.0", false},
		{"==1.2.*", "1.2.7", true},
		{"==1.2.*", "1.3.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec+"_matches_"+tt.version, func(t *testing.T) {
			t.Parallel()
			spec, err := pep440.ParseSpecifier(tt.spec)
			if err != nil {
				t.Fatalf("parsing specifier %q: %v", tt.spec, err)
			}
			v := pep440.MustParse(tt.version)
			if got := spec.Matches(v); got != tt.expect {
				t.Fatalf("%q.Matches(%q) = %v, want %v", tt.spec, tt.version, got, tt.expect)
			}
		})
	}
}

func TestSpecifierToRangeContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		version string
		expect  bool
	}{
		{">=1.0.0", "1.0.0", true},
		{">=1.0.0", "0.9.9", false},
		{">=1.0.0,<2.0.0", "1.5.0", true},
		{">=1.0.0,<2.0.0", "2.0.0", false},
		{"==1.5.0", "1.5.0", true},
		{"==1.5.0", "1.5.1", false},
		{"!=1.5.0", "1.5.0", false},
		{"!=1.5.0", "1.6.0", true},
		{"~=1.4.2", "1.4.5", true},
		{"~=1.4.2", "1.5.0", false},
		{"~=1.4", "1.9.9", true},
		{"~=1.4", "2.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec+"_contains_"+tt.version, func(t *testing.T) {
			t.Parallel()
			spec, err := pep440.ParseSpecifier(tt.spec)
			if err != nil {
				t.Fatalf("parsing specifier %q: %v", tt.spec, err)
			}
			r, err := spec.ToRange()
			if err != nil {
				t.Fatalf("converting %q to range: %v", tt.spec, err)
			}
			v := pep440.MustParse(tt.version)
			if got := r.Contains(v); got != tt.expect {
				t.Fatalf("%q.ToRange().Contains(%q) = %v, want %v", tt.spec, tt.version, got, tt.expect)
			}
		})
	}
}

func TestSpecifierToRangeIntersectsMultipleClauses(t *testing.T) {
	t.Parallel()

	spec, err := pep440.ParseSpecifier(">=1.0.0,<2.0.0,!=1.5.0")
	if err != nil {
		t.Fatalf("parsing specifier: %v", err)
	}
	r, err := spec.ToRange()
	if err != nil {
		t.Fatalf("converting to range: %v", err)
	}

	if !r.Contains(pep440.MustParse("1.4.0")) {
		t.Fatal("expected 1.4.0 to be within the combined range")
	}
	if r.Contains(pep440.MustParse("1.5.0")) {
		t.Fatal("expected the excluded version 1.5.0 to be absent from the combined range")
	}
	if r.Contains(pep440.MustParse("2.0.0")) {
		t.Fatal("expected the upper bound to remain exclusive")
	}
}

func TestSpecifierInvalidOperator(t *testing.T) {
	t.Parallel()

	if _, err := pep440.ParseSpecifier("~1.0.0"); err == nil {
		t.Fatal("expected an unrecognized operator to fail parsing")
	}
}

func TestSpecifierString(t *testing.T) {
	t.Parallel()

	raw := ">=1.0.0,<2.0.0"
	spec, err := pep440.ParseSpecifier(raw)
	if err != nil {
		t.Fatalf("parsing specifier: %v", err)
	}
	if got := spec.String(); got != raw {
		t.Fatalf("String() = %q, want %q", got, raw)
	}
}
