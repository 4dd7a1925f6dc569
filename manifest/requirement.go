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

// Package manifest parses PEP 508 requirement strings and the manifest of
// requirements/constraints/overrides/preferences a resolve starts from.
package manifest

import (
	"fmt"
	"strings"

	"github.com/corvidlabs/pyresolve/marker"
	"github.com/corvidlabs/pyresolve/pep440"
)

// Requirement is one parsed PEP 508 dependency specifier, e.g.
// `requests[socks]>=2.20,!=2.24.0; python_version >= "3.8"` or
// `mypkg @ https://example.com/mypkg-1.0-py3-none-any.whl`.
type Requirement struct {
	Name      string
	Extras    []string
	Specifier pep440.Specifier
	Marker    *marker.Tree
	URL       string
}

// ParseRequirement parses a single PEP 508 requirement string.
func ParseRequirement(s string) (Requirement, error) {
	s = strings.TrimSpace(s)

	markerText := ""
	nameSpec := s
	if idx := strings.Index(s, ";"); idx >= 0 {
		nameSpec = strings.TrimSpace(s[:idx])
		markerText = strings.TrimSpace(s[idx+1:])
	}

	name, extras, rest := splitNameExtras(nameSpec)

	req := Requirement{
		Name:   NormalizeName(name),
		Extras: extras,
	}

	if url, ok := splitDirectURL(rest); ok {
		req.URL = url
	} else if rest != "" {
		spec, err := pep440.ParseSpecifier(rest)
		if err != nil {
			return Requirement{}, fmt.Errorf("parsing requirement %q: %w", s, err)
		}
		req.Specifier = spec
	}

	tree, err := marker.Parse(markerText)
	if err != nil {
		return Requirement{}, fmt.Errorf("parsing requirement %q: %w", s, err)
	}
	req.Marker = tree

	return req, nil
}

// splitNameExtras pulls "name[extra1,extra2]" apart from the remainder of
// the requirement string (specifier, "@ url", or nothing).
func splitNameExtras(s string) (name string, extras []string, rest string) {
	s = strings.TrimSpace(s)

	open := strings.Index(s, "[")
	if open < 0 {
		name, rest = splitNameFromRest(s)
		return name, nil, rest
	}

	closeIdx := strings.Index(s, "]")
	if closeIdx < open {
		name, rest = splitNameFromRest(s)
		return name, nil, rest
	}

	name = strings.TrimSpace(s[:open])
	extraList := s[open+1 : closeIdx]
	for _, e := range strings.Split(extraList, ",") {
		e = strings.TrimSpace(e)
		if e != "" {
			extras = append(extras, NormalizeName(e))
		}
	}
	rest = strings.TrimSpace(s[closeIdx+1:])
	return name, extras, rest
}

// splitNameFromRest separates a bare name from a leading version specifier
// or "@ url" clause when no extras bracket is present.
func splitNameFromRest(s string) (name, rest string) {
	if idx := strings.Index(s, "@"); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx:])
	}
	if idx := strings.IndexAny(s, "><=!~("); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx:])
	}
	return s, ""
}

func splitDirectURL(rest string) (string, bool) {
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "@") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(rest, "@")), true
}

// NormalizeName normalizes a Python package or extra name per PEP 503:
// lower-cased, with runs of "-", "_", "." collapsed to a single hyphen.
func NormalizeName(name string) string {
	name = strings.ToLower(name)

	var b strings.Builder
	prevHyphen := false

	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '-', '_', '.':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		default:
			b.WriteByte(name[i])
			prevHyphen = false
		}
	}

	return b.String()
}
