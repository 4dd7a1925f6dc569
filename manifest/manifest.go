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

package manifest

import "fmt"

// Manifest is the complete input to a resolve: the project's own
// requirements plus the constraint/override/preference inputs that narrow
// or steer the search without being requirements in their own right.
//
//   - Constraints tighten a matching requirement's allowed versions further;
//     they never introduce a package that isn't already required by
//     something else.
//   - Overrides hard-replace whatever specifier the dependency graph would
//     otherwise produce for that package name.
//   - Preferences are soft hints: when multiple versions remain acceptable,
//     a preferred version is tried first, but the solver is free to pick
//     another if the preferred one conflicts.
type Manifest struct {
	Requirements []Requirement
	Constraints  []Requirement
	Overrides    []Requirement
	Preferences  map[string]string
}

// Parse builds a Manifest from requirement strings plus optional overlays.
func Parse(requirements, constraints, overrides []string, preferences map[string]string) (Manifest, error) {
	m := Manifest{Preferences: preferences}

	var err error
	if m.Requirements, err = parseAll(requirements); err != nil {
		return Manifest{}, err
	}
	if m.Constraints, err = parseAll(constraints); err != nil {
		return Manifest{}, err
	}
	if m.Overrides, err = parseAll(overrides); err != nil {
		return Manifest{}, err
	}

	return m, nil
}

func parseAll(lines []string) ([]Requirement, error) {
	reqs := make([]Requirement, 0, len(lines))
	for _, line := range lines {
		req, err := ParseRequirement(line)
		if err != nil {
			return nil, fmt.Errorf("parsing manifest: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// Override returns the override requirement for name, if one was supplied.
func (m Manifest) Override(name string) (Requirement, bool) {
	for _, r := range m.Overrides {
		if r.Name == name {
			return r, true
		}
	}
	return Requirement{}, false
}

// ConstraintsFor returns every constraint requirement matching name.
func (m Manifest) ConstraintsFor(name string) []Requirement {
	var out []Requirement
	for _, r := range m.Constraints {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}
