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

// Reporter formats an Incompatibility's derivation tree into a human-
// readable error message.
type Reporter interface {
	Report(incomp *Incompatibility) string
}

// DefaultReporter renders a fully indented derivation tree. arena resolves
// a conflict incompatibility's Cause1/Cause2 IDs back to their
// Incompatibility values; with a nil arena (as in a NoSolutionError built
// without a Reporter) a derived incompatibility's causes are not rendered,
// only its own terms.
type DefaultReporter struct {
	arena *incompatibilityArena
}

func (r *DefaultReporter) Report(incomp *Incompatibility) string {
	if incomp == nil {
		return "no solution found"
	}
	var lines []string
	r.reportIncompatibility(incomp, &lines, 0, make(map[IncompatibilityID]bool))
	return strings.Join(lines, "\n")
}

func (r *DefaultReporter) cause(id IncompatibilityID) *Incompatibility {
	if r.arena == nil {
		return nil
	}
	return r.arena.get(id)
}

func (r *DefaultReporter) reportIncompatibility(incomp *Incompatibility, lines *[]string, depth int, visited map[IncompatibilityID]bool) {
	if visited[incomp.id] {
		return
	}
	visited[incomp.id] = true

	indent := strings.Repeat("  ", depth)

	switch incomp.Kind {
	case KindNoVersions, KindUnavailableDependencies:
		if len(incomp.Terms) > 0 {
			*lines = append(*lines, fmt.Sprintf("%sNo versions of %s satisfy the constraint", indent, incomp.Terms[0]))
		}

	case KindFromDependency:
		if len(incomp.Terms) == 2 {
			dep := incomp.Terms[1]
			if !dep.Positive {
				dep = dep.Negate()
			}
			*lines = append(*lines, fmt.Sprintf("%sBecause %s %s depends on %s",
				indent, incomp.Package, incomp.Version, dep))
		}

	case KindConflict:
		cause1, cause2 := r.cause(incomp.Cause1), r.cause(incomp.Cause2)
		if cause1 != nil && cause2 != nil {
			*lines = append(*lines, fmt.Sprintf("%sBecause:", indent))
			r.reportIncompatibility(cause1, lines, depth+1, visited)
			*lines = append(*lines, fmt.Sprintf("%sand:", indent))
			r.reportIncompatibility(cause2, lines, depth+1, visited)
		}

		switch {
		case len(incomp.Terms) == 0:
			*lines = append(*lines, fmt.Sprintf("%sversion solving has failed.", indent))
		case len(incomp.Terms) == 1:
			*lines = append(*lines, fmt.Sprintf("%s%s is forbidden.", indent, incomp.Terms[0]))
		default:
			parts := make([]string, len(incomp.Terms))
			for i, t := range incomp.Terms {
				parts[i] = t.String()
			}
			*lines = append(*lines, fmt.Sprintf("%sthese constraints conflict: %s", indent, strings.Join(parts, " and ")))
		}

	default:
		*lines = append(*lines, fmt.Sprintf("%s%s", indent, incomp.String()))
	}
}

// CollapsedReporter renders a flat, non-indented narrative ("X. And because
// Y, Z.") instead of DefaultReporter's indented tree.
type CollapsedReporter struct {
	arena *incompatibilityArena
}

func (r *CollapsedReporter) Report(incomp *Incompatibility) string {
	if incomp == nil {
		return "no solution found"
	}
	var lines []string
	r.collectLines(incomp, &lines, make(map[IncompatibilityID]bool))
	if len(lines) == 0 {
		return "version solving failed"
	}

	result := lines[0]
	for i := 1; i < len(lines); i++ {
		result += "\nAnd because " + lines[i]
	}
	return result
}

func (r *CollapsedReporter) cause(id IncompatibilityID) *Incompatibility {
	if r.arena == nil {
		return nil
	}
	return r.arena.get(id)
}

func (r *CollapsedReporter) collectLines(incomp *Incompatibility, lines *[]string, visited map[IncompatibilityID]bool) {
	if visited[incomp.id] {
		return
	}
	visited[incomp.id] = true

	switch incomp.Kind {
	case KindNoVersions, KindUnavailableDependencies:
		if len(incomp.Terms) > 0 {
			*lines = append(*lines, fmt.Sprintf("no versions of %s satisfy the constraint", incomp.Terms[0]))
		}

	case KindFromDependency:
		if len(incomp.Terms) == 2 {
			dep := incomp.Terms[1]
			if !dep.Positive {
				dep = dep.Negate()
			}
			*lines = append(*lines, fmt.Sprintf("%s %s depends on %s", incomp.Package, incomp.Version, dep))
		}

	case KindConflict:
		cause1, cause2 := r.cause(incomp.Cause1), r.cause(incomp.Cause2)
		if cause1 != nil && cause2 != nil {
			r.collectLines(cause1, lines, visited)
			r.collectLines(cause2, lines, visited)
		}

		switch {
		case len(incomp.Terms) == 1:
			*lines = append(*lines, fmt.Sprintf("%s is forbidden", incomp.Terms[0]))
		case len(incomp.Terms) > 1:
			parts := make([]string, len(incomp.Terms))
			for i, t := range incomp.Terms {
				parts[i] = t.String()
			}
			*lines = append(*lines, fmt.Sprintf("these constraints conflict: %s", strings.Join(parts, " and ")))
		}

	default:
		*lines = append(*lines, incomp.String())
	}
}
