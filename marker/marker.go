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

package marker

import (
	"fmt"

	"github.com/corvidlabs/pyresolve/pep440"
)

// Tree is a parsed PEP 508 marker expression: a boolean tree over
// comparisons between environment variables, string literals, and the
// "extra" pseudo-variable. A nil *Tree always evaluates true (no marker).
type Tree struct {
	// exactly one of op/cmp is set; leaf nodes have cmp != nil
	op       boolOp
	children []*Tree
	cmp      *comparison
}

type boolOp int

const (
	opAnd boolOp = iota
	opOr
)

type compareOp int

const (
	cmpEqual compareOp = iota
	cmpNotEqual
	cmpLess
	cmpLessEqual
	cmpGreater
	cmpGreaterEqual
	cmpIn
	cmpNotIn
)

// comparison is a single leaf, e.g. python_version >= "3.8" or "linux" in
// sys_platform. Exactly one side is a variable name; the other is a literal.
type comparison struct {
	varName  string
	varOnLHS bool
	literal  string
	op       compareOp
}

// And combines trees with boolean conjunction, flattening nested Ands.
func And(trees ...*Tree) *Tree { return combine(opAnd, trees) }

// Or combines trees with boolean disjunction, flattening nested Ors.
func Or(trees ...*Tree) *Tree { return combine(opOr, trees) }

func combine(op boolOp, trees []*Tree) *Tree {
	var kept []*Tree
	for _, t := range trees {
		if t == nil {
			continue
		}
		if t.cmp == nil && t.op == op {
			kept = append(kept, t.children...)
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return nil
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return &Tree{op: op, children: kept}
}

// Eval reports whether the marker expression holds in env. A nil tree
// (no marker on the requirement) always evaluates true.
func (t *Tree) Eval(env Environment) bool {
	if t == nil {
		return true
	}
	if t.cmp != nil {
		return t.cmp.eval(env)
	}

	switch t.op {
	case opAnd:
		for _, c := range t.children {
			if !c.Eval(env) {
				return false
			}
		}
		return true
	case opOr:
		for _, c := range t.children {
			if c.Eval(env) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (c *comparison) eval(env Environment) bool {
	var lhs, rhs string
	var lhsVar, rhsVar string

	if c.varOnLHS {
		lhsVar, rhs = c.varName, c.literal
	} else {
		lhs, rhsVar = c.literal, c.varName
	}

	resolve := func(name string) (string, bool) {
		if name == "extra" {
			return "", false
		}
		return env.lookup(name)
	}

	if lhsVar != "" {
		if lhsVar == "extra" {
			return c.evalExtra(env, c.literal)
		}
		v, ok := resolve(lhsVar)
		if !ok {
			return false
		}
		lhs = v
	}
	if rhsVar != "" {
		if rhsVar == "extra" {
			return c.evalExtra(env, c.literal)
		}
		v, ok := resolve(rhsVar)
		if !ok {
			return false
		}
		rhs = v
	}

	return compareValues(lhs, rhs, c.op, isVersionVariable(c.varName))
}

func (c *comparison) evalExtra(env Environment, literal string) bool {
	switch c.op {
	case cmpEqual:
		return env.hasExtra(literal)
	case cmpNotEqual:
		return !env.hasExtra(literal)
	default:
		return false
	}
}

func isVersionVariable(name string) bool {
	switch name {
	case "python_version", "python_full_version", "implementation_version":
		return true
	default:
		return false
	}
}

func compareValues(lhs, rhs string, op compareOp, versioned bool) bool {
	if versioned {
		lv, lerr := pep440.Parse(lhs)
		rv, rerr := pep440.Parse(rhs)
		if lerr == nil && rerr == nil {
			c := lv.Compare(rv)
			return applyCompare(c, op)
		}
		// fall through to string comparison if either side fails to parse
		// as a PEP 440 version (markers permit arbitrary literals here)
	}

	switch op {
	case cmpEqual:
		return lhs == rhs
	case cmpNotEqual:
		return lhs != rhs
	case cmpLess:
		return lhs < rhs
	case cmpLessEqual:
		return lhs <= rhs
	case cmpGreater:
		return lhs > rhs
	case cmpGreaterEqual:
		return lhs >= rhs
	case cmpIn:
		return containsSubstring(rhs, lhs)
	case cmpNotIn:
		return !containsSubstring(rhs, lhs)
	default:
		return false
	}
}

func applyCompare(c int, op compareOp) bool {
	switch op {
	case cmpEqual:
		return c == 0
	case cmpNotEqual:
		return c != 0
	case cmpLess:
		return c < 0
	case cmpLessEqual:
		return c <= 0
	case cmpGreater:
		return c > 0
	case cmpGreaterEqual:
		return c >= 0
	default:
		return false
	}
}

func containsSubstring(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return len(needle) == 0
}

// String renders the tree back into PEP 508 marker syntax, primarily for
// diagnostics in Reporter output.
func (t *Tree) String() string {
	if t == nil {
		return ""
	}
	if t.cmp != nil {
		return t.cmp.String()
	}

	sep := " and "
	if t.op == opOr {
		sep = " or "
	}

	s := ""
	for i, c := range t.children {
		if i > 0 {
			s += sep
		}
		s += fmt.Sprintf("(%s)", c.String())
	}
	return s
}

func (c *comparison) String() string {
	sym := map[compareOp]string{
		cmpEqual: "==", cmpNotEqual: "!=",
		cmpLess: "<", cmpLessEqual: "<=",
		cmpGreater: ">", cmpGreaterEqual: ">=",
		cmpIn: "in", cmpNotIn: "not in",
	}[c.op]

	if c.varOnLHS {
		return fmt.Sprintf("%s %s %q", c.varName, sym, c.literal)
	}
	return fmt.Sprintf("%q %s %s", c.literal, sym, c.varName)
}
