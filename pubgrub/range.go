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
	"iter"
	"strings"
)

// Range is a canonical, ordered set of Versions represented as disjoint
// half-open intervals. It is the Go realization of the resolver's Range<V>:
// intervals are sorted by lower bound, never adjacent (adjacent intervals
// are merged), and never empty (degenerate intervals are dropped).
//
// Every Range method returns a new, already-canonical Range; Range values
// are never mutated in place.
type Range struct {
	intervals []interval
}

// EmptyRange returns the Range containing no versions.
func EmptyRange() Range { return Range{} }

// FullRange returns the Range containing every version.
func FullRange() Range {
	return Range{intervals: []interval{{lower: negativeInfinityBound(), upper: positiveInfinityBound()}}}
}

// SingletonRange returns the Range containing exactly one version.
func SingletonRange(v Version) Range {
	if v == nil {
		return EmptyRange()
	}
	if iv, ok := newInterval(newLowerBound(v, true), newUpperBound(v, true)); ok {
		return Range{intervals: []interval{iv}}
	}
	return EmptyRange()
}

// StrictlyLowerThan returns the Range of versions strictly below v.
func StrictlyLowerThan(v Version) Range {
	return fromBounds(negativeInfinityBound(), newUpperBound(v, false))
}

// HigherThanOrEqual returns the Range of versions at or above v.
func HigherThanOrEqual(v Version) Range {
	return fromBounds(newLowerBound(v, true), positiveInfinityBound())
}

// Between returns the Range [lower, upper) of versions at or above lower
// and strictly below upper.
func Between(lower, upper Version) Range {
	return fromBounds(newLowerBound(lower, true), newUpperBound(upper, false))
}

// HigherThan returns the Range of versions strictly above v.
func HigherThan(v Version) Range {
	return fromBounds(newLowerBound(v, false), positiveInfinityBound())
}

// LowerThanOrEqual returns the Range of versions at or below v.
func LowerThanOrEqual(v Version) Range {
	return fromBounds(negativeInfinityBound(), newUpperBound(v, true))
}

func fromBounds(lower, upper bound) Range {
	if iv, ok := newInterval(lower, upper); ok {
		return Range{intervals: []interval{iv}}
	}
	return EmptyRange()
}

func (r Range) cloneIntervals() []interval {
	if len(r.intervals) == 0 {
		return nil
	}
	out := make([]interval, len(r.intervals))
	copy(out, r.intervals)
	return out
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v Version) bool {
	for _, iv := range r.intervals {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the range contains no versions.
func (r Range) IsEmpty() bool { return len(r.intervals) == 0 }

// IsFull reports whether the range contains every version.
func (r Range) IsFull() bool {
	return len(r.intervals) == 1 &&
		r.intervals[0].lower.isNegInfinity() &&
		r.intervals[0].upper.isPosInfinity()
}

// Union returns the set of versions in either range.
func (r Range) Union(other Range) Range {
	merged := append(r.cloneIntervals(), other.intervals...)
	return Range{intervals: normalizeIntervals(merged)}
}

// Intersection returns the set of versions in both ranges.
func (r Range) Intersection(other Range) Range {
	if len(r.intervals) == 0 || len(other.intervals) == 0 {
		return EmptyRange()
	}

	result := make([]interval, 0, len(r.intervals))
	i, j := 0, 0
	for i < len(r.intervals) && j < len(other.intervals) {
		a, b := r.intervals[i], other.intervals[j]
		if iv, ok := newInterval(
			maxBound(a.lower, b.lower, compareLower),
			minBound(a.upper, b.upper, compareUpper),
		); ok {
			result = append(result, iv)
		}

		if compareUpper(a.upper, b.upper) < 0 {
			i++
		} else {
			j++
		}
	}

	return Range{intervals: normalizeIntervals(result)}
}

// Complement returns the set of versions not in the range.
func (r Range) Complement() Range {
	if len(r.intervals) == 0 {
		return FullRange()
	}

	gaps := make([]interval, 0, len(r.intervals)+1)
	currentLower := negativeInfinityBound()

	for _, iv := range r.intervals {
		if gap, ok := newInterval(currentLower, iv.complementUpperBound()); ok {
			gaps = append(gaps, gap)
		}
		currentLower = iv.complementLowerBound()
	}

	if tail, ok := newInterval(currentLower, positiveInfinityBound()); ok {
		gaps = append(gaps, tail)
	}

	return Range{intervals: normalizeIntervals(gaps)}
}

// Difference returns the versions in r that are not in other.
func (r Range) Difference(other Range) Range {
	return r.Intersection(other.Complement())
}

// Subset reports whether every version in r is also in other.
func (r Range) Subset(other Range) bool {
	if len(r.intervals) == 0 {
		return true
	}
	if len(other.intervals) == 0 {
		return false
	}

	i, j := 0, 0
	for i < len(r.intervals) {
		if j >= len(other.intervals) {
			return false
		}
		if other.intervals[j].covers(r.intervals[i]) {
			i++
			continue
		}
		if upperLessThanLower(other.intervals[j].upper, r.intervals[i].lower) {
			j++
			continue
		}
		return false
	}
	return true
}

// Disjoint reports whether r and other share no versions.
func (r Range) Disjoint(other Range) bool {
	if len(r.intervals) == 0 || len(other.intervals) == 0 {
		return true
	}

	i, j := 0, 0
	for i < len(r.intervals) && j < len(other.intervals) {
		if r.intervals[i].overlaps(other.intervals[j]) {
			return false
		}
		if compareUpper(r.intervals[i].upper, other.intervals[j].upper) < 0 {
			i++
		} else {
			j++
		}
	}
	return true
}

// Equal reports structural equality between two canonical ranges.
func (r Range) Equal(other Range) bool {
	return r.Subset(other) && other.Subset(r)
}

// Singleton reports whether the range contains exactly one version, and
// returns it.
func (r Range) Singleton() (Version, bool) {
	if len(r.intervals) != 1 {
		return nil, false
	}
	iv := r.intervals[0]
	if !iv.lower.isFinite() || !iv.upper.isFinite() {
		return nil, false
	}
	if iv.lower.version.Sort(iv.upper.version) != 0 {
		return nil, false
	}
	if !iv.lower.inclusive || !iv.upper.inclusive {
		return nil, false
	}
	return iv.lower.version, true
}

// Bounds iterates the range's disjoint intervals in order, each as a
// [lowerVersion, upperVersion] pair, with a nil version meaning the
// corresponding infinity. Whether each bound is inclusive is not reported.
func (r Range) Bounds() iter.Seq[[2]Version] {
	return func(yield func([2]Version) bool) {
		for _, iv := range r.intervals {
			pair := [2]Version{}
			if iv.lower.isFinite() {
				pair[0] = iv.lower.version
			}
			if iv.upper.isFinite() {
				pair[1] = iv.upper.version
			}
			if !yield(pair) {
				return
			}
		}
	}
}

// String renders the range using specifier-like syntax, e.g. ">=1.0,<2.0".
func (r Range) String() string {
	if len(r.intervals) == 0 {
		return "∅"
	}

	parts := make([]string, len(r.intervals))
	for i, iv := range r.intervals {
		parts[i] = intervalString(iv)
	}
	return strings.Join(parts, " || ")
}

func intervalString(iv interval) string {
	if iv.lower.isNegInfinity() && iv.upper.isPosInfinity() {
		return "*"
	}

	if iv.lower.isFinite() && iv.upper.isFinite() &&
		iv.lower.version.Sort(iv.upper.version) == 0 &&
		iv.lower.inclusive && iv.upper.inclusive {
		return fmt.Sprintf("==%s", iv.lower.version)
	}

	var parts []string
	if iv.lower.isFinite() {
		if iv.lower.inclusive {
			parts = append(parts, fmt.Sprintf(">=%s", iv.lower.version))
		} else {
			parts = append(parts, fmt.Sprintf(">%s", iv.lower.version))
		}
	}
	if iv.upper.isFinite() {
		if iv.upper.inclusive {
			parts = append(parts, fmt.Sprintf("<=%s", iv.upper.version))
		} else {
			parts = append(parts, fmt.Sprintf("<%s", iv.upper.version))
		}
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, ",")
}
