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

package pypi

import "strings"

// Tags is a wheel filename's compatibility tag triple, e.g. "cp311-cp311-
// manylinux_2_17_x86_64" decomposes to {Python: "cp311", ABI: "cp311",
// Platform: "manylinux_2_17_x86_64"}. A single file may carry compressed
// multi-tags ("py2.py3-none-any"); ParseWheelTags keeps only the first of
// each dot-separated group, which is sufficient for scoring purposes.
type Tags struct {
	Python   string
	ABI      string
	Platform string
}

// ParseWheelTags extracts the tag triple from a wheel filename of the form
// "{name}-{version}(-{build})?-{python}-{abi}-{platform}.whl". It returns
// false if filename doesn't look like a wheel.
func ParseWheelTags(filename string) (Tags, bool) {
	name := strings.TrimSuffix(filename, ".whl")
	if name == filename {
		return Tags{}, false
	}

	parts := strings.Split(name, "-")
	if len(parts) < 5 {
		return Tags{}, false
	}

	platform := parts[len(parts)-1]
	abi := parts[len(parts)-2]
	python := parts[len(parts)-3]

	return Tags{
		Python:   firstOf(python),
		ABI:      firstOf(abi),
		Platform: firstOf(platform),
	}, true
}

func firstOf(compressed string) string {
	if i := strings.IndexByte(compressed, '.'); i >= 0 {
		return compressed[:i]
	}
	return compressed
}

// CompatibilityScore rates how well tags matches an environment's running
// interpreter tag (e.g. "cp311") and platform tag (e.g.
// "manylinux_2_17_x86_64"), higher is better. It is used only to order
// candidate files within a release (prefer an exact-platform wheel over
// "any", prefer a wheel over an sdist); it never excludes a file outright,
// since a source distribution with no matching wheel is still installable
// by building from source.
func CompatibilityScore(tags Tags, interpreterTag, platformTag string) int {
	score := 0

	switch {
	case tags.Python != "" && interpreterTag != "" && strings.Contains(tags.Python, interpreterTag):
		score += 4
	case strings.HasPrefix(tags.Python, "py"):
		score += 1
	}

	switch {
	case tags.Platform == "any":
		score += 1
	case platformTag != "" && strings.Contains(tags.Platform, platformTag):
		score += 4
	}

	if tags.ABI != "none" && tags.ABI != "" {
		score += 1
	}

	return score
}
