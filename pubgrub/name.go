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

import "unique"

// PackageName is an interned package name: equal strings intern to the same
// handle, so comparisons and map keys are cheap regardless of how many times
// a name appears across a resolution.
type PackageName = unique.Handle[string]

// MakeName interns s as a PackageName.
func MakeName(s string) PackageName {
	return unique.Make(s)
}
