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
)

// PackageVersion is a resolved package paired with its selected version.
type PackageVersion struct {
	Package Package
	Version Version
}

func (pv PackageVersion) String() string {
	return fmt.Sprintf("%s %s", pv.Package, pv.Version)
}

// Solution is the complete, consistent set of package versions a Solver run
// produced.
type Solution []PackageVersion

// GetVersion returns the version selected for pkg, if any.
func (s Solution) GetVersion(pkg Package) (Version, bool) {
	for _, pv := range s {
		if pv.Package == pkg {
			return pv.Version, true
		}
	}
	return nil, false
}

// All iterates every package-version pair in the solution.
func (s Solution) All() iter.Seq[PackageVersion] {
	return func(yield func(PackageVersion) bool) {
		for _, pv := range s {
			if !yield(pv) {
				return
			}
		}
	}
}
