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

// Package pypi implements pubgrub.Provider against the PyPI JSON API.
package pypi

// PackageInfo is the top-level response from the PyPI JSON API.
// Endpoint: GET https://pypi.org/pypi/{package_name}/json
type PackageInfo struct {
	Info     Info             `json:"info"`
	URLs     []File           `json:"urls"`
	Releases map[string][]File `json:"releases"`
}

// Info is the package metadata carried by a PyPI API response.
type Info struct {
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Summary        string            `json:"summary"`
	RequiresDist   []string          `json:"requires_dist"`
	RequiresPython string            `json:"requires_python"`
	PackageURL     string            `json:"package_url"`
	ProjectURL     string            `json:"project_url"`
	ProjectURLs    map[string]string `json:"project_urls"`
	Yanked         bool              `json:"yanked"`
	YankedReason   string            `json:"yanked_reason"`
}

// File is one downloadable distribution (wheel or sdist) for a release.
type File struct {
	Filename       string  `json:"filename"`
	URL            string  `json:"url"`
	Size           int64   `json:"size"`
	PackageType    string  `json:"packagetype"` // "bdist_wheel" or "sdist"
	PythonVersion  string  `json:"python_version"`
	RequiresPython string  `json:"requires_python"`
	Digests        Digests `json:"digests"`
	Yanked         bool    `json:"yanked"`
	YankedReason   string  `json:"yanked_reason"`
}

// Digests carries hash digests for verifying a downloaded file.
type Digests struct {
	SHA256     string `json:"sha256"`
	MD5        string `json:"md5"`
	Blake2b256 string `json:"blake2b_256"`
}
