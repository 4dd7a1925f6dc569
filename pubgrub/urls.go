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
	"net/url"
	"strings"
	"sync"
)

// urlBinding records which requirement first pinned a package name to a
// direct URL, so a later, conflicting pin can be reported precisely.
type urlBinding struct {
	canonicalURL string
	introducer   Package
}

// URLTable tracks the one canonical URL each package name is allowed to be
// pinned to across a resolve. A second, non-equal URL for an already-bound
// name is a hard conflict (ErrConflictingURLs), matching pip's "is pinned to
// a URL" behavior: unlike version constraints, URL pins aren't intersected,
// they're compared for equality.
type URLTable struct {
	mu       sync.Mutex
	bindings map[string]urlBinding
}

// NewURLTable returns an empty URLTable.
func NewURLTable() *URLTable {
	return &URLTable{bindings: make(map[string]urlBinding)}
}

// Bind registers that introducer pins name to rawURL, after canonicalizing
// it. If name is already bound to a different canonical URL, it returns
// ErrConflictingURLs; binding the same canonical URL again is a no-op.
func (t *URLTable) Bind(name string, rawURL string, introducer Package) error {
	canonical := CanonicalizeURL(rawURL)

	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.bindings[name]
	if !ok {
		t.bindings[name] = urlBinding{canonicalURL: canonical, introducer: introducer}
		return nil
	}
	if existing.canonicalURL != canonical {
		return &ErrConflictingURLs{Package: name, First: existing.canonicalURL, Second: canonical}
	}
	return nil
}

// Lookup returns the canonical URL bound to name, if any.
func (t *URLTable) Lookup(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	b, ok := t.bindings[name]
	return b.canonicalURL, ok
}

// CanonicalizeURL normalizes a direct-reference URL for equality comparison:
// lower-cased scheme and host, stripped default ports, stripped trailing
// slash, and stripped any URL fragment (PEP 440 direct references permit an
// "#egg=" / hash fragment that does not affect package identity).
func CanonicalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if port := u.Port(); (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		u.Host = strings.TrimSuffix(u.Host, ":"+port)
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}
