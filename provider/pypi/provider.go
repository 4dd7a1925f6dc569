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

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/corvidlabs/pyresolve/manifest"
	"github.com/corvidlabs/pyresolve/marker"
	"github.com/corvidlabs/pyresolve/pep440"
	"github.com/corvidlabs/pyresolve/pubgrub"
)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithPrereleasePolicy sets how pre-release versions are treated when
// choosing candidates. Defaults to PrereleaseIfNecessary.
func WithPrereleasePolicy(policy pubgrub.PrereleasePolicy) ProviderOption {
	return func(p *Provider) { p.policy = policy }
}

// WithEnvironment sets the PEP 508 marker environment dependency edges are
// evaluated against. Defaults to the zero Environment (every variable empty).
func WithEnvironment(env marker.Environment) ProviderOption {
	return func(p *Provider) { p.env = env }
}

// WithProviderLogger sets the structured logger used for resolution
// diagnostics. Named distinctly from the client's WithLogger since both
// option types live in this package.
func WithProviderLogger(l *slog.Logger) ProviderOption {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithURLTable supplies a URLTable shared across a single resolve, so
// direct-URL conflicts are detected against every requirement in that
// resolve rather than just this Provider's own bindings.
func WithURLTable(t *pubgrub.URLTable) ProviderOption {
	return func(p *Provider) {
		if t != nil {
			p.urls = t
		}
	}
}

// WithPreferences sets the soft name-to-version hints consulted when more
// than one version remains viable for a package: the preferred version is
// picked if it's among the viable set, but the solver remains free to pick
// another if the preferred one conflicts.
func WithPreferences(prefs map[string]string) ProviderOption {
	return func(p *Provider) { p.preferences = prefs }
}

// Provider implements pubgrub.Provider against the PyPI JSON API: it
// fetches candidate versions and per-version metadata lazily, expands
// extras into the virtual KindExtra packages pubgrub.Package models them
// as, and prunes dependency edges whose PEP 508 marker doesn't hold in the
// configured Environment before they ever reach the solver.
type Provider struct {
	client      Client
	policy      pubgrub.PrereleasePolicy
	env         marker.Environment
	urls        *pubgrub.URLTable
	preferences map[string]string
	logger      *slog.Logger
}

// NewProvider builds a Provider backed by client.
func NewProvider(client Client, opts ...ProviderOption) *Provider {
	p := &Provider{
		client: client,
		policy: pubgrub.PrereleaseIfNecessary,
		urls:   pubgrub.NewURLTable(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

var _ pubgrub.Provider = (*Provider)(nil)

// candidate pairs one of ChoosePackageVersion's offered packages with its
// allowed Range and, once fetched, the viable versions within it.
type candidate struct {
	pkg     pubgrub.Package
	allowed pubgrub.Range
	info    *PackageInfo
	err     error
}

// ChoosePackageVersion implements pubgrub.Provider. It fetches every
// candidate package's release index concurrently, then applies the
// "fewest viable versions first" heuristic: deciding the most constrained
// package next tends to surface conflicts earlier and with less
// backtracking.
func (p *Provider) ChoosePackageVersion(ctx context.Context, candidates iter.Seq2[pubgrub.Package, pubgrub.Range]) (pubgrub.Package, pubgrub.Version, error) {
	var batch []candidate
	for pkg, allowed := range candidates {
		batch = append(batch, candidate{pkg: pkg, allowed: allowed})
	}
	if len(batch) == 0 {
		return pubgrub.Package{}, nil, nil
	}

	group, gctx := errgroup.WithContext(ctx)
	for i := range batch {
		if batch[i].pkg.Kind == pubgrub.KindURL || pubgrub.IsPythonPackage(batch[i].pkg) {
			continue
		}
		group.Go(func() error {
			info, err := p.client.GetPackage(gctx, batch[i].pkg.Base().Name.Value())
			batch[i].info, batch[i].err = info, err
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return pubgrub.Package{}, nil, err
	}

	bestIdx := -1
	var bestVersions []pep440.Version

	for i := range batch {
		if batch[i].pkg.Kind == pubgrub.KindURL {
			ver, err := p.chooseURLVersion(batch[i].pkg)
			if err != nil {
				return pubgrub.Package{}, nil, err
			}
			return batch[i].pkg, ver, nil
		}
		if pubgrub.IsPythonPackage(batch[i].pkg) {
			ver, ok := p.pythonVersion()
			if !ok || !batch[i].allowed.Contains(ver) {
				// No viable interpreter version: reported the same way as
				// an ordinary package with no allowed releases, so the
				// solver derives an honest NoVersions contradiction.
				return batch[i].pkg, nil, nil
			}
			return batch[i].pkg, ver, nil
		}
		if batch[i].err != nil {
			return pubgrub.Package{}, nil, &pubgrub.ProviderError{Package: batch[i].pkg, Err: batch[i].err}
		}

		versions, err := p.viableVersions(batch[i].info, batch[i].allowed)
		if err != nil {
			return pubgrub.Package{}, nil, &pubgrub.ProviderError{Package: batch[i].pkg, Err: err}
		}

		if bestIdx == -1 || len(versions) < len(bestVersions) {
			bestIdx, bestVersions = i, versions
		}
	}

	if bestIdx == -1 {
		return pubgrub.Package{}, nil, nil
	}
	if len(bestVersions) == 0 {
		return batch[bestIdx].pkg, nil, nil
	}

	chosen := p.preferredVersion(batch[bestIdx].pkg, bestVersions)

	p.logger.Debug("chose package version",
		slog.String("package", batch[bestIdx].pkg.String()),
		slog.String("version", chosen.String()),
		slog.Int("viable", len(bestVersions)),
	)

	return batch[bestIdx].pkg, chosen, nil
}

// pythonVersion returns the configured target Python version as a
// pep440.Version. The second return value is false if none is configured or
// it fails to parse as a PEP 440 version.
func (p *Provider) pythonVersion() (pep440.Version, bool) {
	if p.env.PythonVersion == "" {
		return pep440.Version{}, false
	}
	v, err := pep440.Parse(p.env.PythonVersion)
	if err != nil {
		return pep440.Version{}, false
	}
	return v, true
}

// preferredVersion picks pkg's preferred version among versions (ascending)
// if one is configured and still viable, otherwise the highest viable
// version.
func (p *Provider) preferredVersion(pkg pubgrub.Package, versions []pep440.Version) pep440.Version {
	highest := versions[len(versions)-1]

	pref, ok := p.preferences[pkg.Base().Name.Value()]
	if !ok {
		return highest
	}
	prefVer, err := pep440.Parse(pref)
	if err != nil {
		return highest
	}
	for _, v := range versions {
		if v.Compare(prefVer) == 0 {
			return v
		}
	}
	return highest
}

// viableVersions returns every released version of info within allowed,
// honoring the configured pre-release policy, sorted ascending.
func (p *Provider) viableVersions(info *PackageInfo, allowed pubgrub.Range) ([]pep440.Version, error) {
	var stable, pre []pep440.Version

	for raw := range info.Releases {
		v, err := pep440.Parse(raw)
		if err != nil {
			continue // unparsable release identifiers are skipped, not fatal
		}
		if !allowed.Contains(v) {
			continue
		}
		if v.IsPreRelease() {
			pre = append(pre, v)
		} else {
			stable = append(stable, v)
		}
	}

	slices.SortFunc(stable, func(a, b pep440.Version) int { return a.Compare(b) })
	slices.SortFunc(pre, func(a, b pep440.Version) int { return a.Compare(b) })

	switch p.policy {
	case pubgrub.PrereleaseAllow:
		return append(stable, pre...), nil
	case pubgrub.PrereleaseIfNecessary:
		if len(stable) > 0 {
			return stable, nil
		}
		return pre, nil
	default: // PrereleaseDisallow
		return stable, nil
	}
}

// chooseURLVersion resolves a direct-URL package to its single pinned
// version, binding the URL into the shared URLTable so a conflicting second
// pin for the same name is reported rather than silently preferred.
func (p *Provider) chooseURLVersion(pkg pubgrub.Package) (pubgrub.Version, error) {
	if err := p.urls.Bind(pkg.Name.Value(), pkg.URL, pkg); err != nil {
		return nil, err
	}
	return urlPinnedVersion(pkg.URL), nil
}

// urlPinnedVersion assigns a direct-URL package the unique version string
// "0+<canonical url>": local-version syntax keeps it disjoint from every
// real PyPI release while still being a stable, comparable identity across
// repeated requests for the same URL.
func urlPinnedVersion(canonicalURL string) pep440.Version {
	return pep440.MustParse(fmt.Sprintf("0+%s", sanitizeLocalSegment(canonicalURL)))
}

func sanitizeLocalSegment(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out[i] = c
		default:
			out[i] = '-'
		}
	}
	return string(out)
}

// GetDependencies implements pubgrub.Provider.
func (p *Provider) GetDependencies(ctx context.Context, pkg pubgrub.Package, version pubgrub.Version) (pubgrub.Dependencies, error) {
	switch pkg.Kind {
	case pubgrub.KindURL:
		// Determining a direct-URL distribution's own dependencies requires
		// downloading and inspecting its metadata, which belongs to the
		// materialization stage, not the resolver core; treat it as a leaf.
		return pubgrub.Dependencies{Known: true}, nil

	case pubgrub.KindExtra:
		return p.extraDependencies(ctx, pkg, version)

	default:
		return p.packageDependencies(ctx, pkg, version)
	}
}

func (p *Provider) packageDependencies(ctx context.Context, pkg pubgrub.Package, version pubgrub.Version) (pubgrub.Dependencies, error) {
	ver, ok := version.(pep440.Version)
	if !ok {
		return pubgrub.Dependencies{}, fmt.Errorf("pypi provider requires a pep440.Version, got %T", version)
	}

	info, err := p.client.GetPackageVersion(ctx, pkg.Name.Value(), ver.String())
	if err != nil {
		return pubgrub.Dependencies{}, err
	}
	if info.Info.Yanked {
		return pubgrub.Dependencies{Known: false}, nil
	}

	edges, err := p.dependencyEdges(info.Info.RequiresDist, nil)
	if err != nil {
		return pubgrub.Dependencies{}, err
	}

	edge, err := requiresPythonEdge(info.Info.RequiresPython)
	if err != nil {
		return pubgrub.Dependencies{}, fmt.Errorf("package %s: %w", pkg.Name.Value(), err)
	}
	if edge != nil {
		edges = append(edges, *edge)
	}

	return pubgrub.Dependencies{Known: true, Edges: edges}, nil
}

// requiresPythonEdge converts a PyPI Requires-Python constraint into a
// dependency edge against the synthetic pubgrub.PythonPackage, so an
// interpreter-incompatible candidate surfaces as an ordinary solver
// contradiction rather than a silently filtered-out version.
func requiresPythonEdge(requiresPython string) (*pubgrub.DependencyEdge, error) {
	requiresPython = strings.TrimSpace(requiresPython)
	if requiresPython == "" {
		return nil, nil
	}

	spec, err := pep440.ParseSpecifier(requiresPython)
	if err != nil {
		return nil, fmt.Errorf("parsing requires_python %q: %w", requiresPython, err)
	}
	rng, err := spec.ToRange()
	if err != nil {
		return nil, fmt.Errorf("converting requires_python %q to range: %w", requiresPython, err)
	}

	return &pubgrub.DependencyEdge{Package: pubgrub.PythonPackage(), Range: rng}, nil
}

func (p *Provider) extraDependencies(ctx context.Context, pkg pubgrub.Package, version pubgrub.Version) (pubgrub.Dependencies, error) {
	ver, ok := version.(pep440.Version)
	if !ok {
		return pubgrub.Dependencies{}, fmt.Errorf("pypi provider requires a pep440.Version, got %T", version)
	}

	info, err := p.client.GetPackageVersion(ctx, pkg.Name.Value(), ver.String())
	if err != nil {
		return pubgrub.Dependencies{}, err
	}

	active := map[string]bool{pkg.Extra: true}
	edges, err := p.dependencyEdges(info.Info.RequiresDist, active)
	if err != nil {
		return pubgrub.Dependencies{}, err
	}

	// An extra always carries a dependency on its own base package pinned
	// to this exact version: requesting requests[socks]==2.31 must resolve
	// requests itself to 2.31 too.
	base := pkg.Base()
	edges = append(edges, pubgrub.DependencyEdge{Package: base, Range: pubgrub.SingletonRange(ver)})

	return pubgrub.Dependencies{Known: true, Edges: edges}, nil
}

// dependencyEdges parses requiresDist entries into pubgrub dependency edges,
// dropping any whose marker evaluates false against the provider's
// environment with activeExtras overlaid.
func (p *Provider) dependencyEdges(requiresDist []string, activeExtras map[string]bool) ([]pubgrub.DependencyEdge, error) {
	env := p.env
	env.Extras = activeExtras

	var edges []pubgrub.DependencyEdge
	for _, raw := range requiresDist {
		req, err := manifest.ParseRequirement(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing requires_dist %q: %w", raw, err)
		}

		if !req.Marker.Eval(env) {
			continue
		}

		if req.URL != "" {
			edges = append(edges, pubgrub.DependencyEdge{
				Package: pubgrub.NewURLPackage(req.Name, req.URL),
				Range:   pubgrub.FullRange(),
			})
			continue
		}

		rng, err := req.Specifier.ToRange()
		if err != nil {
			return nil, fmt.Errorf("dependency %q: %w", raw, err)
		}

		edges = append(edges, pubgrub.DependencyEdge{Package: pubgrub.NewPackage(req.Name), Range: rng})

		for _, extra := range req.Extras {
			edges = append(edges, pubgrub.DependencyEdge{
				Package: pubgrub.NewExtraPackage(req.Name, extra),
				Range:   rng,
			})
		}
	}

	return edges, nil
}

// ShouldCancel implements pubgrub.Provider by deferring to ctx's own
// cancellation.
func (p *Provider) ShouldCancel(ctx context.Context) error {
	return ctx.Err()
}
