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

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/corvidlabs/pyresolve/graph"
	"github.com/corvidlabs/pyresolve/manifest"
	"github.com/corvidlabs/pyresolve/marker"
	"github.com/corvidlabs/pyresolve/provider/cache"
	"github.com/corvidlabs/pyresolve/provider/pypi"
	"github.com/corvidlabs/pyresolve/pubgrub"
)

var version = "0.0.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "pyresolve",
		Short:         "A standalone PubGrub resolver for Python package requirements",
		Long:          "pyresolve reads PEP 508 requirements and prints the resolved version set, or the conflict that prevents one.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	resolveCmd := &cobra.Command{
		Use:   "resolve [requirements...]",
		Short: "Resolve a set of requirements to a consistent version set",
		Args:  cobra.MinimumNArgs(0),
		RunE:  runResolve,
	}

	resolveCmd.Flags().StringP("requirements", "r", "", "read requirements from a pip-style requirements file")
	resolveCmd.Flags().StringArray("constraint", nil, "a PEP 508 requirement that tightens but never adds a package")
	resolveCmd.Flags().StringArray("override", nil, "a PEP 508 requirement that hard-replaces a package's specifier")
	resolveCmd.Flags().StringArray("prefer", nil, "a soft version hint (name=version) consulted when choosing among otherwise-acceptable versions")
	resolveCmd.Flags().String("prerelease", "if-necessary", "pre-release policy: disallow, if-necessary, allow")
	resolveCmd.Flags().String("python-version", "3.12", "python_version marker value")
	resolveCmd.Flags().String("sys-platform", "linux", "sys_platform marker value")
	resolveCmd.Flags().BoolP("verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(resolveCmd)

	return rootCmd.Execute()
}

type resolveFlags struct {
	reqFile       string
	constraints   []string
	overrides     []string
	preferences   []string
	prerelease    string
	pythonVersion string
	sysPlatform   string
	verbose       bool
}

func parseResolveFlags(cmd *cobra.Command) resolveFlags {
	reqFile, _ := cmd.Flags().GetString("requirements")
	constraints, _ := cmd.Flags().GetStringArray("constraint")
	overrides, _ := cmd.Flags().GetStringArray("override")
	preferences, _ := cmd.Flags().GetStringArray("prefer")
	prerelease, _ := cmd.Flags().GetString("prerelease")
	pythonVersion, _ := cmd.Flags().GetString("python-version")
	sysPlatform, _ := cmd.Flags().GetString("sys-platform")
	verbose, _ := cmd.Flags().GetBool("verbose")

	return resolveFlags{reqFile, constraints, overrides, preferences, prerelease, pythonVersion, sysPlatform, verbose}
}

// parsePreferences turns "name=version" flag entries into the preference map
// consulted by the provider when several versions remain viable.
func parsePreferences(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	prefs := make(map[string]string, len(raw))
	for _, entry := range raw {
		name, version, ok := strings.Cut(entry, "=")
		if !ok || name == "" || version == "" {
			return nil, fmt.Errorf("invalid --prefer %q, want name=version", entry)
		}
		prefs[manifest.NormalizeName(name)] = version
	}
	return prefs, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	flags := parseResolveFlags(cmd)

	lines, err := collectRequirementLines(args, flags.reqFile)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("no requirements specified; use 'pyresolve resolve <req>' or -r requirements.txt")
	}

	logger := newLogger(flags.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	preferences, err := parsePreferences(flags.preferences)
	if err != nil {
		return err
	}

	m, err := manifest.Parse(lines, flags.constraints, flags.overrides, preferences)
	if err != nil {
		return fmt.Errorf("parsing requirements: %w", err)
	}

	policy, err := parsePrereleasePolicy(flags.prerelease)
	if err != nil {
		return err
	}

	env := marker.Environment{PythonVersion: flags.pythonVersion, SysPlatform: flags.sysPlatform, OsName: "posix"}

	client := pypi.NewClient(pypi.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}), pypi.WithLogger(logger))
	base := pypi.NewProvider(client,
		pypi.WithPrereleasePolicy(policy),
		pypi.WithEnvironment(env),
		pypi.WithProviderLogger(logger),
		pypi.WithPreferences(m.Preferences),
	)
	provider := cache.New(base)

	rootEdges, err := rootDependencyEdges(m, env)
	if err != nil {
		return fmt.Errorf("building root requirements: %w", err)
	}

	solver := pubgrub.NewSolver(provider, pubgrub.WithLogger(logger))

	fmt.Println("Resolving...")

	solution, err := solver.Solve(ctx, rootEdges)
	if err != nil {
		return err
	}

	edges := make(map[pubgrub.Package][]pubgrub.DependencyEdge)
	edges[pubgrub.RootPackage()] = rootEdges

	for pv := range solution.All() {
		deps, err := provider.GetDependencies(ctx, pv.Package, pv.Version)
		if err != nil {
			return fmt.Errorf("building graph: %w", err)
		}
		edges[pv.Package] = deps.Edges
	}

	g := graph.Build(solution, edges)
	fmt.Print(g.String())

	return nil
}

func parsePrereleasePolicy(s string) (pubgrub.PrereleasePolicy, error) {
	switch strings.ToLower(s) {
	case "disallow":
		return pubgrub.PrereleaseDisallow, nil
	case "if-necessary", "":
		return pubgrub.PrereleaseIfNecessary, nil
	case "allow":
		return pubgrub.PrereleaseAllow, nil
	default:
		return 0, fmt.Errorf("unknown --prerelease value %q (want disallow, if-necessary, allow)", s)
	}
}

// rootDependencyEdges turns the manifest's requirements (with overrides
// applied and extras expanded) into the root package's dependency edges.
// A requirement or constraint whose PEP 508 marker doesn't hold in env is
// dropped here, before it ever reaches the solver: otherwise two URL-pinned
// requirements for the same package in disjoint marker branches (e.g.
// `python_version < "3.12"` vs `>= "3.12"`) would both turn into root edges
// and collide in the URL table even though only one ever applies.
func rootDependencyEdges(m manifest.Manifest, env marker.Environment) ([]pubgrub.DependencyEdge, error) {
	var edges []pubgrub.DependencyEdge

	for _, req := range m.Requirements {
		r := req
		if override, ok := m.Override(req.Name); ok {
			r = override
		}

		if !r.Marker.Eval(env) {
			continue
		}

		if r.URL != "" {
			edges = append(edges, pubgrub.DependencyEdge{
				Package: pubgrub.NewURLPackage(r.Name, r.URL),
				Range:   pubgrub.FullRange(),
			})
			continue
		}

		rng, err := r.Specifier.ToRange()
		if err != nil {
			return nil, fmt.Errorf("requirement %s: %w", r.Name, err)
		}

		for _, constraint := range m.ConstraintsFor(r.Name) {
			if !constraint.Marker.Eval(env) {
				continue
			}
			crng, err := constraint.Specifier.ToRange()
			if err != nil {
				return nil, fmt.Errorf("constraint for %s: %w", r.Name, err)
			}
			rng = rng.Intersection(crng)
		}

		edges = append(edges, pubgrub.DependencyEdge{Package: pubgrub.NewPackage(r.Name), Range: rng})

		for _, extra := range r.Extras {
			edges = append(edges, pubgrub.DependencyEdge{
				Package: pubgrub.NewExtraPackage(r.Name, extra),
				Range:   rng,
			})
		}
	}

	return edges, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// collectRequirementLines merges CLI args and requirements-file entries.
func collectRequirementLines(args []string, reqFile string) ([]string, error) {
	lines := append([]string{}, args...)

	if reqFile != "" {
		fileLines, err := parseRequirementsFile(reqFile)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}

	return lines, nil
}

// parseRequirementsFile reads a pip-compatible requirements file: comments,
// blank lines, and pip options (lines starting with "-") are skipped.
func parseRequirementsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening requirements file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var lines []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		if line == "" || strings.HasPrefix(line, "-") {
			continue
		}

		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading requirements file %s: %w", path, err)
	}

	return lines, nil
}
