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

import "log/slog"

// PrereleasePolicy controls how a Provider treats pre-release versions when
// choosing candidates. The Solver itself never inspects a version's
// pre-release status; this enum exists purely for Provider implementations
// to consume (see provider/pypi).
type PrereleasePolicy int

const (
	// PrereleaseDisallow never offers pre-release versions as candidates.
	PrereleaseDisallow PrereleasePolicy = iota
	// PrereleaseIfNecessary offers pre-releases only when no stable version
	// satisfies the current constraints.
	PrereleaseIfNecessary
	// PrereleaseAllow always considers pre-release versions.
	PrereleaseAllow
)

// SolverOptions configures Solver behavior.
type SolverOptions struct {
	// TrackIncompatibilities selects NoSolutionError's rendering: true uses
	// DefaultReporter's fully indented derivation tree, false uses
	// CollapsedReporter's flatter "X. And because Y, Z." narrative.
	TrackIncompatibilities bool

	// MaxSteps bounds the number of propagation/decision cycles. Zero
	// disables the limit.
	MaxSteps int

	// Logger receives debug-level tracing of propagation, decisions, and
	// backtracks. Defaults to slog.Default(); a nil Logger disables tracing.
	Logger *slog.Logger
}

// SolverOption is a functional option for NewSolver.
type SolverOption func(*SolverOptions)

const defaultMaxSteps = 100000

func defaultSolverOptions() SolverOptions {
	return SolverOptions{
		TrackIncompatibilities: true,
		MaxSteps:               defaultMaxSteps,
		Logger:                 slog.Default(),
	}
}

// WithIncompatibilityTracking selects how NoSolutionError messages are
// rendered: true uses DefaultReporter's indented derivation tree, false uses
// CollapsedReporter. Derivation history is recorded either way.
func WithIncompatibilityTracking(enabled bool) SolverOption {
	return func(o *SolverOptions) { o.TrackIncompatibilities = enabled }
}

// WithMaxSteps bounds the solver to at most steps propagation/decision
// cycles. Zero disables the limit.
func WithMaxSteps(steps int) SolverOption {
	return func(o *SolverOptions) {
		if steps <= 0 {
			o.MaxSteps = 0
		} else {
			o.MaxSteps = steps
		}
	}
}

// WithLogger sets the structured logger used for solver diagnostics.
func WithLogger(logger *slog.Logger) SolverOption {
	return func(o *SolverOptions) { o.Logger = logger }
}
