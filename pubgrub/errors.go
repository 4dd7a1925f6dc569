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

import "fmt"

// NoSolutionError is returned when no set of package versions satisfies
// every constraint. Its Error method renders a human-readable derivation
// tree via Reporter.
type NoSolutionError struct {
	Incompatibility *Incompatibility
	Reporter        Reporter
}

// NewNoSolutionError wraps incomp with the default Reporter.
func NewNoSolutionError(incomp *Incompatibility, arena *incompatibilityArena) *NoSolutionError {
	return &NoSolutionError{Incompatibility: incomp, Reporter: &DefaultReporter{arena: arena}}
}

func (e *NoSolutionError) Error() string {
	if e.Incompatibility == nil {
		return "no solution found"
	}
	reporter := e.Reporter
	if reporter == nil {
		reporter = &DefaultReporter{}
	}
	return reporter.Report(e.Incompatibility)
}

// WithReporter returns a copy of e using reporter to render its message.
func (e *NoSolutionError) WithReporter(reporter Reporter) *NoSolutionError {
	return &NoSolutionError{Incompatibility: e.Incompatibility, Reporter: reporter}
}

// ProviderError wraps an error returned by a Provider method, distinguishing
// solver-internal failures (bugs) from provider-side failures (network,
// parsing, I/O).
type ProviderError struct {
	Package Package
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error for %s: %v", e.Package, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ErrConflictingURLs is returned when two requirements pin the same package
// name to two different, non-equal canonical URLs.
type ErrConflictingURLs struct {
	Package string
	First   string
	Second  string
}

func (e *ErrConflictingURLs) Error() string {
	return fmt.Sprintf("%s is pinned to conflicting URLs: %s and %s", e.Package, e.First, e.Second)
}

// ErrSelfDependency is returned when a package's dependency edges include
// itself at the same Kind/Name (a fatal condition, not a constraint for the
// solver to resolve around).
type ErrSelfDependency struct {
	Package Package
	Version Version
}

func (e *ErrSelfDependency) Error() string {
	return fmt.Sprintf("%s %s depends on itself", e.Package, e.Version)
}

// ErrCancelled is returned when Provider.ShouldCancel reports the solve
// should stop.
type ErrCancelled struct {
	Cause error
}

func (e *ErrCancelled) Error() string {
	if e.Cause == nil {
		return "solve cancelled"
	}
	return fmt.Sprintf("solve cancelled: %v", e.Cause)
}

func (e *ErrCancelled) Unwrap() error { return e.Cause }

// ErrIterationLimit is returned when the solver exceeds its configured
// MaxSteps without converging, guarding against pathological or malformed
// inputs producing an unbounded search.
type ErrIterationLimit struct {
	Steps int
}

func (e *ErrIterationLimit) Error() string {
	return fmt.Sprintf("solver exceeded iteration limit after %d steps", e.Steps)
}

var (
	_ error = (*NoSolutionError)(nil)
	_ error = (*ProviderError)(nil)
	_ error = (*ErrConflictingURLs)(nil)
	_ error = (*ErrSelfDependency)(nil)
	_ error = (*ErrCancelled)(nil)
	_ error = (*ErrIterationLimit)(nil)
)
