// Package runner holds the process-wide slot for the active build execution
// strategy.
//
// # Overview
//
// Callers never construct executors directly. Host integration code installs
// a [Runner] once at startup and every build request goes through the
// registry:
//
//	runner.SetIfAbsent(func() runner.Runner {
//	    return sandbox.NewExecutor(factory, entry)
//	})
//
//	spec := buildspec.New()
//	_ = spec.SetWorkingDirectory(dir)
//	_ = spec.AddGoals("clean", "install")
//	err := runner.Execute(ctx, spec)
//
// Tests replace the active runner with [Set] and a [Func].
//
// All registry operations are synchronized; replacing the runner while a
// build is in flight affects only the next call.
package runner

import (
	"context"
	"sync"

	"github.com/matzehuels/mvnbox/pkg/buildspec"
	"github.com/matzehuels/mvnbox/pkg/errors"
)

// Runner executes a build described by a spec.
type Runner interface {
	Execute(ctx context.Context, spec *buildspec.BuildSpec) error
}

// Func adapts a function to the Runner interface.
type Func func(ctx context.Context, spec *buildspec.BuildSpec) error

// Execute calls f(ctx, spec).
func (f Func) Execute(ctx context.Context, spec *buildspec.BuildSpec) error {
	return f(ctx, spec)
}

// Registry is a single swappable slot holding the active Runner.
// The zero value is an empty registry ready to use.
type Registry struct {
	mu     sync.Mutex
	active Runner
}

// Set replaces the active runner and returns the previous one (nil if none).
// Passing nil clears the slot.
func (r *Registry) Set(run Runner) Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.active
	r.active = run
	return prev
}

// Get returns the active runner, or nil and false if none is registered.
func (r *Registry) Get() (Runner, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.active != nil
}

// SetIfAbsent installs the runner produced by factory only if the slot is
// empty. factory is called under the registry lock and at most once. It
// returns whichever runner is active afterwards.
func (r *Registry) SetIfAbsent(factory func() Runner) Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil && factory != nil {
		r.active = factory()
	}
	return r.active
}

// Execute runs spec on the active runner. It fails with
// [errors.ErrCodeNotConfigured] when no runner is registered.
func (r *Registry) Execute(ctx context.Context, spec *buildspec.BuildSpec) error {
	run, ok := r.Get()
	if !ok {
		return errors.New(errors.ErrCodeNotConfigured, "no build runner registered")
	}
	if spec == nil {
		return errors.New(errors.ErrCodeInvalidInput, "build spec is nil")
	}
	return run.Execute(ctx, spec)
}

// Default is the process-wide registry used by the package-level functions.
var Default = &Registry{}

// Set replaces the runner in [Default].
func Set(run Runner) Runner { return Default.Set(run) }

// Get returns the runner in [Default].
func Get() (Runner, bool) { return Default.Get() }

// SetIfAbsent installs a runner in [Default] if none is set.
func SetIfAbsent(factory func() Runner) Runner { return Default.SetIfAbsent(factory) }

// Execute runs spec on the runner in [Default].
func Execute(ctx context.Context, spec *buildspec.BuildSpec) error {
	return Default.Execute(ctx, spec)
}
