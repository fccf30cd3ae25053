// Package taskplan provides the symbolic planners that turn a domain and a
// problem into a totally ordered sequence of ground operators.
//
// Planners are selected by an opaque identifier through a Registry. The
// in-process planners ("bfs", "astar", "pabt") need nothing beyond this
// module; "fd-sat" and "fd-opt" shell out to Fast Downward.
package taskplan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// DefaultPlanner is the identifier used when none is configured.
const DefaultPlanner = "astar"

// ErrUnknownPlanner is returned by Registry.Get for unregistered identifiers.
var ErrUnknownPlanner = errors.New("taskplan: unknown planner")

// Result is the outcome of a planner call that itself succeeded. Found is
// false when the planner proved, or gave up concluding, that no plan exists;
// Reason then describes why.
type Result struct {
	Plan   []*relational.GroundOperator
	Found  bool
	Reason string
}

// Planned returns a successful Result.
func Planned(plan []*relational.GroundOperator) Result {
	return Result{Plan: plan, Found: true}
}

// NotFound returns a Result signalling that no plan exists.
func NotFound(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Planner computes plans. A non-nil error means the planner call itself
// failed (bad input, crashed subprocess, cancellation), as distinct from a
// Result with Found == false.
type Planner interface {
	Plan(ctx context.Context, domain *relational.Domain, problem *relational.Problem) (Result, error)
}

// PlannerFunc adapts a function to Planner.
type PlannerFunc func(ctx context.Context, domain *relational.Domain, problem *relational.Problem) (Result, error)

// Plan implements Planner.
func (f PlannerFunc) Plan(ctx context.Context, domain *relational.Domain, problem *relational.Problem) (Result, error) {
	return f(ctx, domain, problem)
}

// Registry maps planner identifiers to planners. It is safe for concurrent
// use.
type Registry struct {
	mu       sync.RWMutex
	planners map[string]Planner
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{planners: make(map[string]Planner)}
}

// Options configures NewDefaultRegistry.
type Options struct {
	// FastDownwardPath locates fast-downward.py (or a wrapper executable).
	// Empty means the FD_EXEC_PATH environment variable, then
	// "fast-downward.py" on PATH.
	FastDownwardPath string
	// FastDownwardOptions, if set, registers an "fd" planner running Fast
	// Downward with these component options instead of an alias.
	FastDownwardOptions []string
	// SearchLimit bounds node expansions for the in-process forward
	// planners. Zero means DefaultSearchLimit.
	SearchLimit int
	// MaxTicks bounds the behaviour tree ticks of the pabt planner. Zero
	// means DefaultMaxTicks.
	MaxTicks int
}

// NewDefaultRegistry returns a registry holding every built-in planner.
func NewDefaultRegistry(opts Options) *Registry {
	r := NewRegistry()
	r.Register("bfs", &ForwardSearch{Limit: opts.SearchLimit})
	r.Register("astar", &ForwardSearch{Informed: true, Limit: opts.SearchLimit})
	r.Register("pabt", &PABT{MaxTicks: opts.MaxTicks})
	r.Register("fd-sat", &FastDownward{Path: opts.FastDownwardPath, Alias: "lama-first"})
	r.Register("fd-opt", &FastDownward{Path: opts.FastDownwardPath, Alias: "seq-opt-lmcut"})
	if len(opts.FastDownwardOptions) > 0 {
		r.Register("fd", &FastDownward{Path: opts.FastDownwardPath, Options: opts.FastDownwardOptions})
	}
	return r
}

// Register adds a planner, replacing any existing one with the same id.
func (r *Registry) Register(id string, p Planner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.planners[id] = p
}

// Get returns the planner registered under id.
func (r *Registry) Get(id string) (Planner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.planners[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlanner, id)
	}
	return p, nil
}

// IDs returns the registered identifiers, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.planners))
	for id := range r.planners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks that plan is executable from the problem's initial state
// and achieves its goal. It is used to sanity check planner output.
func Validate(plan []*relational.GroundOperator, problem *relational.Problem) error {
	state := problem.Init()
	for i, op := range plan {
		if !op.Applicable(state) {
			return fmt.Errorf("taskplan: step %d %s is not applicable", i, op)
		}
		state = op.Apply(state)
	}
	if !state.ContainsAll(problem.Goal()) {
		return fmt.Errorf("taskplan: plan does not achieve the goal")
	}
	return nil
}
