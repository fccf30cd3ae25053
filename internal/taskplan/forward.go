package taskplan

import (
	"context"
	"errors"
	"fmt"

	"github.com/joeycumines/task-then-motion-planning/internal/pathsearch"
	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// DefaultSearchLimit bounds ForwardSearch expansions when Limit is zero.
const DefaultSearchLimit = 100000

// ForwardSearch is a STRIPS forward state-space planner. With Informed set it
// runs A* guided by the number of unsatisfied goal atoms; otherwise it runs
// breadth-first search and returns a shortest plan.
type ForwardSearch struct {
	Informed bool
	Limit    int
}

// Plan implements Planner.
func (s *ForwardSearch) Plan(ctx context.Context, domain *relational.Domain, problem *relational.Problem) (Result, error) {
	if domain.Name() != problem.DomainName() {
		return Result{}, fmt.Errorf("taskplan: problem %s targets domain %s, not %s", problem.Name(), problem.DomainName(), domain.Name())
	}
	operators := problem.GroundAll(domain)
	goal := problem.Goal()
	start := problem.Init()

	states := map[string]relational.AtomSet{start.Key(): start}
	sp := pathsearch.Problem[string, *relational.GroundOperator]{
		Start: start.Key(),
		Goal: func(key string) bool {
			return states[key].ContainsAll(goal)
		},
		Successors: func(key string) []pathsearch.Step[string, *relational.GroundOperator] {
			state := states[key]
			var out []pathsearch.Step[string, *relational.GroundOperator]
			for _, op := range operators {
				if !op.Applicable(state) {
					continue
				}
				next := op.Apply(state)
				nextKey := next.Key()
				if _, ok := states[nextKey]; !ok {
					states[nextKey] = next
				}
				out = append(out, pathsearch.Step[string, *relational.GroundOperator]{Move: op, To: nextKey, Cost: 1})
			}
			return out
		},
		Limit: s.Limit,
	}
	if sp.Limit == 0 {
		sp.Limit = DefaultSearchLimit
	}

	var (
		plan []*relational.GroundOperator
		err  error
	)
	if s.Informed {
		sp.Heuristic = func(key string) float64 {
			missing := 0
			state := states[key]
			for k := range goal {
				if _, ok := state[k]; !ok {
					missing++
				}
			}
			return float64(missing)
		}
		plan, err = pathsearch.AStar(ctx, sp)
	} else {
		plan, err = pathsearch.BFS(ctx, sp)
	}

	switch {
	case err == nil:
		return Planned(plan), nil
	case errors.Is(err, pathsearch.ErrNoPath):
		return NotFound("goal unreachable: explored %d states", len(states)), nil
	default:
		return Result{}, fmt.Errorf("taskplan: forward search: %w", err)
	}
}
