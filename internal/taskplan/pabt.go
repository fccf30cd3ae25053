package taskplan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	bt "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// DefaultMaxTicks bounds PABT ticks when MaxTicks is zero.
const DefaultMaxTicks = 1000

// debugPABT enables verbose tracing of the PA-BT expansion.
// Set TTMP_DEBUG_PABT=1 to enable.
var debugPABT = os.Getenv("TTMP_DEBUG_PABT") == "1"

// Compile-time interface checks
var (
	_ pabtpkg.IState    = (*atomState)(nil)
	_ pabtpkg.IAction   = (*atomAction)(nil)
	_ pabtpkg.Condition = (*atomCondition)(nil)
	_ pabtpkg.Effect    = (*atomEffect)(nil)
)

// PABT plans by building a PA-BT behaviour tree backwards from the goal and
// ticking it against a simulated symbolic state. Each ground operator is a
// PA-BT action whose node applies the operator to the simulation; the order
// in which those nodes succeed is the returned plan.
type PABT struct {
	MaxTicks int
}

// Plan implements Planner.
func (p *PABT) Plan(ctx context.Context, domain *relational.Domain, problem *relational.Problem) (Result, error) {
	if domain.Name() != problem.DomainName() {
		return Result{}, fmt.Errorf("taskplan: problem %s targets domain %s, not %s", problem.Name(), problem.DomainName(), domain.Name())
	}
	goal := problem.Goal()
	state := newAtomState(ctx, problem.Init(), problem.GroundAll(domain))
	if state.satisfies(goal) {
		return Planned(nil), nil
	}

	conditions := make(pabtpkg.IConditions, 0, len(goal))
	for _, a := range goal.Sorted() {
		conditions = append(conditions, &atomCondition{key: a.Key(), want: true})
	}
	plan, err := pabtpkg.INew(state, []pabtpkg.IConditions{conditions})
	if err != nil {
		return Result{}, fmt.Errorf("taskplan: pabt: %w", err)
	}

	maxTicks := p.MaxTicks
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}
	node := plan.Node()
	for i := 0; i < maxTicks; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		status, err := node.Tick()
		if err != nil {
			return Result{}, fmt.Errorf("taskplan: pabt tick %d: %w", i, err)
		}
		if debugPABT {
			slog.Debug("[PA-BT] tick", "tick", i, "status", status, "trace", len(state.trace))
		}
		switch status {
		case bt.Success:
			if !state.satisfies(goal) {
				return Result{}, fmt.Errorf("taskplan: pabt reported success but the goal does not hold")
			}
			return Planned(state.trace), nil
		case bt.Failure:
			return NotFound("pabt: no applicable expansion after %d ticks", i+1), nil
		}
	}
	return NotFound("pabt: goal not reached within %d ticks", maxTicks), nil
}

// atomState is the simulated world the PA-BT tree runs against. Variables
// are atom keys; their values are whether the atom currently holds.
type atomState struct {
	ctx     context.Context
	mu      sync.RWMutex
	atoms   relational.AtomSet
	actions []*atomAction
	trace   []*relational.GroundOperator
}

func newAtomState(ctx context.Context, init relational.AtomSet, operators []*relational.GroundOperator) *atomState {
	s := &atomState{ctx: ctx, atoms: init}
	for _, op := range operators {
		s.actions = append(s.actions, newAtomAction(s, op))
	}
	return s
}

func (s *atomState) satisfies(goal relational.AtomSet) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atoms.ContainsAll(goal)
}

// Variable implements pabtpkg.IState.
func (s *atomState) Variable(key any) (any, error) {
	k, ok := key.(string)
	if !ok {
		return nil, fmt.Errorf("unsupported key type: %T", key)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, holds := s.atoms[k]
	return holds, nil
}

// Actions implements pabtpkg.IState, returning the actions with an effect
// that would satisfy failed, in grounding order.
func (s *atomState) Actions(failed pabtpkg.Condition) ([]pabtpkg.IAction, error) {
	if failed == nil {
		out := make([]pabtpkg.IAction, len(s.actions))
		for i, a := range s.actions {
			out[i] = a
		}
		return out, nil
	}
	var relevant []pabtpkg.IAction
	for _, a := range s.actions {
		for _, e := range a.effects {
			if e.Key() == failed.Key() && failed.Match(e.Value()) {
				relevant = append(relevant, a)
				break
			}
		}
	}
	if debugPABT {
		slog.Debug("[PA-BT] actions", "failed", failed.Key(), "relevant", len(relevant))
	}
	return relevant, nil
}

func (s *atomState) execute(op *relational.GroundOperator) (bt.Status, error) {
	if err := s.ctx.Err(); err != nil {
		return bt.Failure, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !op.Applicable(s.atoms) {
		return bt.Failure, nil
	}
	s.atoms = op.Apply(s.atoms)
	s.trace = append(s.trace, op)
	return bt.Success, nil
}

type atomAction struct {
	state      *atomState
	op         *relational.GroundOperator
	conditions []pabtpkg.IConditions
	effects    pabtpkg.Effects
}

func newAtomAction(state *atomState, op *relational.GroundOperator) *atomAction {
	pre := make(pabtpkg.IConditions, 0)
	for _, a := range op.Preconditions().Sorted() {
		pre = append(pre, &atomCondition{key: a.Key(), want: true})
	}
	var effects pabtpkg.Effects
	for _, a := range op.AddEffects().Sorted() {
		effects = append(effects, &atomEffect{key: a.Key(), value: true})
	}
	for _, a := range op.DeleteEffects().Sorted() {
		effects = append(effects, &atomEffect{key: a.Key(), value: false})
	}
	return &atomAction{
		state:      state,
		op:         op,
		conditions: []pabtpkg.IConditions{pre},
		effects:    effects,
	}
}

func (a *atomAction) Conditions() []pabtpkg.IConditions { return a.conditions }

func (a *atomAction) Effects() pabtpkg.Effects { return a.effects }

func (a *atomAction) Node() bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		return a.state.execute(a.op)
	})
}

type atomCondition struct {
	key  string
	want bool
}

func (c *atomCondition) Key() any { return c.key }

func (c *atomCondition) Match(value any) bool {
	v, ok := value.(bool)
	return ok && v == c.want
}

type atomEffect struct {
	key   string
	value bool
}

func (e *atomEffect) Key() any { return e.key }

func (e *atomEffect) Value() any { return e.value }
