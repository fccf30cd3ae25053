package taxi

import (
	"context"
	"errors"
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/task-then-motion-planning/internal/pathsearch"
	"github.com/joeycumines/task-then-motion-planning/internal/relational"
	"github.com/joeycumines/task-then-motion-planning/internal/ttmp"
)

// Skill is a skill executing taxi operators.
type Skill = ttmp.Skill[int, Action]

// Skills returns a new PickUp and DropOff skill. Skills hold memory, so each
// planner needs its own set.
func Skills() []Skill {
	return []Skill{
		ttmp.NewOperatorSkill[int, Action](PickUp, &pickUpPolicy{}),
		ttmp.NewOperatorSkill[int, Action](DropOff, newDropOffPolicy()),
	}
}

// Route returns the shortest sequence of moves from one cell to another.
func Route(ctx context.Context, from, to Pos) ([]Action, error) {
	return pathsearch.AStar(ctx, pathsearch.Problem[Pos, Action]{
		Start: from,
		Goal:  func(p Pos) bool { return p == to },
		Successors: func(p Pos) []pathsearch.Step[Pos, Action] {
			out := make([]pathsearch.Step[Pos, Action], 0, len(Moves))
			for _, a := range Moves {
				if next := Move(p, a); next != p {
					out = append(out, pathsearch.Step[Pos, Action]{Move: a, To: next, Cost: 1})
				}
			}
			return out
		},
		Heuristic: func(p Pos) float64 {
			return float64(abs(p.Row-to.Row) + abs(p.Col-to.Col))
		},
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pickUpPolicy drives to the passenger and picks them up. The route is
// searched once per activation and replayed from a queue.
type pickUpPolicy struct {
	queue []Action
}

func (p *pickUpPolicy) Reset([]relational.Object) error {
	p.queue = nil
	return nil
}

func (p *pickUpPolicy) Action(ctx context.Context, objects []relational.Object, obs int) (Action, error) {
	if len(p.queue) == 0 {
		s, err := Decode(obs)
		if err != nil {
			return 0, err
		}
		at, err := LocationOf(objects[2])
		if err != nil {
			return 0, err
		}
		route, err := Route(ctx, s.Taxi, at)
		if err != nil {
			return 0, fmt.Errorf("taxi: routing to %s: %w", at, err)
		}
		p.queue = append(route, Pickup)
	}
	a := p.queue[0]
	p.queue = p.queue[1:]
	return a, nil
}

var errNoTick = errors.New("taxi: behaviour tree produced no action")

// dropOffPolicy is reactive: every call ticks a behaviour tree against the
// latest observation, dropping off at the target or stepping toward it.
// Nothing survives between calls except the bound target.
type dropOffPolicy struct {
	tree bt.Node

	// blackboard, written by the caller before a tick and read by leaves
	ctx    context.Context
	state  State
	target Pos
	action Action
	set    bool
}

func newDropOffPolicy() *dropOffPolicy {
	p := &dropOffPolicy{}
	p.tree = bt.New(
		bt.Selector,
		bt.New(
			bt.Sequence,
			bt.New(p.atTarget),
			bt.New(p.emit(Dropoff)),
		),
		bt.New(p.approach),
	)
	return p
}

func (p *dropOffPolicy) Reset(objects []relational.Object) error {
	target, err := LocationOf(objects[2])
	if err != nil {
		return err
	}
	*p = dropOffPolicy{tree: p.tree, target: target}
	return nil
}

func (p *dropOffPolicy) Action(ctx context.Context, _ []relational.Object, obs int) (Action, error) {
	s, err := Decode(obs)
	if err != nil {
		return 0, err
	}
	p.ctx, p.state, p.set = ctx, s, false
	defer func() { p.ctx = nil }()
	status, err := p.tree.Tick()
	if err != nil {
		return 0, err
	}
	if status != bt.Success || !p.set {
		return 0, errNoTick
	}
	return p.action, nil
}

func (p *dropOffPolicy) atTarget([]bt.Node) (bt.Status, error) {
	if p.state.Taxi == p.target {
		return bt.Success, nil
	}
	return bt.Failure, nil
}

func (p *dropOffPolicy) emit(a Action) bt.Tick {
	return func([]bt.Node) (bt.Status, error) {
		p.action, p.set = a, true
		return bt.Success, nil
	}
}

func (p *dropOffPolicy) approach([]bt.Node) (bt.Status, error) {
	route, err := Route(p.ctx, p.state.Taxi, p.target)
	if err != nil {
		return bt.Failure, err
	}
	if len(route) == 0 {
		return bt.Failure, nil
	}
	return p.emit(route[0])(nil)
}
