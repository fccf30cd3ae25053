// Package ttmp implements task-then-motion planning: a symbolic plan is
// computed once per episode, then executed greedily by handing each ground
// operator to the one skill that accepts it, until the perceived atoms show
// the operator's effects hold.
package ttmp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
	"github.com/joeycumines/task-then-motion-planning/internal/taskplan"
)

// Planner is the execution state machine. It owns the domain, the remaining
// plan, and the active (operator, skill) pair. It is not safe for concurrent
// use; a single caller drives one episode at a time.
type Planner[O, A any] struct {
	domain    *relational.Domain
	perceiver Perceiver[O]
	skills    []Skill[O, A]
	plannerID string
	backend   taskplan.Planner
	timeout   time.Duration
	logger    *slog.Logger
	observer  Observer

	problem  *relational.Problem
	plan     []*relational.GroundOperator
	next     int
	operator *relational.GroundOperator
	skill    Skill[O, A]
	episodes int
}

// New builds the domain from types, predicates and operators, and resolves
// the symbolic planner. Skills are not matched against operators here; see
// Validate.
func New[O, A any](
	types []relational.Type,
	predicates []*relational.Predicate,
	perceiver Perceiver[O],
	operators []*relational.LiftedOperator,
	skills []Skill[O, A],
	opts ...Option,
) (*Planner[O, A], error) {
	cfg := options{
		domainName: DefaultDomainName,
		plannerID:  taskplan.DefaultPlanner,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if perceiver == nil {
		return nil, errors.New("ttmp: perceiver is required")
	}
	domain, err := relational.NewDomain(cfg.domainName, types, predicates, operators)
	if err != nil {
		return nil, fmt.Errorf("ttmp: %w", err)
	}
	backend := cfg.backend
	if backend == nil {
		registry := cfg.registry
		if registry == nil {
			registry = taskplan.NewDefaultRegistry(taskplan.Options{})
		}
		if backend, err = registry.Get(cfg.plannerID); err != nil {
			return nil, err
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.observer == nil {
		cfg.observer = nopObserver{}
	}
	return &Planner[O, A]{
		domain:    domain,
		perceiver: perceiver,
		skills:    append([]Skill[O, A](nil), skills...),
		plannerID: cfg.plannerID,
		backend:   backend,
		timeout:   cfg.timeout,
		logger:    cfg.logger.With("domain", domain.Name(), "planner", cfg.plannerID),
		observer:  cfg.observer,
	}, nil
}

// Domain returns the immutable domain.
func (p *Planner[O, A]) Domain() *relational.Domain { return p.domain }

// PlannerID returns the symbolic planner identifier.
func (p *Planner[O, A]) PlannerID() string { return p.plannerID }

// Problem returns the problem built by the last Reset, or nil.
func (p *Planner[O, A]) Problem() *relational.Problem { return p.problem }

// Plan returns the operators not yet activated.
func (p *Planner[O, A]) Plan() []*relational.GroundOperator {
	return append([]*relational.GroundOperator(nil), p.plan[p.next:]...)
}

// CurrentOperator returns the active operator, or nil.
func (p *Planner[O, A]) CurrentOperator() *relational.GroundOperator { return p.operator }

// CurrentSkill returns the active skill, or nil.
func (p *Planner[O, A]) CurrentSkill() Skill[O, A] { return p.skill }

// Reset starts an episode: it perceives the objects, initial atoms and goal
// in obs, plans, and stores the plan with no operator active. Planning
// failures match ErrPlanningFailure and are never retried.
func (p *Planner[O, A]) Reset(ctx context.Context, obs O) error {
	p.problem = nil
	p.plan = nil
	p.next = 0
	p.operator = nil
	p.skill = nil
	p.episodes++

	objects, atoms, goal, err := p.perceiver.Reset(obs)
	if err != nil {
		return fmt.Errorf("ttmp: perceiver reset: %w", err)
	}
	problem, err := relational.NewProblem(fmt.Sprintf("%s-%d", p.domain.Name(), p.episodes), p.domain.Name(), objects, atoms, goal)
	if err != nil {
		return fmt.Errorf("ttmp: %w", err)
	}
	p.problem = problem

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	start := time.Now()
	result, err := p.backend.Plan(ctx, p.domain, problem)
	elapsed := time.Since(start)
	switch {
	case err != nil:
		err = &PlanningError{Planner: p.plannerID, Reason: "planner call failed", Err: err}
	case !result.Found:
		err = &PlanningError{Planner: p.plannerID, Reason: result.Reason}
	}
	p.observer.PlanComputed(p.plannerID, len(result.Plan), elapsed, err)
	if err != nil {
		p.logger.Warn("planning failed", "problem", problem.Name(), "elapsed", elapsed, "error", err)
		return err
	}

	p.plan = result.Plan
	p.logger.Debug("plan computed", "problem", problem.Name(), "length", len(p.plan), "elapsed", elapsed)
	return nil
}

// Step perceives obs and returns the active skill's action. The active
// operator is replaced by the next planned one when none is active, or when
// all its add effects and none of its delete effects are perceived. At most
// one operator is activated per call.
func (p *Planner[O, A]) Step(ctx context.Context, obs O) (A, error) {
	var zero A
	atoms, err := p.perceiver.Step(obs)
	if err != nil {
		return zero, fmt.Errorf("ttmp: perceiver step: %w", err)
	}
	if p.operator == nil && p.next >= len(p.plan) {
		p.logger.Debug("plan exhausted")
		return zero, ErrPlanExhausted
	}
	if p.operator == nil || p.operator.EffectsHold(atoms) {
		if err := p.advance(); err != nil {
			return zero, err
		}
	}
	action, err := p.skill.Action(ctx, obs)
	if err != nil {
		return zero, fmt.Errorf("ttmp: %s: %w", p.operator, err)
	}
	p.observer.StepTaken()
	return action, nil
}

// advance activates the next planned operator. The plan is only consumed once
// a skill has been dispatched and reset for it.
func (p *Planner[O, A]) advance() error {
	if p.next >= len(p.plan) {
		p.logger.Debug("plan exhausted", "completed", p.operator)
		return fmt.Errorf("%w: %s completed with no operators remaining", ErrPlanExhausted, p.operator)
	}
	op := p.plan[p.next]
	skill, err := p.dispatch(op)
	if err != nil {
		return err
	}
	if err := skill.Reset(op); err != nil {
		return fmt.Errorf("ttmp: activating %s: %w", op, err)
	}
	p.next++
	p.operator = op
	p.skill = skill
	p.observer.OperatorActivated(op)
	p.logger.Debug("operator activated", "operator", op.String(), "skill", describe(skill), "remaining", len(p.plan)-p.next)
	return nil
}

func (p *Planner[O, A]) dispatch(op *relational.GroundOperator) (Skill[O, A], error) {
	var matched []Skill[O, A]
	for _, s := range p.skills {
		if s.CanExecute(op) {
			matched = append(matched, s)
		}
	}
	switch len(matched) {
	case 1:
		return matched[0], nil
	case 0:
		return nil, &DispatchError{Operator: op, Err: ErrNoApplicableSkill}
	default:
		names := make([]string, len(matched))
		for i, s := range matched {
			names[i] = describe(s)
		}
		return nil, &DispatchError{Operator: op, Skills: names, Err: ErrAmbiguousSkill}
	}
}

// Validate checks that every operator in the domain is accepted by exactly
// one skill, using a probe grounding of each operator. New never calls it;
// without it, mismatches surface from the first Step that needs them.
func (p *Planner[O, A]) Validate() error {
	var errs []error
	for _, lifted := range p.domain.Operators() {
		params := lifted.Parameters()
		probe := make([]relational.Object, len(params))
		for i, v := range params {
			probe[i] = v.Type.Object(strings.TrimPrefix(v.Name, relational.VariablePrefix))
		}
		op, err := lifted.Ground(probe...)
		if err != nil {
			errs = append(errs, fmt.Errorf("ttmp: probing %s: %w", lifted, err))
			continue
		}
		if _, err := p.dispatch(op); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func describe(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", v)
}
