package ttmp

import (
	"context"
	"fmt"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// Skill executes ground operators by emitting low-level actions of type A
// from observations of type O.
//
// CanExecute must be a pure function of its argument. Reset is called each
// time the skill takes ownership of a new operator and must clear any memory
// kept from a previous one; it returns an error wrapping ErrCannotExecute if
// CanExecute(op) is false. Action is only valid after a successful Reset.
type Skill[O, A any] interface {
	CanExecute(op *relational.GroundOperator) bool
	Reset(op *relational.GroundOperator) error
	Action(ctx context.Context, obs O) (A, error)
}

// BoundPolicy computes actions for a single operator schema from the ground
// operator's objects, in the schema's parameter order.
type BoundPolicy[O, A any] interface {
	// Reset clears any memory before execution of a new grounding begins.
	Reset(objects []relational.Object) error
	Action(ctx context.Context, objects []relational.Object, obs O) (A, error)
}

// PolicyFunc is a BoundPolicy with no memory.
type PolicyFunc[O, A any] func(ctx context.Context, objects []relational.Object, obs O) (A, error)

// Reset implements BoundPolicy. A memoryless policy has nothing to clear.
func (f PolicyFunc[O, A]) Reset([]relational.Object) error { return nil }

// Action implements BoundPolicy.
func (f PolicyFunc[O, A]) Action(ctx context.Context, objects []relational.Object, obs O) (A, error) {
	return f(ctx, objects, obs)
}

// OperatorSkill binds a BoundPolicy to exactly one lifted operator. It accepts
// a ground operator iff the operator's parent equals the bound schema, by
// identity or structure, never by name alone.
type OperatorSkill[O, A any] struct {
	operator *relational.LiftedOperator
	policy   BoundPolicy[O, A]
	current  *relational.GroundOperator
}

var _ Skill[any, any] = (*OperatorSkill[any, any])(nil)

// NewOperatorSkill returns a skill executing operator with policy.
func NewOperatorSkill[O, A any](operator *relational.LiftedOperator, policy BoundPolicy[O, A]) *OperatorSkill[O, A] {
	if operator == nil || policy == nil {
		panic("ttmp: operator skill requires an operator and a policy")
	}
	return &OperatorSkill[O, A]{operator: operator, policy: policy}
}

// Operator returns the bound schema.
func (s *OperatorSkill[O, A]) Operator() *relational.LiftedOperator { return s.operator }

// Current returns the operator being executed, or nil before Reset.
func (s *OperatorSkill[O, A]) Current() *relational.GroundOperator { return s.current }

// CanExecute implements Skill.
func (s *OperatorSkill[O, A]) CanExecute(op *relational.GroundOperator) bool {
	return op != nil && s.operator.Equal(op.Parent())
}

// Reset implements Skill.
func (s *OperatorSkill[O, A]) Reset(op *relational.GroundOperator) error {
	if !s.CanExecute(op) {
		return fmt.Errorf("%w: %s cannot execute %v", ErrCannotExecute, s, op)
	}
	s.current = nil
	if err := s.policy.Reset(op.Parameters()); err != nil {
		return fmt.Errorf("ttmp: resetting %s for %s: %w", s, op, err)
	}
	s.current = op
	return nil
}

// Action implements Skill.
func (s *OperatorSkill[O, A]) Action(ctx context.Context, obs O) (A, error) {
	if s.current == nil {
		var zero A
		return zero, fmt.Errorf("%w: %s", ErrNotReset, s)
	}
	return s.policy.Action(ctx, s.current.Parameters(), obs)
}

func (s *OperatorSkill[O, A]) String() string {
	return "skill:" + s.operator.Name()
}
