package ttmp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

var (
	// ErrPlanningFailure is matched by errors from Planner.Reset when the
	// symbolic planner found no plan, or its call failed.
	ErrPlanningFailure = errors.New("ttmp: planning failure")
	// ErrPlanExhausted is returned by Planner.Step once no operator remains
	// to execute.
	ErrPlanExhausted = errors.New("ttmp: plan exhausted")
	// ErrNoApplicableSkill is matched when no skill accepts a planned
	// operator.
	ErrNoApplicableSkill = errors.New("ttmp: no applicable skill")
	// ErrAmbiguousSkill is matched when more than one skill accepts a planned
	// operator.
	ErrAmbiguousSkill = errors.New("ttmp: ambiguous skill")
	// ErrNotReset is returned by a skill asked for an action before it was
	// reset with an operator.
	ErrNotReset = errors.New("ttmp: skill not reset")
	// ErrCannotExecute is returned by a skill reset with an operator it does
	// not accept.
	ErrCannotExecute = errors.New("ttmp: skill cannot execute operator")
)

// PlanningError describes a failed Planner.Reset. Err is nil when the planner
// ran to completion and reported that no plan exists; Reason then says why.
// Otherwise Err is the cause of the failed planner call.
type PlanningError struct {
	Planner string
	Reason  string
	Err     error
}

func (e *PlanningError) Error() string {
	var b strings.Builder
	b.WriteString("ttmp: planning failure: ")
	b.WriteString(e.Planner)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap supports errors.Is for both ErrPlanningFailure and the cause.
func (e *PlanningError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPlanningFailure}
	}
	return []error{ErrPlanningFailure, e.Err}
}

// DispatchError reports that a planned operator could not be assigned to
// exactly one skill. Err is ErrNoApplicableSkill or ErrAmbiguousSkill.
type DispatchError struct {
	Operator *relational.GroundOperator
	// Skills describes every skill that accepted Operator.
	Skills []string
	Err    error
}

func (e *DispatchError) Error() string {
	if len(e.Skills) == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Operator)
	}
	return fmt.Sprintf("%v: %s accepted by %s", e.Err, e.Operator, strings.Join(e.Skills, ", "))
}

func (e *DispatchError) Unwrap() error { return e.Err }
