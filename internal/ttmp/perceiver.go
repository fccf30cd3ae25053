package ttmp

import (
	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// Perceiver maps raw observations of type O to symbols.
//
// Reset is called once per episode and returns the objects present, the
// initial atoms and the goal; the objects and goal are assumed fixed for the
// rest of the episode. Step returns the atoms holding in a later observation
// and must depend only on the observation stream and the perceiver's own
// memory.
type Perceiver[O any] interface {
	Reset(obs O) (objects []relational.Object, atoms relational.AtomSet, goal relational.AtomSet, err error)
	Step(obs O) (relational.AtomSet, error)
}
