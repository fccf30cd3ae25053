package taxi

import (
	"github.com/joeycumines/task-then-motion-planning/internal/relational"
	"github.com/joeycumines/task-then-motion-planning/internal/ttmp"
)

// Perceiver maps Taxi observations to atoms. It keeps no memory, so one
// instance serves any number of episodes.
type Perceiver struct{}

var _ ttmp.Perceiver[int] = Perceiver{}

// Reset implements ttmp.Perceiver.
func (Perceiver) Reset(obs int) ([]relational.Object, relational.AtomSet, relational.AtomSet, error) {
	s, err := Decode(obs)
	if err != nil {
		return nil, nil, nil, err
	}
	objects := append([]relational.Object{Taxi, Passenger}, Destinations()...)
	goal := relational.NewAtomSet(AtDestination.MustAtom(Passenger, Destination(s.Destination)))
	return objects, atoms(s), goal, nil
}

// Step implements ttmp.Perceiver.
func (Perceiver) Step(obs int) (relational.AtomSet, error) {
	s, err := Decode(obs)
	if err != nil {
		return nil, err
	}
	return atoms(s), nil
}

func atoms(s State) relational.AtomSet {
	if s.Passenger == InTaxiIndex {
		return relational.NewAtomSet(InTaxi.MustAtom(Passenger, Taxi))
	}
	return relational.NewAtomSet(
		TaxiEmpty.MustAtom(Taxi),
		AtDestination.MustAtom(Passenger, Destination(s.Passenger)),
	)
}
