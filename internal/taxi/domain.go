package taxi

import (
	"fmt"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// DomainName is the symbolic domain name.
const DomainName = "taxi"

var (
	TaxiType        = relational.Type("taxi")
	PassengerType   = relational.Type("passenger")
	DestinationType = relational.Type("destination")

	TaxiEmpty     = relational.NewPredicate("TaxiEmpty", TaxiType)
	InTaxi        = relational.NewPredicate("InTaxi", PassengerType, TaxiType)
	AtDestination = relational.NewPredicate("AtDestination", PassengerType, DestinationType)

	// PickUp moves the passenger waiting at ?destination into the taxi.
	PickUp = relational.MustLiftedOperator("PickUp", operatorParameters(),
		[]relational.Atom{AtDestination.MustAtom(pVar, dVar), TaxiEmpty.MustAtom(tVar)},
		[]relational.Atom{InTaxi.MustAtom(pVar, tVar)},
		[]relational.Atom{AtDestination.MustAtom(pVar, dVar), TaxiEmpty.MustAtom(tVar)},
	)

	// DropOff leaves the passenger at ?destination.
	DropOff = relational.MustLiftedOperator("DropOff", operatorParameters(),
		[]relational.Atom{InTaxi.MustAtom(pVar, tVar)},
		[]relational.Atom{AtDestination.MustAtom(pVar, dVar), TaxiEmpty.MustAtom(tVar)},
		[]relational.Atom{InTaxi.MustAtom(pVar, tVar)},
	)

	// Taxi and Passenger are the only instances of their types.
	Taxi      = TaxiType.Object("taxi")
	Passenger = PassengerType.Object("passenger")

	pVar = PassengerType.Variable("passenger")
	tVar = TaxiType.Variable("taxi")
	dVar = DestinationType.Variable("destination")
)

func operatorParameters() []relational.Object {
	return []relational.Object{pVar, tVar, dVar}
}

// Types returns the domain types.
func Types() []relational.Type {
	return []relational.Type{TaxiType, PassengerType, DestinationType}
}

// Predicates returns the domain predicates.
func Predicates() []*relational.Predicate {
	return []*relational.Predicate{TaxiEmpty, InTaxi, AtDestination}
}

// Operators returns the domain operators.
func Operators() []*relational.LiftedOperator {
	return []*relational.LiftedOperator{PickUp, DropOff}
}

// Destination returns the object naming the landmark with index i.
func Destination(i int) relational.Object {
	l := Locations[i]
	return DestinationType.Object(fmt.Sprintf("dest-%d-%d", l.Row, l.Col))
}

// Destinations returns the objects for every landmark, in index order.
func Destinations() []relational.Object {
	out := make([]relational.Object, len(Locations))
	for i := range Locations {
		out[i] = Destination(i)
	}
	return out
}

// LocationOf returns the cell named by a destination object.
func LocationOf(o relational.Object) (Pos, error) {
	var p Pos
	if o.Type != DestinationType {
		return p, fmt.Errorf("taxi: %s is not a destination", o)
	}
	if _, err := fmt.Sscanf(o.Name, "dest-%d-%d", &p.Row, &p.Col); err != nil {
		return p, fmt.Errorf("taxi: malformed destination %s: %w", o, err)
	}
	if landmarkAt(p) < 0 {
		return p, fmt.Errorf("taxi: %s is not a landmark", o)
	}
	return p, nil
}
