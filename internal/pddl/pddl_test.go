package pddl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

type fixture struct {
	domain  *relational.Domain
	problem *relational.Problem
	pickUp  *relational.LiftedOperator
	dropOff *relational.LiftedOperator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	taxiType := relational.Type("taxi")
	passengerType := relational.Type("passenger")
	destinationType := relational.Type("destination")

	taxiEmpty := relational.NewPredicate("TaxiEmpty", taxiType)
	inTaxi := relational.NewPredicate("InTaxi", passengerType, taxiType)
	atDestination := relational.NewPredicate("AtDestination", passengerType, destinationType)

	p := passengerType.Variable("passenger")
	tx := taxiType.Variable("taxi")
	d := destinationType.Variable("destination")
	params := []relational.Object{p, tx, d}

	f := &fixture{}
	f.pickUp = relational.MustLiftedOperator("PickUp", params,
		[]relational.Atom{atDestination.MustAtom(p, d), taxiEmpty.MustAtom(tx)},
		[]relational.Atom{inTaxi.MustAtom(p, tx)},
		[]relational.Atom{atDestination.MustAtom(p, d), taxiEmpty.MustAtom(tx)},
	)
	f.dropOff = relational.MustLiftedOperator("DropOff", params,
		[]relational.Atom{inTaxi.MustAtom(p, tx)},
		[]relational.Atom{atDestination.MustAtom(p, d), taxiEmpty.MustAtom(tx)},
		[]relational.Atom{inTaxi.MustAtom(p, tx)},
	)
	f.domain = relational.MustDomain("taxi",
		[]relational.Type{taxiType, passengerType, destinationType},
		[]*relational.Predicate{taxiEmpty, inTaxi, atDestination},
		[]*relational.LiftedOperator{f.pickUp, f.dropOff},
	)

	passenger := passengerType.Object("passenger")
	taxi := taxiType.Object("taxi")
	destA := destinationType.Object("dest-a")
	destB := destinationType.Object("dest-b")
	var err error
	f.problem, err = relational.NewProblem("taxi-problem", "taxi",
		[]relational.Object{passenger, taxi, destA, destB},
		relational.NewAtomSet(atDestination.MustAtom(passenger, destA), taxiEmpty.MustAtom(taxi)),
		relational.NewAtomSet(atDestination.MustAtom(passenger, destB)),
	)
	require.NoError(t, err)
	return f
}

func TestDomain(t *testing.T) {
	f := newFixture(t)
	const want = `(define (domain taxi)
  (:requirements :strips :typing)
  (:types destination passenger taxi)
  (:predicates
    (AtDestination ?x0 - passenger ?x1 - destination)
    (InTaxi ?x0 - passenger ?x1 - taxi)
    (TaxiEmpty ?x0 - taxi)
  )
  (:action DropOff
    :parameters (?passenger - passenger ?taxi - taxi ?destination - destination)
    :precondition (and (InTaxi ?passenger ?taxi))
    :effect (and (AtDestination ?passenger ?destination) (TaxiEmpty ?taxi) (not (InTaxi ?passenger ?taxi)))
  )
  (:action PickUp
    :parameters (?passenger - passenger ?taxi - taxi ?destination - destination)
    :precondition (and (AtDestination ?passenger ?destination) (TaxiEmpty ?taxi))
    :effect (and (InTaxi ?passenger ?taxi) (not (AtDestination ?passenger ?destination)) (not (TaxiEmpty ?taxi)))
  )
)
`
	assert.Equal(t, want, Domain(f.domain))
}

func TestProblem(t *testing.T) {
	f := newFixture(t)
	const want = `(define (problem taxi-problem) (:domain taxi)
  (:objects
    dest-a - destination
    dest-b - destination
    passenger - passenger
    taxi - taxi
  )
  (:init
    (AtDestination passenger dest-a)
    (TaxiEmpty taxi)
  )
  (:goal (and (AtDestination passenger dest-b)))
)
`
	assert.Equal(t, want, Problem(f.problem))
}

func TestParsePlan(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct {
		name string
		text string
	}{
		{"sas_plan", "(pickup passenger taxi dest-a)\n(dropoff passenger taxi dest-b)\n; cost = 2 (unit cost)\n"},
		{"stdout", "pickup passenger taxi dest-a (1)\ndropoff passenger taxi dest-b (1)\n"},
		{"mixed case", "\n(PickUp Passenger Taxi DEST-A)\n\n(DropOff passenger taxi dest-b)"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ParsePlan(tc.text, f.domain, f.problem)
			require.NoError(t, err)
			require.Len(t, plan, 2)
			assert.Same(t, f.pickUp, plan[0].Parent())
			assert.Same(t, f.dropOff, plan[1].Parent())
			assert.Equal(t, "PickUp(passenger, taxi, dest-a)", plan[0].String())
			assert.Equal(t, "DropOff(passenger, taxi, dest-b)", plan[1].String())
		})
	}
}

func TestParsePlanEmpty(t *testing.T) {
	f := newFixture(t)
	plan, err := ParsePlan("; cost = 0 (unit cost)\n", f.domain, f.problem)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestParsePlanErrors(t *testing.T) {
	f := newFixture(t)
	for _, tc := range []struct {
		name string
		text string
	}{
		{"unknown operator", "(fly passenger taxi dest-a)"},
		{"unknown object", "(pickup passenger taxi dest-z)"},
		{"arity", "(pickup passenger taxi)"},
		{"wrong type", "(pickup taxi taxi dest-a)"},
		{"empty", "()"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePlan(tc.text, f.domain, f.problem)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, 1, pe.Line)
		})
	}
}

func TestPlanRoundTrip(t *testing.T) {
	f := newFixture(t)
	plan, err := ParsePlan("(pickup passenger taxi dest-a)\n(dropoff passenger taxi dest-b)\n", f.domain, f.problem)
	require.NoError(t, err)

	text := Plan(plan)
	assert.Equal(t, "(PickUp passenger taxi dest-a)\n(DropOff passenger taxi dest-b)\n; cost = 2 (unit cost)\n", text)

	again, err := ParsePlan(text, f.domain, f.problem)
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.True(t, again[0].Equal(plan[0]))
	assert.True(t, again[1].Equal(plan[1]))
}
