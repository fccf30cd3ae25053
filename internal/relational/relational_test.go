package relational

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cupPlate struct {
	cupType, plateType Type
	on, notOn          *Predicate
	cupVar, plateVar   Object
	cup, plate         Object
	pick               *LiftedOperator
}

func newCupPlate(t *testing.T) *cupPlate {
	t.Helper()
	f := &cupPlate{
		cupType:   Type("cup_type"),
		plateType: Type("plate_type"),
	}
	f.on = NewPredicate("On", f.cupType, f.plateType)
	f.notOn = NewPredicate("NotOn", f.cupType, f.plateType)
	f.cupVar = f.cupType.Variable("cup")
	f.plateVar = f.plateType.Variable("plate")
	f.cup = f.cupType.Object("cup")
	f.plate = f.plateType.Object("plate")
	var err error
	f.pick, err = NewLiftedOperator("Pick",
		[]Object{f.cupVar, f.plateVar},
		[]Atom{f.notOn.MustAtom(f.cupVar, f.plateVar)},
		[]Atom{f.on.MustAtom(f.cupVar, f.plateVar)},
		[]Atom{f.notOn.MustAtom(f.cupVar, f.plateVar)},
	)
	require.NoError(t, err)
	return f
}

func TestObjectEquality(t *testing.T) {
	cup := Type("cup")
	assert.Equal(t, cup.Object("a"), cup.Object("a"))
	assert.NotEqual(t, cup.Object("a"), Type("plate").Object("a"))
	assert.True(t, cup.Variable("x").IsVariable())
	assert.Equal(t, "?x", cup.Variable("?x").Name)
	assert.False(t, cup.Object("x").IsVariable())
	assert.True(t, cup.Object("a").IsInstance(cup))
}

func TestPredicateAtomValidation(t *testing.T) {
	f := newCupPlate(t)

	_, err := f.on.Atom(f.cup)
	assert.Error(t, err, "arity mismatch")

	_, err = f.on.Atom(f.plate, f.cup)
	assert.Error(t, err, "type mismatch")

	a := f.on.MustAtom(f.cup, f.plate)
	b := NewPredicate("On", f.cupType, f.plateType).MustAtom(f.cup, f.plate)
	assert.True(t, a.Equal(b), "atoms are structurally equal across predicate instances")
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "On(cup, plate)", a.String())
	assert.True(t, a.IsGround())
	assert.False(t, f.on.MustAtom(f.cupVar, f.plateVar).IsGround())
}

func TestAtomSet(t *testing.T) {
	f := newCupPlate(t)
	on := f.on.MustAtom(f.cup, f.plate)
	notOn := f.notOn.MustAtom(f.cup, f.plate)

	s := NewAtomSet(on)
	assert.True(t, s.Contains(on))
	assert.False(t, s.Contains(notOn))
	assert.True(t, s.ContainsAll(NewAtomSet()))
	assert.True(t, s.Intersects(NewAtomSet(on, notOn)))
	assert.False(t, s.Intersects(NewAtomSet(notOn)))

	c := s.Clone()
	c.Add(notOn)
	assert.Len(t, s, 1, "clone must not alias")
	assert.Equal(t, "{NotOn(cup, plate), On(cup, plate)}", c.String())
	c.Remove(notOn)
	assert.True(t, c.Equal(s))
	assert.Equal(t, s.Key(), c.Key())
}

func TestAtomKeySeparatorsInNames(t *testing.T) {
	tt := Type("t")
	p := NewPredicate("P", tt, tt)
	a := p.MustAtom(tt.Object("x:t, y"), tt.Object("z"))
	b := p.MustAtom(tt.Object("x"), tt.Object("y:t, z"))
	assert.NotEqual(t, a.Key(), b.Key())
	assert.False(t, a.Equal(b))

	s := NewAtomSet(a, b)
	assert.Len(t, s, 2)
	assert.True(t, s.Contains(a))
	assert.True(t, s.Contains(b))
	assert.False(t, NewAtomSet(a).Contains(b))

	q := NewPredicate("Q", tt)
	joined := NewAtomSet(q.MustAtom(tt.Object(`a";"Q`)))
	split := NewAtomSet(q.MustAtom(tt.Object("a")), q.MustAtom(tt.Object("Q")))
	assert.NotEqual(t, joined.Key(), split.Key())
}

func TestLiftedOperatorValidation(t *testing.T) {
	f := newCupPlate(t)
	other := f.cupType.Variable("other")

	_, err := NewLiftedOperator("Bad", []Object{f.cupVar}, []Atom{f.on.MustAtom(f.cupVar, f.plateVar)}, nil, nil)
	assert.Error(t, err, "atom references non-parameter")

	_, err = NewLiftedOperator("Bad", []Object{f.cup}, nil, nil, nil)
	assert.Error(t, err, "parameter must be a variable")

	_, err = NewLiftedOperator("Bad", []Object{other, other}, nil, nil, nil)
	assert.Error(t, err, "duplicate parameter")

	_, err = NewLiftedOperator("", nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestGroundPreservesOrderAndSubstitutes(t *testing.T) {
	f := newCupPlate(t)

	g, err := f.pick.Ground(f.cup, f.plate)
	require.NoError(t, err)
	assert.Same(t, f.pick, g.Parent())
	assert.Equal(t, []Object{f.cup, f.plate}, g.Parameters())
	assert.True(t, g.Preconditions().Equal(NewAtomSet(f.notOn.MustAtom(f.cup, f.plate))))
	assert.True(t, g.AddEffects().Equal(NewAtomSet(f.on.MustAtom(f.cup, f.plate))))
	assert.True(t, g.DeleteEffects().Equal(NewAtomSet(f.notOn.MustAtom(f.cup, f.plate))))
	assert.Equal(t, "Pick(cup, plate)", g.String())

	_, err = f.pick.Ground(f.plate, f.cup)
	assert.Error(t, err)
	_, err = f.pick.Ground(f.cup)
	assert.Error(t, err)
	_, err = f.pick.Ground(f.cupVar, f.plate)
	assert.Error(t, err)
}

func TestGroundOperatorSemantics(t *testing.T) {
	f := newCupPlate(t)
	g := f.pick.MustGround(f.cup, f.plate)
	on := f.on.MustAtom(f.cup, f.plate)
	notOn := f.notOn.MustAtom(f.cup, f.plate)

	start := NewAtomSet(notOn)
	require.True(t, g.Applicable(start))
	next := g.Apply(start)
	assert.True(t, next.Equal(NewAtomSet(on)))
	assert.True(t, start.Equal(NewAtomSet(notOn)), "Apply must not mutate")

	assert.True(t, g.EffectsHold(NewAtomSet(on)))
	assert.False(t, g.EffectsHold(NewAtomSet(on, notOn)), "delete effect still present")
	assert.False(t, g.EffectsHold(NewAtomSet()), "add effect missing")

	assert.True(t, g.Equal(f.pick.MustGround(f.cup, f.plate)))
}

func TestGroundings(t *testing.T) {
	f := newCupPlate(t)
	plate2 := f.plateType.Object("plate2")
	gs := f.pick.Groundings([]Object{f.cup, f.plate, plate2, f.cupType.Object("mug")})
	require.Len(t, gs, 4)
	assert.Equal(t, "Pick(cup, plate)", gs[0].String())
	assert.Equal(t, "Pick(cup, plate2)", gs[1].String())
	assert.Equal(t, "Pick(mug, plate)", gs[2].String())
}

func TestDomainValidation(t *testing.T) {
	f := newCupPlate(t)

	d, err := NewDomain("cups", []Type{f.plateType, f.cupType}, []*Predicate{f.on, f.notOn}, []*LiftedOperator{f.pick})
	require.NoError(t, err)
	assert.Equal(t, []Type{f.cupType, f.plateType}, d.Types())
	op, ok := d.Operator("Pick")
	require.True(t, ok)
	assert.Same(t, f.pick, op)
	_, ok = d.Predicate("On")
	assert.True(t, ok)

	_, err = NewDomain("cups", []Type{f.cupType}, []*Predicate{f.on}, nil)
	assert.Error(t, err, "unknown type")

	_, err = NewDomain("cups", []Type{f.cupType, f.plateType}, []*Predicate{f.on}, []*LiftedOperator{f.pick})
	assert.Error(t, err, "undeclared predicate")

	_, err = NewDomain("cups", []Type{f.cupType, f.plateType}, []*Predicate{f.on, f.notOn}, []*LiftedOperator{f.pick, f.pick})
	assert.Error(t, err, "duplicate operator")
}

func TestProblem(t *testing.T) {
	f := newCupPlate(t)
	init := NewAtomSet(f.notOn.MustAtom(f.cup, f.plate))
	goal := NewAtomSet(f.on.MustAtom(f.cup, f.plate))

	p, err := NewProblem("p", "cups", []Object{f.plate, f.cup, f.cup}, init, goal)
	require.NoError(t, err)
	assert.Equal(t, []Object{f.cup, f.plate}, p.Objects())
	assert.True(t, p.Init().Equal(init))
	assert.True(t, p.Goal().Equal(goal))
	o, ok := p.Object("plate")
	assert.True(t, ok)
	assert.Equal(t, f.plate, o)

	_, err = NewProblem("p", "cups", []Object{f.cup}, init, goal)
	assert.Error(t, err, "atom references an object outside the problem")

	d := MustDomain("cups", []Type{f.cupType, f.plateType}, []*Predicate{f.on, f.notOn}, []*LiftedOperator{f.pick})
	assert.Len(t, p.GroundAll(d), 1)
}
