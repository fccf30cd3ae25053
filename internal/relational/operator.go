package relational

import (
	"fmt"
	"strings"
)

// LiftedOperator is a named action schema over an ordered list of variables.
type LiftedOperator struct {
	name          string
	parameters    []Object
	preconditions AtomSet
	addEffects    AtomSet
	deleteEffects AtomSet
}

// NewLiftedOperator validates and constructs a lifted operator. Every
// parameter must be a distinct variable, and every atom must reference only
// those parameters.
func NewLiftedOperator(name string, parameters []Object, preconditions, addEffects, deleteEffects []Atom) (*LiftedOperator, error) {
	if name == "" {
		return nil, fmt.Errorf("operator name cannot be empty")
	}
	params := make(map[Object]struct{}, len(parameters))
	for _, p := range parameters {
		if !p.IsVariable() {
			return nil, fmt.Errorf("operator %s: parameter %s is not a variable", name, p)
		}
		if _, dup := params[p]; dup {
			return nil, fmt.Errorf("operator %s: duplicate parameter %s", name, p)
		}
		params[p] = struct{}{}
	}
	op := &LiftedOperator{
		name:          name,
		parameters:    append([]Object(nil), parameters...),
		preconditions: NewAtomSet(),
		addEffects:    NewAtomSet(),
		deleteEffects: NewAtomSet(),
	}
	for _, group := range []struct {
		label string
		atoms []Atom
		dst   AtomSet
	}{
		{"precondition", preconditions, op.preconditions},
		{"add effect", addEffects, op.addEffects},
		{"delete effect", deleteEffects, op.deleteEffects},
	} {
		for _, a := range group.atoms {
			for _, o := range a.objects {
				if _, ok := params[o]; !ok {
					return nil, fmt.Errorf("operator %s: %s %s references %s, which is not a parameter", name, group.label, a, o)
				}
			}
			group.dst.Add(a)
		}
	}
	return op, nil
}

// MustLiftedOperator is like NewLiftedOperator but panics on error.
func MustLiftedOperator(name string, parameters []Object, preconditions, addEffects, deleteEffects []Atom) *LiftedOperator {
	op, err := NewLiftedOperator(name, parameters, preconditions, addEffects, deleteEffects)
	if err != nil {
		panic(err)
	}
	return op
}

// Name returns the operator name.
func (o *LiftedOperator) Name() string { return o.name }

// Parameters returns a copy of the ordered parameters.
func (o *LiftedOperator) Parameters() []Object { return append([]Object(nil), o.parameters...) }

// Preconditions returns a copy of the lifted preconditions.
func (o *LiftedOperator) Preconditions() AtomSet { return o.preconditions.Clone() }

// AddEffects returns a copy of the lifted add effects.
func (o *LiftedOperator) AddEffects() AtomSet { return o.addEffects.Clone() }

// DeleteEffects returns a copy of the lifted delete effects.
func (o *LiftedOperator) DeleteEffects() AtomSet { return o.deleteEffects.Clone() }

// Equal reports identity, falling back to structural equality.
func (o *LiftedOperator) Equal(other *LiftedOperator) bool {
	if o == other {
		return true
	}
	if o == nil || other == nil || o.name != other.name || len(o.parameters) != len(other.parameters) {
		return false
	}
	for i := range o.parameters {
		if o.parameters[i] != other.parameters[i] {
			return false
		}
	}
	return o.preconditions.Equal(other.preconditions) &&
		o.addEffects.Equal(other.addEffects) &&
		o.deleteEffects.Equal(other.deleteEffects)
}

// Ground substitutes the parameters, in order, with objects.
func (o *LiftedOperator) Ground(objects ...Object) (*GroundOperator, error) {
	if len(objects) != len(o.parameters) {
		return nil, fmt.Errorf("operator %s expects %d objects, got %d", o.name, len(o.parameters), len(objects))
	}
	sub := make(map[Object]Object, len(objects))
	for i, obj := range objects {
		if obj.IsVariable() {
			return nil, fmt.Errorf("operator %s: cannot ground %s with variable %s", o.name, o.parameters[i], obj)
		}
		if obj.Type != o.parameters[i].Type {
			return nil, fmt.Errorf("operator %s: parameter %s expects type %s, got %s", o.name, o.parameters[i], o.parameters[i].Type, obj)
		}
		sub[o.parameters[i]] = obj
	}
	return &GroundOperator{
		parent:        o,
		parameters:    append([]Object(nil), objects...),
		preconditions: substituteAll(o.preconditions, sub),
		addEffects:    substituteAll(o.addEffects, sub),
		deleteEffects: substituteAll(o.deleteEffects, sub),
	}, nil
}

// MustGround is like Ground but panics on error.
func (o *LiftedOperator) MustGround(objects ...Object) *GroundOperator {
	g, err := o.Ground(objects...)
	if err != nil {
		panic(err)
	}
	return g
}

// Groundings enumerates every grounding of the operator over objects, in a
// deterministic order (objects are considered in the order given).
func (o *LiftedOperator) Groundings(objects []Object) []*GroundOperator {
	byType := make(map[Type][]Object)
	for _, obj := range objects {
		byType[obj.Type] = append(byType[obj.Type], obj)
	}
	var out []*GroundOperator
	binding := make([]Object, len(o.parameters))
	var rec func(i int)
	rec = func(i int) {
		if i == len(o.parameters) {
			if g, err := o.Ground(binding...); err == nil {
				out = append(out, g)
			}
			return
		}
		for _, obj := range byType[o.parameters[i].Type] {
			binding[i] = obj
			rec(i + 1)
		}
	}
	rec(0)
	return out
}

func (o *LiftedOperator) String() string {
	names := make([]string, len(o.parameters))
	for i, p := range o.parameters {
		names[i] = p.Name
	}
	return o.name + "(" + strings.Join(names, ", ") + ")"
}

func substituteAll(atoms AtomSet, sub map[Object]Object) AtomSet {
	out := make(AtomSet, len(atoms))
	for _, a := range atoms {
		out.Add(a.Substitute(sub))
	}
	return out
}

// GroundOperator is a lifted operator with its parameters bound to concrete
// objects. It keeps a reference to its parent for dispatch.
type GroundOperator struct {
	parent        *LiftedOperator
	parameters    []Object
	preconditions AtomSet
	addEffects    AtomSet
	deleteEffects AtomSet
}

// Parent returns the lifted operator this was grounded from.
func (g *GroundOperator) Parent() *LiftedOperator { return g.parent }

// Name returns the parent operator's name.
func (g *GroundOperator) Name() string { return g.parent.name }

// Parameters returns a copy of the bound objects, in parameter order.
func (g *GroundOperator) Parameters() []Object { return append([]Object(nil), g.parameters...) }

// Preconditions returns a copy of the ground preconditions.
func (g *GroundOperator) Preconditions() AtomSet { return g.preconditions.Clone() }

// AddEffects returns a copy of the ground add effects.
func (g *GroundOperator) AddEffects() AtomSet { return g.addEffects.Clone() }

// DeleteEffects returns a copy of the ground delete effects.
func (g *GroundOperator) DeleteEffects() AtomSet { return g.deleteEffects.Clone() }

// Applicable reports whether every precondition holds in state.
func (g *GroundOperator) Applicable(state AtomSet) bool {
	return state.ContainsAll(g.preconditions)
}

// Apply returns the successor of state: delete effects removed, then add
// effects added. state is not modified.
func (g *GroundOperator) Apply(state AtomSet) AtomSet {
	next := state.Clone()
	for k := range g.deleteEffects {
		delete(next, k)
	}
	for k, a := range g.addEffects {
		next[k] = a
	}
	return next
}

// EffectsHold reports whether every add effect is present in atoms and no
// delete effect is. This is the completion test used during execution.
func (g *GroundOperator) EffectsHold(atoms AtomSet) bool {
	return atoms.ContainsAll(g.addEffects) && !atoms.Intersects(g.deleteEffects)
}

// Equal reports structural equality (same parent, same bindings).
func (g *GroundOperator) Equal(o *GroundOperator) bool {
	if g == o {
		return true
	}
	if g == nil || o == nil || len(g.parameters) != len(o.parameters) || !g.parent.Equal(o.parent) {
		return false
	}
	for i := range g.parameters {
		if g.parameters[i] != o.parameters[i] {
			return false
		}
	}
	return true
}

func (g *GroundOperator) String() string {
	names := make([]string, len(g.parameters))
	for i, p := range g.parameters {
		names[i] = p.Name
	}
	return g.parent.name + "(" + strings.Join(names, ", ") + ")"
}
