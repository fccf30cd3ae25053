package relational

import (
	"fmt"
	"sort"
)

// Domain is an immutable bundle of types, predicates and lifted operators.
type Domain struct {
	name       string
	types      []Type
	predicates []*Predicate
	operators  []*LiftedOperator
}

// NewDomain validates and constructs a domain. Types, predicates and
// operators are stored sorted by name so that serialization and search are
// deterministic regardless of the caller's ordering.
func NewDomain(name string, types []Type, predicates []*Predicate, operators []*LiftedOperator) (*Domain, error) {
	if name == "" {
		return nil, fmt.Errorf("domain name cannot be empty")
	}
	d := &Domain{name: name}

	knownTypes := make(map[Type]struct{}, len(types))
	for _, t := range types {
		if _, dup := knownTypes[t]; dup {
			continue
		}
		knownTypes[t] = struct{}{}
		d.types = append(d.types, t)
	}
	sort.Slice(d.types, func(i, j int) bool { return d.types[i] < d.types[j] })

	knownPredicates := make(map[string]*Predicate, len(predicates))
	for _, p := range predicates {
		if prev, dup := knownPredicates[p.name]; dup {
			if !prev.Equal(p) {
				return nil, fmt.Errorf("domain %s: conflicting definitions of predicate %s", name, p.name)
			}
			continue
		}
		for _, t := range p.types {
			if _, ok := knownTypes[t]; !ok {
				return nil, fmt.Errorf("domain %s: predicate %s uses unknown type %s", name, p.name, t)
			}
		}
		knownPredicates[p.name] = p
		d.predicates = append(d.predicates, p)
	}
	sort.Slice(d.predicates, func(i, j int) bool { return d.predicates[i].name < d.predicates[j].name })

	knownOperators := make(map[string]struct{}, len(operators))
	for _, op := range operators {
		if _, dup := knownOperators[op.name]; dup {
			return nil, fmt.Errorf("domain %s: duplicate operator %s", name, op.name)
		}
		knownOperators[op.name] = struct{}{}
		for _, set := range []AtomSet{op.preconditions, op.addEffects, op.deleteEffects} {
			for _, a := range set {
				p, ok := knownPredicates[a.predicate.name]
				if !ok || !p.Equal(a.predicate) {
					return nil, fmt.Errorf("domain %s: operator %s uses undeclared predicate %s", name, op.name, a.predicate)
				}
			}
		}
		d.operators = append(d.operators, op)
	}
	sort.Slice(d.operators, func(i, j int) bool { return d.operators[i].name < d.operators[j].name })

	return d, nil
}

// MustDomain is like NewDomain but panics on error.
func MustDomain(name string, types []Type, predicates []*Predicate, operators []*LiftedOperator) *Domain {
	d, err := NewDomain(name, types, predicates, operators)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the domain name.
func (d *Domain) Name() string { return d.name }

// Types returns the types, sorted.
func (d *Domain) Types() []Type { return append([]Type(nil), d.types...) }

// Predicates returns the predicates, sorted by name.
func (d *Domain) Predicates() []*Predicate { return append([]*Predicate(nil), d.predicates...) }

// Operators returns the lifted operators, sorted by name.
func (d *Domain) Operators() []*LiftedOperator { return append([]*LiftedOperator(nil), d.operators...) }

// Operator looks up a lifted operator by name.
func (d *Domain) Operator(name string) (*LiftedOperator, bool) {
	for _, op := range d.operators {
		if op.name == name {
			return op, true
		}
	}
	return nil, false
}

// Predicate looks up a predicate by name.
func (d *Domain) Predicate(name string) (*Predicate, bool) {
	for _, p := range d.predicates {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// HasType reports whether t is declared.
func (d *Domain) HasType(t Type) bool {
	for _, dt := range d.types {
		if dt == t {
			return true
		}
	}
	return false
}

// Problem is one episode's planning task: objects, initial atoms, goal.
type Problem struct {
	name       string
	domainName string
	objects    []Object
	init       AtomSet
	goal       AtomSet
}

// NewProblem constructs a problem. Objects are de-duplicated and sorted, and
// every atom must be ground and reference only the given objects.
func NewProblem(name, domainName string, objects []Object, init, goal AtomSet) (*Problem, error) {
	known := make(map[Object]struct{}, len(objects))
	p := &Problem{name: name, domainName: domainName, init: init.Clone(), goal: goal.Clone()}
	for _, o := range objects {
		if o.IsVariable() {
			return nil, fmt.Errorf("problem %s: object %s is a variable", name, o)
		}
		if _, dup := known[o]; dup {
			continue
		}
		known[o] = struct{}{}
		p.objects = append(p.objects, o)
	}
	sort.Slice(p.objects, func(i, j int) bool {
		if p.objects[i].Type != p.objects[j].Type {
			return p.objects[i].Type < p.objects[j].Type
		}
		return p.objects[i].Name < p.objects[j].Name
	})
	for label, set := range map[string]AtomSet{"initial atom": p.init, "goal atom": p.goal} {
		for _, a := range set {
			for _, o := range a.objects {
				if _, ok := known[o]; !ok {
					return nil, fmt.Errorf("problem %s: %s %s references unknown object %s", name, label, a, o)
				}
			}
		}
	}
	return p, nil
}

// Name returns the problem name.
func (p *Problem) Name() string { return p.name }

// DomainName returns the name of the domain the problem targets.
func (p *Problem) DomainName() string { return p.domainName }

// Objects returns the objects, sorted by type then name.
func (p *Problem) Objects() []Object { return append([]Object(nil), p.objects...) }

// Init returns a copy of the initial atoms.
func (p *Problem) Init() AtomSet { return p.init.Clone() }

// Goal returns a copy of the goal atoms.
func (p *Problem) Goal() AtomSet { return p.goal.Clone() }

// Object looks up an object by name.
func (p *Problem) Object(name string) (Object, bool) {
	for _, o := range p.objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// GroundAll enumerates every grounding of every operator in d over the
// problem's objects.
func (p *Problem) GroundAll(d *Domain) []*GroundOperator {
	var out []*GroundOperator
	for _, op := range d.operators {
		out = append(out, op.Groundings(p.objects)...)
	}
	return out
}
