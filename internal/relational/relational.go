// Package relational provides the symbolic data model shared by the planner
// and its collaborators: typed objects, predicates, atoms, lifted and ground
// operators, domains, and problems.
//
// Objects are comparable values. Predicates, operators, domains and problems
// are immutable once constructed, so they are safe to share between readers
// without synchronization.
package relational

import (
	"fmt"
	"strconv"
	"strings"
)

// VariablePrefix marks an Object as a placeholder within a lifted operator.
const VariablePrefix = "?"

// Type is a named category of object. Types form a flat namespace.
type Type string

// Object instantiates the type, returning an object with the given name.
func (t Type) Object(name string) Object {
	return Object{Name: name, Type: t}
}

// Variable instantiates the type as a variable, adding VariablePrefix if the
// name does not already carry it.
func (t Type) Variable(name string) Object {
	if !strings.HasPrefix(name, VariablePrefix) {
		name = VariablePrefix + name
	}
	return Object{Name: name, Type: t}
}

// Object is an immutable (name, type) pair.
type Object struct {
	Name string
	Type Type
}

// IsVariable reports whether the object is a lifted placeholder.
func (o Object) IsVariable() bool {
	return strings.HasPrefix(o.Name, VariablePrefix)
}

// IsInstance reports whether the object is of type t.
func (o Object) IsInstance(t Type) bool {
	return o.Type == t
}

func (o Object) String() string {
	return o.Name + ":" + string(o.Type)
}

// Predicate is a named relation over an ordered list of argument types.
type Predicate struct {
	name  string
	types []Type
}

// NewPredicate constructs a predicate. The types slice is copied.
func NewPredicate(name string, types ...Type) *Predicate {
	if name == "" {
		panic("relational.NewPredicate: name cannot be empty")
	}
	return &Predicate{name: name, types: append([]Type(nil), types...)}
}

// Name returns the predicate name.
func (p *Predicate) Name() string { return p.name }

// Arity returns the number of arguments.
func (p *Predicate) Arity() int { return len(p.types) }

// Types returns a copy of the argument types.
func (p *Predicate) Types() []Type { return append([]Type(nil), p.types...) }

// Equal reports structural equality (name and argument types).
func (p *Predicate) Equal(o *Predicate) bool {
	if p == o {
		return true
	}
	if p == nil || o == nil || p.name != o.name || len(p.types) != len(o.types) {
		return false
	}
	for i := range p.types {
		if p.types[i] != o.types[i] {
			return false
		}
	}
	return true
}

// Atom applies the predicate to objects, validating arity and types.
func (p *Predicate) Atom(objects ...Object) (Atom, error) {
	if len(objects) != len(p.types) {
		return Atom{}, fmt.Errorf("predicate %s expects %d arguments, got %d", p.name, len(p.types), len(objects))
	}
	for i, o := range objects {
		if o.Type != p.types[i] {
			return Atom{}, fmt.Errorf("predicate %s argument %d: expected type %s, got %s", p.name, i, p.types[i], o)
		}
	}
	return Atom{predicate: p, objects: append([]Object(nil), objects...)}, nil
}

// MustAtom is like Atom but panics on error.
func (p *Predicate) MustAtom(objects ...Object) Atom {
	a, err := p.Atom(objects...)
	if err != nil {
		panic(err)
	}
	return a
}

func (p *Predicate) String() string {
	parts := make([]string, len(p.types))
	for i, t := range p.types {
		parts[i] = string(t)
	}
	return p.name + "(" + strings.Join(parts, ", ") + ")"
}

// Atom is a predicate applied to an ordered tuple of objects. Ground atoms
// reference concrete objects; lifted atoms reference variables. Equality is
// structural, see Key.
type Atom struct {
	predicate *Predicate
	objects   []Object
}

// Predicate returns the atom's predicate.
func (a Atom) Predicate() *Predicate { return a.predicate }

// Objects returns a copy of the atom's arguments.
func (a Atom) Objects() []Object { return append([]Object(nil), a.objects...) }

// IsGround reports whether no argument is a variable.
func (a Atom) IsGround() bool {
	for _, o := range a.objects {
		if o.IsVariable() {
			return false
		}
	}
	return true
}

// Key is the canonical structural identity of the atom. Two atoms are equal
// iff their keys are equal. Names are quoted, so no name can forge a
// separator.
func (a Atom) Key() string {
	var b strings.Builder
	b.WriteString(strconv.Quote(a.predicate.name))
	b.WriteByte('(')
	for i, o := range a.objects {
		if i != 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(o.Name))
		b.WriteByte(':')
		b.WriteString(strconv.Quote(string(o.Type)))
	}
	b.WriteByte(')')
	return b.String()
}

// Equal reports structural equality.
func (a Atom) Equal(o Atom) bool {
	return a.predicate.Equal(o.predicate) && a.Key() == o.Key()
}

// Substitute replaces arguments according to sub. Arguments absent from sub
// are kept.
func (a Atom) Substitute(sub map[Object]Object) Atom {
	objects := make([]Object, len(a.objects))
	for i, o := range a.objects {
		if r, ok := sub[o]; ok {
			objects[i] = r
		} else {
			objects[i] = o
		}
	}
	return Atom{predicate: a.predicate, objects: objects}
}

func (a Atom) String() string {
	names := make([]string, len(a.objects))
	for i, o := range a.objects {
		names[i] = o.Name
	}
	return a.predicate.name + "(" + strings.Join(names, ", ") + ")"
}
