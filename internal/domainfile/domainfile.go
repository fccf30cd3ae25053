// Package domainfile reads domains and problems from YAML.
//
// A domain file:
//
//	name: taxi
//	types: [taxi, passenger, destination]
//	predicates:
//	  - {name: TaxiEmpty, types: [taxi]}
//	operators:
//	  - name: PickUp
//	    parameters:
//	      - {name: p, type: passenger}
//	    preconditions: ["AtDestination(?p, ?d)"]
//	    add: ["InTaxi(?p, ?t)"]
//	    delete: ["AtDestination(?p, ?d)"]
//
// A problem file names its domain, lists typed objects, and gives the
// initial and goal atoms over them, e.g. "AtDestination(passenger, dest-a)".
package domainfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

type domainFile struct {
	Name       string          `yaml:"name"`
	Types      []string        `yaml:"types"`
	Predicates []predicateFile `yaml:"predicates"`
	Operators  []operatorFile  `yaml:"operators"`
}

type predicateFile struct {
	Name  string   `yaml:"name"`
	Types []string `yaml:"types"`
}

type objectFile struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type operatorFile struct {
	Name          string       `yaml:"name"`
	Parameters    []objectFile `yaml:"parameters"`
	Preconditions []string     `yaml:"preconditions"`
	Add           []string     `yaml:"add"`
	Delete        []string     `yaml:"delete"`
}

type problemFile struct {
	Name    string       `yaml:"name"`
	Domain  string       `yaml:"domain"`
	Objects []objectFile `yaml:"objects"`
	Init    []string     `yaml:"init"`
	Goal    []string     `yaml:"goal"`
}

func decode(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}

// LoadDomain reads a domain file.
func LoadDomain(path string) (*relational.Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := ParseDomain(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// ParseDomain decodes a domain document.
func ParseDomain(data []byte) (*relational.Domain, error) {
	var f domainFile
	if err := decode(data, &f); err != nil {
		return nil, fmt.Errorf("domainfile: %w", err)
	}
	if f.Name == "" {
		return nil, errors.New("domainfile: domain name is required")
	}

	types := make([]relational.Type, len(f.Types))
	for i, t := range f.Types {
		types[i] = relational.Type(t)
	}
	predicates := make([]*relational.Predicate, len(f.Predicates))
	byName := make(map[string]*relational.Predicate, len(f.Predicates))
	for i, p := range f.Predicates {
		argTypes := make([]relational.Type, len(p.Types))
		for j, t := range p.Types {
			argTypes[j] = relational.Type(t)
		}
		predicates[i] = relational.NewPredicate(p.Name, argTypes...)
		byName[p.Name] = predicates[i]
	}

	operators := make([]*relational.LiftedOperator, len(f.Operators))
	for i, o := range f.Operators {
		params := make([]relational.Object, len(o.Parameters))
		byParam := make(map[string]relational.Object, len(o.Parameters))
		for j, p := range o.Parameters {
			params[j] = relational.Type(p.Type).Variable(p.Name)
			byParam[params[j].Name] = params[j]
		}
		lookup := func(name string) (relational.Object, bool) {
			if !strings.HasPrefix(name, relational.VariablePrefix) {
				name = relational.VariablePrefix + name
			}
			obj, ok := byParam[name]
			return obj, ok
		}
		var groups [3][]relational.Atom
		for g, texts := range [3][]string{o.Preconditions, o.Add, o.Delete} {
			for _, text := range texts {
				a, err := ParseAtom(text, byName, lookup)
				if err != nil {
					return nil, fmt.Errorf("domainfile: operator %s: %w", o.Name, err)
				}
				groups[g] = append(groups[g], a)
			}
		}
		op, err := relational.NewLiftedOperator(o.Name, params, groups[0], groups[1], groups[2])
		if err != nil {
			return nil, fmt.Errorf("domainfile: %w", err)
		}
		operators[i] = op
	}

	d, err := relational.NewDomain(f.Name, types, predicates, operators)
	if err != nil {
		return nil, fmt.Errorf("domainfile: %w", err)
	}
	return d, nil
}

// LoadProblem reads a problem file targeting d.
func LoadProblem(path string, d *relational.Domain) (*relational.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseProblem(data, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProblem decodes a problem document. Its domain must be d, and its
// objects must have types declared by d.
func ParseProblem(data []byte, d *relational.Domain) (*relational.Problem, error) {
	var f problemFile
	if err := decode(data, &f); err != nil {
		return nil, fmt.Errorf("domainfile: %w", err)
	}
	if f.Domain != d.Name() {
		return nil, fmt.Errorf("domainfile: problem %s targets domain %q, not %q", f.Name, f.Domain, d.Name())
	}
	objects := make([]relational.Object, len(f.Objects))
	byName := make(map[string]relational.Object, len(f.Objects))
	for i, o := range f.Objects {
		t := relational.Type(o.Type)
		if !d.HasType(t) {
			return nil, fmt.Errorf("domainfile: object %s has undeclared type %s", o.Name, o.Type)
		}
		if prev, dup := byName[o.Name]; dup && prev.Type != t {
			return nil, fmt.Errorf("domainfile: object %s declared as %s and %s", o.Name, prev.Type, t)
		}
		objects[i] = t.Object(o.Name)
		byName[o.Name] = objects[i]
	}
	predicates := make(map[string]*relational.Predicate)
	for _, p := range d.Predicates() {
		predicates[p.Name()] = p
	}
	lookup := func(name string) (relational.Object, bool) {
		obj, ok := byName[name]
		return obj, ok
	}
	var sets [2]relational.AtomSet
	for i, texts := range [2][]string{f.Init, f.Goal} {
		sets[i] = relational.NewAtomSet()
		for _, text := range texts {
			a, err := ParseAtom(text, predicates, lookup)
			if err != nil {
				return nil, fmt.Errorf("domainfile: problem %s: %w", f.Name, err)
			}
			sets[i].Add(a)
		}
	}
	p, err := relational.NewProblem(f.Name, f.Domain, objects, sets[0], sets[1])
	if err != nil {
		return nil, fmt.Errorf("domainfile: %w", err)
	}
	return p, nil
}

var atomPattern = regexp.MustCompile(`^\s*([A-Za-z_][\w-]*)\s*\(([^()]*)\)\s*$`)

// ParseAtom parses "Pred(a, b)". Arguments are resolved with lookup; a
// predicate with no arguments is written "Pred()".
func ParseAtom(text string, predicates map[string]*relational.Predicate, lookup func(name string) (relational.Object, bool)) (relational.Atom, error) {
	m := atomPattern.FindStringSubmatch(text)
	if m == nil {
		return relational.Atom{}, fmt.Errorf("malformed atom %q", text)
	}
	pred, ok := predicates[m[1]]
	if !ok {
		return relational.Atom{}, fmt.Errorf("atom %q: unknown predicate %s", text, m[1])
	}
	var args []relational.Object
	if body := strings.TrimSpace(m[2]); body != "" {
		for _, name := range strings.Split(body, ",") {
			name = strings.TrimSpace(name)
			obj, ok := lookup(name)
			if !ok {
				return relational.Atom{}, fmt.Errorf("atom %q: unknown argument %q", text, name)
			}
			args = append(args, obj)
		}
	}
	a, err := pred.Atom(args...)
	if err != nil {
		return relational.Atom{}, fmt.Errorf("atom %q: %w", text, err)
	}
	return a, nil
}
