// Package pddl serializes domains and problems to PDDL text, and parses
// plans produced by PDDL planners back into ground operators.
package pddl

import (
	"fmt"
	"strings"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// Domain renders d as a STRIPS+typing PDDL domain.
func Domain(d *relational.Domain) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(define (domain %s)\n", d.Name())
	b.WriteString("  (:requirements :strips :typing)\n")

	types := d.Types()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	fmt.Fprintf(&b, "  (:types %s)\n", strings.Join(names, " "))

	b.WriteString("  (:predicates\n")
	for _, p := range d.Predicates() {
		b.WriteString("    (")
		b.WriteString(p.Name())
		for i, t := range p.Types() {
			fmt.Fprintf(&b, " ?x%d - %s", i, t)
		}
		b.WriteString(")\n")
	}
	b.WriteString("  )\n")

	for _, op := range d.Operators() {
		fmt.Fprintf(&b, "  (:action %s\n", op.Name())
		b.WriteString("    :parameters (")
		for i, p := range op.Parameters() {
			if i != 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s - %s", p.Name, p.Type)
		}
		b.WriteString(")\n")
		b.WriteString("    :precondition (and")
		for _, a := range op.Preconditions().Sorted() {
			b.WriteByte(' ')
			b.WriteString(atom(a))
		}
		b.WriteString(")\n")
		b.WriteString("    :effect (and")
		for _, a := range op.AddEffects().Sorted() {
			b.WriteByte(' ')
			b.WriteString(atom(a))
		}
		for _, a := range op.DeleteEffects().Sorted() {
			b.WriteString(" (not ")
			b.WriteString(atom(a))
			b.WriteByte(')')
		}
		b.WriteString(")\n")
		b.WriteString("  )\n")
	}
	b.WriteString(")\n")
	return b.String()
}

// Problem renders p as a PDDL problem.
func Problem(p *relational.Problem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(define (problem %s) (:domain %s)\n", p.Name(), p.DomainName())
	b.WriteString("  (:objects\n")
	for _, o := range p.Objects() {
		fmt.Fprintf(&b, "    %s - %s\n", o.Name, o.Type)
	}
	b.WriteString("  )\n")
	b.WriteString("  (:init\n")
	for _, a := range p.Init().Sorted() {
		b.WriteString("    ")
		b.WriteString(atom(a))
		b.WriteByte('\n')
	}
	b.WriteString("  )\n")
	b.WriteString("  (:goal (and")
	for _, a := range p.Goal().Sorted() {
		b.WriteByte(' ')
		b.WriteString(atom(a))
	}
	b.WriteString("))\n")
	b.WriteString(")\n")
	return b.String()
}

func atom(a relational.Atom) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(a.Predicate().Name())
	for _, o := range a.Objects() {
		b.WriteByte(' ')
		b.WriteString(o.Name)
	}
	b.WriteByte(')')
	return b.String()
}
