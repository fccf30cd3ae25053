package pddl

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// ParseError reports a plan line that could not be resolved against the
// domain and problem.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("pddl: plan line %d %q: %s", e.Line, e.Text, e.Reason)
}

// trailing "(1)" step-cost annotations, as printed by Fast Downward on stdout
var costSuffix = regexp.MustCompile(`\s*\(\d+\)\s*$`)

// ParsePlan resolves a planner's textual plan into ground operators. Two line
// forms are accepted, "(op a b)" and "op a b (1)"; blank lines and lines
// starting with ';' are skipped. Operator and object names are matched
// case-insensitively, since PDDL planners commonly lowercase identifiers.
func ParsePlan(text string, d *relational.Domain, p *relational.Problem) ([]*relational.GroundOperator, error) {
	operators := make(map[string]*relational.LiftedOperator)
	for _, op := range d.Operators() {
		operators[strings.ToLower(op.Name())] = op
	}
	objects := make(map[string][]relational.Object)
	for _, o := range p.Objects() {
		key := strings.ToLower(o.Name)
		objects[key] = append(objects[key], o)
	}

	var plan []*relational.GroundOperator
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		line = costSuffix.ReplaceAllString(line, "")
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, "("), ")"))
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, &ParseError{Line: lineNo, Text: raw, Reason: "empty action"}
		}

		op, ok := operators[strings.ToLower(fields[0])]
		if !ok {
			return nil, &ParseError{Line: lineNo, Text: raw, Reason: fmt.Sprintf("unknown operator %q", fields[0])}
		}
		params := op.Parameters()
		if len(fields)-1 != len(params) {
			return nil, &ParseError{Line: lineNo, Text: raw, Reason: fmt.Sprintf("operator %s expects %d arguments, got %d", op.Name(), len(params), len(fields)-1)}
		}

		args := make([]relational.Object, len(params))
		for i, name := range fields[1:] {
			obj, err := resolveObject(objects[strings.ToLower(name)], params[i].Type)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Text: raw, Reason: fmt.Sprintf("argument %q: %v", name, err)}
			}
			args[i] = obj
		}
		g, err := op.Ground(args...)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: raw, Reason: err.Error()}
		}
		plan = append(plan, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pddl: reading plan: %w", err)
	}
	return plan, nil
}

func resolveObject(candidates []relational.Object, want relational.Type) (relational.Object, error) {
	if len(candidates) == 0 {
		return relational.Object{}, fmt.Errorf("unknown object")
	}
	var match []relational.Object
	for _, o := range candidates {
		if o.Type == want {
			match = append(match, o)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return relational.Object{}, fmt.Errorf("no object of type %s", want)
	default:
		return relational.Object{}, fmt.Errorf("ambiguous object of type %s", want)
	}
}

// Plan renders plan the way Fast Downward writes sas_plan: one
// parenthesized operator per line, then a unit cost comment. ParsePlan
// reads it back.
func Plan(plan []*relational.GroundOperator) string {
	var b strings.Builder
	for _, op := range plan {
		b.WriteByte('(')
		b.WriteString(op.Name())
		for _, o := range op.Parameters() {
			b.WriteByte(' ')
			b.WriteString(o.Name)
		}
		b.WriteString(")\n")
	}
	fmt.Fprintf(&b, "; cost = %d (unit cost)\n", len(plan))
	return b.String()
}
