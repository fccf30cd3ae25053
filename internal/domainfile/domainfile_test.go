package domainfile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
	"github.com/joeycumines/task-then-motion-planning/internal/taskplan"
)

func loadTaxi(t *testing.T) (*relational.Domain, *relational.Problem) {
	t.Helper()
	d, err := LoadDomain(filepath.Join("testdata", "taxi-domain.yaml"))
	require.NoError(t, err)
	p, err := LoadProblem(filepath.Join("testdata", "taxi-problem.yaml"), d)
	require.NoError(t, err)
	return d, p
}

func TestLoadTaxi(t *testing.T) {
	d, p := loadTaxi(t)
	assert.Equal(t, "taxi", d.Name())
	assert.Len(t, d.Types(), 3)
	assert.Len(t, d.Predicates(), 3)

	pickUp, ok := d.Operator("PickUp")
	require.True(t, ok)
	assert.Equal(t, "PickUp(?passenger, ?taxi, ?destination)", pickUp.String())
	assert.Len(t, pickUp.Preconditions(), 2)
	assert.Len(t, pickUp.AddEffects(), 1)
	assert.Len(t, pickUp.DeleteEffects(), 2)

	assert.Equal(t, "deliver", p.Name())
	assert.Len(t, p.Objects(), 5)
	assert.Equal(t, "{AtDestination(passenger, dest-a), TaxiEmpty(taxi)}", p.Init().String())
	assert.Equal(t, "{AtDestination(passenger, dest-b)}", p.Goal().String())

	result, err := (&taskplan.ForwardSearch{}).Plan(context.Background(), d, p)
	require.NoError(t, err)
	require.True(t, result.Found)
	require.Len(t, result.Plan, 2)
	assert.Equal(t, "PickUp(passenger, taxi, dest-a)", result.Plan[0].String())
	assert.Equal(t, "DropOff(passenger, taxi, dest-b)", result.Plan[1].String())
}

func TestParseDomainErrors(t *testing.T) {
	tests := []struct {
		name, doc, want string
	}{
		{"empty", "", "empty document"},
		{"no name", "types: [a]", "name is required"},
		{"unknown field", "name: x\nextra: 1", "extra"},
		{"bad atom", `
name: x
types: [a]
predicates: [{name: P, types: [a]}]
operators:
  - name: Op
    parameters: [{name: v, type: a}]
    preconditions: ["P ?v"]
`, "malformed atom"},
		{"unknown predicate", `
name: x
types: [a]
operators:
  - name: Op
    parameters: [{name: v, type: a}]
    add: ["Q(?v)"]
`, "unknown predicate Q"},
		{"non-parameter", `
name: x
types: [a]
predicates: [{name: P, types: [a]}]
operators:
  - name: Op
    parameters: [{name: v, type: a}]
    add: ["P(?w)"]
`, "unknown argument"},
		{"arity", `
name: x
types: [a]
predicates: [{name: P, types: [a]}]
operators:
  - name: Op
    parameters: [{name: v, type: a}]
    add: ["P(?v, ?v)"]
`, "P(?v, ?v)"},
		{"undeclared type", `
name: x
types: [a]
predicates: [{name: P, types: [b]}]
`, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDomain([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseProblemErrors(t *testing.T) {
	d, _ := loadTaxi(t)
	tests := []struct {
		name, doc, want string
	}{
		{"wrong domain", "name: p\ndomain: blocks", `targets domain "blocks"`},
		{"undeclared type", "name: p\ndomain: taxi\nobjects: [{name: x, type: boat}]", "undeclared type boat"},
		{"conflicting object", "name: p\ndomain: taxi\nobjects: [{name: x, type: taxi}, {name: x, type: passenger}]", "declared as"},
		{"unknown object", "name: p\ndomain: taxi\ngoal: [\"TaxiEmpty(ghost)\"]", "unknown argument"},
		{"wrong type", "name: p\ndomain: taxi\nobjects: [{name: x, type: passenger}]\ninit: [\"TaxiEmpty(x)\"]", "TaxiEmpty(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProblem([]byte(tt.doc), d)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseAtomNullary(t *testing.T) {
	done := relational.NewPredicate("Done")
	a, err := ParseAtom(" Done ( ) ", map[string]*relational.Predicate{"Done": done}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Done()", a.String())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadDomain(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "nope.yaml"))
}
