package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/task-then-motion-planning/internal/config"
	"github.com/joeycumines/task-then-motion-planning/internal/ttmp"
)

var (
	taxiDomain  = filepath.Join("..", "domainfile", "testdata", "taxi-domain.yaml")
	taxiProblem = filepath.Join("..", "domainfile", "testdata", "taxi-problem.yaml")
)

func TestPlanCommand(t *testing.T) {
	cmd := NewPlanCommand(config.NewConfig())
	parse(t, cmd, "-domain", taxiDomain, "-problem", taxiProblem, "-planner", "astar")
	stdout, _, err := execute(t, cmd)
	require.NoError(t, err)
	assert.Equal(t, "1. PickUp(passenger, taxi, dest-a)\n2. DropOff(passenger, taxi, dest-b)\n", stdout)

	cmd = NewPlanCommand(config.NewConfig())
	parse(t, cmd, "-domain", taxiDomain, "-problem", taxiProblem, "-format", "pddl")
	stdout, _, err = execute(t, cmd)
	require.NoError(t, err)
	assert.Equal(t, "(PickUp passenger taxi dest-a)\n(DropOff passenger taxi dest-b)\n; cost = 2 (unit cost)\n", stdout)
}

func TestPlanCommandFilesFromConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.SetCommandOption("plan", "domain", taxiDomain)
	cfg.SetCommandOption("plan", "problem", taxiProblem)
	cfg.SetCommandOption("plan", "planner", "pabt")
	cmd := NewPlanCommand(cfg)
	parse(t, cmd)
	stdout, _, err := execute(t, cmd)
	require.NoError(t, err)
	assert.Contains(t, stdout, "DropOff(passenger, taxi, dest-b)")
}

func TestPlanCommandNoPlan(t *testing.T) {
	problem := filepath.Join(t.TempDir(), "stuck.yaml")
	require.NoError(t, os.WriteFile(problem, []byte(`name: stuck
domain: taxi
objects:
  - {name: passenger, type: passenger}
  - {name: taxi, type: taxi}
  - {name: dest-b, type: destination}
goal: ["AtDestination(passenger, dest-b)"]
`), 0644))

	cmd := NewPlanCommand(config.NewConfig())
	parse(t, cmd, "-domain", taxiDomain, "-problem", problem, "-planner", "bfs")
	_, _, err := execute(t, cmd)
	require.ErrorIs(t, err, ttmp.ErrPlanningFailure)
	var pe *ttmp.PlanningError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bfs", pe.Planner)
	assert.NotEmpty(t, pe.Reason)
	assert.NoError(t, pe.Err)
}

func TestPlanCommandErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
		want string
	}{
		{"no domain", nil, "domain file is required"},
		{"no problem", []string{"-domain", taxiDomain}, "problem file is required"},
		{"bad format", []string{"-domain", taxiDomain, "-problem", taxiProblem, "-format", "json"}, `unknown format "json"`},
		{"unknown planner", []string{"-domain", taxiDomain, "-problem", taxiProblem, "-planner", "nope"}, "unknown planner"},
		{"missing file", []string{"-domain", "nope.yaml", "-problem", taxiProblem}, "nope.yaml"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cmd := NewPlanCommand(config.NewConfig())
			parse(t, cmd, tc.args...)
			_, _, err := execute(t, cmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestPDDLCommand(t *testing.T) {
	cmd := NewPDDLCommand(config.NewConfig())
	parse(t, cmd, "-domain", taxiDomain)
	stdout, _, err := execute(t, cmd)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(define (domain taxi)")
	assert.NotContains(t, stdout, "(define (problem")

	cmd = NewPDDLCommand(config.NewConfig())
	parse(t, cmd, "-domain", taxiDomain, "-problem", taxiProblem)
	stdout, _, err = execute(t, cmd)
	require.NoError(t, err)
	assert.Contains(t, stdout, "(define (problem deliver) (:domain taxi)")
	assert.Contains(t, stdout, "(:goal (and (AtDestination passenger dest-b)))")

	_, _, err = execute(t, NewPDDLCommand(nil))
	assert.ErrorIs(t, err, errNoDomain)
}

func TestPlanCommandFastDownwardOptions(t *testing.T) {
	cmd := NewPlanCommand(config.NewConfig())
	parse(t, cmd, "-domain", taxiDomain, "-problem", taxiProblem, "-fast-downward-options", `--search "astar(lmcut()`)
	_, _, err := execute(t, cmd)
	assert.ErrorContains(t, err, "unterminated")

	cmd = NewPlanCommand(config.NewConfig())
	parse(t, cmd, "-domain", taxiDomain, "-problem", taxiProblem, "-planner", "fd")
	_, _, err = execute(t, cmd)
	assert.ErrorContains(t, err, "unknown planner", "fd is only registered with options")
}
