package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/joeycumines/task-then-motion-planning/internal/config"
	"github.com/joeycumines/task-then-motion-planning/internal/domainfile"
	"github.com/joeycumines/task-then-motion-planning/internal/pddl"
	"github.com/joeycumines/task-then-motion-planning/internal/relational"
	"github.com/joeycumines/task-then-motion-planning/internal/taskplan"
	"github.com/joeycumines/task-then-motion-planning/internal/ttmp"
)

// PlanCommand plans a problem from domain files without executing it.
type PlanCommand struct {
	*BaseCommand
	config *config.Config

	domain          string
	problem         string
	planner         string
	planningTimeout time.Duration
	searchLimit     int
	fastDownward    string
	fdOptions       string
	format          string
}

// NewPlanCommand creates a new plan command.
func NewPlanCommand(cfg *config.Config) *PlanCommand {
	return &PlanCommand{
		BaseCommand: NewBaseCommand(
			"plan",
			"Compute a symbolic plan for a domain and problem file",
			"plan -domain <file> -problem <file> [options]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the plan command.
func (c *PlanCommand) SetupFlags(fs *flag.FlagSet) {
	s := newSettings(c.config, c.Name())
	fs.StringVar(&c.domain, "domain", s.getString("domain"), "Domain file (YAML)")
	fs.StringVar(&c.problem, "problem", s.getString("problem"), "Problem file (YAML)")
	fs.StringVar(&c.planner, "planner", s.getString("planner"), "Task planner: astar, bfs, pabt, fd-sat, fd-opt, fd")
	fs.DurationVar(&c.planningTimeout, "planning-timeout", s.getDuration("planning-timeout"), "Bound on the planner call (0 for none)")
	fs.IntVar(&c.searchLimit, "search-limit", s.getInt("search.limit"), "Node expansion limit for astar and bfs (0 for the default)")
	fs.StringVar(&c.fastDownward, "fast-downward", s.getString("fast-downward.path"), "Path to fast-downward.py")
	fs.StringVar(&c.fdOptions, "fast-downward-options", s.getString("fast-downward.options"), "Shell-quoted search options; registers the fd planner")
	fs.StringVar(&c.format, "format", "text", "Output format: text or pddl")
}

// Execute loads the files, plans, and prints the plan. A problem with no
// plan fails with a *ttmp.PlanningError.
func (c *PlanCommand) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	if c.format != "text" && c.format != "pddl" {
		return fmt.Errorf("unknown format %q", c.format)
	}
	d, p, err := loadFiles(c.domain, c.problem, true)
	if err != nil {
		return err
	}
	planners, err := newPlannerRegistry(c.fastDownward, c.fdOptions, c.searchLimit)
	if err != nil {
		return err
	}
	planner, err := planners.Get(c.planner)
	if err != nil {
		return err
	}

	if c.planningTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.planningTimeout)
		defer cancel()
	}
	result, err := planner.Plan(ctx, d, p)
	if err != nil {
		return &ttmp.PlanningError{Planner: c.planner, Err: err}
	}
	if !result.Found {
		return &ttmp.PlanningError{Planner: c.planner, Reason: result.Reason}
	}
	if err := taskplan.Validate(result.Plan, p); err != nil {
		return err
	}

	if c.format == "pddl" {
		_, _ = io.WriteString(stdout, pddl.Plan(result.Plan))
		return nil
	}
	for i, op := range result.Plan {
		_, _ = fmt.Fprintf(stdout, "%d. %s\n", i+1, op)
	}
	return nil
}

// PDDLCommand prints domain and problem files as PDDL.
type PDDLCommand struct {
	*BaseCommand
	config *config.Config

	domain  string
	problem string
}

// NewPDDLCommand creates a new pddl command.
func NewPDDLCommand(cfg *config.Config) *PDDLCommand {
	return &PDDLCommand{
		BaseCommand: NewBaseCommand(
			"pddl",
			"Print a domain (and optionally a problem) as PDDL",
			"pddl -domain <file> [-problem <file>]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the pddl command.
func (c *PDDLCommand) SetupFlags(fs *flag.FlagSet) {
	s := newSettings(c.config, c.Name())
	fs.StringVar(&c.domain, "domain", s.getString("domain"), "Domain file (YAML)")
	fs.StringVar(&c.problem, "problem", "", "Problem file (YAML)")
}

// Execute prints the PDDL.
func (c *PDDLCommand) Execute(_ context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	d, p, err := loadFiles(c.domain, c.problem, false)
	if err != nil {
		return err
	}
	_, _ = io.WriteString(stdout, pddl.Domain(d))
	if p != nil {
		_, _ = fmt.Fprintln(stdout)
		_, _ = io.WriteString(stdout, pddl.Problem(p))
	}
	return nil
}

func newPlannerRegistry(fastDownward, fdOptions string, searchLimit int) (*taskplan.Registry, error) {
	options, err := taskplan.SplitArgs(fdOptions)
	if err != nil {
		return nil, fmt.Errorf("fast-downward options: %w", err)
	}
	return taskplan.NewDefaultRegistry(taskplan.Options{
		FastDownwardPath:    fastDownward,
		FastDownwardOptions: options,
		SearchLimit:         searchLimit,
	}), nil
}

var errNoDomain = errors.New("a domain file is required (-domain)")

// loadFiles reads the domain, and the problem if named or required.
func loadFiles(domainPath, problemPath string, needProblem bool) (*relational.Domain, *relational.Problem, error) {
	if domainPath == "" {
		return nil, nil, errNoDomain
	}
	d, err := domainfile.LoadDomain(domainPath)
	if err != nil {
		return nil, nil, err
	}
	if problemPath == "" {
		if needProblem {
			return nil, nil, errors.New("a problem file is required (-problem)")
		}
		return d, nil, nil
	}
	p, err := domainfile.LoadProblem(problemPath, d)
	if err != nil {
		return nil, nil, err
	}
	return d, p, nil
}
