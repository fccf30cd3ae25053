package taskplan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/joeycumines/task-then-motion-planning/internal/pddl"
	"github.com/joeycumines/task-then-motion-planning/internal/relational"
)

// FastDownwardEnv names the environment variable consulted when
// FastDownward.Path is empty.
const FastDownwardEnv = "FD_EXEC_PATH"

// Fast Downward driver exit codes meaning the task has no solution.
var fdUnsolvable = map[int]string{
	10: "translator proved the task unsolvable",
	11: "search proved the task unsolvable",
	12: "search incomplete, no plan found",
}

// FastDownward runs the Fast Downward planner as a subprocess. The domain and
// problem are written as PDDL into a temporary directory, and the resulting
// sas_plan file is parsed back against them.
type FastDownward struct {
	// Path to fast-downward.py or an equivalent executable. A ".py" path is
	// run with python3.
	Path string
	// Alias is the driver search alias, e.g. "lama-first". It defaults to
	// "lama-first" unless Options is set.
	Alias string
	// Options are component options passed after the task files, e.g.
	// --search "astar(lmcut())".
	Options []string
}

func (f *FastDownward) command(ctx context.Context, args ...string) (*exec.Cmd, error) {
	path := f.Path
	if path == "" {
		path = os.Getenv(FastDownwardEnv)
	}
	if path == "" {
		found, err := exec.LookPath("fast-downward.py")
		if err != nil {
			return nil, fmt.Errorf("taskplan: fast downward not configured (set %s): %w", FastDownwardEnv, err)
		}
		path = found
	}
	if strings.HasSuffix(path, ".py") {
		return exec.CommandContext(ctx, "python3", append([]string{path}, args...)...), nil
	}
	return exec.CommandContext(ctx, path, args...), nil
}

// Plan implements Planner.
func (f *FastDownward) Plan(ctx context.Context, domain *relational.Domain, problem *relational.Problem) (Result, error) {
	dir, err := os.MkdirTemp("", "ttmp-fd-*")
	if err != nil {
		return Result{}, fmt.Errorf("taskplan: creating work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	domainFile := filepath.Join(dir, "domain.pddl")
	problemFile := filepath.Join(dir, "problem.pddl")
	planFile := filepath.Join(dir, "sas_plan")
	if err := os.WriteFile(domainFile, []byte(pddl.Domain(domain)), 0o600); err != nil {
		return Result{}, fmt.Errorf("taskplan: writing domain: %w", err)
	}
	if err := os.WriteFile(problemFile, []byte(pddl.Problem(problem)), 0o600); err != nil {
		return Result{}, fmt.Errorf("taskplan: writing problem: %w", err)
	}

	alias := f.Alias
	if alias == "" && len(f.Options) == 0 {
		alias = "lama-first"
	}
	var args []string
	if alias != "" {
		args = append(args, "--alias", alias)
	}
	args = append(args, "--plan-file", planFile, domainFile, problemFile)
	cmd, err := f.command(ctx, append(args, f.Options...)...)
	if err != nil {
		return Result{}, err
	}
	cmd.Dir = dir
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	slog.Debug("taskplan: running fast downward", "alias", alias, "args", cmd.Args)
	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			if reason, ok := fdUnsolvable[exitErr.ExitCode()]; ok {
				return NotFound("fast downward: %s", reason), nil
			}
		}
		return Result{}, fmt.Errorf("taskplan: fast downward failed: %w\n%s", runErr, tail(output.String(), 20))
	}

	text, err := os.ReadFile(planFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NotFound("fast downward: no plan file produced"), nil
		}
		return Result{}, fmt.Errorf("taskplan: reading plan: %w", err)
	}
	plan, err := pddl.ParsePlan(string(text), domain, problem)
	if err != nil {
		return Result{}, fmt.Errorf("taskplan: fast downward returned an unparseable plan: %w", err)
	}
	return Planned(plan), nil
}

func tail(s string, lines int) string {
	parts := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}
	return strings.Join(parts, "\n")
}
