package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joeycumines/task-then-motion-planning/internal/config"
	"github.com/joeycumines/task-then-motion-planning/internal/episode"
	"github.com/joeycumines/task-then-motion-planning/internal/metrics"
	"github.com/joeycumines/task-then-motion-planning/internal/taxi"
	"github.com/joeycumines/task-then-motion-planning/internal/ttmp"
)

// RunCommand plays Taxi episodes with the task-then-motion planner.
type RunCommand struct {
	*BaseCommand
	config *config.Config

	planner         string
	planningTimeout time.Duration
	searchLimit     int
	fastDownward    string
	fdOptions       string
	seed            int
	episodes        int
	parallel        int
	maxSteps        int
	terminate       string
	render          bool
	metrics         bool
	verbose         bool
	logLevel        string
	logFile         string
}

// NewRunCommand creates a new run command.
func NewRunCommand(cfg *config.Config) *RunCommand {
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Run Taxi episodes with a symbolic planner and skills",
			"run [options]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the run command. Defaults come from
// the config.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	s := newSettings(c.config, c.Name())
	fs.StringVar(&c.planner, "planner", s.getString("planner"), "Task planner: astar, bfs, pabt, fd-sat, fd-opt, fd")
	fs.DurationVar(&c.planningTimeout, "planning-timeout", s.getDuration("planning-timeout"), "Bound on each planner call (0 for none)")
	fs.IntVar(&c.searchLimit, "search-limit", s.getInt("search.limit"), "Node expansion limit for astar and bfs (0 for the default)")
	fs.StringVar(&c.fastDownward, "fast-downward", s.getString("fast-downward.path"), "Path to fast-downward.py")
	fs.StringVar(&c.fdOptions, "fast-downward-options", s.getString("fast-downward.options"), "Shell-quoted search options; registers the fd planner")
	fs.IntVar(&c.seed, "seed", s.getInt("seed"), "Seed of the first episode; episode i uses seed+i")
	fs.IntVar(&c.episodes, "episodes", s.getInt("episodes"), "Number of episodes")
	fs.IntVar(&c.parallel, "parallel", s.getInt("parallel"), "Episodes run concurrently")
	fs.IntVar(&c.maxSteps, "max-steps", s.getInt("max-steps"), "Step limit per episode")
	fs.StringVar(&c.terminate, "terminate", s.getString("terminate"), "Termination expression over done, steps, reward, total")
	fs.BoolVar(&c.render, "render", s.getBool("render"), "Render every frame")
	fs.BoolVar(&c.metrics, "metrics", s.getBool("metrics"), "Print metrics after the run")
	fs.BoolVar(&c.verbose, "verbose", s.getBool("verbose"), "Log at debug level")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&c.logFile, "log-file", "", "Write JSON logs to this file instead of stderr")
}

// Execute runs the episodes and prints a summary line per episode.
func (c *RunCommand) Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}

	lc, err := resolveLogConfig(c.logFile, c.logLevel, c.verbose, c.config)
	if err != nil {
		return err
	}
	defer lc.Close()
	logger := lc.logger(stderr)

	term, err := episode.ParseTermination(c.terminate)
	if err != nil {
		return err
	}
	planners, err := newPlannerRegistry(c.fastDownward, c.fdOptions, c.searchLimit)
	if err != nil {
		return err
	}
	if _, err := planners.Get(c.planner); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	observer := metrics.NewObserver(reg)

	// frames from concurrent episodes are written whole
	var out sync.Mutex
	results, runErr := episode.RunBatch(ctx, c.episodes, c.parallel, func(i int) (episode.Runnable, error) {
		planner, err := ttmp.New(
			taxi.Types(),
			taxi.Predicates(),
			ttmp.Perceiver[int](taxi.Perceiver{}),
			taxi.Operators(),
			taxi.Skills(),
			ttmp.WithDomainName(taxi.DomainName),
			ttmp.WithPlanner(c.planner),
			ttmp.WithRegistry(planners),
			ttmp.WithPlanningTimeout(c.planningTimeout),
			ttmp.WithLogger(logger),
			ttmp.WithObserver(observer),
		)
		if err != nil {
			return nil, err
		}
		r := &episode.Runner[int, taxi.Action]{
			Env:       taxi.NewEnv(uint64(c.seed + i)),
			Agent:     planner,
			MaxSteps:  c.maxSteps,
			Terminate: term,
			Logger:    logger,
		}
		if c.render {
			r.OnReset = func(id string, obs int) {
				writeFrame(&out, stdout, obs, fmt.Sprintf("episode %d", i))
			}
			r.OnStep = func(f episode.Frame[int, taxi.Action]) {
				writeFrame(&out, stdout, f.Obs, f.Action.String())
			}
		}
		return r, nil
	})

	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "EPISODE\tID\tOUTCOME\tSTEPS\tREWARD")
	var played int
	var total float64
	for i, res := range results {
		if res.ID == "" {
			continue
		}
		played++
		total += res.Reward
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%g\n", i, res.ID, res.Outcome, res.Steps, res.Reward)
	}
	_ = w.Flush()
	if played > 0 {
		_, _ = fmt.Fprintf(stdout, "mean reward %.2f over %d episode(s)\n", total/float64(played), played)
	}

	if c.metrics {
		if err := metrics.WriteText(stdout, reg); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	return runErr
}

func writeFrame(mu *sync.Mutex, w io.Writer, obs int, caption string) {
	s, err := taxi.Decode(obs)
	if err != nil {
		return
	}
	frame := taxi.Render(s, caption)
	mu.Lock()
	defer mu.Unlock()
	_, _ = io.WriteString(w, frame)
}
