// Package episode drives agents through environments: reset, then step and
// apply actions until the environment finishes, a termination expression
// holds, or a step budget runs out.
package episode

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// DefaultMaxSteps bounds an episode when Runner.MaxSteps is zero.
const DefaultMaxSteps = 200

// Env is a resettable environment producing observations of type O and
// consuming actions of type A.
type Env[O, A any] interface {
	Reset() (O, error)
	Step(action A) (obs O, reward float64, done bool, err error)
}

// Agent chooses actions. *ttmp.Planner implements it.
type Agent[O, A any] interface {
	Reset(ctx context.Context, obs O) error
	Step(ctx context.Context, obs O) (A, error)
}

// Outcome says why an episode stopped.
type Outcome string

const (
	// OutcomeDone means the environment reported the episode finished.
	OutcomeDone Outcome = "done"
	// OutcomeTerminated means the termination expression held first.
	OutcomeTerminated Outcome = "terminated"
	// OutcomeMaxSteps means the step budget ran out.
	OutcomeMaxSteps Outcome = "max-steps"
	// OutcomeError means the agent or environment failed.
	OutcomeError Outcome = "error"
)

// Result summarizes an episode.
type Result struct {
	ID      string
	Steps   int
	Reward  float64
	Outcome Outcome
}

// Frame describes one step, for observers such as renderers.
type Frame[O, A any] struct {
	Episode string
	Step    int
	Action  A
	Obs     O
	Status  Status
}

// Runner runs episodes of one agent in one environment. A Runner is not
// safe for concurrent use.
type Runner[O, A any] struct {
	Env   Env[O, A]
	Agent Agent[O, A]
	// MaxSteps is the step budget. Zero means DefaultMaxSteps.
	MaxSteps int
	// Terminate, if set, is evaluated after every step.
	Terminate *Termination
	// OnReset and OnStep, if set, are called with each observation.
	OnReset func(episode string, obs O)
	OnStep  func(Frame[O, A])
	Logger  *slog.Logger
}

// Run plays one episode. Errors from the agent or environment end it, and
// are returned alongside the partial result.
func (r *Runner[O, A]) Run(ctx context.Context) (Result, error) {
	res := Result{ID: uuid.NewString()}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("episode", res.ID)
	maxSteps := r.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	fail := func(err error) (Result, error) {
		res.Outcome = OutcomeError
		logger.Warn("episode failed", "steps", res.Steps, "error", err)
		return res, fmt.Errorf("episode %s: %w", res.ID, err)
	}

	obs, err := r.Env.Reset()
	if err != nil {
		return fail(fmt.Errorf("environment reset: %w", err))
	}
	if r.OnReset != nil {
		r.OnReset(res.ID, obs)
	}
	if err := r.Agent.Reset(ctx, obs); err != nil {
		return fail(err)
	}
	logger.Debug("episode started")

	for res.Steps < maxSteps {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		action, err := r.Agent.Step(ctx, obs)
		if err != nil {
			return fail(err)
		}
		var (
			reward float64
			done   bool
		)
		obs, reward, done, err = r.Env.Step(action)
		if err != nil {
			return fail(fmt.Errorf("environment step: %w", err))
		}
		res.Steps++
		res.Reward += reward
		status := Status{Done: done, Steps: res.Steps, Reward: reward, Total: res.Reward}
		if r.OnStep != nil {
			r.OnStep(Frame[O, A]{Episode: res.ID, Step: res.Steps, Action: action, Obs: obs, Status: status})
		}
		if done {
			res.Outcome = OutcomeDone
			break
		}
		if r.Terminate != nil {
			stop, err := r.Terminate.Evaluate(status)
			if err != nil {
				return fail(err)
			}
			if stop {
				res.Outcome = OutcomeTerminated
				break
			}
		}
	}
	if res.Outcome == "" {
		res.Outcome = OutcomeMaxSteps
	}
	logger.Info("episode finished", "outcome", res.Outcome, "steps", res.Steps, "reward", res.Reward)
	return res, nil
}
