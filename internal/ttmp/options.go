package ttmp

import (
	"log/slog"
	"time"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
	"github.com/joeycumines/task-then-motion-planning/internal/taskplan"
)

// DefaultDomainName names the domain when WithDomainName is not given.
const DefaultDomainName = "ttmp"

// Observer receives planner events. Implementations must be safe for
// concurrent use when shared between planners.
type Observer interface {
	// PlanComputed is called once per Reset that reached the symbolic
	// planner. err is non-nil if no plan was stored.
	PlanComputed(planner string, length int, elapsed time.Duration, err error)
	// OperatorActivated is called when an operator becomes active.
	OperatorActivated(op *relational.GroundOperator)
	// StepTaken is called for every Step that returned an action.
	StepTaken()
}

type nopObserver struct{}

func (nopObserver) PlanComputed(string, int, time.Duration, error) {}
func (nopObserver) OperatorActivated(*relational.GroundOperator)    {}
func (nopObserver) StepTaken()                                      {}

// Option configures New.
type Option func(*options)

type options struct {
	domainName string
	plannerID  string
	registry   *taskplan.Registry
	backend    taskplan.Planner
	timeout    time.Duration
	logger     *slog.Logger
	observer   Observer
}

// WithDomainName sets the domain name, which is also the problem's domain
// name.
func WithDomainName(name string) Option {
	return func(o *options) { o.domainName = name }
}

// WithPlanner selects the symbolic planner by identifier. The default is
// taskplan.DefaultPlanner.
func WithPlanner(id string) Option {
	return func(o *options) { o.plannerID = id }
}

// WithRegistry sets the registry planner identifiers are resolved against.
// The default is taskplan.NewDefaultRegistry with zero options.
func WithRegistry(r *taskplan.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithBackend uses p directly, bypassing the registry. The planner
// identifier is still used for logs and metrics.
func WithBackend(p taskplan.Planner) Option {
	return func(o *options) { o.backend = p }
}

// WithPlanningTimeout bounds each symbolic planner call. Expiry fails Reset
// with a *PlanningError that also matches context.DeadlineExceeded.
func WithPlanningTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver sets the event observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}
