// Package metrics exports planner events as Prometheus metrics.
package metrics

import (
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"

	"github.com/joeycumines/task-then-motion-planning/internal/relational"
	"github.com/joeycumines/task-then-motion-planning/internal/ttmp"
)

const namespace = "ttmp"

// Observer implements ttmp.Observer over a set of collectors registered with
// a caller-supplied registerer. It is safe for concurrent use.
type Observer struct {
	plans     *prometheus.CounterVec
	operators *prometheus.CounterVec
	steps     prometheus.Counter
	planning  *prometheus.HistogramVec
	length    *prometheus.HistogramVec
}

var _ ttmp.Observer = (*Observer)(nil)

// NewObserver registers the planner collectors with reg. It panics if they
// are already registered, as promauto does.
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		plans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "plans_total",
				Help:      "Total number of symbolic planner calls, by outcome",
			},
			[]string{"planner", "outcome"},
		),
		operators: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operators_activated_total",
				Help:      "Total number of ground operators activated, by schema",
			},
			[]string{"operator"},
		),
		steps: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Total number of actions returned by planner steps",
			},
		),
		planning: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "planning_seconds",
				Help:      "Symbolic planner latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms to ~2m
			},
			[]string{"planner"},
		),
		length: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "plan_length",
				Help:      "Number of operators in each plan found",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"planner"},
		),
	}
}

// PlanComputed implements ttmp.Observer. The outcome label is "found",
// "not_found" when the planner reported that no plan exists, or "error" when
// the planner call itself failed.
func (o *Observer) PlanComputed(planner string, length int, elapsed time.Duration, err error) {
	o.plans.WithLabelValues(planner, outcome(err)).Inc()
	o.planning.WithLabelValues(planner).Observe(elapsed.Seconds())
	if err == nil {
		o.length.WithLabelValues(planner).Observe(float64(length))
	}
}

func outcome(err error) string {
	if err == nil {
		return "found"
	}
	var pe *ttmp.PlanningError
	if errors.As(err, &pe) && pe.Err == nil {
		return "not_found"
	}
	return "error"
}

// OperatorActivated implements ttmp.Observer.
func (o *Observer) OperatorActivated(op *relational.GroundOperator) {
	o.operators.WithLabelValues(op.Name()).Inc()
}

// StepTaken implements ttmp.Observer.
func (o *Observer) StepTaken() {
	o.steps.Inc()
}

// WriteText writes everything gathered by g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
