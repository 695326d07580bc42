// Package metrics exposes Prometheus instrumentation for planning and motion.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the vehicle.
type Metrics struct {
	// Planning
	Plans    *prometheus.CounterVec
	PlanCost prometheus.Histogram

	// Motion
	Moves        *prometheus.CounterVec
	MoveDuration *prometheus.HistogramVec
	RaceWinners  *prometheus.CounterVec
	Samples      *prometheus.CounterVec
	IOErrors     *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Plans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mazerunner_plans_total",
				Help: "Total number of planning attempts by outcome",
			},
			[]string{"outcome"},
		),
		PlanCost: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mazerunner_plan_cost",
				Help:    "Total cost of successful plans",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),
		Moves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mazerunner_moves_total",
				Help: "Total number of executed commands by heading and outcome",
			},
			[]string{"heading", "outcome"},
		),
		MoveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mazerunner_move_duration_seconds",
				Help:    "Duration of a move from actuation to disable",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"heading"},
		),
		RaceWinners: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mazerunner_race_winners_total",
				Help: "Sensor that completed each move",
			},
			[]string{"heading", "sensor"},
		),
		Samples: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mazerunner_sensor_samples_total",
				Help: "Distance samples read per sensor",
			},
			[]string{"sensor"},
		),
		IOErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mazerunner_io_errors_total",
				Help: "Hardware read or write failures by operation",
			},
			[]string{"op"},
		),
	}
}

// NewRegistry creates a new Prometheus registry with metrics.
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, NewMetrics(reg)
}

// HandlerFor returns an HTTP handler for a specific registry.
func HandlerFor(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ObservePlan records a planning attempt. A nil receiver is a no-op.
func (m *Metrics) ObservePlan(cost int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Plans.WithLabelValues("error").Inc()
		return
	}
	m.Plans.WithLabelValues("ok").Inc()
	m.PlanCost.Observe(float64(cost))
}

// ObserveMove records a finished command. winner is empty for Stop and
// failed moves.
func (m *Metrics) ObserveMove(heading, winner string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Moves.WithLabelValues(heading, outcome).Inc()
	m.MoveDuration.WithLabelValues(heading).Observe(d.Seconds())
	if winner != "" {
		m.RaceWinners.WithLabelValues(heading, winner).Inc()
	}
}

// ObserveSample counts one distance reading.
func (m *Metrics) ObserveSample(sensor string) {
	if m == nil {
		return
	}
	m.Samples.WithLabelValues(sensor).Inc()
}

// ObserveIOError counts one hardware failure.
func (m *Metrics) ObserveIOError(op string) {
	if m == nil {
		return
	}
	m.IOErrors.WithLabelValues(op).Inc()
}
