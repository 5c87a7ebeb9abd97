// Package metrics provides Prometheus metrics for imports and the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"inventory-import/core/importer"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inventory_import"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, route, and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	RowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rows",
			Name:      "processed_total",
			Help:      "Total number of CSV rows processed by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "total",
			Help:      "Total number of finished import jobs by mode and result",
		},
		[]string{"mode", "result"},
	)

	JobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "in_progress",
			Help:      "Number of import jobs currently running",
		},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Import job duration in seconds",
			Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"mode"},
	)
)

// Job results used as the "result" label.
const (
	ResultCompleted = "completed"
	ResultCancelled = "cancelled"
	ResultFailed    = "failed"
)

// Observer records controller events. It implements importer.Observer.
type Observer struct{}

// NewObserver returns an importer.Observer backed by the package metrics.
func NewObserver() *Observer {
	return &Observer{}
}

// JobStarted marks a job as running. JobFinished undoes it.
func (o *Observer) JobStarted() {
	JobsInProgress.Inc()
}

func (o *Observer) RowProcessed(mode importer.Mode, outcome importer.Outcome) {
	RowsTotal.WithLabelValues(string(mode), string(outcome)).Inc()
}

func (o *Observer) JobFinished(snap importer.Snapshot, elapsed time.Duration) {
	JobsInProgress.Dec()
	JobsTotal.WithLabelValues(string(snap.Mode), Result(snap)).Inc()
	JobDuration.WithLabelValues(string(snap.Mode)).Observe(elapsed.Seconds())
}

// Result maps a terminal snapshot to its result label.
func Result(snap importer.Snapshot) string {
	switch {
	case snap.Status == importer.StatusCompleted:
		return ResultCompleted
	case snap.Cancelled():
		return ResultCancelled
	default:
		return ResultFailed
	}
}

// Middleware records request counts and latency by route pattern.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		route := c.Route().Path
		HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the Prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
