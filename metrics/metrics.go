// ABOUTME: Prometheus collectors for the HTTP API and calendar lookups
// ABOUTME: Registered on a private registry served at /metrics
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	PartnersCreated  prometheus.Counter
	TaskStatusWrites *prometheus.CounterVec
	CalendarLookups  *prometheus.CounterVec
}

// New creates a Metrics instance on its own registry, so several servers
// in one process (and tests) never collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		PartnersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "schoolcrm_partners_created_total",
			Help: "Total number of partners created",
		}),
		TaskStatusWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schoolcrm_task_status_updates_total",
				Help: "Task status updates by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		CalendarLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "schoolcrm_calendar_lookups_total",
				Help: "Calendar lookups by mode and outcome",
			},
			[]string{"mode", "outcome"}, // batch|single, ok|unauthenticated|error
		),
	}
}

// Registry exposes the collectors for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			// Commit the error response first so the recorded status is real.
			if err := next(c); err != nil {
				c.Error(err)
			}

			labels := []string{c.Request().Method, c.Path(), strconv.Itoa(c.Response().Status)}
			m.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
			m.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func (m *Metrics) RecordPartnerCreated() {
	m.PartnersCreated.Inc()
}

func (m *Metrics) RecordTaskStatus(kind string, err error) {
	m.TaskStatusWrites.WithLabelValues(kind, outcome(err)).Inc()
}

func (m *Metrics) RecordCalendarLookup(mode, result string) {
	m.CalendarLookups.WithLabelValues(mode, result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
