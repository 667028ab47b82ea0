// ABOUTME: Tests for the Prometheus collectors and echo middleware
// ABOUTME: Uses testutil against the private registry
package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTwiceDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}

func TestMiddlewareCountsRoutePattern(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/partners/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/partners/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/partners/:id", "200")))
}

func TestBusinessCounters(t *testing.T) {
	m := New()
	m.RecordPartnerCreated()
	m.RecordTaskStatus("task", nil)
	m.RecordTaskStatus("task", errors.New("boom"))
	m.RecordCalendarLookup("batch", "unauthenticated")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PartnersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TaskStatusWrites.WithLabelValues("task", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TaskStatusWrites.WithLabelValues("task", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CalendarLookups.WithLabelValues("batch", "unauthenticated")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordPartnerCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "schoolcrm_partners_created_total 1"))
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "nope")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/missing", "404")))
}
