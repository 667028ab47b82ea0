// ABOUTME: JSON HTTP API for the school partner CRM
// ABOUTME: Echo router with request ids, logging, metrics, and a rate-limited calendar endpoint
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/logging"
	"github.com/harperreed/schoolcrm/metrics"
	"github.com/harperreed/schoolcrm/models"
)

type Options struct {
	Store    crm.Store
	Calendar *calendar.Client
	Metrics  *metrics.Metrics

	// StaffLead is applied to new partners that name no owner.
	StaffLead string

	CalendarRate  float64
	CalendarBurst int

	// Today overrides the clock in tests.
	Today func() models.Date
}

type Server struct {
	store     crm.Store
	calendar  *calendar.Client
	metrics   *metrics.Metrics
	staffLead string
	today     func() models.Date
	echo      *echo.Echo
}

func NewServer(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Today == nil {
		opts.Today = models.Today
	}
	if opts.CalendarRate <= 0 {
		opts.CalendarRate = 1
	}
	if opts.CalendarBurst <= 0 {
		opts.CalendarBurst = 5
	}

	s := &Server{
		store:     opts.Store,
		calendar:  opts.Calendar,
		metrics:   opts.Metrics,
		staffLead: opts.StaffLead,
		today:     opts.Today,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{}
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), id)))
		},
	}))
	e.Use(requestLogger())
	e.Use(s.metrics.Middleware())

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := e.Group("/api")
	api.GET("/partners", s.handleListPartners)
	api.POST("/partners", s.handleCreatePartner)
	api.GET("/partners/:id", s.handleGetPartner)
	api.PATCH("/partners/:id", s.handleUpdatePartner)
	api.DELETE("/partners/:id", s.handleDeletePartner)
	api.POST("/partners/:id/notes", s.handleAddNote)
	api.POST("/partners/:id/contacts", s.handleAddContact)
	api.POST("/contacts/:id/primary", s.handleSetPrimary)

	api.GET("/tasks", s.handleListTasks)
	api.PATCH("/tasks/:kind/:id/status", s.handleTaskStatus)
	api.GET("/pipeline", s.handlePipeline)

	limiter := middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(opts.CalendarRate),
			Burst:     opts.CalendarBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "rate_limited", Message: "Too many calendar requests. Please try again later."})
		},
	})
	cal := api.Group("/calendar", limiter)
	cal.POST("/next-meetings", s.handleNextMeetings)
	cal.GET("/next-meeting", s.handleNextMeeting)

	s.echo = e
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting web server", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"calendar":  s.calendar != nil,
		"timestamp": time.Now().Unix(),
	})
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logging.FromContext(c.Request().Context()).Debug("request",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"duration", time.Since(start))
			return nil
		}
	}
}
