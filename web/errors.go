// ABOUTME: Error responses and request validation for the HTTP API
// ABOUTME: Maps domain errors onto 400, 401, 404, and generic 500 responses
package web

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/logging"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var errPartnerNotFound = echo.NewHTTPError(http.StatusNotFound, "partner not found")

// requestValidator plugs the CRM validator into echo's c.Validate.
type requestValidator struct{}

func (requestValidator) Validate(i any) error {
	return crm.Check(i)
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := s.classify(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("request failed", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

func (s *Server) classify(err error) (int, errorResponse) {
	var he *echo.HTTPError
	switch {
	case errors.Is(err, crm.ErrValidation):
		return http.StatusBadRequest, errorResponse{Error: "validation_error", Message: err.Error()}
	case errors.Is(err, db.ErrInvalidOrder):
		return http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()}
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: "The requested resource was not found."}
	case errors.Is(err, calendar.ErrNotAuthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "not_authenticated", Message: "not authenticated"}
	case errors.As(err, &he):
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		code := "invalid_request"
		switch he.Code {
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case http.StatusInternalServerError:
			code = "internal_error"
			msg = "An internal error occurred. Please try again later."
		}
		return he.Code, errorResponse{Error: code, Message: msg}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "An internal error occurred. Please try again later."}
}
