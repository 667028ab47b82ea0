// ABOUTME: Calendar lookup endpoints
// ABOUTME: Batched next-meeting lookup keyed by entity id and a single-entity lookup
package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/oauth2"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
)

const maxLookupEntities = 500

// callerToken prefers a bearer token on the request and falls back to the
// server's stored credential.
func (s *Server) callerToken(c echo.Context) (*oauth2.Token, error) {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok && strings.TrimSpace(token) != "" {
		return &oauth2.Token{AccessToken: strings.TrimSpace(token), TokenType: "Bearer"}, nil
	}
	if s.calendar == nil || s.calendar.Credentials == nil {
		return nil, calendar.ErrNotAuthenticated
	}
	return s.calendar.Credentials.Token(c.Request().Context())
}

func (s *Server) lookupService() (*calendar.Service, error) {
	if s.calendar == nil || s.calendar.Service == nil {
		return nil, errors.New("calendar lookups are not configured")
	}
	return s.calendar.Service, nil
}

func (s *Server) recordLookup(mode string, err error) {
	switch {
	case err == nil:
		s.metrics.RecordCalendarLookup(mode, "ok")
	case errors.Is(err, calendar.ErrNotAuthenticated):
		s.metrics.RecordCalendarLookup(mode, "unauthenticated")
	default:
		s.metrics.RecordCalendarLookup(mode, "error")
	}
}

func (s *Server) handleNextMeetings(c echo.Context) error {
	var req map[string][]string
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "expected an object of id to email list")
	}
	if err := crm.Validator().Var(req, fmt.Sprintf("max=%d,dive,keys,required,endkeys", maxLookupEntities)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("at most %d entities with non-empty ids", maxLookupEntities))
	}

	meetings, err := s.nextMeetings(c, req)
	s.recordLookup("batch", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meetings)
}

func (s *Server) nextMeetings(c echo.Context, req map[string][]string) (map[string]calendar.Meeting, error) {
	token, err := s.callerToken(c)
	if err != nil {
		return nil, err
	}
	svc, err := s.lookupService()
	if err != nil {
		return nil, err
	}
	return svc.NextMeetings(c.Request().Context(), token, req)
}

// handleNextMeeting accepts repeated email parameters and answers with the
// meeting, or null when nothing matches.
func (s *Server) handleNextMeeting(c echo.Context) error {
	emails := c.QueryParams()["email"]
	if len(emails) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one email is required")
	}

	meeting, err := s.nextMeeting(c, emails)
	s.recordLookup("single", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meeting)
}

func (s *Server) nextMeeting(c echo.Context, emails []string) (*calendar.Meeting, error) {
	token, err := s.callerToken(c)
	if err != nil {
		return nil, err
	}
	svc, err := s.lookupService()
	if err != nil {
		return nil, err
	}
	return svc.NextMeeting(c.Request().Context(), token, emails)
}
