// ABOUTME: Partner endpoints: list, detail, create, patch, delete, notes, contacts
// ABOUTME: Writes go through the data access views so validation and local patching match the TUI
package web

import (
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
)

type partnerSummary struct {
	*models.Partner
	NextAction calendar.NextAction `json:"next_action"`
	OpenTasks  int                 `json:"open_tasks"`
	Progress   tasks.Progress      `json:"onboarding_progress"`
}

type partnerDetail struct {
	*models.Partner
	UnifiedTasks []tasks.Item        `json:"unified_tasks"`
	Progress     tasks.Progress      `json:"onboarding_progress"`
	Percent      float64             `json:"onboarding_percent"`
	NextAction   calendar.NextAction `json:"next_action"`
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// openView loads a partner detail view, mapping a missing partner to 404.
func (s *Server) openView(c echo.Context) (*crm.PartnerView, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	ctx := c.Request().Context()
	v := crm.NewPartnerView(ctx, s.store, id)
	found, err := v.Refresh(ctx)
	if err != nil {
		v.Close()
		return nil, err
	}
	if !found {
		v.Close()
		return nil, errPartnerNotFound
	}
	return v, nil
}

func (s *Server) handleListPartners(c echo.Context) error {
	ctx := c.Request().Context()
	partners, err := crm.LoadPartners(ctx, s.store)
	if err != nil {
		return err
	}

	query := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	status := c.QueryParam("status")
	partners = slices.DeleteFunc(partners, func(p models.Partner) bool {
		if status != "" && p.Status != status {
			return true
		}
		return query != "" && !strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.District), query)
	})

	// One batched lookup for the whole page.
	meetings := s.calendar.MeetingsFor(ctx, partners)
	today := s.today()

	out := make([]partnerSummary, len(partners))
	for i := range partners {
		p := &partners[i]
		var meeting *calendar.Meeting
		if m, ok := meetings[p.ID.String()]; ok {
			meeting = &m
		}
		out[i] = partnerSummary{
			Partner:    p,
			NextAction: calendar.ResolveNextAction(p, meeting),
			OpenTasks:  tasks.Count(tasks.ForPartner(p), today).Open,
			Progress:   tasks.ChecklistProgress(p.Onboarding),
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetPartner(c echo.Context) error {
	v, err := s.openView(c)
	if err != nil {
		return err
	}
	defer v.Close()
	return c.JSON(http.StatusOK, s.detail(c, v))
}

func (s *Server) detail(c echo.Context, v *crm.PartnerView) partnerDetail {
	p := v.Partner()
	progress := v.Progress()
	return partnerDetail{
		Partner:      p,
		UnifiedTasks: v.Tasks(),
		Progress:     progress,
		Percent:      progress.Percent(),
		NextAction:   calendar.ResolveNextAction(p, s.calendar.MeetingFor(c.Request().Context(), p)),
	}
}

func (s *Server) handleCreatePartner(c echo.Context) error {
	var in crm.PartnerInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if in.StaffLead == "" {
		in.StaffLead = s.staffLead
	}

	ctx := c.Request().Context()
	dir := crm.NewDirectory(ctx, s.store)
	defer dir.Close()

	p, err := dir.CreatePartner(ctx, in)
	if err != nil {
		return err
	}
	s.metrics.RecordPartnerCreated()
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdatePartner(c echo.Context) error {
	var patch models.PartnerPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	v, err := s.openView(c)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.UpdateFields(c.Request().Context(), patch); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v.Partner())
}

func (s *Server) handleDeletePartner(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.store.DeletePartner(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAddNote(c echo.Context) error {
	var in crm.NoteInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if in.Date.IsZero() {
		in.Date = s.today()
	}

	v, err := s.openView(c)
	if err != nil {
		return err
	}
	defer v.Close()

	note, err := v.AddNote(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, note)
}

func (s *Server) handleAddContact(c echo.Context) error {
	var in crm.ContactInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	v, err := s.openView(c)
	if err != nil {
		return err
	}
	defer v.Close()

	contact, err := v.AddContact(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contact)
}

func (s *Server) handleSetPrimary(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := s.store.SetPrimaryContact(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
