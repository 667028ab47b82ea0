// ABOUTME: Task list, task status, and pipeline summary endpoints
// ABOUTME: Status changes are written first and the list is reloaded afterwards
package web

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/tasks"
	"github.com/harperreed/schoolcrm/viz"
)

type taskListResponse struct {
	Items  []tasks.Item `json:"items"`
	Counts tasks.Counts `json:"counts"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,task_status"`
}

type statusResponse struct {
	Kind    tasks.Kind `json:"kind"`
	ID      string     `json:"id"`
	Status  string     `json:"status"`
	Applied bool       `json:"applied"`
}

func (s *Server) handleListTasks(c echo.Context) error {
	var f tasks.Filter
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
	}

	partners, err := crm.LoadPartners(c.Request().Context(), s.store)
	if err != nil {
		return err
	}
	all := tasks.Global(partners)
	return c.JSON(http.StatusOK, taskListResponse{
		Items:  tasks.Apply(all, f),
		Counts: tasks.Count(all, s.today()),
	})
}

func (s *Server) handleTaskStatus(c echo.Context) error {
	kind, ok := tasks.ParseKind(c.Param("kind"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid task kind")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	it := tasks.Item{Kind: kind, ID: id}
	applied, err := tasks.SetStatus(c.Request().Context(), s.store, it, req.Status)
	s.metrics.RecordTaskStatus(string(kind), err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{
		Kind:    kind,
		ID:      id.String(),
		Status:  req.Status,
		Applied: applied,
	})
}

func (s *Server) handlePipeline(c echo.Context) error {
	partners, err := crm.LoadPartners(c.Request().Context(), s.store)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, viz.Summarize(partners))
}
