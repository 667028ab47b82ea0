// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to partners, tasks, and the pipeline via crm:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
	"github.com/harperreed/schoolcrm/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ResourceHandlers struct {
	store    *db.Store
	partners *PartnerHandlers
	today    func() models.Date
}

func NewResourceHandlers(store *db.Store, cal *calendar.Client) *ResourceHandlers {
	return &ResourceHandlers{
		store:    store,
		partners: NewPartnerHandlers(store, cal, ""),
		today:    models.Today,
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	parts := strings.Split(strings.TrimPrefix(uri, "crm://"), "/")
	switch {
	case parts[0] == "partners" && len(parts) == 1:
		return h.readAllPartners(ctx, uri)
	case parts[0] == "partners" && len(parts) == 2:
		return h.readPartner(ctx, uri, parts[1])
	case parts[0] == "tasks" && len(parts) == 1:
		return h.readTasks(ctx, uri)
	case parts[0] == "pipeline" && len(parts) == 1:
		return h.readPipeline(ctx, uri)
	}
	return nil, mcp.ResourceNotFoundError(uri)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readAllPartners(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	partners, err := h.store.ListPartners(ctx, db.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partners: %w", err)
	}
	return jsonResource(uri, partnersToOutput(partners))
}

func (h *ResourceHandlers) readPartner(ctx context.Context, uri, id string) (*mcp.ReadResourceResult, error) {
	v, err := openView(ctx, h.store, id)
	if err != nil {
		if errors.Is(err, errPartnerNotFound) {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, err
	}
	defer v.Close()
	return jsonResource(uri, h.partners.detail(ctx, v))
}

func (h *ResourceHandlers) readTasks(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	partners, err := crm.LoadPartners(ctx, h.store)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	today := h.today()
	all := tasks.Global(partners)
	return jsonResource(uri, ListTasksOutput{
		Tasks:  itemsToOutput(tasks.Apply(all, tasks.Filter{}), today),
		Counts: countsToOutput(tasks.Count(all, today)),
	})
}

func (h *ResourceHandlers) readPipeline(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	partners, err := crm.LoadPartners(ctx, h.store)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partners: %w", err)
	}
	return jsonResource(uri, viz.Summarize(partners))
}
