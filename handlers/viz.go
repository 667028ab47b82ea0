// ABOUTME: Pipeline summary MCP handler
// ABOUTME: Provides pipeline_summary with stage counts, an ASCII dashboard, and optional DOT graph
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type VizHandlers struct {
	store *db.Store
	today func() models.Date
}

func NewVizHandlers(store *db.Store) *VizHandlers {
	return &VizHandlers{store: store, today: models.Today}
}

type PipelineSummaryInput struct {
	Graph bool `json:"graph,omitempty" jsonschema:"Include a Graphviz DOT rendering of the pipeline"`
}

type PipelineSummaryOutput struct {
	Stages        []viz.StageSummary `json:"stages"`
	TotalPartners int                `json:"total_partners"`
	Dashboard     string             `json:"dashboard"`
	DOTSource     string             `json:"dot_source,omitempty"`
	NodeCount     int                `json:"node_count,omitempty"`
	EdgeCount     int                `json:"edge_count,omitempty"`
}

func (h *VizHandlers) PipelineSummary(ctx context.Context, _ *mcp.CallToolRequest, input PipelineSummaryInput) (*mcp.CallToolResult, PipelineSummaryOutput, error) {
	partners, err := crm.LoadPartners(ctx, h.store)
	if err != nil {
		return nil, PipelineSummaryOutput{}, fmt.Errorf("failed to load partners: %w", err)
	}

	stats := viz.GenerateDashboardStats(partners, h.today())
	out := PipelineSummaryOutput{
		Stages:        stats.Pipeline,
		TotalPartners: stats.TotalPartners,
		Dashboard:     viz.RenderDashboard(stats),
	}

	if input.Graph {
		dot, err := viz.GeneratePipelineGraph(ctx, partners)
		if err != nil {
			return nil, PipelineSummaryOutput{}, fmt.Errorf("failed to generate graph: %w", err)
		}
		out.DOTSource = dot
		out.NodeCount = strings.Count(dot, "label=")
		out.EdgeCount = strings.Count(dot, "->")
	}
	return nil, out, nil
}
