// ABOUTME: Task MCP tool handlers
// ABOUTME: Implements list_tasks over the merged task list and set_task_status
package handlers

import (
	"context"
	"fmt"

	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type TaskHandlers struct {
	store *db.Store
	today func() models.Date
}

func NewTaskHandlers(store *db.Store) *TaskHandlers {
	return &TaskHandlers{store: store, today: models.Today}
}

type ListTasksInput struct {
	Search    string `json:"search,omitempty" jsonschema:"Matches task text or partner name"`
	Status    string `json:"status,omitempty" jsonschema:"active (default), all, or an exact task status"`
	Type      string `json:"type,omitempty" jsonschema:"task, followup, onboarding, or all"`
	PartnerID string `json:"partner_id,omitempty" jsonschema:"Only tasks for this partner UUID"`
	Owner     string `json:"owner,omitempty" jsonschema:"Only tasks for partners owned by this staff lead"`
}

type ListTasksOutput struct {
	Tasks  []TaskOutput `json:"tasks"`
	Counts CountsOutput `json:"counts"`
}

func (h *TaskHandlers) ListTasks(ctx context.Context, _ *mcp.CallToolRequest, input ListTasksInput) (*mcp.CallToolResult, ListTasksOutput, error) {
	if input.Type != "" && input.Type != tasks.FilterAll {
		if _, ok := tasks.ParseKind(input.Type); !ok {
			return nil, ListTasksOutput{}, fmt.Errorf("invalid type: %s (valid: task, followup, onboarding, all)", input.Type)
		}
	}

	partners, err := crm.LoadPartners(ctx, h.store)
	if err != nil {
		return nil, ListTasksOutput{}, fmt.Errorf("failed to load tasks: %w", err)
	}

	today := h.today()
	all := tasks.Global(partners)
	filtered := tasks.Apply(all, tasks.Filter{
		Search:  input.Search,
		Status:  input.Status,
		Type:    input.Type,
		Partner: input.PartnerID,
		Owner:   input.Owner,
	})
	return nil, ListTasksOutput{
		Tasks:  itemsToOutput(filtered, today),
		Counts: countsToOutput(tasks.Count(all, today)),
	}, nil
}

type SetTaskStatusInput struct {
	Kind   string `json:"kind" jsonschema:"task, followup, or onboarding (required)"`
	TaskID string `json:"task_id" jsonschema:"Task UUID (required)"`
	Status string `json:"status" jsonschema:"Not Started, In Progress, Waiting, Paused, or Complete (required)"`
}

type SetTaskStatusOutput struct {
	Kind    string `json:"kind"`
	TaskID  string `json:"task_id"`
	Status  string `json:"status"`
	Applied bool   `json:"applied"`
}

// SetTaskStatus writes a status for a task or follow-up. Onboarding rows are
// toggled from their checklist, so the call succeeds without applying.
func (h *TaskHandlers) SetTaskStatus(ctx context.Context, _ *mcp.CallToolRequest, input SetTaskStatusInput) (*mcp.CallToolResult, SetTaskStatusOutput, error) {
	kind, ok := tasks.ParseKind(input.Kind)
	if !ok {
		return nil, SetTaskStatusOutput{}, fmt.Errorf("invalid kind: %s", input.Kind)
	}
	if !models.IsValidTaskStatus(input.Status) {
		return nil, SetTaskStatusOutput{}, fmt.Errorf("invalid status: %s", input.Status)
	}
	id, err := parseID("task_id", input.TaskID)
	if err != nil {
		return nil, SetTaskStatusOutput{}, err
	}

	applied, err := tasks.SetStatus(ctx, h.store, tasks.Item{Kind: kind, ID: id}, input.Status)
	if err != nil {
		return nil, SetTaskStatusOutput{}, err
	}
	return nil, SetTaskStatusOutput{
		Kind:    string(kind),
		TaskID:  id.String(),
		Status:  input.Status,
		Applied: applied,
	}, nil
}
