// ABOUTME: MCP server assembly for the school partner CRM
// ABOUTME: Registers every tool, resource, and prompt against one record store
package handlers

import (
	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Options configures NewServer. Calendar may be nil.
type Options struct {
	Store     *db.Store
	Calendar  *calendar.Client
	StaffLead string
	Version   string
}

// NewServer returns an MCP server with all CRM tools, resources, and prompts
// registered. The caller picks the transport.
func NewServer(opts Options) *mcp.Server {
	partnerHandlers := NewPartnerHandlers(opts.Store, opts.Calendar, opts.StaffLead)
	taskHandlers := NewTaskHandlers(opts.Store)
	vizHandlers := NewVizHandlers(opts.Store)
	resourceHandlers := NewResourceHandlers(opts.Store, opts.Calendar)
	promptHandlers := NewPromptHandlers(opts.Store, opts.Calendar)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "schoolcrm",
		Version: opts.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_partner",
		Description: "Add a new school partner to the CRM with the default onboarding checklist",
	}, partnerHandlers.AddPartner)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_partners",
		Description: "Search for partners by name or district, optionally filtered by pipeline status",
	}, partnerHandlers.FindPartners)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_partner",
		Description: "Get a partner with contacts, notes, unified tasks, onboarding progress, and next action",
	}, partnerHandlers.GetPartner)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update_partner",
		Description: "Update a partner's fields; omitted fields are left unchanged and empty dates are cleared",
	}, partnerHandlers.UpdatePartner)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_note",
		Description: "Log a touchpoint on a partner, optionally with a follow-up task",
	}, partnerHandlers.AddNote)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_contact",
		Description: "Add a contact to a partner",
	}, partnerHandlers.AddContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_primary_contact",
		Description: "Make a contact the only primary contact for its partner",
	}, partnerHandlers.SetPrimaryContact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List tasks, follow-ups, and dated onboarding items across all partners with filters",
	}, taskHandlers.ListTasks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_task_status",
		Description: "Set the status of a task or follow-up",
	}, taskHandlers.SetTaskStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pipeline_summary",
		Description: "Summarize partners by pipeline stage with an ASCII dashboard and optional DOT graph",
	}, vizHandlers.PipelineSummary)

	server.AddResource(&mcp.Resource{
		URI:         "crm://partners",
		Name:        "partners",
		Description: "All partners",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "crm://partners/{id}",
		Name:        "partner",
		Description: "One partner with contacts, notes, tasks, and onboarding",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "crm://tasks",
		Name:        "tasks",
		Description: "Active tasks across all partners with urgency counts",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "crm://pipeline",
		Name:        "pipeline",
		Description: "Partner counts and contract value by pipeline stage",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "partner-summary",
		Description: "Summarize a partner's status, contacts, notes, and next steps",
		Arguments: []*mcp.PromptArgument{
			{Name: "partner_id", Description: "Partner UUID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-suggestions",
		Description: "Suggest which overdue and due-today follow-ups to handle first",
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "pipeline-review",
		Description: "Review pipeline distribution and stalled stages",
	}, promptHandlers.GetPrompt)

	return server
}
