// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Builds partner summary, follow-up, and pipeline review prompts from live data
package handlers

import (
	"context"
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

// recentNotes caps how many notes a partner summary includes.
const recentNotes = 5

type PromptHandlers struct {
	store    *db.Store
	calendar *calendar.Client
	today    func() models.Date
}

func NewPromptHandlers(store *db.Store, cal *calendar.Client) *PromptHandlers {
	return &PromptHandlers{store: store, calendar: cal, today: models.Today}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "partner-summary":
		return h.getPartnerSummaryPrompt(ctx, request.Params.Arguments)
	case "follow-up-suggestions":
		return h.getFollowUpSuggestionsPrompt(ctx)
	case "pipeline-review":
		return h.getPipelineReviewPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *PromptHandlers) getPartnerSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	partnerID, ok := args["partner_id"]
	if !ok {
		return nil, fmt.Errorf("partner_id is required")
	}

	v, err := openView(ctx, h.store, partnerID)
	if err != nil {
		return nil, err
	}
	defer v.Close()
	p := v.Partner()
	today := h.today()

	var b strings.Builder
	b.WriteString("Please provide a summary of this school partner:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", p.Name)
	fmt.Fprintf(&b, "Status: %s\n", p.Status)
	fmt.Fprintf(&b, "Priority: %s\n", p.Priority)
	if p.District != "" {
		fmt.Fprintf(&b, "District: %s\n", p.District)
	}
	if p.StudentCount > 0 {
		fmt.Fprintf(&b, "Students: %d\n", p.StudentCount)
	}
	if p.ContractValue > 0 {
		fmt.Fprintf(&b, "Contract Value: %s\n", viz.FormatCents(p.ContractValue))
	}
	if p.StaffLead != "" {
		fmt.Fprintf(&b, "Staff Lead: %s\n", p.StaffLead)
	}
	if p.Summary != "" {
		fmt.Fprintf(&b, "\nSummary: %s\n", p.Summary)
	}

	if c := p.PrimaryContact(); c != nil {
		fmt.Fprintf(&b, "\nPrimary Contact: %s", c.Name)
		if c.Email != "" {
			fmt.Fprintf(&b, " <%s>", c.Email)
		}
		b.WriteString("\n")
	}

	next := calendar.ResolveNextAction(p, h.calendar.MeetingFor(ctx, p))
	fmt.Fprintf(&b, "Next Action: %s\n", next)

	if len(p.Notes) > 0 {
		b.WriteString("\nRecent Notes:\n")
		for i, n := range p.Notes {
			if i == recentNotes {
				break
			}
			fmt.Fprintf(&b, "  - %s %s: %s\n", n.Date, n.Type, n.Content)
		}
	}

	counts := tasks.Count(v.Tasks(), today)
	fmt.Fprintf(&b, "\nOpen Tasks: %d (%d overdue)\n", counts.Open, counts.Overdue)
	if p.Status == models.StatusOnboarding {
		progress := v.Progress()
		fmt.Fprintf(&b, "Onboarding: %d/%d steps complete\n", progress.Completed, progress.Total)
	}

	b.WriteString("\nPlease provide:")
	b.WriteString("\n1. A brief summary of where this partnership stands")
	b.WriteString("\n2. Risks or blockers worth raising with the staff lead")
	b.WriteString("\n3. Recommended next steps")

	return userPrompt(fmt.Sprintf("Summary for partner: %s", p.Name), b.String()), nil
}

func (h *PromptHandlers) getFollowUpSuggestionsPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	partners, err := crm.LoadPartners(ctx, h.store)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partners: %w", err)
	}
	today := h.today()

	var overdue, dueToday []tasks.Item
	for _, it := range tasks.Global(partners) {
		switch tasks.Classify(it, today) {
		case tasks.UrgencyOverdue:
			overdue = append(overdue, it)
		case tasks.UrgencyDueToday:
			dueToday = append(dueToday, it)
		}
	}

	var b strings.Builder
	b.WriteString("Please review the partner follow-ups that need attention:\n\n")
	writeItems(&b, "Overdue", overdue)
	writeItems(&b, "Due Today", dueToday)

	var quiet []string
	for i := range partners {
		p := &partners[i]
		if p.NextFollowUp == nil && openTasks(p) == 0 && p.Status != models.StatusActive {
			quiet = append(quiet, p.Name)
		}
	}
	if len(quiet) > 0 {
		fmt.Fprintf(&b, "Partners with no scheduled follow-up: %s\n\n", strings.Join(quiet, ", "))
	}

	b.WriteString("Please suggest:")
	b.WriteString("\n1. Which follow-ups to prioritize today")
	b.WriteString("\n2. Draft outreach for the most overdue items")
	b.WriteString("\n3. Partners that need a follow-up scheduled")

	return userPrompt("Follow-up suggestions", b.String()), nil
}

func writeItems(b *strings.Builder, title string, items []tasks.Item) {
	fmt.Fprintf(b, "%s (%d):\n", title, len(items))
	for _, it := range items {
		fmt.Fprintf(b, "  - %s: %s", it.PartnerName, it.Title)
		if it.Due != nil {
			fmt.Fprintf(b, " (due %s)", it.Due)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (h *PromptHandlers) getPipelineReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	partners, err := crm.LoadPartners(ctx, h.store)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch partners: %w", err)
	}

	var b strings.Builder
	b.WriteString("Please review the partner pipeline:\n\n")
	for _, s := range viz.Summarize(partners) {
		fmt.Fprintf(&b, "  - %s: %d partners, %s\n", s.Status, s.Count, viz.FormatCents(s.ContractValue))
		for _, c := range s.Breakdown {
			fmt.Fprintf(&b, "      %s: %d\n", c.Name, c.Count)
		}
	}

	b.WriteString("\nPlease provide:")
	b.WriteString("\n1. Analysis of pipeline health and distribution")
	b.WriteString("\n2. Stages where partners appear stuck")
	b.WriteString("\n3. Suggestions for moving proposals to contract")

	return userPrompt("Partner pipeline review", b.String()), nil
}
