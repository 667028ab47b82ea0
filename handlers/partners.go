// ABOUTME: Partner MCP tool handlers
// ABOUTME: Implements add/find/get/update partner plus notes, contacts, and primary contact tools
package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errPartnerNotFound = errors.New("partner not found")

type PartnerHandlers struct {
	store     *db.Store
	calendar  *calendar.Client
	staffLead string
}

// NewPartnerHandlers builds the partner tools. cal may be nil, in which case
// next actions fall back to stored dates.
func NewPartnerHandlers(store *db.Store, cal *calendar.Client, staffLead string) *PartnerHandlers {
	return &PartnerHandlers{store: store, calendar: cal, staffLead: staffLead}
}

func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return id, nil
}

// parseDateField maps nil to untouched, "" to cleared, and anything else to a
// YYYY-MM-DD date.
func parseDateField(field string, value *string) (*models.DateField, error) {
	if value == nil {
		return nil, nil
	}
	if *value == "" {
		return models.ClearDate(), nil
	}
	d, err := models.ParseDate(*value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return models.SetDate(d), nil
}

func openView(ctx context.Context, store crm.Store, partnerID string) (*crm.PartnerView, error) {
	id, err := parseID("partner_id", partnerID)
	if err != nil {
		return nil, err
	}
	v := crm.NewPartnerView(ctx, store, id)
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

type AddPartnerInput struct {
	Name         string `json:"name" jsonschema:"School or district name (required)"`
	Status       string `json:"status,omitempty" jsonschema:"Pipeline status (default New Lead)"`
	LeadSource   string `json:"lead_source,omitempty" jsonschema:"Inbound, Referral, Conference, Outbound, Partner Network, or Other"`
	Priority     string `json:"priority,omitempty" jsonschema:"High, Medium, or Low (default Medium)"`
	District     string `json:"district,omitempty" jsonschema:"District name"`
	City         string `json:"city,omitempty" jsonschema:"City"`
	State        string `json:"state,omitempty" jsonschema:"State"`
	StudentCount int    `json:"student_count,omitempty" jsonschema:"Number of students"`
	StaffLead    string `json:"staff_lead,omitempty" jsonschema:"Owning staff member"`
	Summary      string `json:"summary,omitempty" jsonschema:"Short account summary"`
	NextFollowUp string `json:"next_follow_up,omitempty" jsonschema:"Next follow-up date (YYYY-MM-DD)"`
}

func (h *PartnerHandlers) AddPartner(ctx context.Context, _ *mcp.CallToolRequest, input AddPartnerInput) (*mcp.CallToolResult, PartnerOutput, error) {
	followUp, err := models.ParseDatePtr(input.NextFollowUp)
	if err != nil {
		return nil, PartnerOutput{}, fmt.Errorf("invalid next_follow_up: %w", err)
	}
	if input.StaffLead == "" {
		input.StaffLead = h.staffLead
	}

	dir := crm.NewDirectory(ctx, h.store)
	defer dir.Close()

	p, err := dir.CreatePartner(ctx, crm.PartnerInput{
		Name:         input.Name,
		Status:       input.Status,
		LeadSource:   input.LeadSource,
		Priority:     input.Priority,
		District:     input.District,
		City:         input.City,
		State:        input.State,
		StudentCount: input.StudentCount,
		StaffLead:    input.StaffLead,
		Summary:      input.Summary,
		NextFollowUp: followUp,
	})
	if err != nil {
		return nil, PartnerOutput{}, fmt.Errorf("failed to create partner: %w", err)
	}
	return nil, partnerToOutput(p), nil
}

type FindPartnersInput struct {
	Query  string `json:"query,omitempty" jsonschema:"Search query (matches name and district)"`
	Status string `json:"status,omitempty" jsonschema:"Exact pipeline status filter"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum number of results (default 10)"`
}

type FindPartnersOutput struct {
	Partners []PartnerOutput `json:"partners"`
}

func (h *PartnerHandlers) FindPartners(ctx context.Context, _ *mcp.CallToolRequest, input FindPartnersInput) (*mcp.CallToolResult, FindPartnersOutput, error) {
	if input.Status != "" && !models.IsValidStatus(input.Status) {
		return nil, FindPartnersOutput{}, fmt.Errorf("invalid status: %s", input.Status)
	}
	limit := input.Limit
	if limit == 0 {
		limit = 10
	}

	partners, err := h.store.FindPartners(ctx, input.Query, input.Status, limit)
	if err != nil {
		return nil, FindPartnersOutput{}, fmt.Errorf("failed to find partners: %w", err)
	}
	return nil, FindPartnersOutput{Partners: partnersToOutput(partners)}, nil
}

type GetPartnerInput struct {
	PartnerID string `json:"partner_id" jsonschema:"Partner UUID (required)"`
}

type PartnerDetailOutput struct {
	Partner    PartnerOutput      `json:"partner"`
	Contacts   []ContactOutput    `json:"contacts"`
	Notes      []NoteOutput       `json:"notes"`
	Tasks      []TaskOutput       `json:"tasks"`
	Onboarding []OnboardingOutput `json:"onboarding"`
	Progress   ProgressOutput     `json:"onboarding_progress"`
	NextAction NextActionOutput   `json:"next_action"`
}

func (h *PartnerHandlers) GetPartner(ctx context.Context, _ *mcp.CallToolRequest, input GetPartnerInput) (*mcp.CallToolResult, PartnerDetailOutput, error) {
	v, err := openView(ctx, h.store, input.PartnerID)
	if err != nil {
		return nil, PartnerDetailOutput{}, err
	}
	defer v.Close()
	return nil, h.detail(ctx, v), nil
}

func (h *PartnerHandlers) detail(ctx context.Context, v *crm.PartnerView) PartnerDetailOutput {
	p := v.Partner()
	progress := v.Progress()

	out := PartnerDetailOutput{
		Partner:    partnerToOutput(p),
		Contacts:   make([]ContactOutput, len(p.Contacts)),
		Notes:      make([]NoteOutput, len(p.Notes)),
		Tasks:      itemsToOutput(v.Tasks(), models.Today()),
		Onboarding: onboardingToOutput(p.Onboarding),
		Progress:   ProgressOutput{Completed: progress.Completed, Total: progress.Total, Percent: progress.Percent()},
		NextAction: nextActionToOutput(calendar.ResolveNextAction(p, h.calendar.MeetingFor(ctx, p))),
	}
	for i := range p.Contacts {
		out.Contacts[i] = contactToOutput(&p.Contacts[i])
	}
	for i := range p.Notes {
		out.Notes[i] = noteToOutput(&p.Notes[i])
	}
	return out
}

type UpdatePartnerInput struct {
	PartnerID         string  `json:"partner_id" jsonschema:"Partner UUID (required)"`
	Name              *string `json:"name,omitempty" jsonschema:"New name"`
	Status            *string `json:"status,omitempty" jsonschema:"New pipeline status"`
	Priority          *string `json:"priority,omitempty" jsonschema:"High, Medium, or Low"`
	LeadSource        *string `json:"lead_source,omitempty" jsonschema:"Lead source"`
	OnboardingStep    *string `json:"onboarding_step,omitempty" jsonschema:"Onboarding step"`
	PartnershipHealth *string `json:"partnership_health,omitempty" jsonschema:"Healthy, Needs Attention, or At Risk"`
	StaffLead         *string `json:"staff_lead,omitempty" jsonschema:"Owning staff member"`
	Summary           *string `json:"summary,omitempty" jsonschema:"Account summary"`
	ContractValue     *int64  `json:"contract_value,omitempty" jsonschema:"Contract value in cents"`
	NextFollowUp      *string `json:"next_follow_up,omitempty" jsonschema:"Next follow-up date (YYYY-MM-DD, empty clears)"`
	ProposalDeadline  *string `json:"proposal_deadline,omitempty" jsonschema:"Proposal deadline (YYYY-MM-DD, empty clears)"`
	LastContact       *string `json:"last_contact,omitempty" jsonschema:"Last contact date (YYYY-MM-DD, empty clears)"`
}

func (in UpdatePartnerInput) patch() (models.PartnerPatch, error) {
	patch := models.PartnerPatch{
		Name:              in.Name,
		Status:            in.Status,
		Priority:          in.Priority,
		LeadSource:        in.LeadSource,
		OnboardingStep:    in.OnboardingStep,
		PartnershipHealth: in.PartnershipHealth,
		StaffLead:         in.StaffLead,
		Summary:           in.Summary,
		ContractValue:     in.ContractValue,
	}
	var err error
	if patch.NextFollowUp, err = parseDateField("next_follow_up", in.NextFollowUp); err != nil {
		return patch, err
	}
	if patch.ProposalDeadline, err = parseDateField("proposal_deadline", in.ProposalDeadline); err != nil {
		return patch, err
	}
	if patch.LastContact, err = parseDateField("last_contact", in.LastContact); err != nil {
		return patch, err
	}
	return patch, nil
}

func (h *PartnerHandlers) UpdatePartner(ctx context.Context, _ *mcp.CallToolRequest, input UpdatePartnerInput) (*mcp.CallToolResult, PartnerOutput, error) {
	patch, err := input.patch()
	if err != nil {
		return nil, PartnerOutput{}, err
	}

	v, err := openView(ctx, h.store, input.PartnerID)
	if err != nil {
		return nil, PartnerOutput{}, err
	}
	defer v.Close()

	if err := v.UpdateFields(ctx, patch); err != nil {
		return nil, PartnerOutput{}, fmt.Errorf("failed to update partner: %w", err)
	}
	return nil, partnerToOutput(v.Partner()), nil
}

type AddNoteInput struct {
	PartnerID   string `json:"partner_id" jsonschema:"Partner UUID (required)"`
	Type        string `json:"type" jsonschema:"Call, Email, Meeting, Site Visit, or Internal Note (required)"`
	Date        string `json:"date,omitempty" jsonschema:"Touchpoint date (YYYY-MM-DD, default today)"`
	Author      string `json:"author,omitempty" jsonschema:"Who wrote the note"`
	Content     string `json:"content,omitempty" jsonschema:"Note body"`
	FollowUp    string `json:"follow_up,omitempty" jsonschema:"Follow-up task text to attach to the note"`
	FollowUpDue string `json:"follow_up_due,omitempty" jsonschema:"Follow-up due date (YYYY-MM-DD)"`
}

func (h *PartnerHandlers) AddNote(ctx context.Context, _ *mcp.CallToolRequest, input AddNoteInput) (*mcp.CallToolResult, NoteOutput, error) {
	in := crm.NoteInput{Type: input.Type, Author: input.Author, Content: input.Content}
	if input.Date != "" {
		d, err := models.ParseDate(input.Date)
		if err != nil {
			return nil, NoteOutput{}, fmt.Errorf("invalid date: %w", err)
		}
		in.Date = d
	}
	if input.FollowUp != "" {
		due, err := models.ParseDatePtr(input.FollowUpDue)
		if err != nil {
			return nil, NoteOutput{}, fmt.Errorf("invalid follow_up_due: %w", err)
		}
		in.FollowUp = &crm.TaskInput{Task: input.FollowUp, DueDate: due}
	}

	v, err := openView(ctx, h.store, input.PartnerID)
	if err != nil {
		return nil, NoteOutput{}, err
	}
	defer v.Close()

	note, err := v.AddNote(ctx, in)
	if err != nil {
		return nil, NoteOutput{}, fmt.Errorf("failed to add note: %w", err)
	}
	return nil, noteToOutput(note), nil
}

type AddContactInput struct {
	PartnerID string `json:"partner_id" jsonschema:"Partner UUID (required)"`
	Name      string `json:"name" jsonschema:"Contact name (required)"`
	Email     string `json:"email" jsonschema:"Email address (required)"`
	Role      string `json:"role,omitempty" jsonschema:"Role at the school"`
	Phone     string `json:"phone,omitempty" jsonschema:"Phone number"`
	IsPrimary bool   `json:"is_primary,omitempty" jsonschema:"Make this the primary contact"`
}

func (h *PartnerHandlers) AddContact(ctx context.Context, _ *mcp.CallToolRequest, input AddContactInput) (*mcp.CallToolResult, ContactOutput, error) {
	v, err := openView(ctx, h.store, input.PartnerID)
	if err != nil {
		return nil, ContactOutput{}, err
	}
	defer v.Close()

	c, err := v.AddContact(ctx, crm.ContactInput{
		Name:      input.Name,
		Email:     input.Email,
		Role:      input.Role,
		Phone:     input.Phone,
		IsPrimary: input.IsPrimary,
	})
	if err != nil {
		return nil, ContactOutput{}, fmt.Errorf("failed to add contact: %w", err)
	}
	return nil, contactToOutput(c), nil
}

type SetPrimaryContactInput struct {
	ContactID string `json:"contact_id" jsonschema:"Contact UUID (required)"`
}

type SetPrimaryContactOutput struct {
	ContactID string `json:"contact_id"`
	PartnerID string `json:"partner_id"`
}

func (h *PartnerHandlers) SetPrimaryContact(ctx context.Context, _ *mcp.CallToolRequest, input SetPrimaryContactInput) (*mcp.CallToolResult, SetPrimaryContactOutput, error) {
	id, err := parseID("contact_id", input.ContactID)
	if err != nil {
		return nil, SetPrimaryContactOutput{}, err
	}
	contact, err := h.store.GetContact(ctx, id)
	if err != nil {
		return nil, SetPrimaryContactOutput{}, fmt.Errorf("failed to fetch contact: %w", err)
	}
	if contact == nil {
		return nil, SetPrimaryContactOutput{}, fmt.Errorf("contact not found: %s", input.ContactID)
	}
	if err := h.store.SetPrimaryContact(ctx, id); err != nil {
		return nil, SetPrimaryContactOutput{}, fmt.Errorf("failed to set primary contact: %w", err)
	}
	return nil, SetPrimaryContactOutput{ContactID: id.String(), PartnerID: contact.PartnerID.String()}, nil
}

// openTasks counts the partner's incomplete tasks.
func openTasks(p *models.Partner) int {
	return tasks.Count(tasks.ForPartner(p), models.Today()).Open
}
