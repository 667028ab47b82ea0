// ABOUTME: Flat output shapes returned by MCP tools and resources
// ABOUTME: Ids and dates are rendered as strings so the inferred schemas stay simple
package handlers

import (
	"time"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
)

type PartnerOutput struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Status            string `json:"status"`
	Priority          string `json:"priority"`
	LeadSource        string `json:"lead_source,omitempty"`
	OnboardingStep    string `json:"onboarding_step,omitempty"`
	PartnershipHealth string `json:"partnership_health,omitempty"`
	District          string `json:"district,omitempty"`
	City              string `json:"city,omitempty"`
	State             string `json:"state,omitempty"`
	StudentCount      int    `json:"student_count,omitempty"`
	StaffLead         string `json:"staff_lead,omitempty"`
	Summary           string `json:"summary,omitempty"`
	ContractValue     int64  `json:"contract_value,omitempty"`
	LastContact       string `json:"last_contact,omitempty"`
	NextFollowUp      string `json:"next_follow_up,omitempty"`
	ProposalDeadline  string `json:"proposal_deadline,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

type ContactOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

type NoteOutput struct {
	ID        string       `json:"id"`
	Type      string       `json:"type"`
	Date      string       `json:"date"`
	Author    string       `json:"author,omitempty"`
	Content   string       `json:"content,omitempty"`
	FollowUps []TaskOutput `json:"follow_ups"`
}

type TaskOutput struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Status      string `json:"status"`
	Completed   bool   `json:"completed"`
	DueDate     string `json:"due_date,omitempty"`
	Urgency     string `json:"urgency,omitempty"`
	PartnerID   string `json:"partner_id"`
	PartnerName string `json:"partner_name,omitempty"`
}

type OnboardingOutput struct {
	ID        string `json:"id"`
	Sequence  int    `json:"sequence"`
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
	DueDate   string `json:"due_date,omitempty"`
}

type NextActionOutput struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Date  string `json:"date,omitempty"`
	Link  string `json:"link,omitempty"`
}

type ProgressOutput struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

type CountsOutput struct {
	Total    int `json:"total"`
	Open     int `json:"open"`
	Overdue  int `json:"overdue"`
	DueToday int `json:"due_today"`
}

func dateString(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func partnerToOutput(p *models.Partner) PartnerOutput {
	return PartnerOutput{
		ID:                p.ID.String(),
		Name:              p.Name,
		Status:            p.Status,
		Priority:          p.Priority,
		LeadSource:        p.LeadSource,
		OnboardingStep:    p.OnboardingStep,
		PartnershipHealth: p.PartnershipHealth,
		District:          p.District,
		City:              p.City,
		State:             p.State,
		StudentCount:      p.StudentCount,
		StaffLead:         p.StaffLead,
		Summary:           p.Summary,
		ContractValue:     p.ContractValue,
		LastContact:       dateString(p.LastContact),
		NextFollowUp:      dateString(p.NextFollowUp),
		ProposalDeadline:  dateString(p.ProposalDeadline),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         p.UpdatedAt.Format(time.RFC3339),
	}
}

func partnersToOutput(partners []models.Partner) []PartnerOutput {
	out := make([]PartnerOutput, len(partners))
	for i := range partners {
		out[i] = partnerToOutput(&partners[i])
	}
	return out
}

func contactToOutput(c *models.Contact) ContactOutput {
	return ContactOutput{
		ID:        c.ID.String(),
		Name:      c.Name,
		Role:      c.Role,
		Email:     c.Email,
		Phone:     c.Phone,
		IsPrimary: c.IsPrimary,
	}
}

func noteToOutput(n *models.Note) NoteOutput {
	out := NoteOutput{
		ID:        n.ID.String(),
		Type:      n.Type,
		Date:      n.Date.String(),
		Author:    n.Author,
		Content:   n.Content,
		FollowUps: make([]TaskOutput, len(n.FollowUps)),
	}
	for i, t := range n.FollowUps {
		out.FollowUps[i] = TaskOutput{
			Kind:      string(tasks.KindFollowUp),
			ID:        t.ID.String(),
			Title:     t.Task,
			Status:    t.Status,
			Completed: t.Completed(),
			DueDate:   dateString(t.DueDate),
			PartnerID: t.PartnerID.String(),
		}
	}
	return out
}

func itemsToOutput(items []tasks.Item, today models.Date) []TaskOutput {
	out := make([]TaskOutput, len(items))
	for i, it := range items {
		out[i] = TaskOutput{
			Kind:        string(it.Kind),
			ID:          it.ID.String(),
			Title:       it.Title,
			Status:      it.Status,
			Completed:   it.Completed,
			DueDate:     dateString(it.Due),
			Urgency:     tasks.Classify(it, today).String(),
			PartnerID:   it.PartnerID.String(),
			PartnerName: it.PartnerName,
		}
	}
	return out
}

func onboardingToOutput(checklist []models.OnboardingTask) []OnboardingOutput {
	out := make([]OnboardingOutput, len(checklist))
	for i, t := range checklist {
		out[i] = OnboardingOutput{
			ID:        t.ID.String(),
			Sequence:  t.Sequence,
			Task:      t.DisplayText(),
			Completed: t.Completed,
			DueDate:   dateString(t.DueDate),
		}
	}
	return out
}

func nextActionToOutput(a calendar.NextAction) NextActionOutput {
	out := NextActionOutput{Kind: string(a.Kind), Label: a.Label, Date: dateString(a.Date)}
	if a.Meeting != nil {
		out.Date = a.Meeting.Start
		out.Link = a.Meeting.HTMLLink
	}
	return out
}

func countsToOutput(c tasks.Counts) CountsOutput {
	return CountsOutput{Total: c.Total, Open: c.Open, Overdue: c.Overdue, DueToday: c.DueToday}
}
