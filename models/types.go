// ABOUTME: Data models for school partner CRM entities
// ABOUTME: Defines Partner, Contact, Note, task, date, attachment, and school structs
package models

import (
	"time"

	"github.com/google/uuid"
)

// Partner is a school or district account moving through the pipeline.
// Related rows are attached by the data access layer after loading.
type Partner struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	LeadSource        string    `json:"lead_source,omitempty"`
	OnboardingStep    string    `json:"onboarding_step,omitempty"`
	PartnershipHealth string    `json:"partnership_health,omitempty"`
	RenewalStatus     string    `json:"renewal_status,omitempty"`
	Priority          string    `json:"priority"`
	StudentCount      int       `json:"student_count,omitempty"`
	StaffCount        int       `json:"staff_count,omitempty"`
	SchoolCount       int       `json:"school_count,omitempty"`
	District          string    `json:"district,omitempty"`
	Address           string    `json:"address,omitempty"`
	City              string    `json:"city,omitempty"`
	State             string    `json:"state,omitempty"`
	TimeZone          string    `json:"time_zone,omitempty"`
	SchoolType        string    `json:"school_type,omitempty"`
	Summary           string    `json:"summary,omitempty"`
	PainPoints        []string  `json:"pain_points,omitempty"`
	LastContact       *Date     `json:"last_contact,omitempty"`
	NextFollowUp      *Date     `json:"next_follow_up,omitempty"`
	ProposalDeadline  *Date     `json:"proposal_deadline,omitempty"`
	ContractValue     int64     `json:"contract_value,omitempty"` // in cents
	ContractStart     *Date     `json:"contract_start,omitempty"`
	ContractEnd       *Date     `json:"contract_end,omitempty"`
	StaffLead         string    `json:"staff_lead,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Contacts       []Contact        `json:"contacts,omitempty"`
	Notes          []Note           `json:"notes,omitempty"`
	Tasks          []FollowUpTask   `json:"tasks,omitempty"`
	Onboarding     []OnboardingTask `json:"onboarding,omitempty"`
	ImportantDates []ImportantDate  `json:"important_dates,omitempty"`
	Attachments    []Attachment     `json:"attachments,omitempty"`
	Schools        []School         `json:"schools,omitempty"`
}

// ApplyDefaults fills the fields a new partner may omit.
func (p *Partner) ApplyDefaults() {
	if p.Status == "" {
		p.Status = StatusNewLead
	}
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
}

// PrimaryContact returns the flagged primary contact, falling back to the
// first contact. Returns nil when the partner has no contacts.
func (p *Partner) PrimaryContact() *Contact {
	for i := range p.Contacts {
		if p.Contacts[i].IsPrimary {
			return &p.Contacts[i]
		}
	}
	if len(p.Contacts) > 0 {
		return &p.Contacts[0]
	}
	return nil
}

// ContactEmails returns the non-empty contact email addresses in order.
func (p *Partner) ContactEmails() []string {
	var emails []string
	for _, c := range p.Contacts {
		if c.Email != "" {
			emails = append(emails, c.Email)
		}
	}
	return emails
}

type Contact struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a touchpoint with a partner. FollowUps are owned by the note and
// are deleted with it.
type Note struct {
	ID        uuid.UUID      `json:"id"`
	PartnerID uuid.UUID      `json:"partner_id"`
	Type      string         `json:"type"`
	Date      Date           `json:"date"`
	Author    string         `json:"author,omitempty"`
	Content   string         `json:"content,omitempty"`
	FollowUps []FollowUpTask `json:"follow_ups,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// FollowUpTask is either owned by a note (NoteID set) or standalone on the
// partner. Status is authoritative; Completed is derived from it.
type FollowUpTask struct {
	ID        uuid.UUID  `json:"id"`
	PartnerID uuid.UUID  `json:"partner_id"`
	NoteID    *uuid.UUID `json:"note_id,omitempty"`
	Task      string     `json:"task"`
	DueDate   *Date      `json:"due_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (t FollowUpTask) Completed() bool {
	return t.Status == TaskStatusComplete
}

// Standalone reports whether the task belongs directly to the partner.
func (t FollowUpTask) Standalone() bool {
	return t.NoteID == nil
}

// OnboardingTask is one checklist row. Sequence controls display order.
type OnboardingTask struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Sequence  int       `json:"sequence"`
	Task      string    `json:"task"`
	Custom    bool      `json:"custom"`
	Completed bool      `json:"completed"`
	DueDate   *Date     `json:"due_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayText returns the task text, or a fill-in prompt for blank custom rows.
func (t OnboardingTask) DisplayText() string {
	if t.Task == "" {
		return OnboardingPlaceholder
	}
	return t.Task
}

type ImportantDate struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Title     string    `json:"title"`
	Date      Date      `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Attachment struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partner_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// School is a campus, optionally grouped under a district partner.
type School struct {
	ID           uuid.UUID  `json:"id"`
	PartnerID    *uuid.UUID `json:"partner_id,omitempty"`
	Name         string     `json:"name"`
	StudentCount int        `json:"student_count,omitempty"`
	StaffCount   int        `json:"staff_count,omitempty"`
	SchoolType   string     `json:"school_type,omitempty"`
	Address      string     `json:"address,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
