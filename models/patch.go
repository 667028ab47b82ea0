// ABOUTME: Partial update structs for CRM entities
// ABOUTME: Nil fields are left untouched; Apply mirrors a stored patch onto a loaded value
package models

// DateField sets or clears an optional date inside a patch.
type DateField struct {
	Date *Date
}

// SetDate returns a patch field that stores d.
func SetDate(d Date) *DateField { return &DateField{Date: &d} }

// ClearDate returns a patch field that stores NULL.
func ClearDate() *DateField { return &DateField{} }

// UnmarshalJSON accepts a YYYY-MM-DD string, or an empty string to clear.
func (f *DateField) UnmarshalJSON(data []byte) error {
	if string(data) == "null" || string(data) == `""` {
		f.Date = nil
		return nil
	}
	var d Date
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	f.Date = &d
	return nil
}

func (f DateField) MarshalJSON() ([]byte, error) {
	if f.Date == nil {
		return []byte(`""`), nil
	}
	return f.Date.MarshalJSON()
}

func applyDate(dst **Date, f *DateField) {
	if f == nil {
		return
	}
	if f.Date == nil {
		*dst = nil
		return
	}
	d := *f.Date
	*dst = &d
}

func applyString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

type PartnerPatch struct {
	Name              *string    `json:"name,omitempty"`
	Status            *string    `json:"status,omitempty"`
	LeadSource        *string    `json:"lead_source,omitempty"`
	OnboardingStep    *string    `json:"onboarding_step,omitempty"`
	PartnershipHealth *string    `json:"partnership_health,omitempty"`
	RenewalStatus     *string    `json:"renewal_status,omitempty"`
	Priority          *string    `json:"priority,omitempty"`
	StudentCount      *int       `json:"student_count,omitempty"`
	StaffCount        *int       `json:"staff_count,omitempty"`
	SchoolCount       *int       `json:"school_count,omitempty"`
	District          *string    `json:"district,omitempty"`
	Address           *string    `json:"address,omitempty"`
	City              *string    `json:"city,omitempty"`
	State             *string    `json:"state,omitempty"`
	TimeZone          *string    `json:"time_zone,omitempty"`
	SchoolType        *string    `json:"school_type,omitempty"`
	Summary           *string    `json:"summary,omitempty"`
	PainPoints        *[]string  `json:"pain_points,omitempty"`
	LastContact       *DateField `json:"last_contact,omitempty"`
	NextFollowUp      *DateField `json:"next_follow_up,omitempty"`
	ProposalDeadline  *DateField `json:"proposal_deadline,omitempty"`
	ContractValue     *int64     `json:"contract_value,omitempty"`
	ContractStart     *DateField `json:"contract_start,omitempty"`
	ContractEnd       *DateField `json:"contract_end,omitempty"`
	StaffLead         *string    `json:"staff_lead,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p PartnerPatch) Empty() bool {
	return p == PartnerPatch{}
}

func (p PartnerPatch) Apply(dst *Partner) {
	applyString(&dst.Name, p.Name)
	applyString(&dst.Status, p.Status)
	applyString(&dst.LeadSource, p.LeadSource)
	applyString(&dst.OnboardingStep, p.OnboardingStep)
	applyString(&dst.PartnershipHealth, p.PartnershipHealth)
	applyString(&dst.RenewalStatus, p.RenewalStatus)
	applyString(&dst.Priority, p.Priority)
	applyInt(&dst.StudentCount, p.StudentCount)
	applyInt(&dst.StaffCount, p.StaffCount)
	applyInt(&dst.SchoolCount, p.SchoolCount)
	applyString(&dst.District, p.District)
	applyString(&dst.Address, p.Address)
	applyString(&dst.City, p.City)
	applyString(&dst.State, p.State)
	applyString(&dst.TimeZone, p.TimeZone)
	applyString(&dst.SchoolType, p.SchoolType)
	applyString(&dst.Summary, p.Summary)
	if p.PainPoints != nil {
		dst.PainPoints = append([]string(nil), (*p.PainPoints)...)
	}
	applyDate(&dst.LastContact, p.LastContact)
	applyDate(&dst.NextFollowUp, p.NextFollowUp)
	applyDate(&dst.ProposalDeadline, p.ProposalDeadline)
	if p.ContractValue != nil {
		dst.ContractValue = *p.ContractValue
	}
	applyDate(&dst.ContractStart, p.ContractStart)
	applyDate(&dst.ContractEnd, p.ContractEnd)
	applyString(&dst.StaffLead, p.StaffLead)
}

type ContactPatch struct {
	Name  *string `json:"name,omitempty"`
	Role  *string `json:"role,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

func (p ContactPatch) Apply(dst *Contact) {
	applyString(&dst.Name, p.Name)
	applyString(&dst.Role, p.Role)
	applyString(&dst.Email, p.Email)
	applyString(&dst.Phone, p.Phone)
}

type NotePatch struct {
	Type    *string `json:"type,omitempty"`
	Date    *Date   `json:"date,omitempty"`
	Author  *string `json:"author,omitempty"`
	Content *string `json:"content,omitempty"`
}

func (p NotePatch) Apply(dst *Note) {
	applyString(&dst.Type, p.Type)
	if p.Date != nil {
		dst.Date = *p.Date
	}
	applyString(&dst.Author, p.Author)
	applyString(&dst.Content, p.Content)
}

// TaskPatch edits a follow-up or standalone task. Status changes go through
// the dedicated status update so the completed flag stays in step.
type TaskPatch struct {
	Task    *string    `json:"task,omitempty"`
	DueDate *DateField `json:"due_date,omitempty"`
	Notes   *string    `json:"notes,omitempty"`
}

func (p TaskPatch) Apply(dst *FollowUpTask) {
	applyString(&dst.Task, p.Task)
	applyDate(&dst.DueDate, p.DueDate)
	applyString(&dst.Notes, p.Notes)
}

type OnboardingPatch struct {
	Task      *string    `json:"task,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
	DueDate   *DateField `json:"due_date,omitempty"`
}

func (p OnboardingPatch) Apply(dst *OnboardingTask) {
	applyString(&dst.Task, p.Task)
	if p.Completed != nil {
		dst.Completed = *p.Completed
	}
	applyDate(&dst.DueDate, p.DueDate)
}

type ImportantDatePatch struct {
	Title *string `json:"title,omitempty"`
	Date  *Date   `json:"date,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

func (p ImportantDatePatch) Apply(dst *ImportantDate) {
	applyString(&dst.Title, p.Title)
	if p.Date != nil {
		dst.Date = *p.Date
	}
	applyString(&dst.Notes, p.Notes)
}
