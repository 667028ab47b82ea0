// ABOUTME: Input validation run before any write reaches the store
// ABOUTME: Registers CRM vocabularies as validator tags and reports field errors
package crm

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/harperreed/schoolcrm/models"
)

// ErrValidation marks errors caused by bad input rather than store failures.
var ErrValidation = errors.New("validation failed")

// ValidationError names the first offending field.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", e.Field)
	default:
		return fmt.Sprintf("%s is invalid (%s)", e.Field, e.Tag)
	}
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

var validate = newValidator()

// Validator returns the shared validator with CRM tags registered.
func Validator() *validator.Validate {
	return validate
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})

	vocab := map[string]func(string) bool{
		"pipeline_status": models.IsValidStatus,
		"lead_source":     models.IsValidLeadSource,
		"onboarding_step": models.IsValidOnboarding,
		"health":          models.IsValidHealth,
		"renewal":         models.IsValidRenewal,
		"priority":        models.IsValidPriority,
		"note_type":       models.IsValidNoteType,
		"task_status":     models.IsValidTaskStatus,
	}
	for tag, fn := range vocab {
		check := fn
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		})
	}
	return v
}

// Check validates a struct and converts the first failure.
func Check(s any) error {
	return convert(validate.Struct(s))
}

func checkVar(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ValidationError{Field: field, Tag: verrs[0].Tag()}
		}
		return err
	}
	return nil
}

func convert(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return &ValidationError{Field: f.Field(), Tag: f.Tag()}
	}
	return err
}

// PartnerInput is the create form for a partner. Only the name is required.
type PartnerInput struct {
	Name              string       `json:"name" validate:"required"`
	Status            string       `json:"status" validate:"omitempty,pipeline_status"`
	LeadSource        string       `json:"lead_source" validate:"omitempty,lead_source"`
	OnboardingStep    string       `json:"onboarding_step" validate:"omitempty,onboarding_step"`
	PartnershipHealth string       `json:"partnership_health" validate:"omitempty,health"`
	RenewalStatus     string       `json:"renewal_status" validate:"omitempty,renewal"`
	Priority          string       `json:"priority" validate:"omitempty,priority"`
	District          string       `json:"district"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	StudentCount      int          `json:"student_count" validate:"gte=0"`
	StaffCount        int          `json:"staff_count" validate:"gte=0"`
	SchoolType        string       `json:"school_type"`
	StaffLead         string       `json:"staff_lead"`
	Summary           string       `json:"summary"`
	NextFollowUp      *models.Date `json:"next_follow_up"`
}

func (in PartnerInput) partner() *models.Partner {
	return &models.Partner{
		Name:              strings.TrimSpace(in.Name),
		Status:            in.Status,
		LeadSource:        in.LeadSource,
		OnboardingStep:    in.OnboardingStep,
		PartnershipHealth: in.PartnershipHealth,
		RenewalStatus:     in.RenewalStatus,
		Priority:          in.Priority,
		District:          in.District,
		City:              in.City,
		State:             in.State,
		StudentCount:      in.StudentCount,
		StaffCount:        in.StaffCount,
		SchoolType:        in.SchoolType,
		StaffLead:         in.StaffLead,
		Summary:           in.Summary,
		NextFollowUp:      in.NextFollowUp,
	}
}

type ContactInput struct {
	Name      string `json:"name" validate:"required"`
	Role      string `json:"role"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	IsPrimary bool   `json:"is_primary"`
}

type TaskInput struct {
	Task    string       `json:"task" validate:"required"`
	DueDate *models.Date `json:"due_date"`
	Notes   string       `json:"notes"`
	Status  string       `json:"status" validate:"omitempty,task_status"`
}

func (in TaskInput) task() *models.FollowUpTask {
	return &models.FollowUpTask{
		Task:    strings.TrimSpace(in.Task),
		DueDate: in.DueDate,
		Notes:   in.Notes,
		Status:  in.Status,
	}
}

// NoteInput adds a touchpoint. FollowUp, when set, becomes a task owned by
// the new note.
type NoteInput struct {
	Type     string      `json:"type" validate:"required,note_type"`
	Date     models.Date `json:"date"`
	Author   string      `json:"author"`
	Content  string      `json:"content"`
	FollowUp *TaskInput  `json:"follow_up" validate:"omitempty"`
}

type ImportantDateInput struct {
	Title string      `json:"title" validate:"required"`
	Date  models.Date `json:"date"`
	Notes string      `json:"notes"`
}

type AttachmentInput struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
	Type string `json:"type" validate:"required,oneof=file link"`
}

func requireDate(field string, d models.Date) error {
	if d.IsZero() {
		return &ValidationError{Field: field, Tag: "required"}
	}
	return nil
}

func checkPartnerPatch(p models.PartnerPatch) error {
	checks := []struct {
		field string
		value *string
		tag   string
	}{
		{"name", p.Name, "required"},
		{"status", p.Status, "pipeline_status"},
		{"priority", p.Priority, "priority"},
		{"lead_source", p.LeadSource, "omitempty,lead_source"},
		{"onboarding_step", p.OnboardingStep, "omitempty,onboarding_step"},
		{"partnership_health", p.PartnershipHealth, "omitempty,health"},
		{"renewal_status", p.RenewalStatus, "omitempty,renewal"},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := checkVar(c.field, strings.TrimSpace(*c.value), c.tag); err != nil {
			return err
		}
	}
	for field, n := range map[string]*int{"student_count": p.StudentCount, "staff_count": p.StaffCount, "school_count": p.SchoolCount} {
		if n != nil && *n < 0 {
			return &ValidationError{Field: field, Tag: "gte"}
		}
	}
	return nil
}

func checkContactPatch(p models.ContactPatch) error {
	if p.Name != nil {
		if err := checkVar("name", strings.TrimSpace(*p.Name), "required"); err != nil {
			return err
		}
	}
	if p.Email != nil {
		if err := checkVar("email", *p.Email, "required,email"); err != nil {
			return err
		}
	}
	return nil
}
