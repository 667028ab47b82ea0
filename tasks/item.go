// ABOUTME: Unified task item spanning standalone, follow-up, and onboarding tasks
// ABOUTME: Tagged by kind with partner and parent-note provenance attached
package tasks

import (
	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/models"
)

// Kind discriminates where an Item came from.
type Kind string

const (
	KindTask       Kind = "task"
	KindFollowUp   Kind = "followup"
	KindOnboarding Kind = "onboarding"
)

// ParseKind accepts a kind name, returning false for anything else.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindTask, KindFollowUp, KindOnboarding:
		return Kind(s), true
	}
	return "", false
}

// Item is one row of a merged task list.
type Item struct {
	Kind        Kind         `json:"kind"`
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Due         *models.Date `json:"due_date,omitempty"`
	Status      string       `json:"status"`
	Completed   bool         `json:"completed"`
	Notes       string       `json:"notes,omitempty"`
	PartnerID   uuid.UUID    `json:"partner_id"`
	PartnerName string       `json:"partner_name"`
	Owner       string       `json:"owner,omitempty"`
	NoteID      *uuid.UUID   `json:"note_id,omitempty"`
	NoteDate    *models.Date `json:"note_date,omitempty"`
	Sequence    int          `json:"sequence,omitempty"`
}

// FromTask builds an item from a standalone task (note nil) or a note's
// follow-up task.
func FromTask(p *models.Partner, t models.FollowUpTask, note *models.Note) Item {
	it := Item{
		Kind:        KindTask,
		ID:          t.ID,
		Title:       t.Task,
		Due:         t.DueDate,
		Status:      t.Status,
		Completed:   t.Completed(),
		Notes:       t.Notes,
		PartnerID:   p.ID,
		PartnerName: p.Name,
		Owner:       p.StaffLead,
	}
	if note != nil {
		noteID := note.ID
		noteDate := note.Date
		it.Kind = KindFollowUp
		it.NoteID = &noteID
		it.NoteDate = &noteDate
	}
	return it
}

// FromOnboarding builds an item from a checklist row. Checklist rows carry no
// status of their own, so it is derived from the completed flag.
func FromOnboarding(p *models.Partner, t models.OnboardingTask) Item {
	status := models.TaskStatusNotStarted
	if t.Completed {
		status = models.TaskStatusComplete
	}
	return Item{
		Kind:        KindOnboarding,
		ID:          t.ID,
		Title:       t.DisplayText(),
		Due:         t.DueDate,
		Status:      status,
		Completed:   t.Completed,
		PartnerID:   p.ID,
		PartnerName: p.Name,
		Owner:       p.StaffLead,
		Sequence:    t.Sequence,
	}
}
