// ABOUTME: Detail-screen state for one partner with write-through mutations
// ABOUTME: Each mutation writes once to the store, then patches local state on success
package crm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
)

var (
	// ErrViewClosed is returned when a result arrives after Close.
	ErrViewClosed = errors.New("view closed")
	// ErrNotLoaded is returned by mutations before a successful Refresh.
	ErrNotLoaded = errors.New("partner not loaded")
	// ErrNotOwned is returned when a row id is not one of the view's partner's rows.
	ErrNotOwned = errors.New("does not belong to this partner")
)

// notOwned also matches db.ErrNotFound so edges report it as a missing row.
func notOwned(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s %w: %w", kind, id, ErrNotOwned, db.ErrNotFound)
}

// PartnerView holds the hydrated partner behind a detail screen. Requests
// issued through it are tied to the view's lifetime: after Close, late
// results are dropped instead of applied.
type PartnerView struct {
	store  Store
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	partner *models.Partner
}

// NewPartnerView creates an empty view. Call Refresh to load it.
func NewPartnerView(parent context.Context, store Store, id uuid.UUID) *PartnerView {
	ctx, cancel := context.WithCancel(parent)
	return &PartnerView{store: store, id: id, ctx: ctx, cancel: cancel}
}

// Close cancels outstanding requests and stops further updates.
func (v *PartnerView) Close() {
	v.cancel()
}

func (v *PartnerView) ID() uuid.UUID { return v.id }

// Refresh reloads the partner. found is false when the partner does not
// exist, which is not an error.
func (v *PartnerView) Refresh(ctx context.Context) (found bool, err error) {
	if v.ctx.Err() != nil {
		return false, ErrViewClosed
	}
	ctx, stop := v.bind(ctx)
	defer stop()

	p, err := LoadPartner(ctx, v.store, v.id)
	if err != nil {
		if v.ctx.Err() != nil {
			return false, ErrViewClosed
		}
		return false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ctx.Err() != nil {
		return false, ErrViewClosed
	}
	v.partner = p
	return p != nil, nil
}

// Partner returns a copy of the current state, or nil if not loaded or not found.
func (v *PartnerView) Partner() *models.Partner {
	v.mu.Lock()
	defer v.mu.Unlock()
	return clonePartner(v.partner)
}

// Tasks returns the unified standalone and follow-up task list.
func (v *PartnerView) Tasks() []tasks.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.partner == nil {
		return nil
	}
	return tasks.ForPartner(v.partner)
}

// Progress returns onboarding checklist completion.
func (v *PartnerView) Progress() tasks.Progress {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.partner == nil {
		return tasks.Progress{}
	}
	return tasks.ChecklistProgress(v.partner.Onboarding)
}

// bind merges the caller's context with the view lifetime.
func (v *PartnerView) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(v.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// mutate runs write against the store and, if it succeeds while the view is
// still open, applies patch to the local partner.
func (v *PartnerView) mutate(ctx context.Context, write func(context.Context, *models.Partner) error, patch func(*models.Partner)) error {
	if v.ctx.Err() != nil {
		return ErrViewClosed
	}
	v.mu.Lock()
	loaded := v.partner != nil
	v.mu.Unlock()
	if !loaded {
		return ErrNotLoaded
	}

	ctx, stop := v.bind(ctx)
	defer stop()

	if err := write(ctx, v.Partner()); err != nil {
		if v.ctx.Err() != nil {
			return ErrViewClosed
		}
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ctx.Err() != nil || v.partner == nil {
		return nil
	}
	patch(v.partner)
	return nil
}

// UpdateFields applies a partial change to the partner's own fields.
func (v *PartnerView) UpdateFields(ctx context.Context, patch models.PartnerPatch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}
	if err := checkPartnerPatch(patch); err != nil {
		return err
	}
	if patch.Empty() {
		return nil
	}
	return v.mutate(ctx,
		func(ctx context.Context, _ *models.Partner) error {
			return v.store.UpdatePartner(ctx, v.id, patch)
		},
		func(p *models.Partner) { patch.Apply(p) },
	)
}

// AddNote records a touchpoint. An inline follow-up is created in the same
// write, owned by the new note.
func (v *PartnerView) AddNote(ctx context.Context, in NoteInput) (*models.Note, error) {
	if in.FollowUp != nil {
		in.FollowUp.Task = strings.TrimSpace(in.FollowUp.Task)
	}
	if err := Check(in); err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = models.Today()
	}

	note := &models.Note{PartnerID: v.id, Type: in.Type, Date: in.Date, Author: in.Author, Content: in.Content}
	var followUp *models.FollowUpTask
	if in.FollowUp != nil {
		followUp = in.FollowUp.task()
	}

	err := v.mutate(ctx,
		func(ctx context.Context, _ *models.Partner) error {
			return v.store.CreateNote(ctx, note, followUp)
		},
		func(p *models.Partner) {
			p.Notes = append([]models.Note{*note}, p.Notes...)
			slices.SortStableFunc(p.Notes, func(a, b models.Note) int { return b.Date.Compare(a.Date) })
		},
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (v *PartnerView) UpdateNote(ctx context.Context, id uuid.UUID, patch models.NotePatch) error {
	if patch.Type != nil {
		if err := checkVar("type", *patch.Type, "note_type"); err != nil {
			return err
		}
	}
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if noteIndex(p, id) < 0 {
				return notOwned("note", id)
			}
			return v.store.UpdateNote(ctx, id, patch)
		},
		func(p *models.Partner) {
			if i := noteIndex(p, id); i >= 0 {
				patch.Apply(&p.Notes[i])
			}
		},
	)
}

// DeleteNote removes a note and its follow-ups.
func (v *PartnerView) DeleteNote(ctx context.Context, id uuid.UUID) error {
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if noteIndex(p, id) < 0 {
				return notOwned("note", id)
			}
			return v.store.DeleteNote(ctx, id)
		},
		func(p *models.Partner) {
			p.Notes = slices.DeleteFunc(p.Notes, func(n models.Note) bool { return n.ID == id })
		},
	)
}

// AddTask creates a standalone task on the partner.
func (v *PartnerView) AddTask(ctx context.Context, in TaskInput) (*models.FollowUpTask, error) {
	in.Task = strings.TrimSpace(in.Task)
	if err := Check(in); err != nil {
		return nil, err
	}
	t := in.task()
	t.PartnerID = v.id

	err := v.mutate(ctx,
		func(ctx context.Context, _ *models.Partner) error {
			return v.store.CreateTask(ctx, t)
		},
		func(p *models.Partner) { p.Tasks = append(p.Tasks, *t) },
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// AddFollowUp attaches a new task to an existing note.
func (v *PartnerView) AddFollowUp(ctx context.Context, noteID uuid.UUID, in TaskInput) (*models.FollowUpTask, error) {
	in.Task = strings.TrimSpace(in.Task)
	if err := Check(in); err != nil {
		return nil, err
	}
	t := in.task()
	t.PartnerID = v.id
	t.NoteID = &noteID

	err := v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if noteIndex(p, noteID) < 0 {
				return notOwned("note", noteID)
			}
			return v.store.CreateTask(ctx, t)
		},
		func(p *models.Partner) {
			if i := noteIndex(p, noteID); i >= 0 {
				p.Notes[i].FollowUps = append(p.Notes[i].FollowUps, *t)
			}
		},
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (v *PartnerView) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) error {
	if patch.Task != nil {
		if err := checkVar("task", strings.TrimSpace(*patch.Task), "required"); err != nil {
			return err
		}
	}
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if findTask(p, id) == nil {
				return notOwned("task", id)
			}
			return v.store.UpdateTask(ctx, id, patch)
		},
		func(p *models.Partner) {
			if t := findTask(p, id); t != nil {
				patch.Apply(t)
			}
		},
	)
}

// SetTaskStatus changes a standalone or follow-up task's status; the stored
// completed flag follows it.
func (v *PartnerView) SetTaskStatus(ctx context.Context, id uuid.UUID, status string) error {
	if err := checkVar("status", status, "required,task_status"); err != nil {
		return err
	}
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if findTask(p, id) == nil {
				return notOwned("task", id)
			}
			return v.store.UpdateTaskStatus(ctx, id, status)
		},
		func(p *models.Partner) {
			if t := findTask(p, id); t != nil {
				t.Status = status
			}
		},
	)
}

// CompleteTask is the checkbox shorthand for SetTaskStatus.
func (v *PartnerView) CompleteTask(ctx context.Context, id uuid.UUID, done bool) error {
	status := models.TaskStatusNotStarted
	if done {
		status = models.TaskStatusComplete
	}
	return v.SetTaskStatus(ctx, id, status)
}

func (v *PartnerView) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if findTask(p, id) == nil {
				return notOwned("task", id)
			}
			return v.store.DeleteTask(ctx, id)
		},
		func(p *models.Partner) {
			match := func(t models.FollowUpTask) bool { return t.ID == id }
			p.Tasks = slices.DeleteFunc(p.Tasks, match)
			for i := range p.Notes {
				p.Notes[i].FollowUps = slices.DeleteFunc(p.Notes[i].FollowUps, match)
			}
		},
	)
}

// AddContact creates a contact. Adding one as primary clears the previous
// primary in the same write.
func (v *PartnerView) AddContact(ctx context.Context, in ContactInput) (*models.Contact, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if err := Check(in); err != nil {
		return nil, err
	}
	c := &models.Contact{
		PartnerID: v.id,
		Name:      strings.TrimSpace(in.Name),
		Role:      in.Role,
		Email:     strings.TrimSpace(in.Email),
		Phone:     in.Phone,
		IsPrimary: in.IsPrimary,
	}

	err := v.mutate(ctx,
		func(ctx context.Context, _ *models.Partner) error {
			return v.store.CreateContact(ctx, c)
		},
		func(p *models.Partner) {
			if c.IsPrimary {
				clearPrimary(p)
			}
			p.Contacts = append(p.Contacts, *c)
		},
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (v *PartnerView) UpdateContact(ctx context.Context, id uuid.UUID, patch models.ContactPatch) error {
	if err := checkContactPatch(patch); err != nil {
		return err
	}
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if !hasContact(p, id) {
				return notOwned("contact", id)
			}
			return v.store.UpdateContact(ctx, id, patch)
		},
		func(p *models.Partner) {
			for i := range p.Contacts {
				if p.Contacts[i].ID == id {
					patch.Apply(&p.Contacts[i])
				}
			}
		},
	)
}

func (v *PartnerView) DeleteContact(ctx context.Context, id uuid.UUID) error {
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if !hasContact(p, id) {
				return notOwned("contact", id)
			}
			return v.store.DeleteContact(ctx, id)
		},
		func(p *models.Partner) {
			p.Contacts = slices.DeleteFunc(p.Contacts, func(c models.Contact) bool { return c.ID == id })
		},
	)
}

// SetPrimaryContact makes id the partner's only primary contact.
func (v *PartnerView) SetPrimaryContact(ctx context.Context, id uuid.UUID) error {
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if !hasContact(p, id) {
				return notOwned("contact", id)
			}
			return v.store.SetPrimaryContact(ctx, id)
		},
		func(p *models.Partner) {
			clearPrimary(p)
			for i := range p.Contacts {
				if p.Contacts[i].ID == id {
					p.Contacts[i].IsPrimary = true
				}
			}
		},
	)
}

func (v *PartnerView) AddImportantDate(ctx context.Context, in ImportantDateInput) (*models.ImportantDate, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := Check(in); err != nil {
		return nil, err
	}
	if err := requireDate("date", in.Date); err != nil {
		return nil, err
	}
	d := &models.ImportantDate{PartnerID: v.id, Title: strings.TrimSpace(in.Title), Date: in.Date, Notes: in.Notes}

	err := v.mutate(ctx,
		func(ctx context.Context, _ *models.Partner) error {
			return v.store.CreateImportantDate(ctx, d)
		},
		func(p *models.Partner) {
			p.ImportantDates = append(p.ImportantDates, *d)
			slices.SortStableFunc(p.ImportantDates, func(a, b models.ImportantDate) int { return a.Date.Compare(b.Date) })
		},
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (v *PartnerView) UpdateImportantDate(ctx context.Context, id uuid.UUID, patch models.ImportantDatePatch) error {
	if patch.Title != nil {
		if err := checkVar("title", strings.TrimSpace(*patch.Title), "required"); err != nil {
			return err
		}
	}
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if !slices.ContainsFunc(p.ImportantDates, func(d models.ImportantDate) bool { return d.ID == id }) {
				return notOwned("important date", id)
			}
			return v.store.UpdateImportantDate(ctx, id, patch)
		},
		func(p *models.Partner) {
			for i := range p.ImportantDates {
				if p.ImportantDates[i].ID == id {
					patch.Apply(&p.ImportantDates[i])
				}
			}
		},
	)
}

func (v *PartnerView) DeleteImportantDate(ctx context.Context, id uuid.UUID) error {
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if !slices.ContainsFunc(p.ImportantDates, func(d models.ImportantDate) bool { return d.ID == id }) {
				return notOwned("important date", id)
			}
			return v.store.DeleteImportantDate(ctx, id)
		},
		func(p *models.Partner) {
			p.ImportantDates = slices.DeleteFunc(p.ImportantDates, func(d models.ImportantDate) bool { return d.ID == id })
		},
	)
}

func (v *PartnerView) AddAttachment(ctx context.Context, in AttachmentInput) (*models.Attachment, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Check(in); err != nil {
		return nil, err
	}
	a := &models.Attachment{PartnerID: v.id, Name: strings.TrimSpace(in.Name), URL: in.URL, Type: in.Type}

	err := v.mutate(ctx,
		func(ctx context.Context, _ *models.Partner) error {
			return v.store.CreateAttachment(ctx, a)
		},
		func(p *models.Partner) { p.Attachments = append(p.Attachments, *a) },
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (v *PartnerView) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if !slices.ContainsFunc(p.Attachments, func(a models.Attachment) bool { return a.ID == id }) {
				return notOwned("attachment", id)
			}
			return v.store.DeleteAttachment(ctx, id)
		},
		func(p *models.Partner) {
			p.Attachments = slices.DeleteFunc(p.Attachments, func(a models.Attachment) bool { return a.ID == id })
		},
	)
}

// ToggleOnboarding flips a checklist row's completed flag.
func (v *PartnerView) ToggleOnboarding(ctx context.Context, id uuid.UUID) error {
	var done bool
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			i := onboardingIndex(p, id)
			if i < 0 {
				return notOwned("onboarding task", id)
			}
			done = !p.Onboarding[i].Completed
			return v.store.UpdateOnboardingTask(ctx, id, models.OnboardingPatch{Completed: &done})
		},
		func(p *models.Partner) {
			if i := onboardingIndex(p, id); i >= 0 {
				p.Onboarding[i].Completed = done
			}
		},
	)
}

// AddOnboardingTask appends a custom checklist row. Empty text is allowed and
// shows as a placeholder until filled in.
func (v *PartnerView) AddOnboardingTask(ctx context.Context, text string) (*models.OnboardingTask, error) {
	t := &models.OnboardingTask{PartnerID: v.id, Task: strings.TrimSpace(text)}
	err := v.mutate(ctx,
		func(ctx context.Context, _ *models.Partner) error {
			return v.store.CreateOnboardingTask(ctx, t)
		},
		func(p *models.Partner) { p.Onboarding = append(p.Onboarding, *t) },
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (v *PartnerView) UpdateOnboardingTask(ctx context.Context, id uuid.UUID, patch models.OnboardingPatch) error {
	return v.mutate(ctx,
		func(ctx context.Context, p *models.Partner) error {
			if onboardingIndex(p, id) < 0 {
				return notOwned("onboarding task", id)
			}
			return v.store.UpdateOnboardingTask(ctx, id, patch)
		},
		func(p *models.Partner) {
			if i := onboardingIndex(p, id); i >= 0 {
				patch.Apply(&p.Onboarding[i])
			}
		},
	)
}

func noteIndex(p *models.Partner, id uuid.UUID) int {
	return slices.IndexFunc(p.Notes, func(n models.Note) bool { return n.ID == id })
}

func hasContact(p *models.Partner, id uuid.UUID) bool {
	return slices.ContainsFunc(p.Contacts, func(c models.Contact) bool { return c.ID == id })
}

func onboardingIndex(p *models.Partner, id uuid.UUID) int {
	return slices.IndexFunc(p.Onboarding, func(t models.OnboardingTask) bool { return t.ID == id })
}

func findTask(p *models.Partner, id uuid.UUID) *models.FollowUpTask {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i]
		}
	}
	for i := range p.Notes {
		for j := range p.Notes[i].FollowUps {
			if p.Notes[i].FollowUps[j].ID == id {
				return &p.Notes[i].FollowUps[j]
			}
		}
	}
	return nil
}

func clearPrimary(p *models.Partner) {
	for i := range p.Contacts {
		p.Contacts[i].IsPrimary = false
	}
}
