// ABOUTME: Tests for partner loading, write-through views, and validation
// ABOUTME: Runs against a temp SQLite store, with a wrapper that injects write failures
package crm

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("store unavailable")

// flakyStore fails selected writes and reads.
type flakyStore struct {
	*db.Store
	failWrites bool
	failNotes  bool
}

func (f *flakyStore) UpdatePartner(ctx context.Context, id uuid.UUID, patch models.PartnerPatch) error {
	if f.failWrites {
		return errBoom
	}
	return f.Store.UpdatePartner(ctx, id, patch)
}

func (f *flakyStore) CreateNote(ctx context.Context, n *models.Note, followUp *models.FollowUpTask) error {
	if f.failWrites {
		return errBoom
	}
	return f.Store.CreateNote(ctx, n, followUp)
}

func (f *flakyStore) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status string) error {
	if f.failWrites {
		return errBoom
	}
	return f.Store.UpdateTaskStatus(ctx, id, status)
}

func (f *flakyStore) ListNotes(ctx context.Context, opts db.ListOptions) ([]models.Note, error) {
	if f.failNotes {
		return nil, errBoom
	}
	return f.Store.ListNotes(ctx, opts)
}

func setup(t *testing.T) (*flakyStore, *models.Partner) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	store := &flakyStore{Store: db.NewStore(database)}
	p := &models.Partner{Name: "Lincoln High School", StaffLead: "Dana"}
	require.NoError(t, store.CreatePartner(context.Background(), p))
	return store, p
}

func openView(t *testing.T, s Store, id uuid.UUID) *PartnerView {
	t.Helper()
	v := NewPartnerView(context.Background(), s, id)
	t.Cleanup(v.Close)
	found, err := v.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	return v
}

func TestLoadPartnerJoinsRelatedRows(t *testing.T) {
	store, p := setup(t)
	ctx := context.Background()
	other := &models.Partner{Name: "Jefferson Prep"}
	require.NoError(t, store.CreatePartner(ctx, other))

	require.NoError(t, store.CreateContact(ctx, &models.Contact{PartnerID: p.ID, Name: "Ana", Email: "ana@lincoln.edu"}))
	require.NoError(t, store.CreateContact(ctx, &models.Contact{PartnerID: other.ID, Name: "Zed", Email: "zed@jefferson.org"}))
	note := &models.Note{PartnerID: p.ID, Type: models.NoteTypeMeeting, Date: models.NewDate(2024, time.November, 2)}
	require.NoError(t, store.CreateNote(ctx, note, &models.FollowUpTask{Task: "Send deck"}))
	require.NoError(t, store.CreateTask(ctx, &models.FollowUpTask{PartnerID: p.ID, Task: "Call principal"}))
	pid := p.ID
	require.NoError(t, store.CreateSchool(ctx, &models.School{PartnerID: &pid, Name: "Lincoln East"}))

	got, err := LoadPartner(ctx, store, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Len(t, got.Contacts, 1)
	assert.Equal(t, "Ana", got.Contacts[0].Name)
	require.Len(t, got.Notes, 1)
	require.Len(t, got.Notes[0].FollowUps, 1)
	assert.Equal(t, "Send deck", got.Notes[0].FollowUps[0].Task)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "Call principal", got.Tasks[0].Task)
	assert.Len(t, got.Onboarding, 7)
	assert.Len(t, got.Schools, 1)

	all, err := LoadPartners(ctx, store)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Jefferson Prep", all[0].Name)
	assert.Len(t, all[0].Contacts, 1)
	assert.Len(t, all[1].Tasks, 1)
}

func TestLoadPartnerNotFoundIsNotAnError(t *testing.T) {
	store, _ := setup(t)

	got, err := LoadPartner(context.Background(), store, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)

	v := NewPartnerView(context.Background(), store, uuid.New())
	defer v.Close()
	found, err := v.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, v.Partner())
}

func TestLoadPartnerPropagatesStoreFailure(t *testing.T) {
	store, p := setup(t)
	store.failNotes = true

	_, err := LoadPartner(context.Background(), store, p.ID)
	assert.ErrorIs(t, err, errBoom)
}

func TestAddNoteWithInlineFollowUp(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()

	due := models.NewDate(2024, time.December, 1)
	note, err := v.AddNote(ctx, NoteInput{
		Type:     models.NoteTypeCall,
		Date:     models.NewDate(2024, time.November, 20),
		Content:  "Discussed pricing",
		FollowUp: &TaskInput{Task: "Send pricing sheet", DueDate: &due},
	})
	require.NoError(t, err)

	local := v.Partner()
	assert.Empty(t, local.Tasks)
	require.Len(t, local.Notes, 1)
	require.Len(t, local.Notes[0].FollowUps, 1)
	require.NotNil(t, local.Notes[0].FollowUps[0].NoteID)
	assert.Equal(t, note.ID, *local.Notes[0].FollowUps[0].NoteID)

	stored, err := store.ListTasks(ctx, db.ForPartner(p.ID))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].NoteID)
	assert.Equal(t, note.ID, *stored[0].NoteID)

	// local state matches a fresh load
	_, err = v.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(local.Notes[0].FollowUps), len(v.Partner().Notes[0].FollowUps))
}

func TestFailedWriteLeavesStateUnchanged(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()
	before := v.Partner()

	store.failWrites = true
	name := "Renamed"
	err := v.UpdateFields(ctx, models.PartnerPatch{Name: &name})
	assert.ErrorIs(t, err, errBoom)

	_, err = v.AddNote(ctx, NoteInput{Type: models.NoteTypeEmail})
	assert.ErrorIs(t, err, errBoom)

	assert.Equal(t, before, v.Partner())
}

func TestUpdateFieldsPatchesLocalState(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()

	status := models.StatusOnboarding
	step := models.OnboardingStepTraining
	require.NoError(t, v.UpdateFields(ctx, models.PartnerPatch{Status: &status, OnboardingStep: &step}))

	local := v.Partner()
	assert.Equal(t, models.StatusOnboarding, local.Status)
	assert.Equal(t, models.OnboardingStepTraining, local.OnboardingStep)

	stored, err := store.GetPartner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnboarding, stored.Status)
}

func TestValidationBlocksWrites(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()
	dir := NewDirectory(ctx, store)
	defer dir.Close()

	_, err := dir.CreatePartner(ctx, PartnerInput{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, "name is required", verr.Error())

	_, err = v.AddContact(ctx, ContactInput{Name: "Ana"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = v.AddContact(ctx, ContactInput{Email: "ana@lincoln.edu"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = v.AddContact(ctx, ContactInput{Name: "Ana", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrValidation)

	bad := "Closed Won"
	assert.ErrorIs(t, v.UpdateFields(ctx, models.PartnerPatch{Status: &bad}), ErrValidation)
	_, err = v.AddNote(ctx, NoteInput{Type: "Text Message"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = v.AddImportantDate(ctx, ImportantDateInput{Title: "Board meeting"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = v.AddAttachment(ctx, AttachmentInput{Name: "MSA", URL: "https://example.com/msa.pdf", Type: "folder"})
	assert.ErrorIs(t, err, ErrValidation)

	contacts, err := store.ListContacts(ctx, db.ForPartner(p.ID))
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestSetPrimaryContactLeavesExactlyOne(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()

	a, err := v.AddContact(ctx, ContactInput{Name: "Ana", Email: "ana@lincoln.edu", IsPrimary: true})
	require.NoError(t, err)
	b, err := v.AddContact(ctx, ContactInput{Name: "Ben", Email: "ben@lincoln.edu"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, v.Partner().PrimaryContact().ID)

	require.NoError(t, v.SetPrimaryContact(ctx, b.ID))
	check := func(contacts []models.Contact) {
		primaries := 0
		for _, c := range contacts {
			if c.IsPrimary {
				primaries++
				assert.Equal(t, b.ID, c.ID)
			}
		}
		assert.Equal(t, 1, primaries)
	}
	check(v.Partner().Contacts)

	stored, err := store.ListContacts(ctx, db.ForPartner(p.ID))
	require.NoError(t, err)
	check(stored)

	c, err := v.AddContact(ctx, ContactInput{Name: "Cy", Email: "cy@lincoln.edu", IsPrimary: true})
	require.NoError(t, err)
	stored, err = store.ListContacts(ctx, db.ForPartner(p.ID))
	require.NoError(t, err)
	for _, sc := range stored {
		assert.Equal(t, sc.ID == c.ID, sc.IsPrimary)
	}

	assert.Error(t, v.SetPrimaryContact(ctx, uuid.New()))
}

func TestTaskMutations(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()

	task, err := v.AddTask(ctx, TaskInput{Task: "Book kickoff"})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusNotStarted, task.Status)

	require.NoError(t, v.CompleteTask(ctx, task.ID, true))
	items := v.Tasks()
	require.Len(t, items, 1)
	assert.True(t, items[0].Completed)
	assert.Equal(t, models.TaskStatusComplete, items[0].Status)

	assert.ErrorIs(t, v.SetTaskStatus(ctx, task.ID, "Done"), ErrValidation)

	title := "Book kickoff call"
	require.NoError(t, v.UpdateTask(ctx, task.ID, models.TaskPatch{Task: &title}))
	assert.Equal(t, title, v.Tasks()[0].Title)

	require.NoError(t, v.DeleteTask(ctx, task.ID))
	assert.Empty(t, v.Tasks())
}

func TestOnboardingMutations(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()

	checklist := v.Partner().Onboarding
	require.NoError(t, v.ToggleOnboarding(ctx, checklist[0].ID))
	require.NoError(t, v.ToggleOnboarding(ctx, checklist[1].ID))
	assert.Equal(t, tasks.Progress{Completed: 2, Total: 7}, v.Progress())

	custom, err := v.AddOnboardingTask(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 7, custom.Sequence)
	assert.Equal(t, tasks.Progress{Completed: 2, Total: 8}, v.Progress())

	text := "Parent night"
	require.NoError(t, v.UpdateOnboardingTask(ctx, custom.ID, models.OnboardingPatch{Task: &text}))
	_, err = v.Refresh(ctx)
	require.NoError(t, err)
	refreshed := v.Partner().Onboarding
	assert.Equal(t, "Parent night", refreshed[7].Task)
	assert.True(t, refreshed[0].Completed)

	require.NoError(t, v.ToggleOnboarding(ctx, checklist[0].ID))
	assert.Equal(t, 1, v.Progress().Completed)
}

func TestRecordMutations(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()

	d, err := v.AddImportantDate(ctx, ImportantDateInput{Title: "Board meeting", Date: models.NewDate(2025, time.February, 3)})
	require.NoError(t, err)
	notes := "Present pilot results"
	require.NoError(t, v.UpdateImportantDate(ctx, d.ID, models.ImportantDatePatch{Notes: &notes}))
	assert.Equal(t, notes, v.Partner().ImportantDates[0].Notes)

	a, err := v.AddAttachment(ctx, AttachmentInput{Name: "MSA", URL: "https://example.com/msa.pdf", Type: models.AttachmentFile})
	require.NoError(t, err)
	require.Len(t, v.Partner().Attachments, 1)
	require.NoError(t, v.DeleteAttachment(ctx, a.ID))
	assert.Empty(t, v.Partner().Attachments)

	require.NoError(t, v.DeleteImportantDate(ctx, d.ID))
	assert.Empty(t, v.Partner().ImportantDates)
}

func TestMutationsRejectOtherPartnersRows(t *testing.T) {
	store, p := setup(t)
	ctx := context.Background()
	other := &models.Partner{Name: "Roosevelt Elementary"}
	require.NoError(t, store.CreatePartner(ctx, other))

	ov := openView(t, store, other.ID)
	task, err := ov.AddTask(ctx, TaskInput{Task: "Send roster template"})
	require.NoError(t, err)
	note, err := ov.AddNote(ctx, NoteInput{Type: models.NoteTypeCall, Content: "Intro call"})
	require.NoError(t, err)
	contact, err := ov.AddContact(ctx, ContactInput{Name: "Pat Lee", Email: "pat@roosevelt.org"})
	require.NoError(t, err)
	date, err := ov.AddImportantDate(ctx, ImportantDateInput{Title: "Board vote", Date: models.NewDate(2025, time.March, 4)})
	require.NoError(t, err)
	att, err := ov.AddAttachment(ctx, AttachmentInput{Name: "Deck", URL: "https://example.com/deck", Type: models.AttachmentLink})
	require.NoError(t, err)
	step := ov.Partner().Onboarding[0]

	v := openView(t, store, p.ID)
	text := "hijacked"
	status := models.TaskStatusComplete
	attempts := map[string]error{
		"DeleteTask":           v.DeleteTask(ctx, task.ID),
		"UpdateTask":           v.UpdateTask(ctx, task.ID, models.TaskPatch{Task: &text}),
		"SetTaskStatus":        v.SetTaskStatus(ctx, task.ID, status),
		"DeleteNote":           v.DeleteNote(ctx, note.ID),
		"UpdateNote":           v.UpdateNote(ctx, note.ID, models.NotePatch{Content: &text}),
		"UpdateContact":        v.UpdateContact(ctx, contact.ID, models.ContactPatch{Role: &text}),
		"DeleteContact":        v.DeleteContact(ctx, contact.ID),
		"SetPrimaryContact":    v.SetPrimaryContact(ctx, contact.ID),
		"UpdateImportantDate":  v.UpdateImportantDate(ctx, date.ID, models.ImportantDatePatch{Notes: &text}),
		"DeleteImportantDate":  v.DeleteImportantDate(ctx, date.ID),
		"DeleteAttachment":     v.DeleteAttachment(ctx, att.ID),
		"UpdateOnboardingTask": v.UpdateOnboardingTask(ctx, step.ID, models.OnboardingPatch{Task: &text}),
		"ToggleOnboarding":     v.ToggleOnboarding(ctx, step.ID),
	}
	for name, err := range attempts {
		assert.ErrorIs(t, err, ErrNotOwned, name)
		assert.ErrorIs(t, err, db.ErrNotFound, name)
	}

	_, err = ov.Refresh(ctx)
	require.NoError(t, err)
	untouched := ov.Partner()
	require.Len(t, untouched.Tasks, 1)
	assert.Equal(t, "Send roster template", untouched.Tasks[0].Task)
	assert.Equal(t, models.TaskStatusNotStarted, untouched.Tasks[0].Status)
	require.Len(t, untouched.Notes, 1)
	assert.Equal(t, "Intro call", untouched.Notes[0].Content)
	require.Len(t, untouched.Contacts, 1)
	assert.Empty(t, untouched.Contacts[0].Role)
	require.Len(t, untouched.ImportantDates, 1)
	assert.Empty(t, untouched.ImportantDates[0].Notes)
	assert.Len(t, untouched.Attachments, 1)
	assert.Equal(t, step, untouched.Onboarding[0])
}

func TestUpdateFieldsTrimsName(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	ctx := context.Background()

	name := "  Lincoln Academy  "
	require.NoError(t, v.UpdateFields(ctx, models.PartnerPatch{Name: &name}))
	assert.Equal(t, "Lincoln Academy", v.Partner().Name)

	stored, err := store.GetPartner(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lincoln Academy", stored.Name)

	blank := "   "
	assert.ErrorIs(t, v.UpdateFields(ctx, models.PartnerPatch{Name: &blank}), ErrValidation)
}

func TestClosedViewDropsResults(t *testing.T) {
	store, p := setup(t)
	v := openView(t, store, p.ID)
	v.Close()

	_, err := v.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrViewClosed)

	name := "After close"
	err = v.UpdateFields(context.Background(), models.PartnerPatch{Name: &name})
	assert.ErrorIs(t, err, ErrViewClosed)
	assert.Equal(t, "Lincoln High School", v.Partner().Name)
}

func TestMutationBeforeLoad(t *testing.T) {
	store, p := setup(t)
	v := NewPartnerView(context.Background(), store, p.ID)
	defer v.Close()

	_, err := v.AddTask(context.Background(), TaskInput{Task: "Too early"})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestDirectory(t *testing.T) {
	store, p := setup(t)
	ctx := context.Background()
	dir := NewDirectory(ctx, store)
	defer dir.Close()
	require.NoError(t, dir.Refresh(ctx))

	created, err := dir.CreatePartner(ctx, PartnerInput{Name: "Aspen Middle"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNewLead, created.Status)
	assert.Equal(t, models.PriorityMedium, created.Priority)

	partners := dir.Partners()
	require.Len(t, partners, 2)
	assert.Equal(t, "Aspen Middle", partners[0].Name)

	due := models.NewDate(2024, time.December, 1)
	require.NoError(t, store.CreateTask(ctx, &models.FollowUpTask{PartnerID: p.ID, Task: "Send contract", DueDate: &due}))
	require.NoError(t, dir.Refresh(ctx))

	items := dir.Tasks(tasks.Filter{})
	require.Len(t, items, 1)
	require.NoError(t, dir.SetTaskStatus(ctx, items[0], models.TaskStatusComplete))
	assert.Empty(t, dir.Tasks(tasks.Filter{}))
	assert.Len(t, dir.Tasks(tasks.Filter{Status: tasks.FilterAll}), 1)

	store.failWrites = true
	all := dir.Tasks(tasks.Filter{Status: tasks.FilterAll})
	err = dir.SetTaskStatus(ctx, all[0], models.TaskStatusNotStarted)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, all, dir.Tasks(tasks.Filter{Status: tasks.FilterAll}))
	store.failWrites = false

	require.NoError(t, dir.DeletePartner(ctx, created.ID))
	assert.Len(t, dir.Partners(), 1)
	assert.Nil(t, dir.Partner(created.ID))
	assert.NotNil(t, dir.Partner(p.ID))
}
