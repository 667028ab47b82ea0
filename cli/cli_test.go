package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCLI(t *testing.T) *db.Store {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return db.NewStore(database)
}

// onlyPartner returns the single stored partner, fully loaded.
func onlyPartner(t *testing.T, store *db.Store) *models.Partner {
	t.Helper()
	partners, err := crm.LoadPartners(context.Background(), store)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	return &partners[0]
}

func TestResolvePartner(t *testing.T) {
	store := setupTestCLI(t)
	require.NoError(t, AddPartnerCommand(store, "", []string{"--name", "Adams Elementary"}))
	require.NoError(t, AddPartnerCommand(store, "", []string{"--name", "Baker Middle"}))

	partners, err := store.ListPartners(context.Background(), db.ListOptions{})
	require.NoError(t, err)
	var adams models.Partner
	for _, p := range partners {
		if p.Name == "Adams Elementary" {
			adams = p
		}
	}

	ctx := context.Background()
	id, err := resolvePartner(ctx, store, "adams elementary")
	require.NoError(t, err)
	assert.Equal(t, adams.ID, id)

	id, err = resolvePartner(ctx, store, adams.ID.String()[:8])
	require.NoError(t, err)
	assert.Equal(t, adams.ID, id)

	_, err = resolvePartner(ctx, store, "Nowhere High")
	assert.ErrorContains(t, err, "no partner matches")

	_, err = resolvePartner(ctx, store, "")
	assert.Error(t, err)
}

func TestFindByPrefix(t *testing.T) {
	a := models.Contact{ID: uuid.MustParse("aaaa1111-0000-0000-0000-000000000000")}
	b := models.Contact{ID: uuid.MustParse("aaaa2222-0000-0000-0000-000000000000")}
	items := []models.Contact{a, b}

	id, err := findByPrefix("contact", items, contactID, "aaaa2")
	require.NoError(t, err)
	assert.Equal(t, b.ID, id)

	_, err = findByPrefix("contact", items, contactID, "aaaa")
	assert.Error(t, err, "ambiguous prefix")

	_, err = findByPrefix("contact", items, contactID, "ffff")
	assert.Error(t, err)
}

func TestPartnerLifecycle(t *testing.T) {
	store := setupTestCLI(t)

	require.NoError(t, AddPartnerCommand(store, "Dana", []string{"--name", "  Adams Elementary  ", "--city", "Austin", "--follow-up", "2024-12-10"}))
	p := onlyPartner(t, store)
	assert.Equal(t, "Adams Elementary", p.Name)
	assert.Equal(t, models.StatusNewLead, p.Status)
	assert.Equal(t, "Dana", p.StaffLead)
	assert.Len(t, p.Onboarding, len(models.DefaultOnboardingTasks))
	require.NotNil(t, p.NextFollowUp)
	assert.Equal(t, "2024-12-10", p.NextFollowUp.String())

	require.NoError(t, ListPartnersCommand(store, nil, []string{}))
	require.NoError(t, ShowPartnerCommand(store, nil, []string{"Adams Elementary"}))

	require.NoError(t, UpdatePartnerCommand(store, []string{"--status", models.StatusActive, "--follow-up", "none", "--deadline", "2025-01-15", "Adams Elementary"}))
	p = onlyPartner(t, store)
	assert.Equal(t, models.StatusActive, p.Status)
	assert.Nil(t, p.NextFollowUp)
	require.NotNil(t, p.ProposalDeadline)
	assert.Equal(t, "2025-01-15", p.ProposalDeadline.String())

	err := UpdatePartnerCommand(store, []string{"Adams Elementary"})
	assert.ErrorContains(t, err, "nothing to update")

	err = UpdatePartnerCommand(store, []string{"--priority", "Urgent", "Adams Elementary"})
	assert.ErrorIs(t, err, crm.ErrValidation)

	require.NoError(t, DeletePartnerCommand(store, []string{"Adams Elementary"}))
	partners, err := store.ListPartners(context.Background(), db.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, partners)
}

func TestAddPartnerRequiresName(t *testing.T) {
	store := setupTestCLI(t)
	err := AddPartnerCommand(store, "", []string{"--city", "Austin"})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestContactCommands(t *testing.T) {
	store := setupTestCLI(t)
	require.NoError(t, AddPartnerCommand(store, "", []string{"--name", "Adams"}))

	require.NoError(t, AddContactCommand(store, []string{"--name", "Pat", "--email", "pat@adams.edu", "--primary", "Adams"}))
	require.NoError(t, AddContactCommand(store, []string{"--name", "Sam", "--email", "sam@adams.edu", "Adams"}))

	p := onlyPartner(t, store)
	require.Len(t, p.Contacts, 2)
	require.NotNil(t, p.PrimaryContact())
	assert.Equal(t, "Pat", p.PrimaryContact().Name)

	var sam models.Contact
	for _, c := range p.Contacts {
		if c.Name == "Sam" {
			sam = c
		}
	}
	require.NoError(t, SetPrimaryCommand(store, []string{"Adams", sam.ID.String()[:8]}))
	p = onlyPartner(t, store)
	assert.Equal(t, "Sam", p.PrimaryContact().Name)

	require.NoError(t, UpdateContactCommand(store, []string{"--role", "Principal", "Adams", sam.ID.String()}))
	require.NoError(t, DeleteContactCommand(store, []string{"Adams", sam.ID.String()}))
	p = onlyPartner(t, store)
	require.Len(t, p.Contacts, 1)
	assert.Equal(t, "Pat", p.Contacts[0].Name)

	err := AddContactCommand(store, []string{"--name", "Bad", "--email", "not-an-email", "Adams"})
	assert.ErrorIs(t, err, crm.ErrValidation)
}

func TestNoteAndTaskCommands(t *testing.T) {
	store := setupTestCLI(t)
	require.NoError(t, AddPartnerCommand(store, "", []string{"--name", "Adams"}))

	require.NoError(t, AddNoteCommand(store, []string{
		"--type", models.NoteTypeMeeting, "--date", "2024-11-20", "--content", "Kickoff",
		"--follow-up", "Send deck", "--due", "2024-11-25", "Adams",
	}))
	p := onlyPartner(t, store)
	require.Len(t, p.Notes, 1)
	require.Len(t, p.Notes[0].FollowUps, 1)
	followUp := p.Notes[0].FollowUps[0]
	assert.Equal(t, "Send deck", followUp.Task)

	err := AddNoteCommand(store, []string{"--type", "Carrier Pigeon", "Adams"})
	assert.ErrorIs(t, err, crm.ErrValidation)

	require.NoError(t, AddTaskCommand(store, []string{"--task", "Renewal prep", "--due", "2025-02-01", "Adams"}))
	require.NoError(t, ListTasksCommand(store, []string{}))
	require.NoError(t, ListTasksCommand(store, []string{"--type", "followup", "--partner", "Adams"}))

	require.NoError(t, CompleteTaskCommand(store, []string{"Adams", followUp.ID.String()}))
	task, err := store.GetTask(context.Background(), followUp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusComplete, task.Status)

	require.NoError(t, CompleteTaskCommand(store, []string{"--undo", "Adams", followUp.ID.String()}))
	task, err = store.GetTask(context.Background(), followUp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusNotStarted, task.Status)

	require.NoError(t, TaskStatusCommand(store, []string{"Adams", followUp.ID.String(), "In", "Progress"}))
	task, err = store.GetTask(context.Background(), followUp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, task.Status)

	err = TaskStatusCommand(store, []string{"Adams", followUp.ID.String(), "Someday"})
	assert.ErrorIs(t, err, crm.ErrValidation)

	require.NoError(t, DeleteNoteCommand(store, []string{"Adams", p.Notes[0].ID.String()}))
	p = onlyPartner(t, store)
	assert.Empty(t, p.Notes)
}

func TestOnboardingCommands(t *testing.T) {
	store := setupTestCLI(t)
	require.NoError(t, AddPartnerCommand(store, "", []string{"--name", "Adams"}))

	require.NoError(t, ToggleOnboardingCommand(store, []string{"Adams", "1"}))
	require.NoError(t, AddOnboardingCommand(store, []string{"Adams", "Order", "badges"}))
	require.NoError(t, OnboardingCommand(store, []string{"Adams"}))

	p := onlyPartner(t, store)
	require.Len(t, p.Onboarding, len(models.DefaultOnboardingTasks)+1)
	assert.True(t, p.Onboarding[0].Completed)
	assert.Equal(t, "Order badges", p.Onboarding[len(p.Onboarding)-1].Task)

	err := ToggleOnboardingCommand(store, []string{"Adams", "99"})
	assert.ErrorContains(t, err, "step number")
}

func TestRecordCommands(t *testing.T) {
	store := setupTestCLI(t)
	require.NoError(t, AddPartnerCommand(store, "", []string{"--name", "Adams ISD"}))

	require.NoError(t, AddDateCommand(store, []string{"--title", "Board meeting", "--date", "2025-03-04", "Adams ISD"}))
	require.NoError(t, AddAttachmentCommand(store, []string{"--name", "MOU", "--url", "https://example.com/mou.pdf", "--type", models.AttachmentFile, "Adams ISD"}))
	require.NoError(t, AddSchoolCommand(store, []string{"--name", "Adams North", "--students", "400", "--partner", "Adams ISD"}))

	p := onlyPartner(t, store)
	require.Len(t, p.ImportantDates, 1)
	assert.Equal(t, "Board meeting", p.ImportantDates[0].Title)
	require.Len(t, p.Attachments, 1)
	assert.Equal(t, "MOU", p.Attachments[0].Name)

	schools, err := store.ListSchools(context.Background(), db.ForPartner(p.ID))
	require.NoError(t, err)
	require.Len(t, schools, 1)
	assert.Equal(t, 400, schools[0].StudentCount)

	assert.Error(t, AddDateCommand(store, []string{"--title", "No date", "Adams ISD"}))
	assert.Error(t, AddAttachmentCommand(store, []string{"--name", "x", "--url", "not a url", "Adams ISD"}))
	assert.Error(t, AddSchoolCommand(store, []string{"--name", " "}))
}

func TestPipelineCommand(t *testing.T) {
	store := setupTestCLI(t)
	require.NoError(t, AddPartnerCommand(store, "", []string{"--name", "Adams", "--status", models.StatusActive}))
	require.NoError(t, PipelineCommand(store, []string{}))

	out := filepath.Join(t.TempDir(), "pipeline.dot")
	require.NoError(t, PipelineCommand(store, []string{"--graph", "--output", out}))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
	assert.Contains(t, string(data), "Adams")
}
