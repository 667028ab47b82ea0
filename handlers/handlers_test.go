// ABOUTME: Tests for partner, task, and pipeline MCP tool handlers
// ABOUTME: Runs handlers against a temp SQLite store and checks outputs and errors
package handlers

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = models.NewDate(2024, time.December, 2)

func setupTestStore(t *testing.T) *db.Store {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return db.NewStore(database)
}

func strPtr(s string) *string { return &s }

func addPartner(t *testing.T, h *PartnerHandlers, name string) PartnerOutput {
	t.Helper()
	_, out, err := h.AddPartner(context.Background(), nil, AddPartnerInput{Name: name})
	require.NoError(t, err)
	return out
}

func TestAddPartner(t *testing.T) {
	h := NewPartnerHandlers(setupTestStore(t), nil, "Dana")

	_, out, err := h.AddPartner(context.Background(), nil, AddPartnerInput{
		Name:         "  Lincoln High ",
		LeadSource:   models.LeadSourceReferral,
		NextFollowUp: "2024-12-09",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lincoln High", out.Name)
	assert.Equal(t, models.StatusNewLead, out.Status)
	assert.Equal(t, models.PriorityMedium, out.Priority)
	assert.Equal(t, "Dana", out.StaffLead)
	assert.Equal(t, "2024-12-09", out.NextFollowUp)
	_, err = uuid.Parse(out.ID)
	assert.NoError(t, err)
}

func TestAddPartnerRejectsBadInput(t *testing.T) {
	h := NewPartnerHandlers(setupTestStore(t), nil, "")
	ctx := context.Background()

	_, _, err := h.AddPartner(ctx, nil, AddPartnerInput{Name: "   "})
	assert.Error(t, err)

	_, _, err = h.AddPartner(ctx, nil, AddPartnerInput{Name: "X", Status: "Closed Won"})
	assert.Error(t, err)

	_, _, err = h.AddPartner(ctx, nil, AddPartnerInput{Name: "X", NextFollowUp: "next tuesday"})
	assert.Error(t, err)

	_, found, err := h.FindPartners(ctx, nil, FindPartnersInput{})
	require.NoError(t, err)
	assert.Empty(t, found.Partners)
}

func TestFindPartners(t *testing.T) {
	h := NewPartnerHandlers(setupTestStore(t), nil, "")
	ctx := context.Background()
	addPartner(t, h, "Lincoln High")
	addPartner(t, h, "Adams Elementary")

	_, out, err := h.FindPartners(ctx, nil, FindPartnersInput{Query: "linc"})
	require.NoError(t, err)
	require.Len(t, out.Partners, 1)
	assert.Equal(t, "Lincoln High", out.Partners[0].Name)

	_, out, err = h.FindPartners(ctx, nil, FindPartnersInput{Status: models.StatusNewLead})
	require.NoError(t, err)
	assert.Len(t, out.Partners, 2)

	_, _, err = h.FindPartners(ctx, nil, FindPartnersInput{Status: "Lost"})
	assert.Error(t, err)
}

func TestGetPartner(t *testing.T) {
	h := NewPartnerHandlers(setupTestStore(t), nil, "")
	ctx := context.Background()
	p := addPartner(t, h, "Lincoln High")

	_, _, err := h.AddContact(ctx, nil, AddContactInput{PartnerID: p.ID, Name: "Pat", Email: "pat@lincoln.edu", IsPrimary: true})
	require.NoError(t, err)
	_, _, err = h.AddNote(ctx, nil, AddNoteInput{PartnerID: p.ID, Type: models.NoteTypeCall, Date: "2024-11-20", Content: "Intro call", FollowUp: "Send deck", FollowUpDue: "2024-11-25"})
	require.NoError(t, err)
	_, _, err = h.UpdatePartner(ctx, nil, UpdatePartnerInput{PartnerID: p.ID, ProposalDeadline: strPtr("2024-12-20")})
	require.NoError(t, err)

	_, out, err := h.GetPartner(ctx, nil, GetPartnerInput{PartnerID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, "Lincoln High", out.Partner.Name)
	require.Len(t, out.Contacts, 1)
	assert.True(t, out.Contacts[0].IsPrimary)
	require.Len(t, out.Notes, 1)
	require.Len(t, out.Notes[0].FollowUps, 1)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "Send deck", out.Tasks[0].Title)
	assert.Len(t, out.Onboarding, len(models.DefaultOnboardingTasks))
	assert.Equal(t, ProgressOutput{Completed: 0, Total: 7, Percent: 0}, out.Progress)
	assert.Equal(t, "proposal_deadline", out.NextAction.Kind)
	assert.Equal(t, "2024-12-20", out.NextAction.Date)
}

func TestGetPartnerErrors(t *testing.T) {
	h := NewPartnerHandlers(setupTestStore(t), nil, "")
	ctx := context.Background()

	_, _, err := h.GetPartner(ctx, nil, GetPartnerInput{PartnerID: "not-a-uuid"})
	assert.ErrorContains(t, err, "invalid partner_id")

	_, _, err = h.GetPartner(ctx, nil, GetPartnerInput{PartnerID: uuid.NewString()})
	assert.ErrorIs(t, err, errPartnerNotFound)
}

func TestUpdatePartner(t *testing.T) {
	h := NewPartnerHandlers(setupTestStore(t), nil, "")
	ctx := context.Background()
	p := addPartner(t, h, "Lincoln High")

	_, out, err := h.UpdatePartner(ctx, nil, UpdatePartnerInput{
		PartnerID:    p.ID,
		Status:       strPtr(models.StatusContacted),
		NextFollowUp: strPtr("2024-12-09"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, out.Status)
	assert.Equal(t, "2024-12-09", out.NextFollowUp)

	_, out, err = h.UpdatePartner(ctx, nil, UpdatePartnerInput{PartnerID: p.ID, NextFollowUp: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, out.NextFollowUp)
	assert.Equal(t, models.StatusContacted, out.Status)

	_, _, err = h.UpdatePartner(ctx, nil, UpdatePartnerInput{PartnerID: p.ID, Priority: strPtr("Urgent")})
	assert.Error(t, err)

	_, _, err = h.UpdatePartner(ctx, nil, UpdatePartnerInput{PartnerID: p.ID, LastContact: strPtr("12/01/2024")})
	assert.ErrorContains(t, err, "last_contact")
}

func TestAddNoteValidation(t *testing.T) {
	h := NewPartnerHandlers(setupTestStore(t), nil, "")
	ctx := context.Background()
	p := addPartner(t, h, "Lincoln High")

	_, _, err := h.AddNote(ctx, nil, AddNoteInput{PartnerID: p.ID, Type: "Carrier Pigeon"})
	assert.Error(t, err)

	_, note, err := h.AddNote(ctx, nil, AddNoteInput{PartnerID: p.ID, Type: models.NoteTypeEmail, Content: "Sent pricing"})
	require.NoError(t, err)
	assert.Equal(t, models.Today().String(), note.Date)
	assert.Empty(t, note.FollowUps)
}

func TestSetPrimaryContact(t *testing.T) {
	h := NewPartnerHandlers(setupTestStore(t), nil, "")
	ctx := context.Background()
	p := addPartner(t, h, "Lincoln High")

	_, first, err := h.AddContact(ctx, nil, AddContactInput{PartnerID: p.ID, Name: "Pat", Email: "pat@lincoln.edu", IsPrimary: true})
	require.NoError(t, err)
	_, second, err := h.AddContact(ctx, nil, AddContactInput{PartnerID: p.ID, Name: "Sam", Email: "sam@lincoln.edu"})
	require.NoError(t, err)

	_, _, err = h.AddContact(ctx, nil, AddContactInput{PartnerID: p.ID, Name: "No Email"})
	assert.Error(t, err)

	_, out, err := h.SetPrimaryContact(ctx, nil, SetPrimaryContactInput{ContactID: second.ID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, out.PartnerID)

	_, detail, err := h.GetPartner(ctx, nil, GetPartnerInput{PartnerID: p.ID})
	require.NoError(t, err)
	for _, c := range detail.Contacts {
		assert.Equal(t, c.ID == second.ID, c.IsPrimary, c.Name)
	}
	assert.NotEqual(t, first.ID, second.ID)

	_, _, err = h.SetPrimaryContact(ctx, nil, SetPrimaryContactInput{ContactID: uuid.NewString()})
	assert.ErrorContains(t, err, "contact not found")
}

func TestListTasksAndSetStatus(t *testing.T) {
	store := setupTestStore(t)
	ph := NewPartnerHandlers(store, nil, "")
	th := NewTaskHandlers(store)
	th.today = func() models.Date { return today }
	ctx := context.Background()

	p := addPartner(t, ph, "Lincoln High")
	_, note, err := ph.AddNote(ctx, nil, AddNoteInput{PartnerID: p.ID, Type: models.NoteTypeCall, FollowUp: "Send contract", FollowUpDue: "2024-11-30"})
	require.NoError(t, err)

	_, out, err := th.ListTasks(ctx, nil, ListTasksInput{})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 1)
	assert.Equal(t, "overdue", out.Tasks[0].Urgency)
	assert.Equal(t, "Lincoln High", out.Tasks[0].PartnerName)
	assert.Equal(t, 1, out.Counts.Overdue)

	taskID := note.FollowUps[0].ID
	_, status, err := th.SetTaskStatus(ctx, nil, SetTaskStatusInput{Kind: "followup", TaskID: taskID, Status: models.TaskStatusComplete})
	require.NoError(t, err)
	assert.True(t, status.Applied)

	_, out, err = th.ListTasks(ctx, nil, ListTasksInput{})
	require.NoError(t, err)
	assert.Empty(t, out.Tasks)

	_, out, err = th.ListTasks(ctx, nil, ListTasksInput{Status: "all", Search: "contract"})
	require.NoError(t, err)
	require.Len(t, out.Tasks, 1)
	assert.True(t, out.Tasks[0].Completed)
	assert.Empty(t, out.Tasks[0].Urgency)
}

func TestSetTaskStatusErrors(t *testing.T) {
	th := NewTaskHandlers(setupTestStore(t))
	ctx := context.Background()

	_, _, err := th.SetTaskStatus(ctx, nil, SetTaskStatusInput{Kind: "chore", TaskID: uuid.NewString(), Status: models.TaskStatusComplete})
	assert.ErrorContains(t, err, "invalid kind")

	_, _, err = th.SetTaskStatus(ctx, nil, SetTaskStatusInput{Kind: "task", TaskID: uuid.NewString(), Status: "Done-ish"})
	assert.ErrorContains(t, err, "invalid status")

	_, _, err = th.SetTaskStatus(ctx, nil, SetTaskStatusInput{Kind: "task", TaskID: uuid.NewString(), Status: models.TaskStatusComplete})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, out, err := th.SetTaskStatus(ctx, nil, SetTaskStatusInput{Kind: "onboarding", TaskID: uuid.NewString(), Status: models.TaskStatusComplete})
	require.NoError(t, err)
	assert.False(t, out.Applied)

	_, _, err = th.ListTasks(ctx, nil, ListTasksInput{Type: "chores"})
	assert.Error(t, err)
}

func TestPipelineSummary(t *testing.T) {
	store := setupTestStore(t)
	ph := NewPartnerHandlers(store, nil, "")
	vh := NewVizHandlers(store)
	vh.today = func() models.Date { return today }
	ctx := context.Background()

	addPartner(t, ph, "Lincoln High")
	p := addPartner(t, ph, "Adams Elementary")
	_, _, err := ph.UpdatePartner(ctx, nil, UpdatePartnerInput{PartnerID: p.ID, Status: strPtr(models.StatusActive)})
	require.NoError(t, err)

	_, out, err := vh.PipelineSummary(ctx, nil, PipelineSummaryInput{})
	require.NoError(t, err)
	require.Len(t, out.Stages, len(models.PipelineStatuses))
	assert.Equal(t, 1, out.Stages[0].Count)
	assert.Equal(t, 1, out.Stages[len(out.Stages)-1].Count)
	assert.Equal(t, 2, out.TotalPartners)
	assert.Contains(t, out.Dashboard, "PARTNER PIPELINE DASHBOARD")
	assert.Empty(t, out.DOTSource)

	_, out, err = vh.PipelineSummary(ctx, nil, PipelineSummaryInput{Graph: true})
	require.NoError(t, err)
	assert.Contains(t, out.DOTSource, "digraph")
	assert.Contains(t, out.DOTSource, "Adams Elementary")
	assert.Positive(t, out.EdgeCount)
}
