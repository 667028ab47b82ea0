package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/db"
	"github.com/harperreed/schoolcrm/models"
)

var today = models.NewDate(2024, time.December, 2)

func setupTestModel(t *testing.T, names ...string) (Model, *db.Store) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "crm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	store := db.NewStore(database)

	dir := crm.NewDirectory(context.Background(), store)
	defer dir.Close()
	for _, name := range names {
		_, err := dir.CreatePartner(context.Background(), crm.PartnerInput{Name: name})
		require.NoError(t, err)
	}

	m := NewModel(Options{Store: store, StaffLead: "Dana", Today: func() models.Date { return today }})
	t.Cleanup(m.Close)
	m = run(t, m, m.Init())
	return m, store
}

// run feeds the message a command produces back into the model, following
// the chain until it ends.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 5; i++ {
		msg := cmd()
		if msg == nil {
			break
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = next.(Model)
		if m.searching || m.viewMode == ViewEdit {
			// text inputs only return cursor blink timers
			continue
		}
		m = run(t, m, cmd)
	}
	return m
}

func TestListShowsPartners(t *testing.T) {
	m, _ := setupTestModel(t, "Adams Elementary", "Baker Middle")

	view := m.View()
	assert.Contains(t, view, "Partners")
	assert.Contains(t, view, "Adams Elementary")
	assert.Contains(t, view, "Baker Middle")
	assert.Contains(t, view, "0/7")
}

func TestTabsCycle(t *testing.T) {
	m, _ := setupTestModel(t, "Adams")

	m = press(t, m, "tab")
	assert.Equal(t, TabTasks, m.tab)
	assert.Contains(t, m.View(), "0 open")

	m = press(t, m, "tab")
	assert.Equal(t, TabPipeline, m.tab)
	assert.Contains(t, m.View(), "PARTNER PIPELINE DASHBOARD")

	m = press(t, m, "tab")
	assert.Equal(t, TabPartners, m.tab)
}

func TestSearchFiltersPartners(t *testing.T) {
	m, _ := setupTestModel(t, "Adams Elementary", "Baker Middle")

	m = press(t, m, "/", "b", "a", "k", "enter")
	assert.False(t, m.searching)
	assert.Len(t, m.visiblePartners(), 1)
	assert.NotContains(t, m.View(), "Adams Elementary")

	m = press(t, m, "/", "esc")
	assert.Len(t, m.visiblePartners(), 2)
}

func TestDetailToggleOnboardingAndTask(t *testing.T) {
	m, store := setupTestModel(t, "Adams")
	p := m.dir.Partners()[0]

	require.NoError(t, store.CreateTask(context.Background(), &models.FollowUpTask{PartnerID: p.ID, Task: "Send quote", DueDate: &today}))

	m = press(t, m, "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	view := m.View()
	assert.Contains(t, view, "ADAMS")
	assert.Contains(t, view, "ONBOARDING")
	assert.Contains(t, view, "Send quote")
	assert.Contains(t, view, "No next action")

	m = press(t, m, "1")
	assert.Equal(t, 1, m.view.Progress().Completed)
	assert.Contains(t, m.View(), "1/7")

	m = press(t, m, "x")
	items := m.view.Tasks()
	require.Len(t, items, 1)
	assert.True(t, items[0].Completed)

	stored, err := crm.LoadPartner(context.Background(), store, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Onboarding[0].Completed)
	assert.Equal(t, models.TaskStatusComplete, stored.Tasks[0].Status)

	m = press(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Nil(t, m.view)
	assert.Contains(t, m.View(), "1/7")
}

func TestTasksTabToggle(t *testing.T) {
	m, store := setupTestModel(t, "Adams")
	p := m.dir.Partners()[0]
	overdue := today.AddDays(-3)
	require.NoError(t, store.CreateTask(context.Background(), &models.FollowUpTask{PartnerID: p.ID, Task: "Call back", DueDate: &overdue}))
	m = run(t, m, m.loadPartners())

	m = press(t, m, "tab")
	view := m.View()
	assert.Contains(t, view, "Call back")
	assert.Contains(t, view, "1 overdue")

	m = press(t, m, "x")
	require.NoError(t, m.err)
	assert.Empty(t, m.visibleTasks(), "completed tasks leave the active list")
	assert.Contains(t, m.View(), "0 overdue")
}

func TestNewPartnerForm(t *testing.T) {
	m, store := setupTestModel(t)

	m = press(t, m, "n")
	require.Equal(t, ViewEdit, m.viewMode)
	assert.Equal(t, "Dana", m.formInputs[fieldStaffLead].Value())

	m = press(t, m, "Q", "u", "i", "n", "c", "y")
	m = press(t, m, "enter")
	require.NoError(t, m.err)
	assert.Equal(t, ViewList, m.viewMode)
	assert.Contains(t, m.View(), "Created Quincy")

	partners, err := store.ListPartners(context.Background(), db.ListOptions{})
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "Quincy", partners[0].Name)
	assert.Equal(t, "Dana", partners[0].StaffLead)
}

func TestNewPartnerFormRequiresName(t *testing.T) {
	m, _ := setupTestModel(t)

	m = press(t, m, "n", "enter")
	assert.Equal(t, ViewEdit, m.viewMode)
	assert.ErrorIs(t, m.err, crm.ErrValidation)
}

func TestDeleteFromDetail(t *testing.T) {
	m, store := setupTestModel(t, "Adams")

	m = press(t, m, "enter", "d")
	require.Equal(t, ViewConfirmDelete, m.viewMode)
	assert.Contains(t, m.View(), "Adams")

	m = press(t, m, "n")
	assert.Equal(t, ViewDetail, m.viewMode)

	m = press(t, m, "d", "y")
	assert.Equal(t, ViewList, m.viewMode)
	assert.Contains(t, m.View(), "Deleted Adams")

	partners, err := store.ListPartners(context.Background(), db.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, partners)
}

func TestPipelineGraph(t *testing.T) {
	m, _ := setupTestModel(t, "Adams")

	m = press(t, m, "tab", "tab", "g")
	require.Equal(t, ViewGraph, m.viewMode)
	require.NoError(t, m.err)
	assert.Contains(t, m.graphDOT, "digraph")

	m = press(t, m, "esc")
	assert.Equal(t, ViewList, m.viewMode)
}
