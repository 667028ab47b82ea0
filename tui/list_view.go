package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
)

func (m Model) renderListView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("SCHOOL PARTNER CRM"))
	s.WriteString("\n\n")

	// Tabs
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching || m.searchInput.Value() != "" {
		s.WriteString(m.searchInput.View())
		s.WriteString("\n\n")
	}
	s.WriteString(m.renderMessages())

	// Table
	switch m.tab {
	case TabPartners:
		s.WriteString(m.renderPartnersTable())
	case TabTasks:
		s.WriteString(m.renderTasksTable())
	case TabPipeline:
		s.WriteString(m.renderPipeline())
	}
	s.WriteString("\n\n")

	// Help
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string

	for i, tab := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// visiblePartners applies the search box to the loaded partners.
func (m Model) visiblePartners() []models.Partner {
	partners := m.dir.Partners()
	query := strings.ToLower(strings.TrimSpace(m.searchInput.Value()))
	if query == "" {
		return partners
	}
	out := partners[:0]
	for _, p := range partners {
		if strings.Contains(strings.ToLower(p.Name), query) ||
			strings.Contains(strings.ToLower(p.District), query) ||
			strings.Contains(strings.ToLower(p.City), query) {
			out = append(out, p)
		}
	}
	return out
}

func (m Model) visibleTasks() []tasks.Item {
	return m.dir.Tasks(tasks.Filter{Search: strings.TrimSpace(m.searchInput.Value())})
}

func (m Model) rowCount() int {
	switch m.tab {
	case TabPartners:
		return len(m.visiblePartners())
	case TabTasks:
		return len(m.visibleTasks())
	}
	return 0
}

func (m *Model) clampRow() {
	if n := m.rowCount(); m.selectedRow >= n {
		m.selectedRow = max(n-1, 0)
	}
}

func (m Model) nextAction(p *models.Partner) calendar.NextAction {
	var meeting *calendar.Meeting
	if mt, ok := m.meetings[p.ID.String()]; ok {
		meeting = &mt
	}
	return calendar.ResolveNextAction(p, meeting)
}

func (m Model) renderPartnersTable() string {
	partners := m.visiblePartners()
	if len(partners) == 0 {
		return "No partners yet. Press n to add one."
	}

	columns := []table.Column{
		{Title: "Name", Width: 28},
		{Title: "Status", Width: 20},
		{Title: "Priority", Width: 8},
		{Title: "Lead", Width: 12},
		{Title: "Onboarding", Width: 10},
		{Title: "Next Action", Width: 30},
	}

	rows := make([]table.Row, 0, len(partners))
	for i := range partners {
		p := &partners[i]
		progress := tasks.ChecklistProgress(p.Onboarding)
		rows = append(rows, table.Row{
			p.Name,
			p.Status,
			p.Priority,
			p.StaffLead,
			fmt.Sprintf("%d/%d", progress.Completed, progress.Total),
			m.nextAction(p).String(),
		})
	}

	return m.newTable(columns, rows).View()
}

func (m Model) newTable(columns []table.Column, rows []table.Row) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-12, 3)),
	)

	// Set selected row
	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}
	return t
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"/: Search",
	}
	switch m.tab {
	case TabPartners:
		help = append(help, "Enter: View details", "n: New", "d: Delete")
	case TabTasks:
		help = append(help, "Enter: Open partner", "x: Toggle done")
	case TabPipeline:
		help = append(help, "g: DOT graph")
	}
	help = append(help, "r: Reload", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}
	m.status = ""

	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
	case "/":
		m.searching = true
		cmd := m.searchInput.Focus()
		return m, cmd
	case "r":
		m.err = nil
		return m, m.loadPartners()
	case "enter":
		return m.openSelected()
	case "n":
		if m.tab == TabPartners {
			m.initFormInputs()
			m.viewMode = ViewEdit
			return m, textinput.Blink
		}
	case "d":
		if m.tab == TabPartners {
			if partners := m.visiblePartners(); m.selectedRow < len(partners) {
				p := partners[m.selectedRow]
				m.deleteID, m.deleteName, m.deleteFrom = p.ID, p.Name, ViewList
				m.viewMode = ViewConfirmDelete
			}
		}
	case "x", " ", "space":
		if m.tab == TabTasks {
			return m.toggleListTask()
		}
	case "g":
		if m.tab == TabPipeline {
			m.viewMode = ViewGraph
			m.graphDOT = ""
			return m, m.generateGraph()
		}
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.selectedRow = 0
	return m, cmd
}

// openSelected opens the detail screen for the selected partner, or for the
// partner that owns the selected task.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	switch m.tab {
	case TabPartners:
		partners := m.visiblePartners()
		if m.selectedRow < len(partners) {
			return m.openDetail(partners[m.selectedRow].ID)
		}
	case TabTasks:
		items := m.visibleTasks()
		if m.selectedRow < len(items) {
			return m.openDetail(items[m.selectedRow].PartnerID)
		}
	}
	return m, nil
}

// toggleListTask flips the selected task between complete and not started,
// then the directory reloads so the list shows what was stored.
func (m Model) toggleListTask() (tea.Model, tea.Cmd) {
	items := m.visibleTasks()
	if m.selectedRow >= len(items) {
		return m, nil
	}
	it := items[m.selectedRow]
	if it.Kind == tasks.KindOnboarding {
		m.status = "Onboarding steps are checked off from the partner's checklist"
		return m, nil
	}

	m.err = m.dir.SetTaskStatus(context.Background(), it, tasks.ToggleStatus(it))
	if m.err == nil {
		m.status = fmt.Sprintf("%s: %s", it.Title, tasks.ToggleStatus(it))
	}
	m.clampRow()
	return m, nil
}
