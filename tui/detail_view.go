package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
	"github.com/harperreed/schoolcrm/viz"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginTop(1)
)

const recentNotes = 3

// openDetail swaps in a fresh view for id. Any previous view is closed so
// its late results are dropped.
func (m Model) openDetail(id uuid.UUID) (tea.Model, tea.Cmd) {
	if m.view != nil {
		m.view.Close()
	}
	v := crm.NewPartnerView(context.Background(), m.store, id)
	m.view = v
	m.meeting = nil
	m.taskRow = 0
	m.status = ""
	m.err = nil
	m.viewMode = ViewDetail

	return m, func() tea.Msg {
		found, err := v.Refresh(context.Background())
		return detailLoadedMsg{view: v, found: found, err: err}
	}
}

func (m Model) handleDetailLoaded(msg detailLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.view != m.view {
		return m, nil
	}
	switch {
	case msg.err != nil:
		m.err = msg.err
		return m, nil
	case !msg.found:
		return m.closeDetail("Partner not found")
	}

	if m.calendar == nil {
		return m, nil
	}
	cal, p := m.calendar, msg.view.Partner()
	return m, func() tea.Msg {
		return meetingLoadedMsg{id: p.ID, meeting: cal.MeetingFor(context.Background(), p)}
	}
}

// closeDetail returns to the list and reloads it, since the detail screen
// may have changed the partner.
func (m Model) closeDetail(status string) (tea.Model, tea.Cmd) {
	if m.view != nil {
		m.view.Close()
		m.view = nil
	}
	m.meeting = nil
	m.viewMode = ViewList
	m.status = status
	return m, m.loadPartners()
}

func (m Model) renderDetailView() string {
	var s strings.Builder

	p := m.view.Partner()
	if p == nil {
		s.WriteString(titleStyle.Render("PARTNER"))
		s.WriteString("\n\n")
		s.WriteString(m.renderMessages())
		if m.err == nil {
			s.WriteString("Loading...\n")
		}
		s.WriteString(m.renderDetailHelp())
		return s.String()
	}

	// Title
	s.WriteString(titleStyle.Render(strings.ToUpper(p.Name)))
	s.WriteString("\n\n")
	s.WriteString(m.renderMessages())

	s.WriteString(m.renderField("Status", p.Status))
	s.WriteString(m.renderField("Priority", p.Priority))
	s.WriteString(m.renderField("Health", p.PartnershipHealth))
	s.WriteString(m.renderField("Staff Lead", p.StaffLead))
	s.WriteString(m.renderField("District", p.District))
	s.WriteString(m.renderField("Location", strings.Trim(p.City+", "+p.State, ", ")))
	if p.StudentCount > 0 {
		s.WriteString(m.renderField("Students", strconv.Itoa(p.StudentCount)))
	}
	if p.ContractValue > 0 {
		s.WriteString(m.renderField("Contract Value", viz.FormatCents(p.ContractValue)))
	}
	s.WriteString(m.renderField("Next Action", calendar.ResolveNextAction(p, m.meeting).String()))

	s.WriteString(sectionStyle.Render("CONTACTS"))
	s.WriteString("\n")
	if len(p.Contacts) == 0 {
		s.WriteString("  -\n")
	}
	for _, c := range p.Contacts {
		star := " "
		if c.IsPrimary {
			star = "★"
		}
		fmt.Fprintf(&s, "  %s %s", star, c.Name)
		if c.Role != "" {
			fmt.Fprintf(&s, " (%s)", c.Role)
		}
		fmt.Fprintf(&s, "  %s\n", c.Email)
	}

	s.WriteString(sectionStyle.Render("TASKS"))
	s.WriteString("\n")
	s.WriteString(m.renderDetailTasks())

	s.WriteString(sectionStyle.Render("ONBOARDING"))
	s.WriteString("\n")
	s.WriteString(m.renderOnboarding(p))

	if len(p.Notes) > 0 {
		s.WriteString(sectionStyle.Render("RECENT NOTES"))
		s.WriteString("\n")
		for i, n := range p.Notes {
			if i == recentNotes {
				break
			}
			fmt.Fprintf(&s, "  %s  %-10s %s\n", n.Date, n.Type, firstLine(n.Content))
		}
	}

	s.WriteString("\n")

	// Help
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func (m Model) renderDetailTasks() string {
	items := m.view.Tasks()
	if len(items) == 0 {
		return "  -\n"
	}

	today := m.today()
	var s strings.Builder
	for i, it := range items {
		cursor := "  "
		if i == m.taskRow {
			cursor = "› "
		}
		check := "[ ]"
		if it.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s", check, it.Title)
		if it.Due != nil {
			line += "  due " + it.Due.String()
		}
		switch {
		case it.Completed:
			line = doneStyle.Render(line)
		case tasks.Classify(it, today) == tasks.UrgencyOverdue:
			line = overdueStyle.Render(line)
		case tasks.Classify(it, today) == tasks.UrgencyDueToday:
			line = dueTodayStyle.Render(line)
		}
		s.WriteString(cursor + line + "\n")
	}
	return s.String()
}

func (m Model) renderOnboarding(p *models.Partner) string {
	progress := m.view.Progress()

	var s strings.Builder
	fmt.Fprintf(&s, "  %s %d/%d  %.0f%%\n", renderProgress(progress, 20), progress.Completed, progress.Total, progress.Percent())
	for i, t := range p.Onboarding {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s", check, t.DisplayText())
		if t.Completed {
			line = doneStyle.Render(line)
		}
		fmt.Fprintf(&s, "  %d. %s\n", i+1, line)
	}
	return s.String()
}

func renderProgress(p tasks.Progress, width int) string {
	filled := p.Width(width)
	return progressFullStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("%s %s\n",
		fieldLabelStyle.Render(label+":"),
		fieldValueStyle.Render(value))
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"Esc: Back",
		"↑/↓: Select task",
		"x: Toggle task",
		"1-9: Toggle onboarding step",
		"d: Delete",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	m.status = ""

	switch key {
	case "esc":
		return m.closeDetail("")
	case "up", "k":
		if m.taskRow > 0 {
			m.taskRow--
		}
	case "down", "j":
		if m.taskRow < len(m.view.Tasks())-1 {
			m.taskRow++
		}
	case "x", " ", "space":
		items := m.view.Tasks()
		if m.taskRow < len(items) {
			it := items[m.taskRow]
			m.err = m.view.SetTaskStatus(context.Background(), it.ID, tasks.ToggleStatus(it))
		}
	case "d":
		if p := m.view.Partner(); p != nil {
			m.deleteID, m.deleteName, m.deleteFrom = p.ID, p.Name, ViewDetail
			m.viewMode = ViewConfirmDelete
		}
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 {
			m.toggleOnboarding(n)
		}
	}

	return m, nil
}

func (m *Model) toggleOnboarding(step int) {
	p := m.view.Partner()
	if p == nil || step > len(p.Onboarding) {
		return
	}
	t := p.Onboarding[step-1]
	m.err = m.view.ToggleOnboarding(context.Background(), t.ID)
}
