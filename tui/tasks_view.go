// ABOUTME: TUI tab for the merged task list across partners
// ABOUTME: Shows urgency indicators and open, overdue, and due-today counts
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/harperreed/schoolcrm/models"
	"github.com/harperreed/schoolcrm/tasks"
)

func urgencyIndicator(it tasks.Item, today models.Date) string {
	switch tasks.Classify(it, today) {
	case tasks.UrgencyOverdue:
		return "🔴"
	case tasks.UrgencyDueToday:
		return "🟡"
	case tasks.UrgencyUpcoming:
		return "🟢"
	}
	return ""
}

func dueString(d *models.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func (m Model) renderTasksTable() string {
	today := m.today()
	items := m.visibleTasks()
	counts := tasks.Count(m.dir.Tasks(tasks.Filter{Status: tasks.FilterAll}), today)
	summary := fmt.Sprintf("%d open • %s • %s",
		counts.Open,
		overdueStyle.Render(fmt.Sprintf("%d overdue", counts.Overdue)),
		dueTodayStyle.Render(fmt.Sprintf("%d due today", counts.DueToday)))

	if len(items) == 0 {
		return summary + "\n\nNo open tasks."
	}

	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Task", Width: 32},
		{Title: "Partner", Width: 22},
		{Title: "Type", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Due", Width: 10},
	}

	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, table.Row{
			urgencyIndicator(it, today),
			it.Title,
			it.PartnerName,
			string(it.Kind),
			it.Status,
			dueString(it.Due),
		})
	}

	var s strings.Builder
	s.WriteString(summary)
	s.WriteString("\n\n")
	s.WriteString(m.newTable(columns, rows).View())
	return s.String()
}
