// ABOUTME: Delete confirmation view for TUI
// ABOUTME: Removes a partner and everything it owns after an explicit yes
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmDeleteView() string {
	title := warningStyle.Render("⚠  DELETE CONFIRMATION  ⚠")
	message := "Are you sure you want to delete this partner?"
	entityInfo := fmt.Sprintf("\nPARTNER: %s\n", m.deleteName)
	warning := "\nThis action cannot be undone!"
	if p := m.dir.Partner(m.deleteID); p != nil {
		warning = fmt.Sprintf("\n%d contacts, %d notes, %d tasks, and %d onboarding steps go with it.%s",
			len(p.Contacts), len(p.Notes), len(p.Tasks), len(p.Onboarding), warning)
	}

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Delete (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		message,
		entityInfo,
		warning,
		"",
		buttons,
	)

	box := confirmBoxStyle.Render(content)

	// Center the box on screen
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := m.dir.DeletePartner(context.Background(), m.deleteID); err != nil {
			m.err = err
			m.viewMode = m.deleteFrom
			return m, nil
		}
		name := m.deleteName
		m.deleteName = ""
		if m.deleteFrom == ViewDetail {
			return m.closeDetail("Deleted " + name)
		}
		m.status = "Deleted " + name
		m.viewMode = ViewList
		m.clampRow()
	case "n", "N", "esc":
		m.viewMode = m.deleteFrom
	}

	return m, nil
}
