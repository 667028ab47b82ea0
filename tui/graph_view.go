package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/schoolcrm/viz"
)

func (m Model) renderPipeline() string {
	return viz.RenderDashboard(viz.GenerateDashboardStats(m.dir.Partners(), m.today()))
}

func (m Model) renderGraphView() string {
	var s strings.Builder

	// Title
	s.WriteString(titleStyle.Render("PIPELINE GRAPH"))
	s.WriteString("\n\n")
	s.WriteString(m.renderMessages())

	if m.graphDOT == "" && m.err == nil {
		s.WriteString("Generating graph...\n")
	} else {
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(m.graphDOT))
	}

	s.WriteString("\n\n")

	// Help
	s.WriteString(m.renderGraphHelp())

	return s.String()
}

func (m Model) renderGraphHelp() string {
	help := []string{
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.graphDOT = ""
		m.err = nil
	}

	return m, nil
}

func (m Model) generateGraph() tea.Cmd {
	partners := m.dir.Partners()
	return func() tea.Msg {
		dot, err := viz.GeneratePipelineGraph(context.Background(), partners)
		return graphMsg{dot: dot, err: err}
	}
}
