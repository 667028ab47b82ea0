package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/models"
)

// New-partner form fields, in tab order.
const (
	fieldName = iota
	fieldDistrict
	fieldCity
	fieldState
	fieldStaffLead
	fieldFollowUp
	fieldCount
)

func (m Model) renderEditView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("NEW PARTNER"))
	s.WriteString("\n\n")
	s.WriteString(m.renderMessages())

	labels := []string{"Name", "District", "City", "State", "Staff Lead", "Next Follow-up"}
	for i, input := range m.formInputs {
		s.WriteString(fieldLabelStyle.Render(labels[i] + ":"))
		s.WriteString(" ")
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		p, err := m.savePartner()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.status = "Created " + p.Name
		m.viewMode = ViewList
		m.tab = TabPartners
		m.selectedRow = 0
		for i, vp := range m.visiblePartners() {
			if vp.ID == p.ID {
				m.selectedRow = i
			}
		}
		return m, m.loadMeetings()
	}

	// Update current input
	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) initFormInputs() {
	inputs := make([]textinput.Model, fieldCount)
	placeholders := []string{"Lincoln Elementary", "District", "City", "State", "Staff lead", "YYYY-MM-DD"}
	limits := []int{100, 100, 60, 30, 60, 10}
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[i]
		inputs[i].CharLimit = limits[i]
	}
	inputs[fieldStaffLead].SetValue(m.staffLead)

	m.formInputs = inputs
	m.focusIndex = 0
	m.err = nil
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

func (m Model) savePartner() (*models.Partner, error) {
	value := func(i int) string { return strings.TrimSpace(m.formInputs[i].Value()) }

	next, err := models.ParseDatePtr(value(fieldFollowUp))
	if err != nil {
		return nil, fmt.Errorf("next follow-up must be YYYY-MM-DD")
	}

	return m.dir.CreatePartner(context.Background(), crm.PartnerInput{
		Name:         value(fieldName),
		District:     value(fieldDistrict),
		City:         value(fieldCity),
		State:        value(fieldState),
		StaffLead:    value(fieldStaffLead),
		NextFollowUp: next,
	})
}
