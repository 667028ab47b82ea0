// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Partners, Tasks, and Pipeline tabs over one directory, with a partner detail screen
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/harperreed/schoolcrm/calendar"
	"github.com/harperreed/schoolcrm/crm"
	"github.com/harperreed/schoolcrm/models"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
	ViewEdit
	ViewGraph
	ViewConfirmDelete
)

// Tab is a list screen
type Tab int

const (
	TabPartners Tab = iota
	TabTasks
	TabPipeline
)

var tabNames = []string{"Partners", "Tasks", "Pipeline"}

type Options struct {
	Store     crm.Store
	Calendar  *calendar.Client
	StaffLead string

	// Today overrides the clock in tests.
	Today func() models.Date
}

// Model is the main bubbletea model
type Model struct {
	store     crm.Store
	calendar  *calendar.Client
	staffLead string
	today     func() models.Date

	dir  *crm.Directory
	view *crm.PartnerView

	viewMode ViewMode
	tab      Tab

	// List view state
	selectedRow int
	searching   bool
	searchInput textinput.Model
	meetings    map[string]calendar.Meeting

	// Detail view state
	meeting *calendar.Meeting
	taskRow int

	// Edit view state
	formInputs []textinput.Model
	focusIndex int

	// Graph view state
	graphDOT string

	// Delete confirmation state
	deleteID   uuid.UUID
	deleteName string
	deleteFrom ViewMode

	// UI state
	status string
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model
func NewModel(opts Options) Model {
	if opts.Today == nil {
		opts.Today = models.Today
	}
	search := textinput.New()
	search.Placeholder = "Search"
	search.CharLimit = 100

	return Model{
		store:       opts.Store,
		calendar:    opts.Calendar,
		staffLead:   opts.StaffLead,
		today:       opts.Today,
		dir:         crm.NewDirectory(context.Background(), opts.Store),
		viewMode:    ViewList,
		tab:         TabPartners,
		searchInput: search,
		width:       80,
		height:      24,
	}
}

// Close releases the directory and any open detail view.
func (m Model) Close() {
	if m.view != nil {
		m.view.Close()
	}
	m.dir.Close()
}

type partnersLoadedMsg struct{ err error }

type meetingsLoadedMsg struct {
	meetings map[string]calendar.Meeting
}

type detailLoadedMsg struct {
	view  *crm.PartnerView
	found bool
	err   error
}

type meetingLoadedMsg struct {
	id      uuid.UUID
	meeting *calendar.Meeting
}

type graphMsg struct {
	dot string
	err error
}

func (m Model) Init() tea.Cmd {
	return m.loadPartners()
}

func (m Model) loadPartners() tea.Cmd {
	dir := m.dir
	return func() tea.Msg {
		return partnersLoadedMsg{err: dir.Refresh(context.Background())}
	}
}

// loadMeetings runs one batched calendar lookup for the whole list.
func (m Model) loadMeetings() tea.Cmd {
	if m.calendar == nil {
		return nil
	}
	cal, partners := m.calendar, m.dir.Partners()
	return func() tea.Msg {
		return meetingsLoadedMsg{meetings: cal.MeetingsFor(context.Background(), partners)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case partnersLoadedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.clampRow()
		return m, m.loadMeetings()
	case meetingsLoadedMsg:
		m.meetings = msg.meetings
		return m, nil
	case detailLoadedMsg:
		return m.handleDetailLoaded(msg)
	case meetingLoadedMsg:
		if m.view != nil && m.view.ID() == msg.id {
			m.meeting = msg.meeting
		}
		return m, nil
	case graphMsg:
		m.graphDOT, m.err = msg.dot, msg.err
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewDetail:
		return m.renderDetailView()
	case ViewEdit:
		return m.renderEditView()
	case ViewGraph:
		return m.renderGraphView()
	case ViewConfirmDelete:
		return m.renderConfirmDeleteView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// Text entry swallows q.
	if msg.String() == "q" && !m.searching && m.viewMode != ViewEdit {
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewDetail:
		return m.handleDetailKeys(msg)
	case ViewEdit:
		return m.handleEditKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	}

	return m, nil
}

// Run starts the full-screen program and blocks until it exits.
func Run(opts Options) error {
	m := NewModel(opts)
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dueTodayStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)

	progressFullStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	progressEmptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// renderMessages shows the last error or status line, if any.
func (m Model) renderMessages() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("Error: "+m.err.Error()) + "\n\n"
	case m.status != "":
		return statusStyle.Render(m.status) + "\n\n"
	}
	return ""
}
