package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/service"
)

// tickMsg is sent every second for time updates
type tickMsg time.Time

// refreshMsg is sent when the store changed
type refreshMsg struct{}

// Init initializes the model with a tick command
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.waitForRefresh())
}

func tickCmd() tea.Cmd {
	return tea.Every(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForRefresh listens for store change signals
func (m Model) waitForRefresh() tea.Cmd {
	if m.refreshChan == nil {
		return nil
	}
	return func() tea.Msg {
		<-m.refreshChan
		return refreshMsg{}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// The now indicator moves and items become due as time passes
		if m.hasSemester && m.weekOffset == 0 {
			m.loadData()
		}
		return m, tickCmd()

	case refreshMsg:
		m.loadData()
		return m, m.waitForRefresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Handle mode-specific input
		switch m.mode {
		case ModeAddCourse, ModeRenameCourse, ModeAddHomework, ModeAddSemester:
			return m.updateInput(msg)
		case ModeFilter:
			return m.updateFilter(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}

		// Normal mode key handling
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, keys.Quit):
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		m.pane = (m.pane + 1) % 3

	case key.Matches(msg, keys.Left):
		if m.pane > PaneCourses {
			m.pane--
		}

	case key.Matches(msg, keys.Right):
		if m.pane < PaneHomework {
			m.pane++
		}

	case key.Matches(msg, keys.Up):
		m.handleUp()

	case key.Matches(msg, keys.Down):
		m.handleDown()

	case msg.String() == "G":
		m.handleGoBottom()

	case key.Matches(msg, keys.MoveUp):
		m.handleMoveCourse(-1)

	case key.Matches(msg, keys.MoveDown):
		m.handleMoveCourse(1)

	case key.Matches(msg, keys.PrevWeek):
		m.weekOffset--
		m.loadData()

	case key.Matches(msg, keys.NextWeek):
		m.weekOffset++
		m.loadData()

	case key.Matches(msg, keys.Today):
		m.weekOffset = 0
		m.loadData()

	case key.Matches(msg, keys.Add):
		if m.pane == PaneHomework {
			return m.startAddHomework()
		}
		return m.startInput(ModeAddCourse, "", "Course name...")

	case key.Matches(msg, keys.Rename):
		if c := m.currentCourse(); c != nil {
			return m.startInput(ModeRenameCourse, c.Name, "Course name...")
		}

	case key.Matches(msg, keys.NewSemester):
		return m.startInput(ModeAddSemester, "", "Semester name, e.g. Spring 2025...")

	case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
		m.handleToggleDone()

	case key.Matches(msg, keys.Delete):
		m.handleDelete()

	case key.Matches(msg, keys.Semester):
		m.handleNextSemester()

	case key.Matches(msg, keys.Profile):
		m.handleNextProfile()

	case key.Matches(msg, keys.Completed):
		show := !m.store.Settings().ShowCompleted
		if err := m.services.Settings.Update(model.SettingsPatch{ShowCompleted: &show}); err != nil {
			m.message = fmt.Sprintf("Error: %v", err)
		} else if show {
			m.message = "Showing completed homework"
		} else {
			m.message = "Hiding completed homework"
		}
		m.loadData()

	case msg.String() == "/":
		m.pane = PaneHomework
		return m.startFilter()

	case msg.String() == "n":
		m.handleNextMatch()

	case msg.String() == "N":
		m.handlePrevMatch()

	case key.Matches(msg, keys.Escape):
		if m.filterText != "" {
			m.filterText = ""
			m.matchIndices = nil
			m.message = "Filter cleared"
		}

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m *Model) handleUp() {
	switch m.pane {
	case PaneCourses:
		if m.courseCursor > 0 {
			m.courseCursor--
		}
	case PaneHomework:
		if m.hwCursor > 0 {
			m.hwCursor--
		}
	case PaneWeek:
		m.weekOffset--
		m.loadData()
	}
}

func (m *Model) handleDown() {
	switch m.pane {
	case PaneCourses:
		if m.courseCursor < len(m.semester.Courses)-1 {
			m.courseCursor++
		}
	case PaneHomework:
		if m.hwCursor < len(m.homework)-1 {
			m.hwCursor++
		}
	case PaneWeek:
		m.weekOffset++
		m.loadData()
	}
}

func (m *Model) handleGoBottom() {
	switch m.pane {
	case PaneCourses:
		m.courseCursor = max(0, len(m.semester.Courses)-1)
	case PaneHomework:
		m.hwCursor = max(0, len(m.homework)-1)
	}
}

func (m *Model) handleMoveCourse(delta int) {
	c := m.currentCourse()
	if m.pane != PaneCourses || c == nil {
		return
	}
	if m.services.Courses.Move(c.ID, delta) {
		m.courseCursor += delta
		m.loadData()
	}
}

func (m Model) startInput(mode Mode, value, placeholder string) (tea.Model, tea.Cmd) {
	if mode != ModeAddSemester && !m.hasSemester {
		m.message = "Create a semester first (S)"
		return m, nil
	}
	m.mode = mode
	m.input.SetValue(value)
	m.input.Placeholder = placeholder
	m.input.Focus()
	m.input.CursorEnd()
	return m, textinput.Blink
}

func (m Model) startAddHomework() (tea.Model, tea.Cmd) {
	if m.currentCourse() == nil {
		m.message = "Select a course first"
		return m, nil
	}
	return m.startInput(ModeAddHomework, "", "Title @YYYY-MM-DD...")
}

func (m *Model) handleToggleDone() {
	if m.pane != PaneHomework {
		return
	}
	e := m.currentHomework()
	if e == nil {
		return
	}
	if m.services.Homework.Toggle(e.CourseID, e.Index) {
		m.loadData()
	}
}

func (m *Model) handleDelete() {
	switch m.pane {
	case PaneCourses:
		if c := m.currentCourse(); c != nil {
			name := c.Name
			if m.services.Courses.Delete(c.ID) {
				m.message = fmt.Sprintf("Deleted course: %s", name)
			}
		}
	case PaneHomework:
		if e := m.currentHomework(); e != nil {
			title := e.Item.Title
			if m.services.Homework.Delete(e.CourseID, e.Index) {
				m.message = fmt.Sprintf("Deleted homework: %s", title)
			}
		}
	}
	m.loadData()
}

func (m *Model) handleNextSemester() {
	sems := m.services.Semesters.List()
	if len(sems) == 0 {
		m.message = "No semesters yet (S to create)"
		return
	}
	next := sems[0]
	for i, s := range sems {
		if s.ID == m.semester.ID {
			next = sems[(i+1)%len(sems)]
			break
		}
	}
	m.services.Semesters.Select(next.ID)
	m.courseCursor, m.hwCursor = 0, 0
	m.loadData()
	m.message = fmt.Sprintf("Semester: %s", next.Name)
}

func (m *Model) handleNextProfile() {
	profiles := m.store.Profiles()
	if len(profiles) < 2 {
		m.message = "Only one profile. Create more with 'semplan profile new'"
		return
	}
	active := m.store.ActiveProfile().ID
	next := profiles[0]
	for i, p := range profiles {
		if p.ID == active {
			next = profiles[(i+1)%len(profiles)]
			break
		}
	}
	if err := m.store.SwitchProfile(context.Background(), next.ID); err != nil {
		m.message = fmt.Sprintf("Error switching profile: %v", err)
		return
	}
	m.courseCursor, m.hwCursor = 0, 0
	m.loadData()
	m.message = fmt.Sprintf("Profile: %s", next.Name)
}

func (m Model) startFilter() (tea.Model, tea.Cmd) {
	m.mode = ModeFilter
	m.input.SetValue(m.filterText)
	m.input.Placeholder = "/"
	m.input.Focus()
	return m, textinput.Blink
}

// applyFilter recomputes matches of filterText against homework titles
// and course names
func (m *Model) applyFilter() {
	m.matchIndices = nil
	m.matchCursor = 0
	if m.filterText == "" {
		return
	}
	q := strings.ToLower(m.filterText)
	for i, e := range m.homework {
		if strings.Contains(strings.ToLower(e.Item.Title), q) || strings.Contains(strings.ToLower(e.CourseName), q) {
			m.matchIndices = append(m.matchIndices, i)
		}
	}
}

func (m *Model) handleNextMatch() {
	if len(m.matchIndices) > 0 {
		m.matchCursor = (m.matchCursor + 1) % len(m.matchIndices)
		m.hwCursor = m.matchIndices[m.matchCursor]
		m.message = fmt.Sprintf("[%d/%d] matches", m.matchCursor+1, len(m.matchIndices))
	}
}

func (m *Model) handlePrevMatch() {
	if len(m.matchIndices) > 0 {
		m.matchCursor--
		if m.matchCursor < 0 {
			m.matchCursor = len(m.matchIndices) - 1
		}
		m.hwCursor = m.matchIndices[m.matchCursor]
		m.message = fmt.Sprintf("[%d/%d] matches", m.matchCursor+1, len(m.matchIndices))
	}
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.filterText = ""
		m.matchIndices = nil
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.mode = ModeNormal
		if len(m.matchIndices) > 0 {
			m.hwCursor = m.matchIndices[m.matchCursor]
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.filterText = m.input.Value()
	m.applyFilter()
	if len(m.matchIndices) > 0 {
		m.hwCursor = m.matchIndices[0]
	}
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = ModeNormal
		if value == "" {
			return m, nil
		}
		m.submitInput(mode, value)
		m.loadData()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submitInput(mode Mode, value string) {
	switch mode {
	case ModeAddCourse:
		c, err := m.services.Courses.Add(value, service.CoursePatch{})
		if err != nil {
			m.message = fmt.Sprintf("Error adding course: %v", err)
			return
		}
		m.courseCursor = len(m.semester.Courses)
		m.message = fmt.Sprintf("Added: %s", c.Name)

	case ModeRenameCourse:
		c := m.currentCourse()
		if c == nil {
			return
		}
		if m.services.Courses.Update(c.ID, service.CoursePatch{Name: &value}) {
			m.message = fmt.Sprintf("Renamed to: %s", value)
		}

	case ModeAddHomework:
		c := m.currentCourse()
		if c == nil {
			return
		}
		title, due := parseHomeworkInput(value)
		if err := m.services.Homework.Add(c.ID, title, due); err != nil {
			m.message = fmt.Sprintf("Error adding homework: %v", err)
			return
		}
		m.message = fmt.Sprintf("Added to %s: %s", c.Name, title)

	case ModeAddSemester:
		sem, err := m.services.Semesters.Create(value)
		if err != nil {
			m.message = fmt.Sprintf("Error creating semester: %v", err)
			return
		}
		m.courseCursor, m.hwCursor = 0, 0
		m.message = fmt.Sprintf("Created semester: %s", sem.Name)
	}
}
