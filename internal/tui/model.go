package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/semplan/internal/calendar"
	"github.com/existflow/semplan/internal/logger"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/service"
	"github.com/existflow/semplan/internal/store"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneCourses Pane = iota
	PaneWeek
	PaneHomework
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeAddCourse
	ModeRenameCourse
	ModeAddHomework
	ModeAddSemester
	ModeFilter
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	store    *store.Store
	services *service.Services
	now      func() time.Time

	// Store change notifications
	refreshChan chan struct{}
	unsubscribe func()

	// Derived from the store on every refresh
	semester    model.Semester
	hasSemester bool
	week        calendar.Week
	homework    []service.HomeworkEntry

	// UI state
	width        int
	height       int
	pane         Pane
	mode         Mode
	courseCursor int
	hwCursor     int
	weekOffset   int // weeks from the current one

	// Input
	input textinput.Model

	// Filter (vim-style) over the homework list
	filterText   string
	matchIndices []int
	matchCursor  int

	message string
}

// NewModel creates a new TUI model over an opened store
func NewModel(st *store.Store, services *service.Services) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		store:       st,
		services:    services,
		now:         time.Now,
		pane:        PaneCourses,
		mode:        ModeNormal,
		input:       ti,
		refreshChan: make(chan struct{}, 1), // Buffered to avoid blocking
	}

	refresh := m.refreshChan
	m.unsubscribe = st.Subscribe(func() {
		// Non-blocking send to trigger UI refresh
		select {
		case refresh <- struct{}{}:
		default:
		}
	})

	m.loadData()
	logger.Debug("TUI model initialized",
		logger.F("semester", m.semester.Name),
		logger.F("courses", len(m.semester.Courses)))
	return m
}

// weekTime is a moment in the displayed week
func (m *Model) weekTime() time.Time {
	return m.now().AddDate(0, 0, 7*m.weekOffset)
}

func (m *Model) loadData() {
	m.semester, m.hasSemester = m.store.CurrentSemester()
	if !m.hasSemester {
		m.week = calendar.Week{}
		m.homework = nil
		m.courseCursor, m.hwCursor = 0, 0
		return
	}

	m.week = calendar.BuildWeek(m.semester, m.weekTime())
	if m.weekOffset != 0 {
		m.week.Now = nil
	}
	m.homework = service.Sidebar(m.semester, m.store.Settings().ShowCompleted, m.now())

	if m.courseCursor >= len(m.semester.Courses) {
		m.courseCursor = max(0, len(m.semester.Courses)-1)
	}
	if m.hwCursor >= len(m.homework) {
		m.hwCursor = max(0, len(m.homework)-1)
	}
	if m.filterText != "" {
		m.applyFilter()
	}
}

func (m *Model) currentCourse() *model.Course {
	if m.hasSemester && m.courseCursor < len(m.semester.Courses) {
		return &m.semester.Courses[m.courseCursor]
	}
	return nil
}

func (m *Model) currentHomework() *service.HomeworkEntry {
	if m.hwCursor < len(m.homework) {
		return &m.homework[m.hwCursor]
	}
	return nil
}
