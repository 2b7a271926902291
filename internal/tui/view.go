package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/semplan/internal/calendar"
)

const (
	sidebarWidth  = 24
	homeworkWidth = 36
	hourLabel     = 6
)

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sidebar := m.renderSidebar()
	week := m.renderWeek()
	homework := m.renderHomework()
	statusBar := m.renderStatusBar()

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, week, homework)

	// Add modal if in input mode
	switch m.mode {
	case ModeAddCourse, ModeRenameCourse, ModeAddHomework, ModeAddSemester:
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	case ModeHelp:
		mainContent = m.renderHelp()
	}

	// Combine with status bar
	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) renderSidebar() string {
	var s string

	// Header with time
	header := themed(m.store.Settings().Theme).Bold(true).Foreground(Primary)
	s += header.Render("SemPlan") + "\n"
	s += HelpStyle.Render(m.now().Format("Mon 02/01 15:04")) + "\n"
	s += HelpStyle.Render(truncate(m.store.ActiveProfile().Name, sidebarWidth-4)) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", sidebarWidth-4)) + "\n\n"

	if !m.hasSemester {
		s += HelpStyle.Render("No semester yet.\nPress S to create one.")
		return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(s)
	}

	s += lipgloss.NewStyle().Bold(true).Render(truncate(m.semester.Name, sidebarWidth-4)) + "\n\n"

	for i, c := range m.semester.Courses {
		cursor := "  "
		style := ItemStyle
		if i == m.courseCursor {
			cursor = "❯ "
			if m.pane == PaneCourses {
				style = ItemSelectedStyle
			}
		}
		swatch := CourseStyle(c.Color).Render(" ")
		s += style.Render(cursor) + swatch + style.Render(truncate(c.Name, sidebarWidth-9)) + "\n"
	}
	if len(m.semester.Courses) == 0 {
		s += HelpStyle.Render("No courses.\nPress a to add one.") + "\n"
	}

	s += "\n" + lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", sidebarWidth-4)) + "\n"
	s += HelpStyle.Render("s semester  p profile")

	return SidebarStyle.Width(sidebarWidth).Height(m.height - 2).Render(s)
}

type weekCell struct {
	block calendar.Block
	first bool // the block starts in this row
}

// weekCells maps (day, hour) to the block covering it
func weekCells(w calendar.Week) map[[2]int]weekCell {
	cells := map[[2]int]weekCell{}
	for _, b := range w.Blocks {
		rows := int(math.Ceil((b.Top + b.Height) / calendar.HourHeight))
		for r := 0; r < max(rows, 1); r++ {
			k := [2]int{b.Day, b.Hour + r}
			if _, taken := cells[k]; taken && r > 0 {
				continue
			}
			cells[k] = weekCell{block: b, first: r == 0}
		}
	}
	return cells
}

func (m Model) renderWeek() string {
	width := max(m.width-sidebarWidth-homeworkWidth-4, 20)
	style := WeekStyle.Width(width).Height(m.height - 2)
	if !m.hasSemester {
		return style.Render("")
	}

	w := m.week
	var s string
	title := fmt.Sprintf("%s - %s", w.Start.Format("Jan 2"), w.End.Format("Jan 2, 2006"))
	if m.weekOffset == 0 {
		title += "  (this week)"
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(Primary)
	if m.pane == PaneWeek {
		titleStyle = titleStyle.Underline(true)
	}
	s += titleStyle.Render(title) + "\n\n"

	days := w.Grid.Days
	if len(days) == 0 {
		return style.Render(s + HelpStyle.Render("No visible days."))
	}
	cellWidth := max((width-hourLabel-2)/len(days), 5)

	// Day headers
	s += strings.Repeat(" ", hourLabel)
	for _, d := range days {
		label := fmt.Sprintf("%s %s", shortDays[d], w.Start.AddDate(0, 0, d).Format("02"))
		hs := lipgloss.NewStyle().Bold(true)
		if w.Now != nil && w.Now.Day == d {
			hs = hs.Foreground(NowColor)
		}
		s += hs.Render(pad(truncate(label, cellWidth-1), cellWidth))
	}
	s += "\n"

	// Homework and exams of the week, under each day
	maxEvents := 0
	for _, d := range days {
		maxEvents = max(maxEvents, len(w.Events[d]))
	}
	for row := 0; row < maxEvents; row++ {
		s += strings.Repeat(" ", hourLabel)
		for _, d := range days {
			events := w.Events[d]
			if row >= len(events) {
				s += strings.Repeat(" ", cellWidth)
				continue
			}
			s += renderEvent(events[row], cellWidth)
		}
		s += "\n"
	}

	// Hour rows. The last hour is the closing boundary.
	cells := weekCells(w)
	hours := w.Grid.Hours
	for i, h := range hours {
		if i == len(hours)-1 {
			break
		}
		label := fmt.Sprintf("%02d:00 ", h)
		if w.Now != nil && w.Now.Hour == h {
			label = lipgloss.NewStyle().Foreground(NowColor).Render(fmt.Sprintf("%02d:%02d▸", h, m.now().Minute()))
		} else {
			label = HelpStyle.Render(label)
		}
		s += label
		for _, d := range days {
			cell, ok := cells[[2]int{d, h}]
			switch {
			case ok && cell.first:
				text := truncate(cell.block.CourseName, cellWidth-2)
				s += CourseStyle(cell.block.Color).Render(pad(" "+text, cellWidth-1)) + " "
			case ok:
				loc := truncate(cell.block.Location, cellWidth-2)
				s += CourseStyle(cell.block.Color).Render(pad(" "+loc, cellWidth-1)) + " "
			default:
				s += lipgloss.NewStyle().Foreground(Border).Render(pad("·", cellWidth))
			}
		}
		s += "\n"
	}

	return style.Render(s)
}

func renderEvent(e calendar.Event, width int) string {
	if e.Type == calendar.EventExam {
		slot := "A"
		if e.ExamSlot == calendar.SlotMoedB {
			slot = "B"
		}
		text := truncate(fmt.Sprintf("📝%s %s", slot, e.CourseName), width-2)
		return lipgloss.NewStyle().Foreground(ExamColor).Bold(true).Render(pad(text, width))
	}
	icon := "○ "
	st := lipgloss.NewStyle().Foreground(DueSoon)
	if e.Completed {
		icon = "✓ "
		st = lipgloss.NewStyle().Foreground(TextMuted).Strikethrough(true)
	}
	return st.Render(pad(truncate(icon+e.Title, width-1), width))
}

func (m Model) renderHomework() string {
	var s string
	open := 0
	for _, e := range m.homework {
		if !e.Item.Completed {
			open++
		}
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(Primary)
	if m.pane == PaneHomework {
		titleStyle = titleStyle.Underline(true)
	}
	s += titleStyle.Render(fmt.Sprintf("Homework (%d open)", open)) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(strings.Repeat("─", homeworkWidth-4)) + "\n\n"

	if len(m.homework) == 0 {
		s += HelpStyle.Render("  Nothing due. Press 'a' to add.")
	}

	matched := map[int]bool{}
	for _, idx := range m.matchIndices {
		matched[idx] = true
	}

	for i, e := range m.homework {
		cursor := "  "
		style := HomeworkStyle(e.Overdue, e.DueSoon, e.Item.Completed)
		if i == m.hwCursor && m.pane == PaneHomework {
			cursor = "❯ "
			style = style.Inherit(ItemSelectedStyle)
		} else if matched[i] {
			style = style.Foreground(Highlight)
		}

		icon := "[ ]"
		if e.Item.Completed {
			icon = "[x]"
		}
		due := e.Item.DueDate
		if len(due) == len("2006-01-02") {
			due = due[5:]
		}
		swatch := CourseStyle(e.Color).Render(" ")
		line := fmt.Sprintf("%s%s %s", cursor, icon, pad(truncate(e.Item.Title, homeworkWidth-19), homeworkWidth-19))
		s += style.Render(line) + swatch + HelpStyle.Render(" "+due) + "\n"
	}

	return HomeworkPaneStyle.Width(homeworkWidth).Height(m.height - 2).Render(s)
}

func (m Model) renderStatusBar() string {
	// When in filter mode, show inline search input (like vim)
	if m.mode == ModeFilter {
		matches := ""
		if len(m.matchIndices) > 0 {
			matches = fmt.Sprintf(" [%d/%d]", m.matchCursor+1, len(m.matchIndices))
		} else if m.filterText != "" {
			matches = " [no match]"
		}
		return StatusBarStyle.Width(m.width).Render("/" + m.input.View() + matches)
	}

	help := "a:add  x:done  d:del  [/]:week  s:semester  S:new semester  /:search  ?:help  q:quit"
	if m.filterText != "" {
		if len(m.matchIndices) > 0 {
			help = fmt.Sprintf("/%s  [%d/%d matches]  n:next  N:prev  Esc:clear",
				m.filterText, m.matchCursor+1, len(m.matchIndices))
		} else {
			help = fmt.Sprintf("/%s  [no matches]  Esc:clear", m.filterText)
		}
	} else if m.message != "" {
		help = m.message
	}

	// Pending writes (right aligned)
	if m.store.Pending() {
		saving := "Saving..."
		avail := m.width - len(help) - len(saving) - 2
		if avail > 0 {
			help += strings.Repeat(" ", avail) + saving
		} else {
			help += " " + saving
		}
	}

	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderModal() string {
	title := "Add Course"
	switch m.mode {
	case ModeRenameCourse:
		title = "Rename Course"
	case ModeAddSemester:
		title = "New Semester"
	case ModeAddHomework:
		if c := m.currentCourse(); c != nil {
			title = fmt.Sprintf("Add Homework to: %s", c.Name)
		}
	}
	if m.mode == ModeAddCourse && m.hasSemester {
		title = fmt.Sprintf("Add Course to: %s", m.semester.Name)
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:save  Esc:cancel")

	return ModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ─────────╮
│                                │
│  Navigation                    │
│  ──────────                    │
│  j/↓ k/↑  Move / change week   │
│  h/l Tab  Switch pane          │
│  [ ]      Previous/next week   │
│  t        This week            │
│  G        Go to bottom         │
│                                │
│  Actions                       │
│  ───────                       │
│  a        Add course/homework  │
│  e        Rename course        │
│  K/J      Move course          │
│  x/Enter  Toggle done          │
│  d        Delete               │
│  c        Show/hide completed  │
│  /        Search homework      │
│                                │
│  Other                         │
│  ─────                         │
│  s/S      Next/new semester    │
│  p        Next profile         │
│  ?        Toggle help          │
│  q        Quit                 │
│                                │
╰────────────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}
