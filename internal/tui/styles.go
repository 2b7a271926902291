package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/existflow/semplan/internal/model"
)

// Color palette based on TUI design
var (
	// Homework status colors
	Overdue   = lipgloss.Color("#FF6B6B") // Red
	DueSoon   = lipgloss.Color("#FFB347") // Orange
	ExamColor = lipgloss.Color("#FFE66D") // Yellow
	Completed = lipgloss.Color("#95E1A3") // Green
	NowColor  = lipgloss.Color("#FF6B6B")

	// UI colors
	Primary    = lipgloss.Color("#4ECDC4")
	Secondary  = lipgloss.Color("#6C757D")
	Background = lipgloss.Color("#1a1a2e")
	Surface    = lipgloss.Color("#16213e")
	Text       = lipgloss.Color("#FFFFFF")
	TextMuted  = lipgloss.Color("#888888")
	Border     = lipgloss.Color("#333333")
	Highlight  = lipgloss.Color("#4ECDC4")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Course sidebar
	SidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	// Week grid
	WeekStyle = lipgloss.NewStyle().
			Padding(1, 1)

	// Homework sidebar
	HomeworkPaneStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderLeft(true).
				BorderForeground(Border).
				Padding(1, 1)

	// List items
	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	ItemDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// themed adjusts the base palette for the light theme
func themed(theme string) lipgloss.Style {
	if theme == model.ThemeLight {
		return lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#222222", Dark: "#FFFFFF"})
	}
	return lipgloss.NewStyle().Foreground(Text)
}

// CourseStyle renders a course block in its color with readable text
func CourseStyle(hex string) lipgloss.Style {
	c, err := colorful.Hex(hex)
	if err != nil {
		return lipgloss.NewStyle().Background(Secondary).Foreground(Text)
	}
	fg := lipgloss.Color("#FFFFFF")
	if l, _, _ := c.Lab(); l > 0.6 {
		fg = lipgloss.Color("#111111")
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Foreground(fg)
}

// HomeworkStyle colors a homework line by due state
func HomeworkStyle(overdue, dueSoon, done bool) lipgloss.Style {
	switch {
	case done:
		return ItemDoneStyle
	case overdue:
		return ItemStyle.Foreground(Overdue)
	case dueSoon:
		return ItemStyle.Foreground(DueSoon)
	default:
		return ItemStyle
	}
}
