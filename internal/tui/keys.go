package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Tab         key.Binding
	Enter       key.Binding
	Add         key.Binding
	Done        key.Binding
	Delete      key.Binding
	Rename      key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	PrevWeek    key.Binding
	NextWeek    key.Binding
	Today       key.Binding
	Semester    key.Binding
	NewSemester key.Binding
	Profile     key.Binding
	Completed   key.Binding
	Help        key.Binding
	Quit        key.Binding
	Escape      key.Binding
}

var keys = keyMap{
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left pane")),
	Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right pane")),
	Tab:         key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select/toggle")),
	Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add course/homework")),
	Done:        key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
	Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Rename:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename course")),
	MoveUp:      key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move course up")),
	MoveDown:    key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move course down")),
	PrevWeek:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous week")),
	NextWeek:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next week")),
	Today:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
	Semester:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "next semester")),
	NewSemester: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "new semester")),
	Profile:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "next profile")),
	Completed:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "show/hide completed")),
	Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}
