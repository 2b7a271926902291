package model

// Color themes for course colors
const (
	ColorThemeColorful = "colorful"
	ColorThemeSingle   = "single"
	ColorThemeMono     = "mono"
)

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Default calendar window
const (
	DefaultStartHour = 8
	DefaultEndHour   = 20
)

// AppSettings are per-profile preferences
type AppSettings struct {
	Theme         string `json:"theme"`
	ShowCompleted bool   `json:"showCompleted"`
	ColorTheme    string `json:"colorTheme"`
	BaseColorHue  int    `json:"baseColorHue"`
}

// DefaultSettings returns the settings of a fresh profile
func DefaultSettings() AppSettings {
	return AppSettings{
		Theme:         ThemeLight,
		ShowCompleted: true,
		ColorTheme:    ColorThemeColorful,
		BaseColorHue:  210,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left alone.
type SettingsPatch struct {
	Theme         *string `json:"theme,omitempty"`
	ShowCompleted *bool   `json:"showCompleted,omitempty"`
	ColorTheme    *string `json:"colorTheme,omitempty"`
	BaseColorHue  *int    `json:"baseColorHue,omitempty"`
}

// Apply shallow-merges the patch into s
func (p SettingsPatch) Apply(s *AppSettings) {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.ShowCompleted != nil {
		s.ShowCompleted = *p.ShowCompleted
	}
	if p.ColorTheme != nil {
		s.ColorTheme = *p.ColorTheme
	}
	if p.BaseColorHue != nil {
		s.BaseColorHue = *p.BaseColorHue
	}
}

// CalendarSettings controls the visible window of a semester's week grid
type CalendarSettings struct {
	StartHour   int   `json:"startHour"`
	EndHour     int   `json:"endHour"`
	VisibleDays []int `json:"visibleDays"` // 0=Sunday
}

// DefaultCalendarSettings returns 08:00-20:00, Sunday to Friday
func DefaultCalendarSettings() CalendarSettings {
	return CalendarSettings{
		StartHour:   DefaultStartHour,
		EndHour:     DefaultEndHour,
		VisibleDays: []int{0, 1, 2, 3, 4, 5},
	}
}

// Valid reports whether the window is non-empty and within a day
func (c CalendarSettings) Valid() bool {
	if c.StartHour < 0 || c.EndHour > 24 || c.StartHour >= c.EndHour {
		return false
	}
	if len(c.VisibleDays) == 0 {
		return false
	}
	for _, d := range c.VisibleDays {
		if d < 0 || d > 6 {
			return false
		}
	}
	return true
}

// IsVisible reports whether weekday is shown
func (c CalendarSettings) IsVisible(weekday int) bool {
	for _, d := range c.VisibleDays {
		if d == weekday {
			return true
		}
	}
	return false
}

// Semester is a named academic term
type Semester struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Courses          []Course         `json:"courses"`
	CalendarSettings CalendarSettings `json:"calendarSettings"`
}

// NewSemester creates an empty semester with the default calendar window
func NewSemester(id, name string) Semester {
	return Semester{
		ID:               id,
		Name:             name,
		Courses:          []Course{},
		CalendarSettings: DefaultCalendarSettings(),
	}
}

// Course returns the course with the given id
func (s *Semester) Course(id string) (*Course, bool) {
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return &s.Courses[i], true
		}
	}
	return nil, false
}

// CourseIndex returns the position of the course or -1
func (s *Semester) CourseIndex(id string) int {
	for i := range s.Courses {
		if s.Courses[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the semester
func (s Semester) Clone() Semester {
	courses := make([]Course, len(s.Courses))
	for i, c := range s.Courses {
		courses[i] = c.Clone()
	}
	s.Courses = courses
	s.CalendarSettings.VisibleDays = append([]int{}, s.CalendarSettings.VisibleDays...)
	return s
}

// AppData is the root persisted unit of one profile
type AppData struct {
	Semesters    []Semester  `json:"semesters"`
	Settings     AppSettings `json:"settings"`
	LastModified int64       `json:"lastModified"` // Unix milliseconds
}

// DefaultAppData returns an empty dataset
func DefaultAppData() AppData {
	return AppData{
		Semesters: []Semester{},
		Settings:  DefaultSettings(),
	}
}

// Semester returns the semester with the given id
func (d *AppData) Semester(id string) (*Semester, bool) {
	for i := range d.Semesters {
		if d.Semesters[i].ID == id {
			return &d.Semesters[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the dataset
func (d AppData) Clone() AppData {
	sems := make([]Semester, len(d.Semesters))
	for i, s := range d.Semesters {
		sems[i] = s.Clone()
	}
	d.Semesters = sems
	return d
}
