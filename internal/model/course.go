package model

// Protected recording tab ids. These tabs always exist and cannot be removed.
const (
	TabLectures  = "lectures"
	TabTutorials = "tutorials"
)

// ScheduleItem is a weekly meeting of a course
type ScheduleItem struct {
	Day   int    `json:"day"`   // 0=Sunday .. 6=Saturday
	Start string `json:"start"` // HH:MM
	End   string `json:"end"`   // HH:MM
}

// Valid reports whether the item has a day in range and start < end.
// Times are zero-padded so lexical order is time order.
func (s ScheduleItem) Valid() bool {
	if s.Day < 0 || s.Day > 6 {
		return false
	}
	if _, _, ok := ParseClock(s.Start); !ok {
		return false
	}
	if _, _, ok := ParseClock(s.End); !ok {
		return false
	}
	return s.Start < s.End
}

// Exams holds the first and second exam sitting dates (YYYY-MM-DD or empty)
type Exams struct {
	MoedA string `json:"moedA"`
	MoedB string `json:"moedB"`
}

// RecordingItem is a single lecture or tutorial recording
type RecordingItem struct {
	Name      string `json:"name"`
	VideoLink string `json:"videoLink"`
	SlideLink string `json:"slideLink"`
	Watched   bool   `json:"watched"`
	Liked     bool   `json:"liked"`
}

// RecordingTab is a named bucket of recordings
type RecordingTab struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Items []RecordingItem `json:"items"`
}

// Protected returns true for the built-in tabs
func (t *RecordingTab) Protected() bool {
	return IsProtectedTab(t.ID)
}

// IsProtectedTab reports whether id names a built-in tab
func IsProtectedTab(id string) bool {
	return id == TabLectures || id == TabTutorials
}

// Recordings groups the recording tabs of a course
type Recordings struct {
	Tabs []RecordingTab `json:"tabs"`
}

// DefaultRecordings returns the two protected, empty tabs
func DefaultRecordings() Recordings {
	return Recordings{Tabs: []RecordingTab{
		{ID: TabLectures, Name: "Lectures", Items: []RecordingItem{}},
		{ID: TabTutorials, Name: "Tutorials", Items: []RecordingItem{}},
	}}
}

// Tab returns the tab with the given id
func (r *Recordings) Tab(id string) (*RecordingTab, bool) {
	for i := range r.Tabs {
		if r.Tabs[i].ID == id {
			return &r.Tabs[i], true
		}
	}
	return nil, false
}

// Course is owned by exactly one semester
type Course struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Color      string         `json:"color"`
	Number     string         `json:"number"`
	Points     string         `json:"points"`
	Lecturer   string         `json:"lecturer"`
	Faculty    string         `json:"faculty"`
	Location   string         `json:"location"`
	Grade      string         `json:"grade"`
	Syllabus   string         `json:"syllabus"`
	Notes      string         `json:"notes"`
	Recordings Recordings     `json:"recordings"`
	Homework   []HomeworkItem `json:"homework"`
	Schedule   []ScheduleItem `json:"schedule"`
	Exams      Exams          `json:"exams"`
}

// NewCourse creates a course with every collection initialized
func NewCourse(id, name string) Course {
	return Course{
		ID:         id,
		Name:       name,
		Recordings: DefaultRecordings(),
		Homework:   []HomeworkItem{},
		Schedule:   []ScheduleItem{},
	}
}

// Clone returns a deep copy of the course
func (c Course) Clone() Course {
	c.Schedule = append([]ScheduleItem{}, c.Schedule...)
	hw := make([]HomeworkItem, len(c.Homework))
	for i, h := range c.Homework {
		hw[i] = h.clone()
	}
	c.Homework = hw
	tabs := make([]RecordingTab, len(c.Recordings.Tabs))
	for i, t := range c.Recordings.Tabs {
		t.Items = append([]RecordingItem{}, t.Items...)
		tabs[i] = t
	}
	c.Recordings.Tabs = tabs
	return c
}
