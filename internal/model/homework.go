package model

import "time"

// HomeworkLink is a named URL attached to a homework item
type HomeworkLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// HomeworkItem represents a single assignment of a course
type HomeworkItem struct {
	Title     string         `json:"title"`
	DueDate   string         `json:"dueDate"` // YYYY-MM-DD or empty
	Completed bool           `json:"completed"`
	Notes     string         `json:"notes"`
	Links     []HomeworkLink `json:"links"`
}

// NewHomework creates a homework item with defaults
func NewHomework(title, dueDate string) HomeworkItem {
	return HomeworkItem{
		Title:   title,
		DueDate: dueDate,
		Links:   []HomeworkLink{},
	}
}

// DueSoonDays is how many days ahead open homework counts as due soon
const DueSoonDays = 3

// Due returns the parsed due date and whether it is set
func (h *HomeworkItem) Due() (time.Time, bool) {
	return ParseDate(h.DueDate)
}

// DueIn is Due at midnight in loc
func (h *HomeworkItem) DueIn(loc *time.Location) (time.Time, bool) {
	return ParseDateIn(h.DueDate, loc)
}

// IsDueSoon returns true for open homework due today or within the
// next DueSoonDays days. Overdue homework is not due soon.
func (h *HomeworkItem) IsDueSoon(now time.Time) bool {
	due, ok := h.DueIn(now.Location())
	if !ok || h.Completed {
		return false
	}
	today := StartOfDay(now)
	return !due.Before(today) && due.Before(today.AddDate(0, 0, DueSoonDays+1))
}

// IsOverdue returns true if the homework is past its due date
func (h *HomeworkItem) IsOverdue(now time.Time) bool {
	due, ok := h.DueIn(now.Location())
	if !ok || h.Completed {
		return false
	}
	return due.Before(StartOfDay(now))
}

func (h HomeworkItem) clone() HomeworkItem {
	h.Links = append([]HomeworkLink{}, h.Links...)
	return h
}
