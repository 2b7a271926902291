package calendar

import (
	"time"

	"github.com/existflow/semplan/internal/model"
)

// EventType distinguishes week events
type EventType string

const (
	EventHomework EventType = "homework"
	EventExam     EventType = "exam"
)

// Exam slots
const (
	SlotMoedA = "moedA"
	SlotMoedB = "moedB"
)

// Event is a dated homework item or exam in the current week. CourseID
// with Index or ExamSlot addresses the source for editing.
type Event struct {
	Type       EventType `json:"type"`
	CourseID   string    `json:"courseId"`
	CourseName string    `json:"courseName"`
	Color      string    `json:"color"`
	Index      int       `json:"index"`
	ExamSlot   string    `json:"examSlot,omitempty"`
	Title      string    `json:"title"`
	Date       string    `json:"date"`
	Day        int       `json:"day"`
	Completed  bool      `json:"completed"`
}

// WeekRange returns Sunday 00:00:00.000 and Saturday 23:59:59.999 of the
// week containing now, in now's location.
func WeekRange(now time.Time) (time.Time, time.Time) {
	start := model.StartOfDay(now).AddDate(0, 0, -int(now.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// InWeek reports whether t falls in the week of now, bounds inclusive
func InWeek(t, now time.Time) bool {
	start, end := WeekRange(now)
	return !t.Before(start) && !t.After(end)
}

// CollectWeekEvents lists homework due and exams held this week, in
// course order, then homework order, then moedA before moedB.
// Dates are read as midnight in now's location.
func CollectWeekEvents(sem model.Semester, now time.Time) []Event {
	var out []Event
	loc := now.Location()
	for _, c := range sem.Courses {
		for i, h := range c.Homework {
			due, ok := h.DueIn(loc)
			if !ok || !InWeek(due, now) {
				continue
			}
			out = append(out, Event{
				Type:       EventHomework,
				CourseID:   c.ID,
				CourseName: c.Name,
				Color:      c.Color,
				Index:      i,
				Title:      h.Title,
				Date:       h.DueDate,
				Day:        int(due.Weekday()),
				Completed:  h.Completed,
			})
		}

		for _, slot := range []struct{ name, date string }{
			{SlotMoedA, c.Exams.MoedA},
			{SlotMoedB, c.Exams.MoedB},
		} {
			d, ok := model.ParseDateIn(slot.date, loc)
			if !ok || !InWeek(d, now) {
				continue
			}
			out = append(out, Event{
				Type:       EventExam,
				CourseID:   c.ID,
				CourseName: c.Name,
				Color:      c.Color,
				Index:      -1,
				ExamSlot:   slot.name,
				Title:      c.Name,
				Date:       slot.date,
				Day:        int(d.Weekday()),
			})
		}
	}
	return out
}

// GroupByDay buckets events by weekday, keeping only visible days
func GroupByDay(events []Event, visibleDays []int) map[int][]Event {
	visible := map[int]bool{}
	for _, d := range visibleDays {
		visible[d] = true
	}
	out := map[int][]Event{}
	for _, e := range events {
		if visible[e.Day] {
			out[e.Day] = append(out[e.Day], e)
		}
	}
	return out
}
