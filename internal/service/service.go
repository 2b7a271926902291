// Package service implements the planner's CRUD operations on top of the store.
//
// Operations addressed by an id or index that no longer exists are no-ops
// that report false (or ErrNotFound when the operation also validates input).
package service

import (
	"errors"

	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/store"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrNoSemester        = errors.New("no semester selected")
	ErrEmptyName         = errors.New("name is required")
	ErrInvalidTimeRange  = errors.New("start time must be before end time (HH:MM)")
	ErrInvalidDay        = errors.New("day must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidHourRange  = errors.New("start hour must be before end hour, within 0-24")
	ErrNoVisibleDays     = errors.New("at least one visible day in 0-6 is required")
	ErrProtectedTab      = errors.New("built-in recording tabs cannot be changed")
	ErrInvalidColorTheme = errors.New("unknown color theme")
	ErrInvalidTheme      = errors.New("theme must be light or dark")
)

// Services bundles every domain service over one store
type Services struct {
	Semesters  *SemesterService
	Courses    *CourseService
	Homework   *HomeworkService
	Recordings *RecordingService
	Settings   *SettingsService
}

// New creates all services
func New(st *store.Store, logger *zap.Logger) *Services {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Services{
		Semesters:  NewSemesterService(st, logger),
		Courses:    NewCourseService(st, logger),
		Homework:   NewHomeworkService(st, logger),
		Recordings: NewRecordingService(st, logger),
		Settings:   NewSettingsService(st, logger),
	}
}

// mutateCourse runs fn on a course of the selected semester
func mutateCourse(st *store.Store, courseID string, fn func(c *model.Course, settings model.AppSettings) bool) bool {
	semID := st.CurrentSemesterID()
	if semID == "" {
		return false
	}
	return st.Mutate(func(d *model.AppData) bool {
		sem, ok := d.Semester(semID)
		if !ok {
			return false
		}
		c, ok := sem.Course(courseID)
		if !ok {
			return false
		}
		return fn(c, d.Settings)
	})
}

func validDate(s string) bool {
	if s == "" {
		return true
	}
	_, ok := model.ParseDate(s)
	return ok
}

// move swaps element i with i+delta. Out of range moves report false.
func move[T any](items []T, i, delta int) bool {
	j := i + delta
	if i < 0 || i >= len(items) || j < 0 || j >= len(items) || delta == 0 {
		return false
	}
	items[i], items[j] = items[j], items[i]
	return true
}
