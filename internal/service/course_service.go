package service

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/color"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/store"
)

// CoursePatch is a partial course update. Nil fields are left alone.
type CoursePatch struct {
	Name     *string `json:"name,omitempty"`
	Color    *string `json:"color,omitempty"`
	Number   *string `json:"number,omitempty"`
	Points   *string `json:"points,omitempty"`
	Lecturer *string `json:"lecturer,omitempty"`
	Faculty  *string `json:"faculty,omitempty"`
	Location *string `json:"location,omitempty"`
	Grade    *string `json:"grade,omitempty"`
	Syllabus *string `json:"syllabus,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

func (p CoursePatch) apply(c *model.Course) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.Name, p.Name)
	set(&c.Color, p.Color)
	set(&c.Number, p.Number)
	set(&c.Points, p.Points)
	set(&c.Lecturer, p.Lecturer)
	set(&c.Faculty, p.Faculty)
	set(&c.Location, p.Location)
	set(&c.Grade, p.Grade)
	set(&c.Syllabus, p.Syllabus)
	set(&c.Notes, p.Notes)
}

// CourseService manages the courses of the selected semester
type CourseService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCourseService creates a course service
func NewCourseService(st *store.Store, logger *zap.Logger) *CourseService {
	return &CourseService{store: st, logger: logger}
}

// Add creates a course in the selected semester. An empty color is
// derived from the profile's color theme.
func (s *CourseService) Add(name string, patch CoursePatch) (model.Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Course{}, ErrEmptyName
	}
	semID := s.store.CurrentSemesterID()
	if semID == "" {
		return model.Course{}, ErrNoSemester
	}

	course := model.NewCourse(uuid.New().String(), name)
	patch.Name = nil
	patch.apply(&course)

	ok := s.store.Mutate(func(d *model.AppData) bool {
		sem, ok := d.Semester(semID)
		if !ok {
			return false
		}
		if course.Color == "" {
			course.Color = color.ForIndex(len(sem.Courses), d.Settings)
		}
		sem.Courses = append(sem.Courses, course)
		return true
	})
	if !ok {
		return model.Course{}, ErrNoSemester
	}
	s.logger.Info("Course added", zap.String("id", course.ID), zap.String("name", name))
	return course, nil
}

// Update applies a partial update
func (s *CourseService) Update(id string, patch CoursePatch) bool {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return false
	}
	return mutateCourse(s.store, id, func(c *model.Course, _ model.AppSettings) bool {
		patch.apply(c)
		return true
	})
}

// Delete removes a course from the selected semester
func (s *CourseService) Delete(id string) bool {
	semID := s.store.CurrentSemesterID()
	return s.store.Mutate(func(d *model.AppData) bool {
		sem, ok := d.Semester(semID)
		if !ok {
			return false
		}
		i := sem.CourseIndex(id)
		if i < 0 {
			return false
		}
		sem.Courses = append(sem.Courses[:i], sem.Courses[i+1:]...)
		return true
	})
}

// Move shifts a course by delta positions (-1 up, +1 down).
// Moving past either end reports false.
func (s *CourseService) Move(id string, delta int) bool {
	semID := s.store.CurrentSemesterID()
	return s.store.Mutate(func(d *model.AppData) bool {
		sem, ok := d.Semester(semID)
		if !ok {
			return false
		}
		return move(sem.Courses, sem.CourseIndex(id), delta)
	})
}

func validateSchedule(item model.ScheduleItem) error {
	if item.Day < 0 || item.Day > 6 {
		return ErrInvalidDay
	}
	if !item.Valid() {
		return ErrInvalidTimeRange
	}
	return nil
}

// AddSchedule appends a weekly meeting
func (s *CourseService) AddSchedule(courseID string, item model.ScheduleItem) error {
	if err := validateSchedule(item); err != nil {
		return err
	}
	ok := mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		c.Schedule = append(c.Schedule, item)
		return true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

// UpdateSchedule replaces the meeting at index
func (s *CourseService) UpdateSchedule(courseID string, index int, item model.ScheduleItem) error {
	if err := validateSchedule(item); err != nil {
		return err
	}
	ok := mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		if index < 0 || index >= len(c.Schedule) {
			return false
		}
		c.Schedule[index] = item
		return true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

// RemoveSchedule deletes the meeting at index
func (s *CourseService) RemoveSchedule(courseID string, index int) bool {
	return mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		if index < 0 || index >= len(c.Schedule) {
			return false
		}
		c.Schedule = append(c.Schedule[:index], c.Schedule[index+1:]...)
		return true
	})
}

// SetExams stores both exam dates. Empty strings clear a date.
func (s *CourseService) SetExams(courseID string, exams model.Exams) error {
	exams.MoedA = strings.TrimSpace(exams.MoedA)
	exams.MoedB = strings.TrimSpace(exams.MoedB)
	if !validDate(exams.MoedA) || !validDate(exams.MoedB) {
		return ErrInvalidDate
	}
	ok := mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		c.Exams = exams
		return true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}
