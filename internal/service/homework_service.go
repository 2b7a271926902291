package service

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/store"
)

// HomeworkPatch is a partial homework update. Nil fields are left alone.
type HomeworkPatch struct {
	Title     *string `json:"title,omitempty"`
	DueDate   *string `json:"dueDate,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// HomeworkEntry is one homework item as listed in the sidebar
type HomeworkEntry struct {
	CourseID   string             `json:"courseId"`
	CourseName string             `json:"courseName"`
	Color      string             `json:"color"`
	Index      int                `json:"index"`
	Item       model.HomeworkItem `json:"item"`
	Overdue    bool               `json:"overdue"`
	DueSoon    bool               `json:"dueSoon"`
}

// HomeworkService manages homework of the selected semester's courses
type HomeworkService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewHomeworkService creates a homework service
func NewHomeworkService(st *store.Store, logger *zap.Logger) *HomeworkService {
	return &HomeworkService{store: st, logger: logger}
}

// Add appends a homework item to a course
func (s *HomeworkService) Add(courseID, title, dueDate string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyName
	}
	dueDate = strings.TrimSpace(dueDate)
	if !validDate(dueDate) {
		return ErrInvalidDate
	}
	ok := mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		c.Homework = append(c.Homework, model.NewHomework(title, dueDate))
		return true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Update applies a partial update to the item at index
func (s *HomeworkService) Update(courseID string, index int, patch HomeworkPatch) error {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return ErrEmptyName
		}
		patch.Title = &t
	}
	if patch.DueDate != nil {
		d := strings.TrimSpace(*patch.DueDate)
		if !validDate(d) {
			return ErrInvalidDate
		}
		patch.DueDate = &d
	}

	ok := s.withItem(courseID, index, func(h *model.HomeworkItem) bool {
		if patch.Title != nil {
			h.Title = *patch.Title
		}
		if patch.DueDate != nil {
			h.DueDate = *patch.DueDate
		}
		if patch.Completed != nil {
			h.Completed = *patch.Completed
		}
		if patch.Notes != nil {
			h.Notes = *patch.Notes
		}
		return true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Toggle flips the completed flag
func (s *HomeworkService) Toggle(courseID string, index int) bool {
	return s.withItem(courseID, index, func(h *model.HomeworkItem) bool {
		h.Completed = !h.Completed
		return true
	})
}

// Delete removes the item at index
func (s *HomeworkService) Delete(courseID string, index int) bool {
	return mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		if index < 0 || index >= len(c.Homework) {
			return false
		}
		c.Homework = append(c.Homework[:index], c.Homework[index+1:]...)
		return true
	})
}

// AddLink attaches a link. The name defaults to the URL.
func (s *HomeworkService) AddLink(courseID string, index int, link model.HomeworkLink) bool {
	link.URL = strings.TrimSpace(link.URL)
	link.Name = strings.TrimSpace(link.Name)
	if link.URL == "" {
		return false
	}
	if link.Name == "" {
		link.Name = link.URL
	}
	return s.withItem(courseID, index, func(h *model.HomeworkItem) bool {
		h.Links = append(h.Links, link)
		return true
	})
}

// RemoveLink detaches the link at linkIndex
func (s *HomeworkService) RemoveLink(courseID string, index, linkIndex int) bool {
	return s.withItem(courseID, index, func(h *model.HomeworkItem) bool {
		if linkIndex < 0 || linkIndex >= len(h.Links) {
			return false
		}
		h.Links = append(h.Links[:linkIndex], h.Links[linkIndex+1:]...)
		return true
	})
}

func (s *HomeworkService) withItem(courseID string, index int, fn func(h *model.HomeworkItem) bool) bool {
	return mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		if index < 0 || index >= len(c.Homework) {
			return false
		}
		return fn(&c.Homework[index])
	})
}

// List returns the selected semester's homework ordered by due date,
// undated items last. Completed items are hidden unless the profile
// shows them.
func (s *HomeworkService) List(now time.Time) []HomeworkEntry {
	sem, ok := s.store.CurrentSemester()
	if !ok {
		return nil
	}
	return Sidebar(sem, s.store.Settings().ShowCompleted, now)
}

// Sidebar builds the homework list of one semester
func Sidebar(sem model.Semester, showCompleted bool, now time.Time) []HomeworkEntry {
	var out []HomeworkEntry
	for _, c := range sem.Courses {
		for i, h := range c.Homework {
			if h.Completed && !showCompleted {
				continue
			}
			out = append(out, HomeworkEntry{
				CourseID:   c.ID,
				CourseName: c.Name,
				Color:      c.Color,
				Index:      i,
				Item:       h,
				Overdue:    h.IsOverdue(now),
				DueSoon:    h.IsDueSoon(now),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, iok := out[i].Item.Due()
		dj, jok := out[j].Item.Due()
		if iok != jok {
			return iok
		}
		return iok && di.Before(dj)
	})
	return out
}
