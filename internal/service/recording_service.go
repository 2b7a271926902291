package service

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/store"
)

// RecordingService manages recording tabs and their items
type RecordingService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewRecordingService creates a recording service
func NewRecordingService(st *store.Store, logger *zap.Logger) *RecordingService {
	return &RecordingService{store: st, logger: logger}
}

// AddTab creates a custom tab and returns its id
func (s *RecordingService) AddTab(courseID, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	id := uuid.New().String()
	ok := mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		c.Recordings.Tabs = append(c.Recordings.Tabs, model.RecordingTab{
			ID:    id,
			Name:  name,
			Items: []model.RecordingItem{},
		})
		return true
	})
	if !ok {
		return "", ErrNotFound
	}
	return id, nil
}

// RenameTab renames a custom tab
func (s *RecordingService) RenameTab(courseID, tabID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if model.IsProtectedTab(tabID) {
		return ErrProtectedTab
	}
	ok := s.withTab(courseID, tabID, func(t *model.RecordingTab) bool {
		t.Name = name
		return true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

// DeleteTab removes a custom tab and its items
func (s *RecordingService) DeleteTab(courseID, tabID string) error {
	if model.IsProtectedTab(tabID) {
		return ErrProtectedTab
	}
	ok := mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		for i := range c.Recordings.Tabs {
			if c.Recordings.Tabs[i].ID == tabID {
				c.Recordings.Tabs = append(c.Recordings.Tabs[:i], c.Recordings.Tabs[i+1:]...)
				return true
			}
		}
		return false
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

// AddItem appends a recording to a tab
func (s *RecordingService) AddItem(courseID, tabID string, item model.RecordingItem) bool {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return false
	}
	return s.withTab(courseID, tabID, func(t *model.RecordingTab) bool {
		t.Items = append(t.Items, item)
		return true
	})
}

// UpdateItem replaces the recording at index
func (s *RecordingService) UpdateItem(courseID, tabID string, index int, item model.RecordingItem) bool {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return false
	}
	return s.withItem(courseID, tabID, index, func(r *model.RecordingItem) bool {
		*r = item
		return true
	})
}

// DeleteItem removes the recording at index
func (s *RecordingService) DeleteItem(courseID, tabID string, index int) bool {
	return s.withTab(courseID, tabID, func(t *model.RecordingTab) bool {
		if index < 0 || index >= len(t.Items) {
			return false
		}
		t.Items = append(t.Items[:index], t.Items[index+1:]...)
		return true
	})
}

// MoveItem shifts a recording by delta positions within its tab
func (s *RecordingService) MoveItem(courseID, tabID string, index, delta int) bool {
	return s.withTab(courseID, tabID, func(t *model.RecordingTab) bool {
		return move(t.Items, index, delta)
	})
}

// ToggleWatched flips the watched flag
func (s *RecordingService) ToggleWatched(courseID, tabID string, index int) bool {
	return s.withItem(courseID, tabID, index, func(r *model.RecordingItem) bool {
		r.Watched = !r.Watched
		return true
	})
}

// ToggleLiked flips the liked flag
func (s *RecordingService) ToggleLiked(courseID, tabID string, index int) bool {
	return s.withItem(courseID, tabID, index, func(r *model.RecordingItem) bool {
		r.Liked = !r.Liked
		return true
	})
}

func (s *RecordingService) withTab(courseID, tabID string, fn func(t *model.RecordingTab) bool) bool {
	return mutateCourse(s.store, courseID, func(c *model.Course, _ model.AppSettings) bool {
		t, ok := c.Recordings.Tab(tabID)
		if !ok {
			return false
		}
		return fn(t)
	})
}

func (s *RecordingService) withItem(courseID, tabID string, index int, fn func(r *model.RecordingItem) bool) bool {
	return s.withTab(courseID, tabID, func(t *model.RecordingTab) bool {
		if index < 0 || index >= len(t.Items) {
			return false
		}
		return fn(&t.Items[index])
	})
}
