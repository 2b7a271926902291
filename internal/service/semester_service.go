package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/color"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/store"
)

// SemesterService manages semesters and their calendar windows
type SemesterService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewSemesterService creates a semester service
func NewSemesterService(st *store.Store, logger *zap.Logger) *SemesterService {
	return &SemesterService{store: st, logger: logger}
}

// List returns the semesters newest first
func (s *SemesterService) List() []model.Semester {
	return model.SortSemesters(s.store.Data().Semesters)
}

// Create adds a semester and selects it
func (s *SemesterService) Create(name string) (model.Semester, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Semester{}, ErrEmptyName
	}
	sem := model.NewSemester(uuid.New().String(), name)
	s.store.UpdateData(func(d *model.AppData) {
		d.Semesters = append(d.Semesters, sem)
	})
	s.store.SelectSemester(sem.ID)
	s.logger.Info("Semester created", zap.String("id", sem.ID), zap.String("name", name))
	return sem, nil
}

// Rename changes a semester's name
func (s *SemesterService) Rename(id, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return s.store.Mutate(func(d *model.AppData) bool {
		sem, ok := d.Semester(id)
		if !ok {
			return false
		}
		sem.Name = name
		return true
	})
}

// Delete removes a semester with all its courses
func (s *SemesterService) Delete(id string) bool {
	ok := s.store.Mutate(func(d *model.AppData) bool {
		for i := range d.Semesters {
			if d.Semesters[i].ID == id {
				d.Semesters = append(d.Semesters[:i], d.Semesters[i+1:]...)
				return true
			}
		}
		return false
	})
	if ok {
		s.logger.Info("Semester deleted", zap.String("id", id))
	}
	return ok
}

// Select makes id the current semester
func (s *SemesterService) Select(id string) bool {
	return s.store.SelectSemester(id)
}

// UpdateCalendarSettings validates and stores a semester's calendar window
func (s *SemesterService) UpdateCalendarSettings(id string, cs model.CalendarSettings) error {
	if cs.StartHour < 0 || cs.EndHour > 24 || cs.StartHour >= cs.EndHour {
		return ErrInvalidHourRange
	}
	days := map[int]bool{}
	for _, d := range cs.VisibleDays {
		if d < 0 || d > 6 {
			return ErrNoVisibleDays
		}
		days[d] = true
	}
	if len(days) == 0 {
		return ErrNoVisibleDays
	}
	visible := make([]int, 0, len(days))
	for d := range days {
		visible = append(visible, d)
	}
	sort.Ints(visible)

	ok := s.store.Mutate(func(d *model.AppData) bool {
		sem, ok := d.Semester(id)
		if !ok {
			return false
		}
		sem.CalendarSettings = model.CalendarSettings{
			StartHour:   cs.StartHour,
			EndHour:     cs.EndHour,
			VisibleDays: visible,
		}
		return true
	})
	if !ok {
		return ErrNotFound
	}
	return nil
}

// SettingsService updates profile preferences
type SettingsService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewSettingsService creates a settings service
func NewSettingsService(st *store.Store, logger *zap.Logger) *SettingsService {
	return &SettingsService{store: st, logger: logger}
}

// Update merges patch into the settings. Changing the color theme or base
// hue recolors every course.
func (s *SettingsService) Update(patch model.SettingsPatch) error {
	if patch.Theme != nil && *patch.Theme != model.ThemeLight && *patch.Theme != model.ThemeDark {
		return ErrInvalidTheme
	}
	if patch.ColorTheme != nil {
		switch *patch.ColorTheme {
		case model.ColorThemeColorful, model.ColorThemeSingle, model.ColorThemeMono:
		default:
			return ErrInvalidColorTheme
		}
	}
	if patch.BaseColorHue != nil {
		h := ((*patch.BaseColorHue % 360) + 360) % 360
		patch.BaseColorHue = &h
	}

	recolor := patch.ColorTheme != nil || patch.BaseColorHue != nil
	s.store.UpdateData(func(d *model.AppData) {
		patch.Apply(&d.Settings)
		if recolor {
			for i := range d.Semesters {
				color.Recolor(d.Semesters[i].Courses, d.Settings)
			}
		}
	})
	return nil
}
