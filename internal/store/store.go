// Package store holds the active profile's planner data in memory, notifies
// subscribers on every change and persists through a debounced writer.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/debounce"
	"github.com/existflow/semplan/internal/migrate"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/storage"
)

// DefaultPersistDelay is the coalescing window of debounced writes
const DefaultPersistDelay = 300 * time.Millisecond

// alertInterval limits how often the error handler is invoked
const alertInterval = 5 * time.Second

// Listener is called after every state change
type Listener func()

// Options configures a Store. Zero values select defaults.
type Options struct {
	PersistDelay time.Duration
	Now          func() time.Time
	// OnError receives storage failures that the user should see
	OnError func(error)
}

// Store is the single source of truth for the active profile
type Store struct {
	kv      storage.KV
	log     *zap.Logger
	now     func() time.Time
	onError func(error)
	alerts  *debounce.Throttle
	persist *debounce.Debouncer

	// ioMu serializes writes against profile switches
	ioMu sync.Mutex

	mu       sync.Mutex
	data     model.AppData
	profiles []model.Profile
	active   string
	current  string
	dirty    bool

	lmu       sync.Mutex
	listeners []subscription
	nextID    uint64
}

type subscription struct {
	id uint64
	fn Listener
}

// New creates a store over kv. Call Load before use.
func New(kv storage.KV, log *zap.Logger, opts Options) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.PersistDelay <= 0 {
		opts.PersistDelay = DefaultPersistDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store{
		kv:       kv,
		log:      log,
		now:      opts.Now,
		onError:  opts.OnError,
		alerts:   debounce.NewThrottle(alertInterval),
		data:     model.DefaultAppData(),
		profiles: []model.Profile{model.DefaultProfile()},
		active:   model.DefaultProfileID,
	}
	s.persist = debounce.New(opts.PersistDelay, func() {
		_ = s.flush(context.Background(), false)
	})
	return s
}

// Load reads the profile list, the active profile and its data.
// Missing or corrupt values degrade to defaults.
func (s *Store) Load(ctx context.Context) {
	profiles := s.readProfiles(ctx)
	active := s.readActiveProfile(ctx, profiles)
	data := s.readData(ctx, active)

	s.mu.Lock()
	s.profiles = profiles
	s.active = active
	s.data = data
	s.current = model.LatestSemesterID(data.Semesters)
	s.dirty = false
	s.mu.Unlock()

	s.log.Info("Store loaded",
		zap.String("profile", active),
		zap.Int("profiles", len(profiles)),
		zap.Int("semesters", len(data.Semesters)))
	s.notify()
}

func (s *Store) readProfiles(ctx context.Context) []model.Profile {
	def := []model.Profile{model.DefaultProfile()}

	b, err := s.kv.Get(ctx, storage.GlobalScope, storage.KeyProfiles)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("Failed to read profiles, using default", zap.Error(err))
		}
		return def
	}

	var profiles []model.Profile
	if err := json.Unmarshal(b, &profiles); err != nil {
		s.log.Warn("Corrupt profile list, using default", zap.Error(err))
		return def
	}

	out := make([]model.Profile, 0, len(profiles))
	seen := map[string]bool{}
	for _, p := range profiles {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func (s *Store) readActiveProfile(ctx context.Context, profiles []model.Profile) string {
	b, err := s.kv.Get(ctx, storage.GlobalScope, storage.KeyActiveProfile)
	if err == nil {
		id := string(b)
		for _, p := range profiles {
			if p.ID == id {
				return id
			}
		}
	}
	for _, p := range profiles {
		if p.ID == model.DefaultProfileID {
			return p.ID
		}
	}
	return profiles[0].ID
}

// readData loads one profile's dataset. The default profile falls back
// to the legacy unscoped key once and copies it into its own scope.
func (s *Store) readData(ctx context.Context, profileID string) model.AppData {
	b, err := s.kv.Get(ctx, profileID, storage.KeyData)
	if errors.Is(err, storage.ErrNotFound) && profileID == model.DefaultProfileID {
		legacy, lerr := s.kv.Get(ctx, storage.GlobalScope, storage.KeyData)
		if lerr == nil {
			s.log.Info("Migrating legacy data into default profile")
			if perr := s.kv.Put(ctx, profileID, storage.KeyData, legacy); perr != nil {
				s.log.Warn("Failed to copy legacy data", zap.Error(perr))
			}
			b, err = legacy, nil
		}
	}
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("Failed to read profile data, using empty dataset",
				zap.String("profile", profileID), zap.Error(err))
		}
		return model.DefaultAppData()
	}

	data, err := migrate.Parse(b)
	if err != nil {
		s.log.Warn("Corrupt profile data, using empty dataset",
			zap.String("profile", profileID), zap.Error(err))
		return model.DefaultAppData()
	}
	return data
}

// Data returns a copy of the active profile's dataset
func (s *Store) Data() model.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Settings returns the active profile's settings
func (s *Store) Settings() model.AppSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Settings
}

// CurrentSemester returns a copy of the selected semester
func (s *Store) CurrentSemester() (model.Semester, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sem, ok := s.data.Semester(s.current)
	if !ok {
		return model.Semester{}, false
	}
	return sem.Clone(), true
}

// CurrentSemesterID returns the selected semester id, or "" when there is none
func (s *Store) CurrentSemesterID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Course returns a copy of a course of the selected semester
func (s *Store) Course(id string) (model.Course, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sem, ok := s.data.Semester(s.current)
	if !ok {
		return model.Course{}, false
	}
	c, ok := sem.Course(id)
	if !ok {
		return model.Course{}, false
	}
	return c.Clone(), true
}

// SelectSemester changes the selected semester
func (s *Store) SelectSemester(id string) bool {
	s.mu.Lock()
	if _, ok := s.data.Semester(id); !ok {
		s.mu.Unlock()
		return false
	}
	s.current = id
	s.mu.Unlock()

	s.notify()
	return true
}

// UpdateData mutates the dataset in place, schedules a write and notifies.
// The pointer passed to fn must not be retained.
func (s *Store) UpdateData(fn func(d *model.AppData)) {
	s.Mutate(func(d *model.AppData) bool {
		fn(d)
		return true
	})
}

// Mutate is UpdateData for mutators that may find nothing to change.
// Nothing is persisted or notified when fn returns false.
func (s *Store) Mutate(fn func(d *model.AppData) bool) bool {
	s.mu.Lock()
	changed := fn(&s.data)
	if changed {
		s.dirty = true
		if _, ok := s.data.Semester(s.current); !ok {
			s.current = model.LatestSemesterID(s.data.Semesters)
		}
	}
	s.mu.Unlock()

	if !changed {
		return false
	}
	s.persist.Trigger()
	s.notify()
	return true
}

// UpdateSettings shallow-merges patch into the settings
func (s *Store) UpdateSettings(patch model.SettingsPatch) {
	s.UpdateData(func(d *model.AppData) {
		patch.Apply(&d.Settings)
	})
}

// SaveNow writes the dataset immediately, dropping any pending debounced write
func (s *Store) SaveNow(ctx context.Context) error {
	s.persist.Cancel()
	return s.flush(ctx, true)
}

// Pending reports whether a debounced write is scheduled
func (s *Store) Pending() bool {
	return s.persist.Pending()
}

// ReplaceData installs a whole new dataset, e.g. from an import.
// It is migrated, written immediately and announced.
func (s *Store) ReplaceData(ctx context.Context, d model.AppData) error {
	migrated := migrate.Typed(d)

	s.mu.Lock()
	s.data = migrated
	s.current = model.LatestSemesterID(migrated.Semesters)
	s.dirty = true
	s.mu.Unlock()

	s.persist.Cancel()
	err := s.flush(ctx, true)
	s.notify()
	return err
}

func (s *Store) flush(ctx context.Context, force bool) error {
	s.ioMu.Lock()
	defer s.ioMu.Unlock()
	return s.flushLocked(ctx, force)
}

// flushLocked writes the dataset. Caller holds ioMu.
func (s *Store) flushLocked(ctx context.Context, force bool) error {
	s.mu.Lock()
	if !s.dirty && !force {
		s.mu.Unlock()
		return nil
	}
	s.data.LastModified = s.now().UnixMilli()
	profile := s.active
	b, err := json.Marshal(s.data)
	s.dirty = false
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	if err := s.kv.Put(ctx, profile, storage.KeyData, b); err != nil {
		s.mu.Lock()
		if s.active == profile {
			s.dirty = true
		}
		s.mu.Unlock()
		s.reportError(fmt.Errorf("failed to save data: %w", err))
		return err
	}

	s.log.Debug("Data saved", zap.String("profile", profile), zap.Int("bytes", len(b)))
	return nil
}

func (s *Store) reportError(err error) {
	s.log.Error("Storage error", zap.Error(err))
	if s.onError != nil && s.alerts.Allow(s.now()) {
		s.onError(err)
	}
}

// Subscribe registers fn and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			defer s.lmu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify() {
	s.lmu.Lock()
	subs := append([]subscription{}, s.listeners...)
	s.lmu.Unlock()

	for _, sub := range subs {
		s.call(sub)
	}
}

// call runs one listener. A panicking listener is logged and skipped.
func (s *Store) call(sub subscription) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Listener panicked", zap.Uint64("listener", sub.id), zap.Any("panic", r))
		}
	}()
	sub.fn()
}

// Close flushes pending writes and stops the writer
func (s *Store) Close(ctx context.Context) error {
	err := s.flush(ctx, false)
	s.persist.Stop()
	return err
}
