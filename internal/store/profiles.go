package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/migrate"
	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/storage"
)

var (
	// ErrUnknownProfile is returned for ids not in the profile list
	ErrUnknownProfile = errors.New("profile not found")
	// ErrDefaultProfile is returned when deleting the default profile
	ErrDefaultProfile = errors.New("the default profile cannot be deleted")
	// ErrLastProfile is returned when deleting the only profile
	ErrLastProfile = errors.New("cannot delete the only profile")
	// ErrEmptyName is returned for blank profile names
	ErrEmptyName = errors.New("profile name is required")
	// ErrInvalidBackup is returned when a backup has no usable profile
	ErrInvalidBackup = errors.New("backup contains no profiles")
)

// Profiles returns the profile list
func (s *Store) Profiles() []model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Profile{}, s.profiles...)
}

// ActiveProfile returns the profile whose data is loaded
func (s *Store) ActiveProfile() model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID == s.active {
			return p
		}
	}
	return model.Profile{ID: s.active, Name: s.active}
}

func (s *Store) hasProfile(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.ID == id {
			return true
		}
	}
	return false
}

// CreateProfile adds an empty profile. It does not switch to it.
func (s *Store) CreateProfile(ctx context.Context, name string) (model.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Profile{}, ErrEmptyName
	}
	p := model.Profile{ID: uuid.New().String(), Name: name}

	s.ioMu.Lock()
	next := append(s.Profiles(), p)
	if err := s.writeProfiles(ctx, next); err != nil {
		s.ioMu.Unlock()
		return model.Profile{}, err
	}
	s.mu.Lock()
	s.profiles = next
	s.mu.Unlock()
	s.ioMu.Unlock()

	s.log.Info("Profile created", zap.String("id", p.ID), zap.String("name", p.Name))
	s.notify()
	return p, nil
}

// RenameProfile changes a profile's display name
func (s *Store) RenameProfile(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	s.ioMu.Lock()
	next := s.Profiles()
	found := false
	for i := range next {
		if next[i].ID == id {
			next[i].Name = name
			found = true
		}
	}
	if !found {
		s.ioMu.Unlock()
		return ErrUnknownProfile
	}

	if err := s.writeProfiles(ctx, next); err != nil {
		s.ioMu.Unlock()
		return err
	}
	s.mu.Lock()
	s.profiles = next
	s.mu.Unlock()
	s.ioMu.Unlock()

	s.notify()
	return nil
}

// DeleteProfile removes a profile and exactly its own data key.
// Deleting the active profile falls back to the default profile.
// Memory changes only once both storage writes succeeded.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	if id == model.DefaultProfileID {
		return ErrDefaultProfile
	}

	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.mu.Lock()
	next := make([]model.Profile, 0, len(s.profiles))
	found := false
	for _, p := range s.profiles {
		if p.ID == id {
			found = true
			continue
		}
		next = append(next, p)
	}
	wasActive := s.active == id
	s.mu.Unlock()

	if !found {
		return ErrUnknownProfile
	}
	if len(next) == 0 {
		return ErrLastProfile
	}
	fallback := next[0].ID
	for _, p := range next {
		if p.ID == model.DefaultProfileID {
			fallback = p.ID
		}
	}

	if err := s.kv.Delete(ctx, id, storage.KeyData); err != nil {
		err = fmt.Errorf("failed to delete profile data: %w", err)
		s.reportError(err)
		return err
	}
	if err := s.writeProfiles(ctx, next); err != nil {
		return err
	}

	s.mu.Lock()
	s.profiles = next
	if wasActive {
		// Unsaved edits of a deleted profile are discarded
		s.persist.Cancel()
		s.dirty = false
	}
	s.mu.Unlock()
	s.log.Info("Profile deleted", zap.String("id", id))

	if wasActive {
		return s.switchLocked(ctx, fallback)
	}
	s.notify()
	return nil
}

// SwitchProfile loads another profile's data. Pending edits of the outgoing
// profile are written first.
func (s *Store) SwitchProfile(ctx context.Context, id string) error {
	if !s.hasProfile(id) {
		return ErrUnknownProfile
	}

	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	s.persist.Cancel()
	if err := s.flushLocked(ctx, false); err != nil {
		s.log.Warn("Failed to save outgoing profile", zap.Error(err))
	}
	return s.switchLocked(ctx, id)
}

// switchLocked installs profile id. Caller holds ioMu.
func (s *Store) switchLocked(ctx context.Context, id string) error {
	data := s.readData(ctx, id)

	s.mu.Lock()
	s.active = id
	s.data = data
	s.current = model.LatestSemesterID(data.Semesters)
	s.dirty = false
	s.mu.Unlock()

	err := s.kv.Put(ctx, storage.GlobalScope, storage.KeyActiveProfile, []byte(id))
	if err != nil {
		s.reportError(err)
	}
	s.log.Info("Switched profile", zap.String("id", id))
	s.notify()
	return err
}

// writeProfiles persists list as the profile list
func (s *Store) writeProfiles(ctx context.Context, list []model.Profile) error {
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}
	if err := s.kv.Put(ctx, storage.GlobalScope, storage.KeyProfiles, b); err != nil {
		err = fmt.Errorf("failed to save profiles: %w", err)
		s.reportError(err)
		return err
	}
	return nil
}

// Backup collects every profile with its stored data. The active profile
// is flushed first so the snapshot matches memory.
func (s *Store) Backup(ctx context.Context) (model.Backup, error) {
	if err := s.flush(ctx, false); err != nil {
		return model.Backup{}, err
	}

	b := model.Backup{
		Version:    model.BackupVersion,
		ExportDate: s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	for _, p := range s.Profiles() {
		b.Profiles = append(b.Profiles, model.BackupProfile{
			ID:   p.ID,
			Name: p.Name,
			Data: s.readData(ctx, p.ID),
		})
	}
	return b, nil
}

// Restore replaces every profile with the backup's profiles and reloads.
// The backup's data is written before the profile list, and keys of
// profiles the backup drops are removed last, so a failed write never
// leaves the stored profile list pointing at missing data.
func (s *Store) Restore(ctx context.Context, b model.Backup) error {
	profiles := make([]model.Profile, 0, len(b.Profiles))
	seen := map[string]bool{}
	for _, p := range b.Profiles {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		profiles = append(profiles, model.Profile{ID: p.ID, Name: p.Name})
	}
	if len(profiles) == 0 {
		return ErrInvalidBackup
	}

	s.ioMu.Lock()
	defer s.ioMu.Unlock()

	written := map[string]bool{}
	for _, p := range b.Profiles {
		if !seen[p.ID] || written[p.ID] {
			continue
		}
		written[p.ID] = true
		raw, err := json.Marshal(migrate.Typed(p.Data))
		if err != nil {
			return fmt.Errorf("failed to encode profile %s: %w", p.ID, err)
		}
		if err := s.kv.Put(ctx, p.ID, storage.KeyData, raw); err != nil {
			err = fmt.Errorf("failed to restore profile %s: %w", p.ID, err)
			s.reportError(err)
			return err
		}
	}
	if err := s.writeProfiles(ctx, profiles); err != nil {
		return err
	}

	s.persist.Cancel()
	s.mu.Lock()
	old := s.profiles
	s.profiles = profiles
	s.dirty = false
	active := s.active
	s.mu.Unlock()

	for _, p := range old {
		if seen[p.ID] {
			continue
		}
		if err := s.kv.Delete(ctx, p.ID, storage.KeyData); err != nil {
			s.log.Warn("Failed to remove data of dropped profile", zap.String("id", p.ID), zap.Error(err))
		}
	}

	if !seen[active] {
		active = profiles[0].ID
		for _, p := range profiles {
			if p.ID == model.DefaultProfileID {
				active = p.ID
			}
		}
	}
	s.log.Info("Backup restored", zap.Int("profiles", len(profiles)))
	return s.switchLocked(ctx, active)
}
