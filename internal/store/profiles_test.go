package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/storage"
)

func TestCreateProfile(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})

	p, err := s.CreateProfile(context.Background(), "  Work ")
	require.NoError(t, err)
	assert.Equal(t, "Work", p.Name)
	assert.NotEmpty(t, p.ID)
	assert.Len(t, s.Profiles(), 2)
	assert.Equal(t, model.DefaultProfileID, s.ActiveProfile().ID)
	assert.True(t, kv.Has(storage.GlobalScope, storage.KeyProfiles))

	_, err = s.CreateProfile(context.Background(), " ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestRenameProfile(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})

	require.NoError(t, s.RenameProfile(context.Background(), model.DefaultProfileID, "Me"))
	assert.Equal(t, "Me", s.ActiveProfile().Name)
	assert.ErrorIs(t, s.RenameProfile(context.Background(), "nope", "x"), ErrUnknownProfile)
}

func TestSwitchProfile_FlushesOutgoingEdits(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})
	ctx := context.Background()

	work, err := s.CreateProfile(ctx, "Work")
	require.NoError(t, err)

	s.UpdateData(addSemester("Spring 2025"))
	require.NoError(t, s.SwitchProfile(ctx, work.ID))

	assert.Equal(t, work.ID, s.ActiveProfile().ID)
	assert.Empty(t, s.Data().Semesters)
	assert.Len(t, storedData(t, kv, model.DefaultProfileID).Semesters, 1)

	require.NoError(t, s.SwitchProfile(ctx, model.DefaultProfileID))
	assert.Len(t, s.Data().Semesters, 1)
	assert.Equal(t, "Spring 2025", s.CurrentSemesterID())
}

func TestSwitchProfile_UnknownIsNoop(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})
	s.UpdateData(addSemester("Spring 2025"))

	assert.ErrorIs(t, s.SwitchProfile(context.Background(), "ghost"), ErrUnknownProfile)
	assert.Equal(t, model.DefaultProfileID, s.ActiveProfile().ID)
	assert.Len(t, s.Data().Semesters, 1)
}

func TestSwitchProfile_PersistsActiveProfile(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})
	ctx := context.Background()

	work, err := s.CreateProfile(ctx, "Work")
	require.NoError(t, err)
	require.NoError(t, s.SwitchProfile(ctx, work.ID))

	reloaded := setupStore(t, kv, Options{PersistDelay: time.Hour})
	assert.Equal(t, work.ID, reloaded.ActiveProfile().ID)
	assert.Len(t, reloaded.Profiles(), 2)
}

func TestDeleteProfile_DefaultRejected(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})
	assert.ErrorIs(t, s.DeleteProfile(context.Background(), model.DefaultProfileID), ErrDefaultProfile)
}

func TestDeleteProfile_SoleProfileRejected(t *testing.T) {
	kv := storage.NewMemory()
	putJSON(t, kv, storage.GlobalScope, storage.KeyProfiles, []model.Profile{{ID: "only", Name: "Only"}})
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})

	assert.Equal(t, "only", s.ActiveProfile().ID)
	assert.ErrorIs(t, s.DeleteProfile(context.Background(), "only"), ErrLastProfile)
	assert.Len(t, s.Profiles(), 1)
}

func TestDeleteProfile_RemovesOnlyItsOwnKey(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})
	ctx := context.Background()

	a, err := s.CreateProfile(ctx, "A")
	require.NoError(t, err)
	b, err := s.CreateProfile(ctx, "B")
	require.NoError(t, err)
	for _, id := range []string{model.DefaultProfileID, a.ID, b.ID} {
		require.NoError(t, s.SwitchProfile(ctx, id))
		s.UpdateData(addSemester("Spring 2025"))
		require.NoError(t, s.SaveNow(ctx))
	}

	require.NoError(t, s.DeleteProfile(ctx, a.ID))

	assert.False(t, kv.Has(a.ID, storage.KeyData))
	assert.True(t, kv.Has(b.ID, storage.KeyData))
	assert.True(t, kv.Has(model.DefaultProfileID, storage.KeyData))
	assert.Len(t, s.Profiles(), 2)
	assert.Equal(t, b.ID, s.ActiveProfile().ID)
}

func TestDeleteProfile_ActiveFallsBackToDefault(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})
	ctx := context.Background()

	work, err := s.CreateProfile(ctx, "Work")
	require.NoError(t, err)
	require.NoError(t, s.SwitchProfile(ctx, work.ID))
	s.UpdateData(addSemester("Unsaved"))

	require.NoError(t, s.DeleteProfile(ctx, work.ID))

	assert.Equal(t, model.DefaultProfileID, s.ActiveProfile().ID)
	assert.False(t, kv.Has(work.ID, storage.KeyData))
	assert.False(t, s.Pending())
}

func TestBackupRestore_RoundTrip(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})
	ctx := context.Background()

	s.UpdateData(addSemester("Spring 2025"))
	work, err := s.CreateProfile(ctx, "Work")
	require.NoError(t, err)

	backup, err := s.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.BackupVersion, backup.Version)
	require.Len(t, backup.Profiles, 2)
	assert.Len(t, backup.Profiles[0].Data.Semesters, 1)
	assert.Equal(t, work.ID, backup.Profiles[1].ID)

	fresh := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})
	require.NoError(t, fresh.Restore(ctx, backup))

	assert.Len(t, fresh.Profiles(), 2)
	assert.Equal(t, model.DefaultProfileID, fresh.ActiveProfile().ID)
	assert.Len(t, fresh.Data().Semesters, 1)

	assert.ErrorIs(t, fresh.Restore(ctx, model.Backup{}), ErrInvalidBackup)
}

var errDisk = errors.New("disk error")

// faultyKV fails selected writes of an in-memory KV
type faultyKV struct {
	*storage.Memory
	failDelete bool
	failPut    func(scope, key string) bool
}

func (f *faultyKV) Put(ctx context.Context, scope, key string, value []byte) error {
	if f.failPut != nil && f.failPut(scope, key) {
		return errDisk
	}
	return f.Memory.Put(ctx, scope, key, value)
}

func (f *faultyKV) Delete(ctx context.Context, scope, key string) error {
	if f.failDelete {
		return errDisk
	}
	return f.Memory.Delete(ctx, scope, key)
}

func setupFaultyStore(t *testing.T) (*Store, *faultyKV) {
	t.Helper()
	kv := &faultyKV{Memory: storage.NewMemory()}
	s := New(kv, zap.NewNop(), Options{PersistDelay: time.Hour, Now: func() time.Time { return fixedNow }})
	s.Load(context.Background())
	t.Cleanup(func() { s.persist.Stop() })
	return s, kv
}

func storedProfiles(t *testing.T, kv *storage.Memory) []model.Profile {
	t.Helper()
	b, err := kv.Get(context.Background(), storage.GlobalScope, storage.KeyProfiles)
	require.NoError(t, err)
	var out []model.Profile
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestDeleteProfile_DataDeleteFailureChangesNothing(t *testing.T) {
	s, kv := setupFaultyStore(t)
	ctx := context.Background()

	work, err := s.CreateProfile(ctx, "Work")
	require.NoError(t, err)
	require.NoError(t, s.SwitchProfile(ctx, work.ID))
	s.UpdateData(addSemester("Spring 2025"))
	require.NoError(t, s.SaveNow(ctx))

	kv.failDelete = true
	assert.ErrorIs(t, s.DeleteProfile(ctx, work.ID), errDisk)

	assert.Equal(t, work.ID, s.ActiveProfile().ID)
	assert.Len(t, s.Profiles(), 2)
	assert.Len(t, storedProfiles(t, kv.Memory), 2)
	assert.True(t, kv.Has(work.ID, storage.KeyData))
	assert.Len(t, s.Data().Semesters, 1)

	kv.failDelete = false
	require.NoError(t, s.DeleteProfile(ctx, work.ID))
	assert.Equal(t, model.DefaultProfileID, s.ActiveProfile().ID)
	assert.Len(t, storedProfiles(t, kv.Memory), 1)
}

func TestDeleteProfile_ProfileListFailureKeepsProfile(t *testing.T) {
	s, kv := setupFaultyStore(t)
	ctx := context.Background()

	work, err := s.CreateProfile(ctx, "Work")
	require.NoError(t, err)
	require.NoError(t, s.SwitchProfile(ctx, work.ID))
	s.UpdateData(addSemester("Spring 2025"))
	require.NoError(t, s.SaveNow(ctx))

	kv.failPut = func(scope, key string) bool { return key == storage.KeyProfiles }
	assert.ErrorIs(t, s.DeleteProfile(ctx, work.ID), errDisk)

	assert.Equal(t, work.ID, s.ActiveProfile().ID)
	assert.Len(t, s.Profiles(), 2)
	assert.Len(t, storedProfiles(t, kv.Memory), 2)

	// The profile is still listed, so its data is written back on the next save
	require.NoError(t, s.SaveNow(ctx))
	assert.Len(t, storedData(t, kv.Memory, work.ID).Semesters, 1)
}

func TestCreateProfile_WriteFailureChangesNothing(t *testing.T) {
	s, kv := setupFaultyStore(t)
	kv.failPut = func(scope, key string) bool { return key == storage.KeyProfiles }

	_, err := s.CreateProfile(context.Background(), "Work")
	assert.ErrorIs(t, err, errDisk)
	assert.Len(t, s.Profiles(), 1)

	assert.ErrorIs(t, s.RenameProfile(context.Background(), model.DefaultProfileID, "Me"), errDisk)
	assert.Equal(t, model.DefaultProfile().Name, s.ActiveProfile().Name)
}

func TestRestore_WriteFailureKeepsExistingProfiles(t *testing.T) {
	s, kv := setupFaultyStore(t)
	ctx := context.Background()

	s.UpdateData(addSemester("Spring 2025"))
	require.NoError(t, s.SaveNow(ctx))
	work, err := s.CreateProfile(ctx, "Work")
	require.NoError(t, err)

	backup := model.Backup{
		Version: model.BackupVersion,
		Profiles: []model.BackupProfile{
			{ID: "x", Name: "X", Data: model.DefaultAppData()},
			{ID: "y", Name: "Y", Data: model.DefaultAppData()},
		},
	}

	kv.failPut = func(scope, key string) bool { return scope == "y" }
	assert.ErrorIs(t, s.Restore(ctx, backup), errDisk)

	assert.Equal(t, []string{model.DefaultProfileID, work.ID}, profileIDs(s.Profiles()))
	assert.Equal(t, []string{model.DefaultProfileID, work.ID}, profileIDs(storedProfiles(t, kv.Memory)))
	assert.Len(t, storedData(t, kv.Memory, model.DefaultProfileID).Semesters, 1)
	assert.Len(t, s.Data().Semesters, 1)

	kv.failPut = nil
	require.NoError(t, s.Restore(ctx, backup))
	assert.Equal(t, []string{"x", "y"}, profileIDs(storedProfiles(t, kv.Memory)))
	assert.False(t, kv.Has(model.DefaultProfileID, storage.KeyData))
	assert.Equal(t, "x", s.ActiveProfile().ID)
}

func profileIDs(list []model.Profile) []string {
	var ids []string
	for _, p := range list {
		ids = append(ids, p.ID)
	}
	return ids
}
