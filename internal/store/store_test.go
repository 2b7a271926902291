package store

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/storage"
)

var fixedNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

func setupStore(t *testing.T, kv *storage.Memory, opts Options) *Store {
	t.Helper()
	if opts.PersistDelay == 0 {
		opts.PersistDelay = 20 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	s := New(kv, zap.NewNop(), opts)
	s.Load(context.Background())
	t.Cleanup(func() { s.persist.Stop() })
	return s
}

func putJSON(t *testing.T, kv *storage.Memory, scope, key string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, kv.Put(context.Background(), scope, key, b))
}

func storedData(t *testing.T, kv *storage.Memory, profile string) model.AppData {
	t.Helper()
	b, err := kv.Get(context.Background(), profile, storage.KeyData)
	require.NoError(t, err)
	var d model.AppData
	require.NoError(t, json.Unmarshal(b, &d))
	return d
}

func addSemester(name string) func(d *model.AppData) {
	return func(d *model.AppData) {
		d.Semesters = append(d.Semesters, model.NewSemester(name, name))
	}
}

func TestLoad_EmptyStorageUsesDefaults(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{})

	assert.Equal(t, []model.Profile{model.DefaultProfile()}, s.Profiles())
	assert.Equal(t, model.DefaultProfileID, s.ActiveProfile().ID)
	assert.Equal(t, model.DefaultAppData(), s.Data())
	_, ok := s.CurrentSemester()
	assert.False(t, ok)
}

func TestLoad_SelectsLatestSemester(t *testing.T) {
	kv := storage.NewMemory()
	putJSON(t, kv, model.DefaultProfileID, storage.KeyData, map[string]any{
		"semesters": []any{
			map[string]any{"id": "a", "name": "Spring 2024"},
			map[string]any{"id": "b", "name": "Winter 2024-2025"},
			map[string]any{"id": "c", "name": "Summer 2024"},
		},
	})
	s := setupStore(t, kv, Options{})

	sem, ok := s.CurrentSemester()
	require.True(t, ok)
	assert.Equal(t, "b", sem.ID)
}

func TestLoad_LegacyKeyMigratesOnce(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(context.Background(), storage.GlobalScope, storage.KeyData,
		[]byte(`{"semesters":[{"id":"old","name":"Winter 2020","courses":[{"id":"c","lectures":[{"name":"L1"}]}]}]}`)))

	s := setupStore(t, kv, Options{})

	c, ok := s.Course("c")
	require.True(t, ok)
	assert.Equal(t, "L1", c.Recordings.Tabs[0].Items[0].Name)
	assert.True(t, kv.Has(model.DefaultProfileID, storage.KeyData))
}

func TestLoad_CorruptValuesFailOpen(t *testing.T) {
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(context.Background(), storage.GlobalScope, storage.KeyProfiles, []byte("{{")))
	require.NoError(t, kv.Put(context.Background(), model.DefaultProfileID, storage.KeyData, []byte("not json")))

	s := setupStore(t, kv, Options{})

	assert.Equal(t, []model.Profile{model.DefaultProfile()}, s.Profiles())
	assert.Equal(t, model.DefaultAppData(), s.Data())
}

func TestUpdateData_VisibleImmediately(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})

	s.UpdateData(addSemester("Spring 2025"))

	assert.Len(t, s.Data().Semesters, 1)
	assert.Equal(t, 0, kv.Writes(model.DefaultProfileID, storage.KeyData))
	assert.True(t, s.Pending())
}

func TestUpdateData_DebounceCoalescesWrites(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: 50 * time.Millisecond})

	for _, name := range []string{"Spring 2025", "Summer 2025", "Winter 2025"} {
		s.UpdateData(addSemester(name))
	}

	assert.Eventually(t, func() bool {
		return kv.Writes(model.DefaultProfileID, storage.KeyData) == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, kv.Writes(model.DefaultProfileID, storage.KeyData))

	stored := storedData(t, kv, model.DefaultProfileID)
	assert.Len(t, stored.Semesters, 3)
	assert.Equal(t, fixedNow.UnixMilli(), stored.LastModified)
}

func TestUpdateData_LastModifiedStampedAtWrite(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})

	s.UpdateData(addSemester("Spring 2025"))
	assert.Zero(t, s.Data().LastModified)

	require.NoError(t, s.SaveNow(context.Background()))
	assert.Equal(t, fixedNow.UnixMilli(), s.Data().LastModified)
	assert.False(t, s.Pending())
	assert.Equal(t, 1, kv.Writes(model.DefaultProfileID, storage.KeyData))
}

func TestMutate_NoChangeSkipsPersistAndNotify(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})
	var calls atomic.Int32
	s.Subscribe(func() { calls.Add(1) })

	ok := s.Mutate(func(d *model.AppData) bool { return false })

	assert.False(t, ok)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, s.Pending())
}

func TestSubscribe_PanickingListenerIsIsolated(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})

	var second atomic.Int32
	s.Subscribe(func() { panic("boom") })
	s.Subscribe(func() { second.Add(1) })

	assert.NotPanics(t, func() { s.UpdateData(addSemester("Spring 2025")) })
	assert.Equal(t, int32(1), second.Load())
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})

	var calls atomic.Int32
	unsubscribe := s.Subscribe(func() { calls.Add(1) })
	s.UpdateData(addSemester("A"))
	unsubscribe()
	unsubscribe()
	s.UpdateData(addSemester("B"))

	assert.Equal(t, int32(1), calls.Load())
}

func TestUpdateSettings_ShallowMerge(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})

	show := false
	s.UpdateSettings(model.SettingsPatch{ShowCompleted: &show})

	got := s.Settings()
	assert.False(t, got.ShowCompleted)
	assert.Equal(t, model.DefaultSettings().Theme, got.Theme)
}

func TestSelectSemester(t *testing.T) {
	s := setupStore(t, storage.NewMemory(), Options{PersistDelay: time.Hour})
	s.UpdateData(addSemester("Spring 2024"))
	s.UpdateData(addSemester("Winter 2024"))

	assert.Equal(t, "Spring 2024", s.CurrentSemesterID(), "first semester becomes current")
	assert.True(t, s.SelectSemester("Winter 2024"))
	assert.Equal(t, "Winter 2024", s.CurrentSemesterID())
	assert.False(t, s.SelectSemester("missing"))
	assert.Equal(t, "Winter 2024", s.CurrentSemesterID())
}

func TestStorageError_AlertsAndKeepsMemory(t *testing.T) {
	kv := storage.NewMemory()
	kv.SetQuota(10)
	var alerts []error
	s := setupStore(t, kv, Options{PersistDelay: time.Hour, OnError: func(err error) { alerts = append(alerts, err) }})

	s.UpdateData(addSemester("Spring 2025"))
	err := s.SaveNow(context.Background())

	assert.ErrorIs(t, err, storage.ErrQuotaExceeded)
	require.Len(t, alerts, 1)
	assert.ErrorIs(t, alerts[0], storage.ErrQuotaExceeded)
	assert.Len(t, s.Data().Semesters, 1)
}

func TestReplaceData_MigratesAndPersistsImmediately(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})
	var calls atomic.Int32
	s.Subscribe(func() { calls.Add(1) })

	err := s.ReplaceData(context.Background(), model.AppData{Semesters: []model.Semester{
		{ID: "s1", Name: "Spring 2023", Courses: []model.Course{{ID: "c1", Name: "Bare"}}},
		{ID: "s2", Name: "Winter 2023"},
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, kv.Writes(model.DefaultProfileID, storage.KeyData))
	assert.Equal(t, "s2", s.CurrentSemesterID())
	assert.Equal(t, int32(1), calls.Load())

	d := s.Data()
	assert.Len(t, d.Semesters[0].Courses[0].Recordings.Tabs, 2)
	assert.NotNil(t, d.Semesters[1].Courses)
	assert.Equal(t, model.ThemeLight, d.Settings.Theme)
	assert.Equal(t, model.ColorThemeColorful, d.Settings.ColorTheme)
}

func TestClose_FlushesPending(t *testing.T) {
	kv := storage.NewMemory()
	s := setupStore(t, kv, Options{PersistDelay: time.Hour})

	s.UpdateData(addSemester("Spring 2025"))
	require.NoError(t, s.Close(context.Background()))

	assert.Len(t, storedData(t, kv, model.DefaultProfileID).Semesters, 1)
}
