package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/existflow/semplan/internal/model"
	"github.com/existflow/semplan/internal/storage"
	"github.com/existflow/semplan/internal/store"
)

func setupServices(t *testing.T) (*Services, *store.Store) {
	t.Helper()
	st := store.New(storage.NewMemory(), zap.NewNop(), store.Options{PersistDelay: time.Hour})
	st.Load(context.Background())
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return New(st, zap.NewNop()), st
}

func setupCourse(t *testing.T) (*Services, *store.Store, model.Course) {
	t.Helper()
	svc, st := setupServices(t)
	_, err := svc.Semesters.Create("Winter 2024-2025")
	require.NoError(t, err)
	c, err := svc.Courses.Add("Algorithms", CoursePatch{})
	require.NoError(t, err)
	return svc, st, c
}

func strp(s string) *string { return &s }

func TestSemester_CreateSelectsNew(t *testing.T) {
	svc, st := setupServices(t)

	a, err := svc.Semesters.Create("Spring 2025")
	require.NoError(t, err)
	assert.Equal(t, a.ID, st.CurrentSemesterID())

	b, err := svc.Semesters.Create("Winter 2023")
	require.NoError(t, err)
	assert.Equal(t, b.ID, st.CurrentSemesterID())

	_, err = svc.Semesters.Create("  ")
	assert.ErrorIs(t, err, ErrEmptyName)

	list := svc.Semesters.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Spring 2025", list[0].Name)
}

func TestSemester_DeleteCurrentFallsBackToLatest(t *testing.T) {
	svc, st := setupServices(t)
	old, _ := svc.Semesters.Create("Spring 2022")
	newer, _ := svc.Semesters.Create("Summer 2024")
	cur, _ := svc.Semesters.Create("Winter 2020")

	assert.True(t, svc.Semesters.Delete(cur.ID))
	assert.Equal(t, newer.ID, st.CurrentSemesterID())
	assert.False(t, svc.Semesters.Delete(cur.ID))

	assert.True(t, svc.Semesters.Rename(old.ID, "Spring 2026"))
	assert.False(t, svc.Semesters.Rename("missing", "x"))
}

func TestSemester_UpdateCalendarSettings(t *testing.T) {
	svc, st := setupServices(t)
	sem, _ := svc.Semesters.Create("Spring 2025")

	err := svc.Semesters.UpdateCalendarSettings(sem.ID, model.CalendarSettings{StartHour: 9, EndHour: 17, VisibleDays: []int{4, 0, 4, 2}})
	require.NoError(t, err)
	got, _ := st.CurrentSemester()
	assert.Equal(t, []int{0, 2, 4}, got.CalendarSettings.VisibleDays)

	assert.ErrorIs(t, svc.Semesters.UpdateCalendarSettings(sem.ID, model.CalendarSettings{StartHour: 10, EndHour: 10, VisibleDays: []int{0}}), ErrInvalidHourRange)
	assert.ErrorIs(t, svc.Semesters.UpdateCalendarSettings(sem.ID, model.CalendarSettings{StartHour: 8, EndHour: 20}), ErrNoVisibleDays)
	assert.ErrorIs(t, svc.Semesters.UpdateCalendarSettings("nope", model.DefaultCalendarSettings()), ErrNotFound)
}

func TestCourse_AddRequiresSemester(t *testing.T) {
	svc, _ := setupServices(t)
	_, err := svc.Courses.Add("Physics", CoursePatch{})
	assert.ErrorIs(t, err, ErrNoSemester)
}

func TestCourse_AddAssignsColor(t *testing.T) {
	svc, _, c := setupCourse(t)
	assert.NotEmpty(t, c.Color)
	assert.Len(t, c.Recordings.Tabs, 2)

	c2, err := svc.Courses.Add("Logic", CoursePatch{Color: strp("#112233")})
	require.NoError(t, err)
	assert.Equal(t, "#112233", c2.Color)
}

func TestCourse_UpdateAndDelete(t *testing.T) {
	svc, st, c := setupCourse(t)

	assert.True(t, svc.Courses.Update(c.ID, CoursePatch{Lecturer: strp("Dr. Cohen")}))
	got, _ := st.Course(c.ID)
	assert.Equal(t, "Dr. Cohen", got.Lecturer)
	assert.Equal(t, "Algorithms", got.Name)

	assert.False(t, svc.Courses.Update(c.ID, CoursePatch{Name: strp(" ")}))
	assert.False(t, svc.Courses.Update("ghost", CoursePatch{Lecturer: strp("x")}))

	assert.True(t, svc.Courses.Delete(c.ID))
	assert.False(t, svc.Courses.Delete(c.ID))
}

func TestCourse_MoveStopsAtBoundaries(t *testing.T) {
	svc, st, a := setupCourse(t)
	b, _ := svc.Courses.Add("B", CoursePatch{})

	assert.False(t, svc.Courses.Move(a.ID, -1))
	assert.False(t, svc.Courses.Move(b.ID, 1))
	assert.True(t, svc.Courses.Move(b.ID, -1))

	sem, _ := st.CurrentSemester()
	assert.Equal(t, b.ID, sem.Courses[0].ID)
}

func TestCourse_Schedule(t *testing.T) {
	svc, st, c := setupCourse(t)

	require.NoError(t, svc.Courses.AddSchedule(c.ID, model.ScheduleItem{Day: 1, Start: "09:30", End: "11:00"}))
	assert.ErrorIs(t, svc.Courses.AddSchedule(c.ID, model.ScheduleItem{Day: 1, Start: "11:00", End: "09:30"}), ErrInvalidTimeRange)
	assert.ErrorIs(t, svc.Courses.AddSchedule(c.ID, model.ScheduleItem{Day: 7, Start: "09:00", End: "10:00"}), ErrInvalidDay)
	assert.ErrorIs(t, svc.Courses.AddSchedule("ghost", model.ScheduleItem{Day: 1, Start: "09:00", End: "10:00"}), ErrNotFound)

	require.NoError(t, svc.Courses.UpdateSchedule(c.ID, 0, model.ScheduleItem{Day: 2, Start: "10:00", End: "12:00"}))
	assert.ErrorIs(t, svc.Courses.UpdateSchedule(c.ID, 5, model.ScheduleItem{Day: 2, Start: "10:00", End: "12:00"}), ErrNotFound)

	got, _ := st.Course(c.ID)
	assert.Equal(t, []model.ScheduleItem{{Day: 2, Start: "10:00", End: "12:00"}}, got.Schedule)

	assert.True(t, svc.Courses.RemoveSchedule(c.ID, 0))
	assert.False(t, svc.Courses.RemoveSchedule(c.ID, 0))
}

func TestCourse_SetExams(t *testing.T) {
	svc, st, c := setupCourse(t)

	require.NoError(t, svc.Courses.SetExams(c.ID, model.Exams{MoedA: "2025-02-10"}))
	assert.ErrorIs(t, svc.Courses.SetExams(c.ID, model.Exams{MoedB: "10/02/2025"}), ErrInvalidDate)

	got, _ := st.Course(c.ID)
	assert.Equal(t, "2025-02-10", got.Exams.MoedA)
	assert.Empty(t, got.Exams.MoedB)
}

func TestHomework_CRUD(t *testing.T) {
	svc, st, c := setupCourse(t)

	require.NoError(t, svc.Homework.Add(c.ID, "HW1", "2025-01-05"))
	assert.ErrorIs(t, svc.Homework.Add(c.ID, "", ""), ErrEmptyName)
	assert.ErrorIs(t, svc.Homework.Add(c.ID, "HW2", "tomorrow"), ErrInvalidDate)
	assert.ErrorIs(t, svc.Homework.Add("ghost", "HW2", ""), ErrNotFound)

	assert.True(t, svc.Homework.Toggle(c.ID, 0))
	assert.False(t, svc.Homework.Toggle(c.ID, 3))

	require.NoError(t, svc.Homework.Update(c.ID, 0, HomeworkPatch{Notes: strp("chapter 4")}))
	assert.True(t, svc.Homework.AddLink(c.ID, 0, model.HomeworkLink{URL: "https://example.com/hw1.pdf"}))
	assert.False(t, svc.Homework.AddLink(c.ID, 0, model.HomeworkLink{Name: "empty"}))

	got, _ := st.Course(c.ID)
	require.Len(t, got.Homework, 1)
	hw := got.Homework[0]
	assert.True(t, hw.Completed)
	assert.Equal(t, "chapter 4", hw.Notes)
	assert.Equal(t, "https://example.com/hw1.pdf", hw.Links[0].Name)

	assert.True(t, svc.Homework.RemoveLink(c.ID, 0, 0))
	assert.False(t, svc.Homework.RemoveLink(c.ID, 0, 0))
	assert.True(t, svc.Homework.Delete(c.ID, 0))
	assert.False(t, svc.Homework.Delete(c.ID, 0))
}

func TestSidebar_DueSoon(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 45, 0, 0, time.Local)
	c := model.NewCourse("c", "Algorithms")
	c.Homework = []model.HomeworkItem{
		model.NewHomework("tomorrow", "2025-03-13"),
		model.NewHomework("yesterday", "2025-03-11"),
		model.NewHomework("next week", "2025-03-20"),
	}
	sem := model.NewSemester("s", "Spring 2025")
	sem.Courses = []model.Course{c}

	list := Sidebar(sem, true, now)
	require.Len(t, list, 3)
	assert.Equal(t, "yesterday", list[0].Item.Title)
	assert.True(t, list[0].Overdue)
	assert.False(t, list[0].DueSoon)
	assert.True(t, list[1].DueSoon)
	assert.False(t, list[1].Overdue)
	assert.False(t, list[2].DueSoon)
}

func TestHomework_ListOrdersByDueDate(t *testing.T) {
	svc, st, c := setupCourse(t)
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.Local)

	require.NoError(t, svc.Homework.Add(c.ID, "undated", ""))
	require.NoError(t, svc.Homework.Add(c.ID, "late", "2025-01-20"))
	require.NoError(t, svc.Homework.Add(c.ID, "early", "2025-01-03"))
	require.NoError(t, svc.Homework.Add(c.ID, "done", "2025-01-01"))
	require.True(t, svc.Homework.Toggle(c.ID, 3))

	list := svc.Homework.List(now)
	titles := make([]string, len(list))
	for i, e := range list {
		titles[i] = e.Item.Title
	}
	assert.Equal(t, []string{"done", "early", "late", "undated"}, titles)
	assert.True(t, list[1].Overdue)
	assert.False(t, list[0].Overdue, "completed items are never overdue")
	assert.Equal(t, 2, list[1].Index)

	show := false
	st.UpdateSettings(model.SettingsPatch{ShowCompleted: &show})
	assert.Len(t, svc.Homework.List(now), 3)
}

func TestRecording_Tabs(t *testing.T) {
	svc, st, c := setupCourse(t)

	id, err := svc.Recordings.AddTab(c.ID, "Workshops")
	require.NoError(t, err)
	require.NoError(t, svc.Recordings.RenameTab(c.ID, id, "Labs"))

	assert.ErrorIs(t, svc.Recordings.RenameTab(c.ID, model.TabLectures, "x"), ErrProtectedTab)
	assert.ErrorIs(t, svc.Recordings.DeleteTab(c.ID, model.TabTutorials), ErrProtectedTab)
	assert.ErrorIs(t, svc.Recordings.DeleteTab(c.ID, "ghost"), ErrNotFound)

	got, _ := st.Course(c.ID)
	require.Len(t, got.Recordings.Tabs, 3)
	assert.Equal(t, "Labs", got.Recordings.Tabs[2].Name)

	require.NoError(t, svc.Recordings.DeleteTab(c.ID, id))
	got, _ = st.Course(c.ID)
	assert.Len(t, got.Recordings.Tabs, 2)
}

func TestRecording_Items(t *testing.T) {
	svc, st, c := setupCourse(t)

	assert.True(t, svc.Recordings.AddItem(c.ID, model.TabLectures, model.RecordingItem{Name: "Intro"}))
	assert.True(t, svc.Recordings.AddItem(c.ID, model.TabLectures, model.RecordingItem{Name: "Graphs"}))
	assert.False(t, svc.Recordings.AddItem(c.ID, "ghost", model.RecordingItem{Name: "x"}))

	assert.True(t, svc.Recordings.ToggleWatched(c.ID, model.TabLectures, 0))
	assert.True(t, svc.Recordings.ToggleLiked(c.ID, model.TabLectures, 1))
	assert.True(t, svc.Recordings.MoveItem(c.ID, model.TabLectures, 1, -1))
	assert.False(t, svc.Recordings.MoveItem(c.ID, model.TabLectures, 0, -1))

	got, _ := st.Course(c.ID)
	items := got.Recordings.Tabs[0].Items
	assert.Equal(t, "Graphs", items[0].Name)
	assert.True(t, items[0].Liked)
	assert.True(t, items[1].Watched)

	assert.True(t, svc.Recordings.UpdateItem(c.ID, model.TabLectures, 0, model.RecordingItem{Name: "Graphs I", VideoLink: "https://v"}))
	assert.True(t, svc.Recordings.DeleteItem(c.ID, model.TabLectures, 1))
	assert.False(t, svc.Recordings.DeleteItem(c.ID, model.TabLectures, 1))
}

func TestSettings_UpdateRecolors(t *testing.T) {
	svc, st, c := setupCourse(t)

	mono := model.ColorThemeMono
	require.NoError(t, svc.Settings.Update(model.SettingsPatch{ColorTheme: &mono}))

	got, _ := st.Course(c.ID)
	assert.NotEqual(t, c.Color, got.Color)

	bad := "rainbow"
	assert.ErrorIs(t, svc.Settings.Update(model.SettingsPatch{ColorTheme: &bad}), ErrInvalidColorTheme)

	hue := -30
	require.NoError(t, svc.Settings.Update(model.SettingsPatch{BaseColorHue: &hue}))
	assert.Equal(t, 330, st.Settings().BaseColorHue)
}

func TestSettings_RejectsUnknownTheme(t *testing.T) {
	svc, st, _ := setupCourse(t)

	purple := "purple"
	show := false
	err := svc.Settings.Update(model.SettingsPatch{Theme: &purple, ShowCompleted: &show})
	assert.ErrorIs(t, err, ErrInvalidTheme)
	assert.Equal(t, model.ThemeLight, st.Settings().Theme)
	assert.True(t, st.Settings().ShowCompleted, "nothing applied on error")

	dark := model.ThemeDark
	require.NoError(t, svc.Settings.Update(model.SettingsPatch{Theme: &dark}))
	assert.Equal(t, model.ThemeDark, st.Settings().Theme)
}
