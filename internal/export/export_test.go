package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/semplan/internal/migrate"
	"github.com/existflow/semplan/internal/model"
)

var now = time.Date(2025, 3, 12, 10, 0, 0, 0, time.Local)

func sampleData() model.AppData {
	d := model.DefaultAppData()
	sem := model.NewSemester("s1", "Spring 2025")

	c := model.NewCourse("c1", "Algo, Part 1")
	c.Color = "#3366cc"
	c.Location = "Room 2; East"
	c.Lecturer = "Dr. Levi"
	c.Schedule = []model.ScheduleItem{
		{Day: 1, Start: "09:30", End: "11:00"},
		{Day: 3, Start: "bad", End: "11:00"},
	}
	hw := model.NewHomework("HW1", "2025-03-13")
	hw.Links = []model.HomeworkLink{{Name: "pdf", URL: "https://example.com/hw1.pdf"}}
	c.Homework = []model.HomeworkItem{hw}
	c.Exams = model.Exams{MoedA: "2025-07-01", MoedB: ""}
	c.Recordings.Tabs[0].Items = []model.RecordingItem{{Name: "Intro", VideoLink: "https://v/1", Watched: true}}

	sem.Courses = []model.Course{c}
	d.Semesters = []model.Semester{sem}
	d.LastModified = 1741770000000
	return d
}

func TestJSON_RoundTrip(t *testing.T) {
	d := sampleData()

	b, err := JSON(d)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("{\n  \"semesters\"")))

	got, err := ParseImport(b)
	require.NoError(t, err)
	assert.Equal(t, migrate.Typed(d), got)
	assert.Equal(t, d.Semesters[0].Courses[0].Homework, got.Semesters[0].Courses[0].Homework)
}

func TestParseImport_NestedUnderData(t *testing.T) {
	got, err := ParseImport([]byte(`{"data":{"semesters":[{"id":"x","name":"Winter 2024"}]}}`))
	require.NoError(t, err)
	require.Len(t, got.Semesters, 1)
	assert.Equal(t, model.DefaultCalendarSettings(), got.Semesters[0].CalendarSettings)
}

func TestParseImport_Rejects(t *testing.T) {
	for _, in := range []string{
		`not json`,
		`[1,2]`,
		`{}`,
		`{"semesters":{}}`,
		`{"data":{"courses":[]}}`,
	} {
		_, err := ParseImport([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidImport, in)
	}
}

func TestICS(t *testing.T) {
	out := ICS(sampleData().Semesters[0], now)
	text := string(out)

	assert.Contains(t, text, "SUMMARY:Algo\\, Part 1\r\n")
	assert.Contains(t, text, `LOCATION:Room 2\; East`)
	assert.Contains(t, text, "DTSTART:20250310T093000")
	assert.Contains(t, text, "DTEND:20250310T110000")
	assert.True(t, strings.HasPrefix(text, "BEGIN:VCALENDAR\r\n"))
	assert.NotContains(t, strings.ReplaceAll(text, "\r\n", ""), "\n", "every line ends in CRLF")

	cal, err := ics.ParseCalendar(strings.NewReader(text))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2, "one weekly block and one exam")

	rule := events[0].GetProperty(ics.ComponentPropertyRrule)
	require.NotNil(t, rule)
	assert.Contains(t, rule.Value, "FREQ=WEEKLY")
	assert.Contains(t, rule.Value, "BYDAY=MO")

	exam := events[1].GetProperty(ics.ComponentPropertyDtStart)
	require.NotNil(t, exam)
	assert.Equal(t, "20250701", exam.Value)
	assert.Nil(t, events[1].GetProperty(ics.ComponentPropertyRrule))
}

func TestICS_TextValuesRoundTrip(t *testing.T) {
	sem := sampleData().Semesters[0]
	sem.Name = `Spring, 2025; \main`
	sem.Courses[0].Number = "234247"

	out := ICS(sem, now)
	assert.Contains(t, string(out), `DESCRIPTION:Course 234247\nLecturer: Dr. Levi`)

	cal, err := ics.ParseCalendar(strings.NewReader(string(out)))
	require.NoError(t, err)
	events := cal.Events()
	require.NotEmpty(t, events)

	field := func(p ics.ComponentProperty) string {
		prop := events[0].GetProperty(p)
		require.NotNil(t, prop, p)
		return prop.Value
	}
	assert.Equal(t, "Algo, Part 1", field(ics.ComponentPropertySummary))
	assert.Equal(t, "Room 2; East", field(ics.ComponentPropertyLocation))
	assert.Equal(t, "Course 234247\nLecturer: Dr. Levi", field(ics.ComponentPropertyDescription))
	assert.Equal(t, "Exam A: Algo, Part 1", events[1].GetProperty(ics.ComponentPropertySummary).Value)

	var calName string
	for _, p := range cal.CalendarProperties {
		if p.IANAToken == string(ics.PropertyXWRCalName) {
			calName = p.Value
		}
	}
	assert.Equal(t, sem.Name, calName)
}

func TestBackup_RoundTrip(t *testing.T) {
	b := model.Backup{
		Version:    model.BackupVersion,
		ExportDate: "2025-03-12T10:00:00.000Z",
		Profiles: []model.BackupProfile{
			{ID: model.DefaultProfileID, Name: "Default", Data: sampleData()},
			{ID: "work", Name: "Work", Data: model.DefaultAppData()},
		},
	}

	raw, err := EncodeBackup(b)
	require.NoError(t, err)

	got, err := DecodeBackup(raw)
	require.NoError(t, err)
	require.Len(t, got.Profiles, 2)
	assert.Equal(t, "Work", got.Profiles[1].Name)
	assert.Equal(t, migrate.Typed(sampleData()), got.Profiles[0].Data)
}

func TestDecodeBackup_Rejects(t *testing.T) {
	for _, in := range []string{
		`nope`,
		`{"version":0,"profiles":[{"id":"a"}]}`,
		`{"version":99,"profiles":[{"id":"a"}]}`,
		`{"version":1,"profiles":[]}`,
		`{"version":1,"profiles":[{"name":"no id"}]}`,
	} {
		_, err := DecodeBackup([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidBackup, in)
	}
}

func TestDecodeBackup_CorruptProfileDataDefaults(t *testing.T) {
	got, err := DecodeBackup([]byte(`{"version":1,"profiles":[{"id":"a","data":"oops"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "a", got.Profiles[0].Name)
	assert.Empty(t, got.Profiles[0].Data.Semesters)
}

func TestSealOpen(t *testing.T) {
	plain := []byte(`{"version":1}`)

	sealed, err := Seal(plain, "correct horse")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.False(t, IsSealed(plain))
	assert.NotContains(t, string(sealed), "version")

	got, err := Open(sealed, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	_, err = Open(sealed, "wrong")
	assert.ErrorIs(t, err, ErrDecrypt)
	_, err = Open(plain, "correct horse")
	assert.ErrorIs(t, err, ErrDecrypt)
}
