// Package migrate upgrades stored planner data of any age to the current shape.
//
// Migration is a pure function over decoded JSON. Each field-level upgrader is
// total: malformed values fall back to defaults and never block their siblings.
package migrate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/existflow/semplan/internal/color"
	"github.com/existflow/semplan/internal/model"
)

// Parse decodes raw JSON and migrates it. Only undecodable JSON is an error.
func Parse(data []byte) (model.AppData, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return model.DefaultAppData(), fmt.Errorf("failed to decode data: %w", err)
	}
	return Migrate(raw), nil
}

// Typed re-runs migration over an already typed dataset
func Typed(d model.AppData) model.AppData {
	b, err := json.Marshal(d)
	if err != nil {
		return Migrate(nil)
	}
	out, _ := Parse(b)
	return out
}

// Migrate converts a loosely typed document into a complete AppData
func Migrate(raw any) model.AppData {
	doc := asMap(raw)

	out := model.DefaultAppData()
	out.Settings = upgradeSettings(doc["settings"])
	out.LastModified = asInt64(doc["lastModified"])

	for i, s := range asSlice(doc["semesters"]) {
		src, ok := s.(map[string]any)
		if !ok {
			continue
		}
		out.Semesters = append(out.Semesters, upgradeSemester(src, i, out.Settings))
	}
	return out
}

func upgradeSettings(v any) model.AppSettings {
	src := asMap(v)
	s := model.DefaultSettings()

	switch t := asString(src["theme"]); t {
	case model.ThemeLight, model.ThemeDark:
		s.Theme = t
	}
	s.ShowCompleted = asBool(src["showCompleted"], true)
	switch ct := asString(src["colorTheme"]); ct {
	case model.ColorThemeColorful, model.ColorThemeSingle, model.ColorThemeMono:
		s.ColorTheme = ct
	}
	if hue, ok := asInt(src["baseColorHue"]); ok && hue >= 0 && hue < 360 {
		s.BaseColorHue = hue
	}
	return s
}

func upgradeSemester(src map[string]any, index int, settings model.AppSettings) model.Semester {
	id := asString(src["id"])
	if id == "" {
		id = derivedID(pathf("semester/%d", index))
	}
	sem := model.NewSemester(id, asString(src["name"]))
	sem.CalendarSettings = upgradeCalendarSettings(src["calendarSettings"])

	for i, c := range asSlice(src["courses"]) {
		csrc, ok := c.(map[string]any)
		if !ok {
			continue
		}
		sem.Courses = append(sem.Courses, upgradeCourse(csrc, courseCtx{
			semester: index,
			index:    i,
			settings: settings,
		}))
	}
	return sem
}

func upgradeCalendarSettings(v any) model.CalendarSettings {
	src := asMap(v)
	def := model.DefaultCalendarSettings()
	cs := model.CalendarSettings{StartHour: def.StartHour, EndHour: def.EndHour}

	start, okStart := asInt(src["startHour"])
	end, okEnd := asInt(src["endHour"])
	if okStart && okEnd && start >= 0 && end <= 24 && start < end {
		cs.StartHour, cs.EndHour = start, end
	}

	seen := map[int]bool{}
	for _, d := range asSlice(src["visibleDays"]) {
		day, ok := asInt(d)
		if !ok || day < 0 || day > 6 || seen[day] {
			continue
		}
		seen[day] = true
		cs.VisibleDays = append(cs.VisibleDays, day)
	}
	sort.Ints(cs.VisibleDays)
	if len(cs.VisibleDays) == 0 {
		cs.VisibleDays = def.VisibleDays
	}
	return cs
}

type courseCtx struct {
	semester int
	index    int
	settings model.AppSettings
}

func (c courseCtx) path(suffix string) string {
	return pathf("semester/%d/course/%d%s", c.semester, c.index, suffix)
}

// courseUpgraders run in order over every course
var courseUpgraders = []func(src map[string]any, c *model.Course, ctx courseCtx){
	upgradeCourseFields,
	upgradeCourseColor,
	upgradeSchedule,
	upgradeHomework,
	upgradeExams,
	upgradeRecordings,
	upgradeLegacyLectures,
}

func upgradeCourse(src map[string]any, ctx courseCtx) model.Course {
	c := model.NewCourse("", "")
	for _, up := range courseUpgraders {
		up(src, &c, ctx)
	}
	return c
}

func upgradeCourseFields(src map[string]any, c *model.Course, ctx courseCtx) {
	c.ID = asString(src["id"])
	if c.ID == "" {
		c.ID = derivedID(ctx.path(""))
	}
	c.Name = asString(src["name"])
	c.Number = asString(src["number"])
	c.Points = asString(src["points"])
	c.Lecturer = asString(src["lecturer"])
	c.Faculty = asString(src["faculty"])
	c.Location = asString(src["location"])
	c.Grade = asString(src["grade"])
	c.Syllabus = asString(src["syllabus"])
	c.Notes = asString(src["notes"])
}

func upgradeCourseColor(src map[string]any, c *model.Course, ctx courseCtx) {
	c.Color = strings.TrimSpace(asString(src["color"]))
	if c.Color == "" {
		c.Color = color.ForIndex(ctx.index, ctx.settings)
	}
}

func upgradeSchedule(src map[string]any, c *model.Course, _ courseCtx) {
	for _, v := range asSlice(src["schedule"]) {
		item := asMap(v)
		day, ok := asInt(item["day"])
		if !ok || day < 0 || day > 6 {
			continue
		}
		c.Schedule = append(c.Schedule, model.ScheduleItem{
			Day:   day,
			Start: strings.TrimSpace(asString(item["start"])),
			End:   strings.TrimSpace(asString(item["end"])),
		})
	}
}

func upgradeHomework(src map[string]any, c *model.Course, _ courseCtx) {
	for _, v := range asSlice(src["homework"]) {
		item, ok := v.(map[string]any)
		if !ok {
			continue
		}
		hw := model.NewHomework(asString(item["title"]), normalizeDate(asString(item["dueDate"])))
		hw.Completed = asBool(item["completed"], false)
		hw.Notes = asString(item["notes"])
		hw.Links = upgradeLinks(item["links"])
		c.Homework = append(c.Homework, hw)
	}
}

func upgradeLinks(v any) []model.HomeworkLink {
	links := []model.HomeworkLink{}
	for _, l := range asSlice(v) {
		switch t := l.(type) {
		case string:
			if t != "" {
				links = append(links, model.HomeworkLink{Name: t, URL: t})
			}
		case map[string]any:
			url := asString(t["url"])
			name := asString(t["name"])
			if name == "" {
				name = asString(t["label"])
			}
			if url == "" && name == "" {
				continue
			}
			links = append(links, model.HomeworkLink{Name: name, URL: url})
		}
	}
	return links
}

func upgradeExams(src map[string]any, c *model.Course, _ courseCtx) {
	exams := asMap(src["exams"])
	c.Exams = model.Exams{
		MoedA: normalizeDate(asString(exams["moedA"])),
		MoedB: normalizeDate(asString(exams["moedB"])),
	}
}

func upgradeRecordings(src map[string]any, c *model.Course, ctx courseCtx) {
	rec := asMap(src["recordings"])
	tabs := []model.RecordingTab{}
	seen := map[string]bool{}

	for i, v := range asSlice(rec["tabs"]) {
		t, ok := v.(map[string]any)
		if !ok {
			continue
		}
		id := asString(t["id"])
		if id == "" {
			id = derivedID(ctx.path(pathf("/tab/%d", i)))
		}
		if seen[id] {
			for j := range tabs {
				if tabs[j].ID == id {
					tabs[j].Items = append(tabs[j].Items, upgradeRecordingItems(t["items"])...)
				}
			}
			continue
		}
		seen[id] = true
		name := asString(t["name"])
		if name == "" {
			name = defaultTabName(id)
		}
		tabs = append(tabs, model.RecordingTab{ID: id, Name: name, Items: upgradeRecordingItems(t["items"])})
	}

	defaults := model.DefaultRecordings().Tabs
	if !seen[model.TabLectures] {
		tabs = append([]model.RecordingTab{defaults[0]}, tabs...)
	}
	if !seen[model.TabTutorials] {
		at := 0
		for i := range tabs {
			if tabs[i].ID == model.TabLectures {
				at = i + 1
				break
			}
		}
		tabs = append(tabs[:at], append([]model.RecordingTab{defaults[1]}, tabs[at:]...)...)
	}
	c.Recordings.Tabs = tabs
}

// upgradeLegacyLectures folds the pre-tab "lectures" array into the lectures tab
func upgradeLegacyLectures(src map[string]any, c *model.Course, _ courseCtx) {
	legacy, ok := src["lectures"].([]any)
	if !ok || len(legacy) == 0 {
		return
	}
	tab, ok := c.Recordings.Tab(model.TabLectures)
	if !ok {
		return
	}
	tab.Items = append(tab.Items, upgradeRecordingItems(legacy)...)
}

func upgradeRecordingItems(v any) []model.RecordingItem {
	items := []model.RecordingItem{}
	for _, raw := range asSlice(v) {
		it, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		video := asString(it["videoLink"])
		if video == "" {
			video = asString(it["link"])
		}
		slides := asString(it["slideLink"])
		if slides == "" {
			slides = asString(it["slides"])
		}
		items = append(items, model.RecordingItem{
			Name:      asString(it["name"]),
			VideoLink: video,
			SlideLink: slides,
			Watched:   asBool(it["watched"], false),
			Liked:     asBool(it["liked"], false),
		})
	}
	return items
}

func defaultTabName(id string) string {
	switch id {
	case model.TabLectures:
		return "Lectures"
	case model.TabTutorials:
		return "Tutorials"
	default:
		return "Recordings"
	}
}

// normalizeDate keeps the date part of ISO timestamps
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > len(model.DateLayout) {
		if _, ok := model.ParseDate(s[:len(model.DateLayout)]); ok {
			return s[:len(model.DateLayout)]
		}
	}
	return s
}
