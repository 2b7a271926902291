// Package calendar lays out a semester's weekly schedule on a day/hour grid
// and collects the homework and exams that fall in the current week.
package calendar

import (
	"time"

	"github.com/existflow/semplan/internal/model"
)

// HourHeight is the height of one grid row
const HourHeight = 60

// Grid is the fixed day/hour layout of a week view
type Grid struct {
	Days  []int `json:"days"`  // visible weekdays, 0=Sunday, ascending
	Hours []int `json:"hours"` // startHour..endHour inclusive
}

// NewGrid builds the grid of a calendar window
func NewGrid(cs model.CalendarSettings) Grid {
	g := Grid{}
	for d := 0; d <= 6; d++ {
		if cs.IsVisible(d) {
			g.Days = append(g.Days, d)
		}
	}
	for h := cs.StartHour; h <= cs.EndHour; h++ {
		g.Hours = append(g.Hours, h)
	}
	return g
}

// Block is a schedule item anchored at its (day, start hour) cell
type Block struct {
	CourseID      string  `json:"courseId"`
	CourseName    string  `json:"courseName"`
	Color         string  `json:"color"`
	Location      string  `json:"location"`
	ScheduleIndex int     `json:"scheduleIndex"`
	Day           int     `json:"day"`
	Hour          int     `json:"hour"`
	Start         string  `json:"start"`
	End           string  `json:"end"`
	Top           float64 `json:"top"`    // offset inside the cell
	Height        float64 `json:"height"` // spans past the cell when longer than an hour
}

// Place computes the cell and geometry of one schedule item. Items with
// malformed times, a hidden day, or a start hour outside the window are
// not placed.
func Place(item model.ScheduleItem, cs model.CalendarSettings) (Block, bool) {
	sh, sm, ok := model.ParseClock(item.Start)
	if !ok {
		return Block{}, false
	}
	eh, em, ok := model.ParseClock(item.End)
	if !ok {
		return Block{}, false
	}
	if !cs.IsVisible(item.Day) || sh < cs.StartHour || sh > cs.EndHour {
		return Block{}, false
	}

	start := float64(sh) + float64(sm)/60
	end := float64(eh) + float64(em)/60
	if end <= start {
		return Block{}, false
	}
	return Block{
		Day:    item.Day,
		Hour:   sh,
		Start:  item.Start,
		End:    item.End,
		Top:    float64(sm) / 60 * HourHeight,
		Height: (end - start) * HourHeight,
	}, true
}

// Blocks places every schedule item of the semester in course order
func Blocks(sem model.Semester) []Block {
	var out []Block
	for _, c := range sem.Courses {
		for i, item := range c.Schedule {
			b, ok := Place(item, sem.CalendarSettings)
			if !ok {
				continue
			}
			b.CourseID = c.ID
			b.CourseName = c.Name
			b.Color = c.Color
			b.Location = c.Location
			b.ScheduleIndex = i
			out = append(out, b)
		}
	}
	return out
}

// NowIndicator marks the current time on the grid
type NowIndicator struct {
	Day  int     `json:"day"`
	Hour int     `json:"hour"`
	Top  float64 `json:"top"`
}

// Now locates now on the grid. It reports false when today is hidden or
// the time is outside the window.
func Now(cs model.CalendarSettings, now time.Time) (NowIndicator, bool) {
	day := int(now.Weekday())
	if !cs.IsVisible(day) || now.Hour() < cs.StartHour || now.Hour() > cs.EndHour {
		return NowIndicator{}, false
	}
	return NowIndicator{
		Day:  day,
		Hour: now.Hour(),
		Top:  float64(now.Minute()) / 60 * HourHeight,
	}, true
}

// Week is everything a week view needs to draw
type Week struct {
	Start  time.Time       `json:"start"`
	End    time.Time       `json:"end"`
	Grid   Grid            `json:"grid"`
	Blocks []Block         `json:"blocks"`
	Events map[int][]Event `json:"events"`
	Now    *NowIndicator   `json:"now,omitempty"`
}

// BuildWeek derives the week view of sem around now
func BuildWeek(sem model.Semester, now time.Time) Week {
	start, end := WeekRange(now)
	w := Week{
		Start:  start,
		End:    end,
		Grid:   NewGrid(sem.CalendarSettings),
		Blocks: Blocks(sem),
		Events: GroupByDay(CollectWeekEvents(sem, now), sem.CalendarSettings.VisibleDays),
	}
	if ind, ok := Now(sem.CalendarSettings, now); ok {
		w.Now = &ind
	}
	return w
}
