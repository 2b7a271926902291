package export

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/existflow/semplan/internal/calendar"
	"github.com/existflow/semplan/internal/model"
)

const (
	productID      = "-//semplan//Academic Planner//EN"
	floatingLayout = "20060102T150405"
)

var weekdays = []rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// ICS renders a semester as an iCalendar document: one weekly recurring
// event per schedule item, first occurring in the week of now, and one
// all-day event per exam date. Times are floating local times.
// TEXT values are escaped by the serializer and lines end in CRLF.
func ICS(sem model.Semester, now time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(sem.Name)

	weekStart, _ := calendar.WeekRange(now)
	stamp := now.UTC()

	for _, c := range sem.Courses {
		for i, item := range c.Schedule {
			if !item.Valid() {
				continue
			}
			sh, sm, _ := model.ParseClock(item.Start)
			eh, em, _ := model.ParseClock(item.End)
			day := weekStart.AddDate(0, 0, item.Day)
			start := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, day.Location())
			end := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, day.Location())

			ev := cal.AddEvent(fmt.Sprintf("%s-%d@semplan", c.ID, i))
			ev.SetDtStampTime(stamp)
			ev.SetProperty(ics.ComponentPropertySummary, c.Name)
			if c.Location != "" {
				ev.SetProperty(ics.ComponentPropertyLocation, c.Location)
			}
			if desc := courseDescription(c); desc != "" {
				ev.SetProperty(ics.ComponentPropertyDescription, desc)
			}
			ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(floatingLayout))
			ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(floatingLayout))
			ev.AddRrule(weeklyRule(item.Day))
		}

		for _, slot := range []struct{ id, label, date string }{
			{calendar.SlotMoedA, "Exam A", c.Exams.MoedA},
			{calendar.SlotMoedB, "Exam B", c.Exams.MoedB},
		} {
			d, ok := model.ParseDate(slot.date)
			if !ok {
				continue
			}
			ev := cal.AddEvent(fmt.Sprintf("%s-%s@semplan", c.ID, slot.id))
			ev.SetDtStampTime(stamp)
			ev.SetProperty(ics.ComponentPropertySummary, slot.label+": "+c.Name)
			ev.SetAllDayStartAt(d)
			ev.SetAllDayEndAt(d.AddDate(0, 0, 1))
		}
	}

	return []byte(cal.Serialize(ics.WithNewLineWindows))
}

func weeklyRule(day int) string {
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{weekdays[day]},
	}
	return opt.RRuleString()
}

func courseDescription(c model.Course) string {
	var parts []string
	if c.Number != "" {
		parts = append(parts, "Course "+c.Number)
	}
	if c.Lecturer != "" {
		parts = append(parts, "Lecturer: "+c.Lecturer)
	}
	return strings.Join(parts, "\n")
}
