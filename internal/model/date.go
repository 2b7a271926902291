package model

import (
	"strings"
	"time"
)

// DateLayout is the persisted layout of due and exam dates
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string at local midnight.
// Empty or malformed input reports false.
func ParseDate(s string) (time.Time, bool) {
	return ParseDateIn(s, time.Local)
}

// ParseDateIn is ParseDate at midnight in loc
func ParseDateIn(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate formats t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay truncates t to local midnight of the same day
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseClock splits an "HH:MM" string into hour and minute.
func ParseClock(s string) (hour, minute int, ok bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, false
		}
	}
	hour = int(s[0]-'0')*10 + int(s[1]-'0')
	minute = int(s[3]-'0')*10 + int(s[4]-'0')
	if hour > 24 || minute > 59 || (hour == 24 && minute > 0) {
		return 0, 0, false
	}
	return hour, minute, true
}
