package model

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Season ordinals. Within a year a later ordinal is more recent.
const (
	SeasonUnknown = 0
	SeasonSpring  = 1
	SeasonSummer  = 2
	SeasonWinter  = 3
)

var yearPattern = regexp.MustCompile(`\d{4}`)

var seasonKeywords = []struct {
	words  []string
	season int
}{
	{[]string{"spring", "אביב"}, SeasonSpring},
	{[]string{"summer", "קיץ"}, SeasonSummer},
	{[]string{"winter", "fall", "autumn", "חורף", "סתיו"}, SeasonWinter},
}

// SemesterYear extracts the first 4-digit year of a semester name, or 0
func SemesterYear(name string) int {
	m := yearPattern.FindString(name)
	if m == "" {
		return 0
	}
	y, _ := strconv.Atoi(m)
	return y
}

// SemesterSeason maps a season keyword in the name to its ordinal
func SemesterSeason(name string) int {
	lower := strings.ToLower(name)
	for _, k := range seasonKeywords {
		for _, w := range k.words {
			if strings.Contains(lower, w) {
				return k.season
			}
		}
	}
	return SeasonUnknown
}

// CompareSemesters orders by year descending, then season descending.
// It returns a negative number when a sorts before b.
func CompareSemesters(a, b string) int {
	ya, yb := SemesterYear(a), SemesterYear(b)
	if ya != yb {
		return yb - ya
	}
	return SemesterSeason(b) - SemesterSeason(a)
}

// SortSemesters returns the semesters newest first. Ties keep input order.
func SortSemesters(sems []Semester) []Semester {
	out := append([]Semester{}, sems...)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareSemesters(out[i].Name, out[j].Name) < 0
	})
	return out
}

// LatestSemesterID returns the id of the chronologically latest semester
func LatestSemesterID(sems []Semester) string {
	if len(sems) == 0 {
		return ""
	}
	return SortSemesters(sems)[0].ID
}
