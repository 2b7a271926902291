package tui

import (
	"strings"

	"github.com/existflow/semplan/internal/model"
)

// truncate shortens a string to max runes with ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// pad right-pads s with spaces to width runes
func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// parseHomeworkInput splits "Title @YYYY-MM-DD" into title and due date
func parseHomeworkInput(value string) (title, due string) {
	value = strings.TrimSpace(value)
	i := strings.LastIndex(value, "@")
	if i < 0 {
		return value, ""
	}
	d := strings.TrimSpace(value[i+1:])
	if _, ok := model.ParseDate(d); !ok {
		return value, ""
	}
	return strings.TrimSpace(value[:i]), d
}

var shortDays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
