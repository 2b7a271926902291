// Package color derives course colors from the profile's color theme.
package color

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/existflow/semplan/internal/model"
)

// goldenAngle spreads consecutive hues as far apart as possible
const goldenAngle = 137.508

// ForIndex returns the hex color of the index-th course under settings
func ForIndex(index int, settings model.AppSettings) string {
	base := float64(settings.BaseColorHue)
	step := float64(index % 5)

	switch settings.ColorTheme {
	case model.ColorThemeSingle:
		return colorful.Hsl(normalizeHue(base), 0.6, 0.35+step*0.1).Hex()
	case model.ColorThemeMono:
		return colorful.Hsl(0, 0, 0.3+step*0.1).Hex()
	default:
		return colorful.Hsl(normalizeHue(base+float64(index)*goldenAngle), 0.65, 0.55).Hex()
	}
}

// Recolor reassigns every course color in order
func Recolor(courses []model.Course, settings model.AppSettings) {
	for i := range courses {
		courses[i].Color = ForIndex(i, settings)
	}
}

// Hue returns the hue in degrees of a hex color, or 0 if it cannot be parsed
func Hue(hex string) float64 {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0
	}
	h, _, _ := c.Hsl()
	return h
}

func normalizeHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
