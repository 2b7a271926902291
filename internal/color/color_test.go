package color

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/existflow/semplan/internal/model"
)

func TestForIndex_Colorful(t *testing.T) {
	s := model.DefaultSettings()

	a := ForIndex(0, s)
	b := ForIndex(1, s)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, a)
	assert.NotEqual(t, a, b)
	assert.InDelta(t, float64(s.BaseColorHue), Hue(a), 1.0)
}

func TestForIndex_SingleKeepsHue(t *testing.T) {
	s := model.DefaultSettings()
	s.ColorTheme = model.ColorThemeSingle
	s.BaseColorHue = 120

	for i := 0; i < 4; i++ {
		assert.InDelta(t, 120, Hue(ForIndex(i, s)), 1.5)
	}
	assert.NotEqual(t, ForIndex(0, s), ForIndex(1, s))
}

func TestForIndex_MonoIsGray(t *testing.T) {
	s := model.DefaultSettings()
	s.ColorTheme = model.ColorThemeMono

	hex := ForIndex(2, s)
	assert.Equal(t, hex[1:3], hex[3:5])
	assert.Equal(t, hex[3:5], hex[5:7])
}

func TestRecolor(t *testing.T) {
	courses := []model.Course{{ID: "a"}, {ID: "b"}}
	s := model.DefaultSettings()
	Recolor(courses, s)
	assert.Equal(t, ForIndex(0, s), courses[0].Color)
	assert.Equal(t, ForIndex(1, s), courses[1].Color)
}

func TestHue_Invalid(t *testing.T) {
	assert.Equal(t, 0.0, Hue("nope"))
}
