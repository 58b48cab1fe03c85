package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/ui/theme"
)

// LessonTrack renders earned lessons as stars followed by a count, e.g.
// "★ ★ ☆  2/3 lessons". Lessons beyond goal fill the track.
func LessonTrack(done, goal int) string {
	if goal <= 0 {
		return ""
	}
	earned := min(max(done, 0), goal)

	stars := make([]string, goal)
	for i := range stars {
		if i < earned {
			stars[i] = lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Render("★")
		} else {
			stars[i] = lipgloss.NewStyle().Foreground(theme.Border).Render("☆")
		}
	}

	count := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d/%d %s", earned, goal, plural(goal, "lesson")))
	return strings.Join(stars, " ") + "  " + count
}

// Meter is a plain horizontal fill bar of the given width for a fraction in
// [0, 1].
func Meter(fraction float64, width int) string {
	width = max(width, 4)
	filled := int(float64(width) * min(max(fraction, 0), 1))
	return lipgloss.NewStyle().Background(theme.Primary).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", width-filled))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
