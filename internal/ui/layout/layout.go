// Package layout draws the frame every screen sits in: a header bar, the
// screen's content area and a footer of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/ui/theme"
)

// Smallest terminal the frame is drawn in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsTooSmall reports whether the terminal is below MinWidth x MinHeight.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks for a bigger window.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(fmt.Sprintf(
			"🫒 Olive needs a bigger window!\n\nPlease make it at least %d x %d.\nRight now it is %d x %d.",
			MinWidth, MinHeight, width, height,
		)))
}

// RenderHeader draws the brand on the left, the screen title in the middle
// and the learner's avatar and lesson count on the right.
func RenderHeader(title, avatar string, lessons int, width int) string {
	brand := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("🫒live")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	stars := lipgloss.NewStyle().Foreground(theme.Accent).
		Render(fmt.Sprintf("★ %d %s", lessons, plural(lessons, "lesson", "lessons")))

	return bar().Width(width).Render(spread(width-4, brand, center, avatar+"  "+stars))
}

// RenderFooter draws the key hints, dropping trailing ones that would not
// fit on one line.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	room := width - 6
	line := ""
	for _, h := range hints {
		part := key.Render(h.Key) + " " + desc.Render(h.Description)
		next := part
		if line != "" {
			next = line + "   " + part
		}
		if lipgloss.Width(next) > room {
			break
		}
		line = next
	}
	return bar().Width(width).Render(" " + line)
}

// Frame stacks header, body and footer into exactly height lines. body is
// called with the size left between the bars.
func Frame(header, footer string, width, height int, body func(w, h int) string) string {
	bodyHeight := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().
		Width(width).
		Height(bodyHeight).
		Render(body(width, bodyHeight))
	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func bar() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// spread lays out left, center and right across width with center as close
// to the middle as the sides allow.
func spread(width int, left, center, right string) string {
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	gapL := max((width-cw)/2-lw, 1)
	gapR := max(width-lw-gapL-cw-rw, 1)
	return " " + left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
