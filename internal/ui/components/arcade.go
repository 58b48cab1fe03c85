package components

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/ui/theme"
)

const (
	minContentWidth = 24
	maxContentWidth = 64

	// frameInset is the cabinet border plus its inner padding.
	frameInset = 6
)

// ContentWidth is the inner width shared by every card on a screen of the
// given width, so stacked cards line up.
func ContentWidth(frameWidth int) int {
	return min(max(frameWidth-frameInset, minContentWidth), maxContentWidth)
}

// CabinetFrame draws the olive double border around a whole screen and
// centers content inside it.
func CabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// ArcadeCard is a centered rounded card of content width cw.
func ArcadeCard(content string, cw int) string {
	return card(theme.Border).Width(cw - 2).Padding(1, 2).Render(content)
}

// ArcadeButton renders one selectable row of a list; the selected row is
// highlighted with a pointer.
func ArcadeButton(label string, selected bool, width int) string {
	if selected {
		return card(theme.ArcadeYellow).
			Width(width).
			Padding(0, 1).
			Bold(true).
			Foreground(theme.BgDark).
			Background(theme.ArcadeYellow).
			Render("▸ " + label)
	}
	return card(theme.Border).
		Width(width).
		Padding(0, 1).
		Foreground(theme.Text).
		Render(label)
}

func card(border color.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Align(lipgloss.Center)
}
