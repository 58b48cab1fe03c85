package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default olive
	MascotCelebrating                      // Gold, star eyes: game corner open
)

const mascotIdle = `  ╭─╮
 ╭╯ ╰╮
 │◕ ◕│
 │ ◡ │
 ╰───╯`

const mascotCelebrating = `\ ╭─╮ /
 ╭╯ ╰╮
 │★ ★│
 │ ▽ │
 ╰───╯`

// RenderMascot returns the mascot art for the given variant.
func RenderMascot(variant MascotVariant) string {
	art, fg := mascotIdle, theme.Primary
	if variant == MascotCelebrating {
		art, fg = mascotCelebrating, theme.ArcadeYellow
	}
	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
