// Package games is the Game Corner screen, locked until enough lessons
// are completed.
package games

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/progress"
	"github.com/abhisek/olive/internal/screen"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/ui/components"
	"github.com/abhisek/olive/internal/ui/layout"
	"github.com/abhisek/olive/internal/ui/theme"
)

// GamesScreen shows the game corner for the learner's lesson count.
type GamesScreen struct {
	sess     *session.Session
	selected int
	picked   string
}

var _ screen.Screen = (*GamesScreen)(nil)
var _ screen.KeyHintProvider = (*GamesScreen)(nil)

// New creates a GamesScreen.
func New(sess *session.Session) *GamesScreen {
	return &GamesScreen{sess: sess}
}

func (g *GamesScreen) Init() tea.Cmd {
	g.sess.SetMode(session.ModeGames)
	return nil
}

func (g *GamesScreen) Title() string { return "Game Corner" }

func (g *GamesScreen) KeyHints() []layout.KeyHint {
	if !g.corner().Unlocked {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Play"},
		{Key: "Esc", Description: "Back"},
	}
}

func (g *GamesScreen) corner() progress.Corner {
	return progress.CornerFor(g.sess.Progress.Value())
}

func (g *GamesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return g, nil
	}
	c := g.corner()
	if !c.Unlocked {
		return g, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if g.selected > 0 {
			g.selected--
		}
	case "down", "j":
		if g.selected < len(c.Games)-1 {
			g.selected++
		}
	case "enter":
		g.picked = c.Games[g.selected].Name
	}
	return g, nil
}

func (g *GamesScreen) View(width, height int) string {
	c := g.corner()
	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections,
		lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render("🎮 GAME CORNER"),
		"",
		components.LessonTrack(c.Completed, progress.GameUnlockThreshold),
		components.Meter(progress.Fraction(c.Completed), cw-8),
		"",
		theme.Body.Render(c.Message),
	)

	if c.Unlocked {
		sections = append(sections, "")
		for i, game := range c.Games {
			label := game.Icon + " " + game.Name
			sections = append(sections, components.ArcadeButton(label, i == g.selected, cw-8))
		}
		if g.picked != "" {
			sections = append(sections, "", theme.Hint.Render(g.picked+" is coming soon!"))
		}
	} else {
		sections = append(sections, "", theme.Hint.Render("🔒 Chat or study with Olive to earn lessons."))
	}

	card := components.ArcadeCard(strings.Join(sections, "\n"), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
