package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/progress"
	"github.com/abhisek/olive/internal/ui/theme"
)

const arcadeTitleFull = `  ██████╗ ██╗     ██╗██╗   ██╗███████╗
 ██╔═══██╗██║     ██║██║   ██║██╔════╝
 ██║   ██║██║     ██║██║   ██║█████╗
 ██║   ██║██║     ██║╚██╗ ██╔╝██╔══╝
 ╚██████╔╝███████╗██║ ╚████╔╝ ███████╗
  ╚═════╝ ╚══════╝╚═╝  ╚═══╝  ╚══════╝`

const arcadeTitleCompact = "O · L · I · V · E"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	title := arcadeTitleFull
	if compact {
		title = arcadeTitleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(title))
}

// stats is what the dashboard bar shows.
type stats struct {
	avatar    string
	lessons   int
	subject   string
	reminders int
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(s stats, cw int, compact bool) string {
	lessonStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	gameStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	games := dimStyle.Render(fmt.Sprintf("🔒 %d TO GO", progress.Remaining(s.lessons)))
	if progress.IsUnlocked(s.lessons) {
		games = gameStyle.Render("🎮 GAMES OPEN")
	}

	var line string
	if compact {
		line = fmt.Sprintf("%s %s %s",
			s.avatar,
			lessonStyle.Render(fmt.Sprintf("★%d", s.lessons)),
			games,
		)
	} else {
		line = fmt.Sprintf("%s  %s  %s",
			s.avatar,
			lessonStyle.Render(fmt.Sprintf("★ %d LESSONS", s.lessons)),
			games,
		)
		line += "\n" + dimStyle.Render(s.subject)
		if s.reminders > 0 {
			line += dimStyle.Render(fmt.Sprintf("  ·  ⏰ %d", s.reminders))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(line)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int) string {
	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.ArcadeYellow).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ArcadeYellow).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	var buttons []string
	for i, label := range items {
		if i == selected {
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		} else {
			buttons = append(buttons, normalBtn.Render(label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as simple text lines (no borders)
// for small terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		if i == selected {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ "+label+" "))
		} else {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   "+label))
		}
	}

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderOfflineBanner warns that no LLM API key is configured.
func renderOfflineBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ Offline mode: set an LLM API key to chat for real (see olive --help)")
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
