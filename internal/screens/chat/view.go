package chat

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/transcript"
	"github.com/abhisek/olive/internal/ui/theme"
)

const (
	oliveLabel  = "🫒 Olive"
	inputHeight = 3
)

func (c *ChatScreen) View(width, height int) string {
	if !c.loaded {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			theme.Hint.Render("Opening your conversation..."))
	}

	status := c.renderStatus(width)
	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(width - 2).
		Render(c.input.View())

	logHeight := height - lipgloss.Height(status) - lipgloss.Height(input)
	if logHeight < 1 {
		logHeight = 1
	}
	log := c.renderLog(width, logHeight)

	return lipgloss.JoinVertical(lipgloss.Left, status, log, input)
}

func (c *ChatScreen) renderStatus(width int) string {
	label := c.subject.Label()
	if label == "" {
		label = "General Chat"
	}
	line := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(label)
	if c.stream != nil {
		line += "  " + theme.Hint.Render("Olive is typing...")
	}
	lines := []string{line}
	if c.notice != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(c.notice))
	}
	if c.errMsg != "" {
		lines = append(lines, theme.ErrorBubble.Render(c.errMsg))
	}
	return lipgloss.NewStyle().Width(width).Padding(0, 1).Render(strings.Join(lines, "\n"))
}

// renderLog renders the newest messages that fit in height rows.
func (c *ChatScreen) renderLog(width, height int) string {
	var blocks []string
	for _, m := range c.messages {
		if m.Role == transcript.RoleSystem {
			continue
		}
		blocks = append(blocks, c.renderMessage(m.Role, m.Content, width))
	}
	if c.pending != "" {
		blocks = append(blocks, c.renderMessage(transcript.RoleUser, c.pending, width))
		partial := c.partial
		if partial == "" {
			partial = "..."
		}
		blocks = append(blocks, c.renderMessage(transcript.RoleAssistant, partial, width))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, theme.Hint.Render("  Say hi to Olive to get started!"))
	}

	lines := strings.Split(strings.Join(blocks, "\n"), "\n")
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	return lipgloss.NewStyle().Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func (c *ChatScreen) renderMessage(role transcript.Role, content string, width int) string {
	maxWidth := width * 2 / 3
	if maxWidth < 20 {
		maxWidth = 20
	}
	if lipgloss.Width(content) > maxWidth {
		content = lipgloss.NewStyle().Width(maxWidth).Render(content)
	}

	if role == transcript.RoleUser {
		who := lipgloss.NewStyle().Foreground(theme.TextDim).Render("You " + c.sess.Avatar())
		bubble := theme.UserBubble.Render(content)
		return lipgloss.PlaceHorizontal(width-1, lipgloss.Right, who+"\n"+bubble)
	}
	who := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(oliveLabel)
	return " " + who + "\n" + indent(theme.AssistantBubble.Render(content), " ")
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
