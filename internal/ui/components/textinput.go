package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/olive/internal/ui/theme"
)

// counterThreshold is how close to the limit the remaining-characters
// counter starts showing.
const counterThreshold = 20

// TextInput wraps bubbles/textinput with the app styling and a character
// counter near the limit.
type TextInput struct {
	Model textinput.Model
	Limit int
}

// NewTextInput creates a focused input. limit <= 0 means no limit.
func NewTextInput(placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.Focus()
	if limit > 0 {
		ti.CharLimit = limit
	}
	return TextInput{Model: ti, Limit: limit}
}

func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	view := t.Model.View()
	if left, ok := t.remaining(); ok {
		c := theme.TextDim
		if left == 0 {
			c = theme.Error
		}
		view += " " + lipgloss.NewStyle().Foreground(c).Render(fmt.Sprintf("(%d)", left))
	}
	return view
}

func (t TextInput) remaining() (int, bool) {
	if t.Limit <= 0 {
		return 0, false
	}
	left := t.Limit - utf8.RuneCountInString(t.Model.Value())
	return left, left <= counterThreshold
}

// Value returns the input with surrounding whitespace removed.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// Clear empties the input.
func (t *TextInput) Clear() {
	t.Model.SetValue("")
}
