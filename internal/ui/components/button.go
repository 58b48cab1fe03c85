package components

import (
	"strings"

	"github.com/abhisek/olive/internal/ui/theme"
)

// KeyButton renders a one-line action label with its key, e.g. "[N] Next
// question". Inactive buttons are dimmed.
func KeyButton(key, label string, active bool) string {
	text := " [" + strings.ToUpper(key) + "] " + label + " "
	if active {
		return theme.ButtonActive.Render(text)
	}
	return theme.ButtonInactive.Render(text)
}
