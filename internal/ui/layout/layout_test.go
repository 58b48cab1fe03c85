package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestHeaderShowsLearner(t *testing.T) {
	h := RenderHeader("Chat", "🦊", 1, 100)
	for _, want := range []string{"🫒live", "Chat", "🦊", "★ 1 lesson"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q", want)
		}
	}
	if !strings.Contains(RenderHeader("Home", "😀", 4, 100), "★ 4 lessons") {
		t.Error("header should pluralize lessons")
	}
}

func TestFooterDropsHintsThatDoNotFit(t *testing.T) {
	hints := []KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Tab", Description: "Next subject"},
		{Key: "Esc", Description: "Back"},
	}
	wide := RenderFooter(hints, 100)
	if !strings.Contains(wide, "Esc") {
		t.Error("wide footer should show every hint")
	}
	narrow := RenderFooter(hints, 30)
	if !strings.Contains(narrow, "Enter") || strings.Contains(narrow, "Esc") {
		t.Errorf("narrow footer should keep the first hints only: %q", narrow)
	}
}

func TestFrameFillsHeight(t *testing.T) {
	header := RenderHeader("Home", "😀", 0, 80)
	footer := RenderFooter([]KeyHint{{Key: "q", Description: "Quit"}}, 80)

	var gotH int
	out := Frame(header, footer, 80, 30, func(w, h int) string {
		gotH = h
		return "body"
	})
	if want := 30 - lipgloss.Height(header) - lipgloss.Height(footer); gotH != want {
		t.Errorf("body height = %d, want %d", gotH, want)
	}
	if lipgloss.Height(out) != 30 {
		t.Errorf("frame height = %d, want 30", lipgloss.Height(out))
	}
}

func TestIsTooSmall(t *testing.T) {
	if !IsTooSmall(79, 30) || !IsTooSmall(100, 23) || IsTooSmall(80, 24) {
		t.Error("IsTooSmall thresholds are off")
	}
}
