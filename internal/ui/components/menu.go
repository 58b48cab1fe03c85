package components

import (
	"strconv"

	tea "charm.land/bubbletea/v2"
)

// MenuItem is one entry of a Menu. Badge is appended to the label, e.g. a
// lock on a section that is not open yet.
type MenuItem struct {
	Label  string
	Badge  string
	Action func() tea.Cmd
}

// Text returns the label with its badge.
func (i MenuItem) Text() string {
	if i.Badge == "" {
		return i.Label
	}
	return i.Label + " " + i.Badge
}

// Menu tracks the selection of a vertical list. Up and down wrap around;
// the digits 1-9 jump to an item and activate it. Rendering is left to the
// screen.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	return Menu{Items: items}
}

// Labels returns every item's text in order.
func (m Menu) Labels() []string {
	out := make([]string, len(m.Items))
	for i, item := range m.Items {
		out[i] = item.Text()
	}
	return out
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	n := len(m.Items)
	switch key := kmsg.String(); key {
	case "up", "k":
		m.Selected = (m.Selected - 1 + n) % n
	case "down", "j":
		m.Selected = (m.Selected + 1) % n
	case "enter":
		return m, m.activate()
	default:
		if d, err := strconv.Atoi(key); err == nil && d >= 1 && d <= n && d <= 9 {
			m.Selected = d - 1
			return m, m.activate()
		}
	}
	return m, nil
}

func (m Menu) activate() tea.Cmd {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return nil
	}
	if act := m.Items[m.Selected].Action; act != nil {
		return act()
	}
	return nil
}
