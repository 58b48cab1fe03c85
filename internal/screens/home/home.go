package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	quizgen "github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/router"
	"github.com/abhisek/olive/internal/screen"
	"github.com/abhisek/olive/internal/screens/avatar"
	"github.com/abhisek/olive/internal/screens/chat"
	"github.com/abhisek/olive/internal/screens/games"
	quizscreen "github.com/abhisek/olive/internal/screens/quiz"
	"github.com/abhisek/olive/internal/screens/reminders"
	"github.com/abhisek/olive/internal/screens/subjects"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/tutor"
	"github.com/abhisek/olive/internal/ui/components"
	"github.com/abhisek/olive/internal/ui/layout"
)

// Deps are the services the home menu hands to the screens it opens.
type Deps struct {
	Session *session.Session
	Tutor   *tutor.Handler
	Quiz    *quizgen.Generator

	// Offline shows a banner when no real LLM provider is configured.
	Offline bool
}

// Menu entries, in display order.
const (
	itemChat = iota
	itemStudy
	itemQuiz
	itemGames
	itemSubjects
	itemReminders
	itemAvatar
	itemExit
)

var menuLabels = []string{
	itemChat:      "CHAT WITH OLIVE",
	itemStudy:     "STUDY",
	itemQuiz:      "TAKE A QUIZ",
	itemGames:     "GAME CORNER",
	itemSubjects:  "SUBJECTS",
	itemReminders: "REMINDERS",
	itemAvatar:    "CHANGE AVATAR",
	itemExit:      "EXIT",
}

// HomeScreen is the main menu.
type HomeScreen struct {
	deps Deps
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	actions := []func() tea.Cmd{
		itemChat:      h.openChat,
		itemStudy:     h.openStudy,
		itemQuiz:      h.openQuiz,
		itemGames:     func() tea.Cmd { return push(games.New(deps.Session)) },
		itemSubjects:  func() tea.Cmd { return push(subjects.New(deps.Session, nil)) },
		itemReminders: func() tea.Cmd { return push(reminders.New(deps.Session)) },
		itemAvatar:    h.changeAvatar,
		itemExit:      func() tea.Cmd { return tea.Quit },
	}
	items := make([]components.MenuItem, len(menuLabels))
	for i, label := range menuLabels {
		items[i] = components.MenuItem{Label: label, Action: actions[i]}
	}
	h.menu = components.NewMenu(items)
	return h
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) openChat() tea.Cmd {
	h.deps.Session.StartChat(context.Background())
	return push(chat.NewChat(h.deps.Session, h.deps.Tutor))
}

// openStudy studies the active subject, asking for one first while
// General Chat is active.
func (h *HomeScreen) openStudy() tea.Cmd {
	sess := h.deps.Session
	if !sess.Subjects.Active().IsGeneral() {
		return push(chat.NewStudy(sess, h.deps.Tutor))
	}
	return push(subjects.New(sess, func(subj subject.Subject) tea.Cmd {
		if subj.IsGeneral() {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}
		study := chat.NewStudy(sess, h.deps.Tutor)
		return func() tea.Msg { return router.ReplaceScreenMsg{Screen: study} }
	}))
}

func (h *HomeScreen) openQuiz() tea.Cmd {
	return push(quizscreen.New(h.deps.Session, h.deps.Quiz))
}

func (h *HomeScreen) changeAvatar() tea.Cmd {
	h.deps.Session.ChangeFriend()
	return push(avatar.New(h.deps.Session))
}

func (h *HomeScreen) Init() tea.Cmd {
	h.deps.Session.SetMode(session.ModeHome)
	return nil
}

// Resume puts the session back on the home section.
func (h *HomeScreen) Resume() tea.Cmd {
	h.deps.Session.SetMode(session.ModeHome)
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "1-8", Description: "Jump"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header and footer.
	termHeight := height + 8
	compact := termHeight < 36 || width < 100
	cw := components.ContentWidth(width)
	sess := h.deps.Session

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if h.deps.Offline {
		sections = append(sections, renderOfflineBanner(cw))
	}
	if !compact {
		variant := MascotIdle
		if sess.Progress.IsUnlocked() {
			variant = MascotCelebrating
		}
		sections = append(sections, renderMascotBox(variant, cw))
	}
	sections = append(sections, renderStatsBar(stats{
		avatar:    sess.Avatar(),
		lessons:   sess.Progress.Value(),
		subject:   sess.Subjects.Active().Label(),
		reminders: sess.Reminders.Len(),
	}, cw, compact))

	h.menu.Items[itemGames].Badge = ""
	if !sess.Progress.IsUnlocked() {
		h.menu.Items[itemGames].Badge = "🔒"
	}
	if compact {
		sections = append(sections, renderArcadeMenuCompact(h.menu.Labels(), h.menu.Selected, cw))
	} else {
		sections = append(sections, renderArcadeMenu(h.menu.Labels(), h.menu.Selected, cw))
	}

	return components.CabinetFrame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
