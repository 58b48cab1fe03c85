package app

import (
	"fmt"
	"io"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/abhisek/olive/internal/quiz"
	"github.com/abhisek/olive/internal/router"
	"github.com/abhisek/olive/internal/screen"
	"github.com/abhisek/olive/internal/screens/home"
	"github.com/abhisek/olive/internal/screens/welcome"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/tutor"
	"github.com/abhisek/olive/internal/ui/layout"
)

// Options holds the dependencies the TUI needs.
type Options struct {
	Session *session.Session
	Tutor   *tutor.Handler
	Quiz    *quiz.Generator
	Logger  *log.Logger

	// Offline is set when no LLM provider is configured and the app runs
	// against the offline provider.
	Offline bool

	// SkipWelcome opens straight on the home screen.
	SkipWelcome bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	session *session.Session
	logger  *log.Logger
	width   int
	height  int
}

// newAppModel creates a new AppModel starting on the welcome splash.
func newAppModel(opts Options) AppModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	deps := home.Deps{
		Session: opts.Session,
		Tutor:   opts.Tutor,
		Quiz:    opts.Quiz,
		Offline: opts.Offline,
	}
	homeFactory := func() screen.Screen { return home.New(deps) }

	var initial screen.Screen = welcome.New(homeFactory)
	if opts.SkipWelcome {
		initial = homeFactory()
	}
	return AppModel{
		router:  router.New(initial),
		session: opts.Session,
		logger:  logger,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes header, active screen and footer for the current size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.session.Avatar(), m.session.Progress.Value(), m.width)
	footer := layout.RenderFooter(m.keyHints(active), m.width)
	return layout.Frame(header, footer, m.width, m.height, m.router.View)
}

func (m AppModel) keyHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		if hints := p.KeyHints(); len(hints) > 0 {
			return hints
		}
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "any key", Description: "Continue"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program and blocks until the learner quits.
func Run(opts Options) error {
	if opts.Session == nil || opts.Tutor == nil || opts.Quiz == nil {
		return fmt.Errorf("app: session, tutor and quiz are required")
	}
	m := newAppModel(opts)
	m.logger.Info("tui started", "user", opts.Session.UserID)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		m.logger.Error("tui exited", "err", err)
		return fmt.Errorf("run tui: %w", err)
	}
	m.logger.Info("tui stopped", "user", opts.Session.UserID)
	return nil
}
