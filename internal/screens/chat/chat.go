// Package chat is the conversation screen for General Chat and study mode.
package chat

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/olive/internal/screen"
	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/subject"
	"github.com/abhisek/olive/internal/transcript"
	"github.com/abhisek/olive/internal/tutor"
	"github.com/abhisek/olive/internal/ui/components"
	"github.com/abhisek/olive/internal/ui/layout"
)

// transcriptLoadedMsg delivers the conversation shown when the screen opens.
type transcriptLoadedMsg struct {
	subject  subject.Subject
	messages []transcript.Message
	err      error
}

// ChatScreen runs turns for one learner and renders the reply as it
// streams in.
type ChatScreen struct {
	sess  *session.Session
	tutor *tutor.Handler
	mode  session.Mode

	subject  subject.Subject
	messages []transcript.Message
	loaded   bool

	input   components.TextInput
	stream  *turnStream
	pending string
	partial string

	errMsg string
	notice string
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// NewChat opens General Chat on the active subject.
func NewChat(sess *session.Session, handler *tutor.Handler) *ChatScreen {
	return newScreen(sess, handler, session.ModeChat)
}

// NewStudy opens study mode on the active subject.
func NewStudy(sess *session.Session, handler *tutor.Handler) *ChatScreen {
	return newScreen(sess, handler, session.ModeStudy)
}

func newScreen(sess *session.Session, handler *tutor.Handler, mode session.Mode) *ChatScreen {
	return &ChatScreen{
		sess:  sess,
		tutor: handler,
		mode:  mode,
		input: components.NewTextInput("Say something to Olive...", 500),
	}
}

func (c *ChatScreen) Init() tea.Cmd {
	return tea.Batch(c.load(), c.input.Init())
}

func (c *ChatScreen) Title() string {
	if c.mode == session.ModeStudy {
		if c.subject.Name != "" {
			return "Study · " + c.subject.Name
		}
		return "Study"
	}
	return "Chat"
}

func (c *ChatScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Send"}}
	if c.mode == session.ModeChat {
		hints = append(hints, layout.KeyHint{Key: "Tab", Description: "Next subject"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

// Streaming reports whether a turn is in flight.
func (c *ChatScreen) Streaming() bool { return c.stream != nil }

func (c *ChatScreen) load() tea.Cmd {
	sess, mode := c.sess, c.mode
	return func() tea.Msg {
		ctx := context.Background()
		if mode == session.ModeStudy {
			subj, msgs, err := sess.OpenStudy(ctx)
			return transcriptLoadedMsg{subject: subj, messages: msgs, err: err}
		}
		subj := sess.Subjects.Active()
		sess.SetMode(session.ModeChat)
		return transcriptLoadedMsg{subject: subj, messages: sess.Transcript(ctx, transcript.ChatKey(subj.ID))}
	}
}

func (c *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case transcriptLoadedMsg:
		c.subject = msg.subject
		c.messages = msg.messages
		c.loaded = true
		c.errMsg = ""
		if errors.Is(msg.err, session.ErrNoStudySubject) {
			c.errMsg = "Pick a subject from the Subjects screen to start studying."
		} else if msg.err != nil {
			c.errMsg = msg.err.Error()
		}
		return c, nil

	case turnDeltaMsg:
		if c.stream == nil {
			return c, nil
		}
		c.partial = msg.partial
		return c, c.stream.next()

	case turnDoneMsg:
		return c.handleDone(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return c, c.submit()
		case "tab":
			return c, c.nextSubject()
		}
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *ChatScreen) submit() tea.Cmd {
	if c.stream != nil || !c.loaded {
		return nil
	}
	if c.mode == session.ModeStudy && c.subject.IsGeneral() {
		return nil
	}
	text := strings.TrimSpace(c.input.Value())
	if text == "" {
		return nil
	}
	c.input.Clear()
	c.pending = text
	c.partial = ""
	c.errMsg = ""
	c.notice = ""

	run := c.tutor.Chat
	if c.mode == session.ModeStudy {
		run = c.tutor.Study
	}
	c.stream = startTurn(run, c.sess, text)
	return c.stream.next()
}

func (c *ChatScreen) handleDone(msg turnDoneMsg) (screen.Screen, tea.Cmd) {
	c.stream = nil
	c.pending = ""
	c.partial = ""

	if msg.err != nil {
		c.errMsg = turnErrorText(msg.err)
		return c, nil
	}

	res := msg.result
	c.messages = c.sess.Transcripts.Get(res.Key)
	if res.Failed() {
		c.errMsg = res.Err.UserMessage()
	}
	if res.Step.JustUnlocked() {
		c.notice = "🎉 You finished 3 lessons! The Game Corner is open."
	}
	return c, nil
}

func turnErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrTurnInProgress):
		return "Olive is still answering. Please wait a moment."
	case errors.Is(err, session.ErrNoStudySubject):
		return "Pick a subject from the Subjects screen to start studying."
	}
	return err.Error()
}

// nextSubject moves General Chat on to the next subject's conversation.
func (c *ChatScreen) nextSubject() tea.Cmd {
	if c.mode != session.ModeChat || c.stream != nil {
		return nil
	}
	all := c.sess.Subjects.All()
	if len(all) == 0 {
		return nil
	}
	next := all[0]
	for i, s := range all {
		if s.ID == c.subject.ID {
			next = all[(i+1)%len(all)]
			break
		}
	}
	if _, err := c.sess.SelectSubject(context.Background(), next.ID); err != nil {
		c.errMsg = err.Error()
		return nil
	}
	c.loaded = false
	return c.load()
}
