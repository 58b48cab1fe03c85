package chat

import (
	"context"
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/olive/internal/session"
	"github.com/abhisek/olive/internal/tutor"
)

// turnFunc is tutor.Handler.Chat or tutor.Handler.Study.
type turnFunc func(ctx context.Context, sess *session.Session, text string, onEvent tutor.EventFunc) (tutor.Result, error)

// turnDeltaMsg carries the reply assembled so far.
type turnDeltaMsg struct {
	partial string
}

// turnDoneMsg ends a turn.
type turnDoneMsg struct {
	result tutor.Result
	err    error
}

// turnStream relays one turn's events from the goroutine running it to
// the Bubble Tea loop. Every fragment is queued and delivered in order,
// one message per fragment. The queue is unbounded so a screen that stops
// listening never stalls the turn.
type turnStream struct {
	mu       sync.Mutex
	pending  []string
	finished *turnDoneMsg

	ready chan struct{}
	done  chan turnDoneMsg
}

func newTurnStream() *turnStream {
	return &turnStream{
		ready: make(chan struct{}, 1),
		done:  make(chan turnDoneMsg, 1),
	}
}

func startTurn(run turnFunc, sess *session.Session, text string) *turnStream {
	ts := newTurnStream()
	go func() {
		res, err := run(context.Background(), sess, text, func(ev tutor.Event) {
			if ev.Phase == tutor.Streaming {
				ts.push(ev.Partial)
			}
		})
		ts.done <- turnDoneMsg{result: res, err: err}
	}()
	return ts
}

func (ts *turnStream) push(partial string) {
	ts.mu.Lock()
	ts.pending = append(ts.pending, partial)
	ts.mu.Unlock()

	select {
	case ts.ready <- struct{}{}:
	default:
	}
}

func (ts *turnStream) pop() (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.pending) == 0 {
		return "", false
	}
	p := ts.pending[0]
	ts.pending = ts.pending[1:]
	return p, true
}

// next waits for the next fragment or the end of the turn. Queued
// fragments always go out before the done message.
func (ts *turnStream) next() tea.Cmd {
	return func() tea.Msg {
		for {
			if p, ok := ts.pop(); ok {
				return turnDeltaMsg{partial: p}
			}
			ts.mu.Lock()
			finished := ts.finished
			ts.mu.Unlock()
			if finished != nil {
				return *finished
			}

			select {
			case <-ts.ready:
			case d := <-ts.done:
				ts.mu.Lock()
				ts.finished = &d
				ts.mu.Unlock()
			}
		}
	}
}
