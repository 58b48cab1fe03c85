package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abhisek/olive/internal/session"
)

// SessionFactory builds an unloaded session for userID.
type SessionFactory func(userID string) *session.Session

type hubEntry struct {
	once     sync.Once
	sess     atomic.Pointer[session.Session]
	lastUsed time.Time
}

// Hub keeps one live session per learner so concurrent requests for the
// same learner share state and the turn lock.
type Hub struct {
	mu      sync.Mutex
	entries map[string]*hubEntry
	open    SessionFactory
	now     func() time.Time
}

// NewHub creates a Hub that opens sessions with open.
func NewHub(open SessionFactory) *Hub {
	return &Hub{
		entries: make(map[string]*hubEntry),
		open:    open,
		now:     time.Now,
	}
}

// Get returns the learner's session, loading it on first use. Loading
// happens outside the hub lock; concurrent callers for the same learner
// wait for the one load.
func (h *Hub) Get(ctx context.Context, userID string) *session.Session {
	h.mu.Lock()
	e, ok := h.entries[userID]
	if !ok {
		e = &hubEntry{}
		h.entries[userID] = e
	}
	e.lastUsed = h.now()
	h.mu.Unlock()

	e.once.Do(func() {
		s := h.open(userID)
		s.Load(ctx)
		e.sess.Store(s)
	})
	return e.sess.Load()
}

// Evict drops sessions unused for longer than idle and returns how many
// went. Sessions in the middle of a turn are kept.
func (h *Hub) Evict(idle time.Duration) int {
	cutoff := h.now().Add(-idle)

	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, e := range h.entries {
		s := e.sess.Load()
		if e.lastUsed.After(cutoff) || s == nil || s.Busy() {
			continue
		}
		delete(h.entries, id)
		n++
	}
	return n
}

// sweep runs Evict every interval until ctx is done.
func (h *Hub) sweep(ctx context.Context, idle, interval time.Duration, onEvict func(n int)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := h.Evict(idle); n > 0 && onEvict != nil {
				onEvict(n)
			}
		}
	}
}

// Len reports how many sessions are live.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
