// Package subject manages the learner's list of topics and which one is
// active.
package subject

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// GeneralID is the reserved id of the General Chat subject.
const GeneralID = "general"

// ErrUnknownSubject is returned when selecting an id that is not registered.
var ErrUnknownSubject = errors.New("unknown subject")

// DefaultIcon is what the subject picker and the API offer when the learner
// gives no icon.
const DefaultIcon = "📚"

// Subject is a topic the learner can chat or study about.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// IsGeneral reports whether s is the General Chat subject.
func (s Subject) IsGeneral() bool { return s.ID == GeneralID }

// Label renders "icon name" for menus.
func (s Subject) Label() string {
	if s.Icon == "" {
		return s.Name
	}
	return s.Icon + " " + s.Name
}

// Defaults returns the starter subjects. newID supplies ids for everything
// except General Chat.
func Defaults(newID func() string) []Subject {
	return []Subject{
		{ID: GeneralID, Name: "General Chat", Icon: "💬"},
		{ID: newID(), Name: "Science", Icon: "🔬"},
		{ID: newID(), Name: "Maths", Icon: "➕"},
		{ID: newID(), Name: "Social Studies", Icon: "🌍"},
		{ID: newID(), Name: "Language", Icon: "🗣️"},
	}
}

// Registry is the ordered subject list plus the active selection.
type Registry struct {
	mu       sync.RWMutex
	subjects []Subject
	activeID string
	newID    func() string
}

// NewRegistry creates an empty registry with General Chat active.
func NewRegistry() *Registry {
	return &Registry{
		activeID: GeneralID,
		newID:    func() string { return uuid.NewString() },
	}
}

// SeedDefaults installs the default subjects when the registry is empty
// and returns the seeded list. It returns nil when nothing was seeded.
func (r *Registry) SeedDefaults() []Subject {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.subjects) > 0 {
		return nil
	}
	r.subjects = Defaults(r.newID)
	r.activeID = GeneralID

	out := make([]Subject, len(r.subjects))
	copy(out, r.subjects)
	return out
}

// Restore replaces the list with subjects loaded from storage. The active
// selection is kept when it still exists.
func (r *Registry) Restore(subjects []Subject) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subjects = make([]Subject, len(subjects))
	copy(r.subjects, subjects)
	if _, ok := r.find(r.activeID); !ok {
		r.activeID = GeneralID
	}
}

// Add appends a new subject with a fresh id and makes it active. Names and
// icons are stored as given; duplicates are allowed.
func (r *Registry) Add(name, icon string) Subject {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Subject{ID: r.newID(), Name: name, Icon: icon}
	r.subjects = append(r.subjects, s)
	r.activeID = s.ID
	return s
}

// Select makes id the active subject.
func (r *Registry) Select(id string) (Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.find(id)
	if !ok {
		return Subject{}, ErrUnknownSubject
	}
	r.activeID = id
	return s, nil
}

// Active returns the selected subject. When the selection no longer exists
// it falls back to the first subject, then to General Chat.
func (r *Registry) Active() Subject {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.find(r.activeID); ok {
		return s
	}
	if len(r.subjects) > 0 {
		return r.subjects[0]
	}
	return Subject{ID: GeneralID, Name: "General Chat", Icon: "💬"}
}

// Get looks up a subject by id.
func (r *Registry) Get(id string) (Subject, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(id)
}

// All returns a copy of the subjects in insertion order.
func (r *Registry) All() []Subject {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Subject, len(r.subjects))
	copy(out, r.subjects)
	return out
}

// Len returns the number of registered subjects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subjects)
}

func (r *Registry) find(id string) (Subject, bool) {
	for _, s := range r.subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}
