package profile

import (
	"sync"
)

const (
	// DefaultLanguage is the language a new session starts in.
	DefaultLanguage = "ar"
	// DefaultTemplate is the template a new session starts with.
	DefaultTemplate = "classic"
)

// Listener receives the state after every mutation.
type Listener func(state State)

// Store holds one session's profile and selections in memory.
// It is safe for concurrent use.
type Store struct {
	// deliver is held from a mutation until its listeners return, so
	// listeners observe states in mutation order.
	deliver   sync.Mutex
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// StoreOption configures a Store.
type StoreOption func(s *State)

// WithLanguage sets the initial language.
func WithLanguage(lang string) (opt StoreOption) {
	opt = func(s *State) {
		s.Language = lang
	}
	return opt
}

// WithTemplate sets the initial template id.
func WithTemplate(id string) (opt StoreOption) {
	opt = func(s *State) {
		s.Template = id
	}
	return opt
}

// WithProfile sets the initial profile.
func WithProfile(p Profile) (opt StoreOption) {
	opt = func(s *State) {
		s.Profile = p
	}
	return opt
}

// NewStore creates a store with an empty profile and the default selections.
func NewStore(opts ...StoreOption) (store *Store) {
	state := State{
		Language: DefaultLanguage,
		Template: DefaultTemplate,
	}
	for _, opt := range opts {
		opt(&state)
	}

	store = &Store{
		state:     state,
		listeners: make(map[int]Listener),
	}
	return store
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() (state State) {
	s.mu.Lock()
	state = s.state
	s.mu.Unlock()
	return state
}

// SetField replaces one field and leaves the others untouched. Any value is accepted.
func (s *Store) SetField(f Field, value string) (err error) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	var updated Profile
	updated, err = s.state.Profile.With(f, value)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state.Profile = updated
	if f == FieldSummary {
		s.state.Revision++
	}
	state := s.state
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
	return err
}

// ReplaceSummary overwrites the summary field.
func (s *Store) ReplaceSummary(text string) {
	err := s.SetField(FieldSummary, text)
	if err != nil {
		// FieldSummary is always a known field.
		panic(err)
	}
}

// ReplaceSummaryIf overwrites the summary only if no summary write happened
// since revision was observed.
func (s *Store) ReplaceSummaryIf(revision uint64, text string) (applied bool) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if s.state.Revision != revision {
		s.mu.Unlock()
		return applied
	}
	s.state.Profile.Summary = text
	s.state.Revision++
	state := s.state
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
	applied = true
	return applied
}

// SetLanguage changes the active language.
func (s *Store) SetLanguage(lang string) {
	s.update(func(st *State) {
		st.Language = lang
	})
}

// SetTemplate changes the active template id.
func (s *Store) SetTemplate(id string) {
	s.update(func(st *State) {
		st.Template = id
	})
}

// Replace swaps the whole profile.
func (s *Store) Replace(p Profile) {
	s.update(func(st *State) {
		if st.Profile.Summary != p.Summary {
			st.Revision++
		}
		st.Profile = p
	})
}

// Subscribe registers a listener called after every mutation.
// Listeners run on the mutating goroutine, outside the store lock, one
// mutation at a time. A listener may read the store but must not mutate it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	unsubscribe = func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
	return unsubscribe
}

func (s *Store) update(fn func(st *State)) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	fn(&s.state)
	state := s.state
	listeners := s.listenersLocked()
	s.mu.Unlock()

	notify(listeners, state)
}

// listenersLocked copies the listener set in subscription order. Caller holds s.mu.
func (s *Store) listenersLocked() (listeners []Listener) {
	listeners = make([]Listener, 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if l, ok := s.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	return listeners
}

func notify(listeners []Listener, state State) {
	for _, l := range listeners {
		l(state)
	}
}
