package model

import (
	"encoding/json"
)

// EventKind discriminates routable events.
type EventKind string

const (
	EventMessage   EventKind = "message"
	EventUserState EventKind = "user_state"
	EventGeneric   EventKind = "event"
)

// UserState is the payload of an EventUserState event.
type UserState struct {
	Online bool `json:"online"`
}

// Event is one routable unit of data.
//
// The path is private: WithHop and WithPrefix return new events backed by
// fresh slices, so clones handed to concurrent receivers never share state.
type Event struct {
	Kind          EventKind
	Character     *Character      // Nil for system events
	Text          string          // Message payload
	Data          json.RawMessage // Structured payload (user state, generic events)
	RouteSilently bool

	path []Source
}

// NewMessage creates a message event originating at origin.
func NewMessage(origin Source, char *Character, text string) Event {
	return Event{
		Kind:      EventMessage,
		Character: char,
		Text:      text,
		path:      []Source{origin},
	}
}

// NewUserState creates a presence change event for char.
func NewUserState(origin Source, char *Character, online bool) Event {
	data, _ := json.Marshal(UserState{Online: online})
	return Event{
		Kind:      EventUserState,
		Character: char,
		Data:      data,
		path:      []Source{origin},
	}
}

// NewEvent creates an event with an explicit kind and path.
func NewEvent(kind EventKind, path []Source) Event {
	return Event{Kind: kind, path: append([]Source(nil), path...)}
}

// Path returns a copy of the hop path, oldest hop first.
func (e Event) Path() []Source {
	return append([]Source(nil), e.path...)
}

// Len returns the number of hops.
func (e Event) Len() int {
	return len(e.path)
}

// Hop returns the i-th hop.
func (e Event) Hop(i int) Source {
	return e.path[i]
}

// Origin returns the first hop.
func (e Event) Origin() (Source, bool) {
	if len(e.path) == 0 {
		return Source{}, false
	}
	return e.path[0], true
}

// LastHop returns the current hop.
func (e Event) LastHop() (Source, bool) {
	if len(e.path) == 0 {
		return Source{}, false
	}
	return e.path[len(e.path)-1], true
}

// Predecessor returns the hop before the current one.
func (e Event) Predecessor() (Source, bool) {
	if len(e.path) < 2 {
		return Source{}, false
	}
	return e.path[len(e.path)-2], true
}

// Visited reports whether s is already a hop of the path.
func (e Event) Visited(s Source) bool {
	for _, hop := range e.path {
		if hop.SameHop(s) {
			return true
		}
	}
	return false
}

// WithHop returns a clone with s appended to the path.
func (e Event) WithHop(s Source) Event {
	path := make([]Source, len(e.path), len(e.path)+1)
	copy(path, e.path)
	e.path = append(path, s)
	return e.cloneRefs()
}

// WithPrefix returns a clone with hops inserted in front of the path.
func (e Event) WithPrefix(hops ...Source) Event {
	path := make([]Source, 0, len(hops)+len(e.path))
	path = append(path, hops...)
	e.path = append(path, e.path...)
	return e.cloneRefs()
}

// Clone returns a deep copy.
func (e Event) Clone() Event {
	e.path = append([]Source(nil), e.path...)
	return e.cloneRefs()
}

func (e Event) cloneRefs() Event {
	if e.Character != nil {
		c := *e.Character
		e.Character = &c
	}
	if e.Data != nil {
		e.Data = append(json.RawMessage(nil), e.Data...)
	}
	return e
}

// UserState decodes the presence payload.
func (e Event) UserState() (UserState, bool) {
	if e.Kind != EventUserState {
		return UserState{}, false
	}
	var us UserState
	if err := json.Unmarshal(e.Data, &us); err != nil {
		return UserState{}, false
	}
	return us, true
}
