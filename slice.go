package redo

import (
	"fmt"
	"strings"
)

// Transition computes the next sub-state for one action, by mutating the
// draft or replacing its value wholesale. Transitions must be pure: no I/O,
// no timers, no randomness beyond an id generator supplied via the payload,
// and no retained references to the draft or action after returning. That
// discipline is a contract checked by tests, not enforced here.
type Transition func(d *Draft, a Action) error

// SliceConfig describes a named bundle of initial sub-state and its
// transitions.
type SliceConfig struct {
	// Name keys this slice's sub-state in the state tree. Must be unique
	// within a store, non-empty, and free of '/'.
	Name string

	// Initial is the sub-state before any dispatch or preload.
	Initial interface{}

	// Transitions maps transition key to body. Action kinds are derived as
	// Name + "/" + key.
	Transitions map[string]Transition
}

// Slice is a validated SliceConfig plus its derived action creators. Define
// slices once at startup and register them into a store via Config.Slices.
type Slice struct {
	name        string
	initial     interface{}
	transitions map[string]Transition
	creators    map[string]ActionCreator
}

// DefineSlice validates the config and derives one action creator per
// transition key. Violations are construction errors, surfaced before any
// dispatch can happen.
func DefineSlice(c SliceConfig) (*Slice, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("slice name must not be empty")
	}
	if strings.Contains(c.Name, "/") {
		return nil, fmt.Errorf("slice %q: name must not contain '/'", c.Name)
	}
	if len(c.Transitions) == 0 {
		return nil, fmt.Errorf("slice %q: no transitions", c.Name)
	}
	s := Slice{
		name:        c.Name,
		initial:     c.Initial,
		transitions: make(map[string]Transition, len(c.Transitions)),
		creators:    make(map[string]ActionCreator, len(c.Transitions)),
	}
	for key, t := range c.Transitions {
		if key == "" {
			return nil, fmt.Errorf("slice %q: empty transition key", c.Name)
		}
		if t == nil {
			return nil, fmt.Errorf("slice %q: nil transition for %q", c.Name, key)
		}
		kind := kindFor(c.Name, key)
		s.transitions[key] = t
		s.creators[key] = func(payload interface{}) Action {
			return Action{Kind: kind, Payload: payload}
		}
	}
	return &s, nil
}

// MustDefineSlice is DefineSlice for static slice tables, panicking on
// construction errors.
func MustDefineSlice(c SliceConfig) *Slice {
	s, err := DefineSlice(c)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the slice's name.
func (s *Slice) Name() string {
	return s.name
}

// Initial returns the slice's initial sub-state.
func (s *Slice) Initial() interface{} {
	return s.initial
}

// Action returns the creator for the given transition key, or nil if the
// key isn't in the slice's transition table.
func (s *Slice) Action(key string) ActionCreator {
	return s.creators[key]
}

// Actions returns the slice's creator table, keyed by transition key.
func (s *Slice) Actions() map[string]ActionCreator {
	out := make(map[string]ActionCreator, len(s.creators))
	for k, c := range s.creators {
		out[k] = c
	}
	return out
}

// reduce applies one action to the slice's sub-state. A kind that doesn't
// belong to this slice is identity: same reference out, no error.
func (s *Slice) reduce(sub interface{}, a Action) (interface{}, error) {
	key, ok := strings.CutPrefix(a.Kind, s.name+"/")
	if !ok {
		return sub, nil
	}
	t, ok := s.transitions[key]
	if !ok {
		return sub, nil
	}
	d := newDraft(sub)
	if err := t(d, a); err != nil {
		return sub, err
	}
	return d.resolve(), nil
}
