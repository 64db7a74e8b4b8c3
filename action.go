package redo

// Action describes an intended state change. Kind identifies the transition
// (slice name, a slash, and the transition key); Payload is opaque to the
// dispatcher and is interpreted only by the matching transition.
type Action struct {
	Kind    string
	Payload interface{}
}

// ActionCreator builds an Action of a fixed kind from a payload.
type ActionCreator func(payload interface{}) Action

// State is one version of the state tree: slice name to sub-state. A State
// obtained from a store is never mutated afterward; treat it as frozen.
type State map[string]interface{}

// kindFor joins a slice name and transition key into an action kind.
func kindFor(slice, key string) string {
	return slice + "/" + key
}
