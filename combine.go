package redo

import "fmt"

// rootReducer maps one state tree and an action to the next tree.
type rootReducer func(s State, a Action) (State, error)

// combineSlices derives the root reducer. Each slice reduces its own
// sub-state; sub-states the action didn't affect are carried over by
// reference, and if nothing changed the original tree itself is returned,
// so whole-tree no-ops cost one map allocation at most and are detectable
// by identity.
func combineSlices(slices []*Slice) (rootReducer, error) {
	byName := make(map[string]*Slice, len(slices))
	for _, s := range slices {
		if s == nil {
			return nil, fmt.Errorf("nil slice")
		}
		if _, dup := byName[s.name]; dup {
			return nil, fmt.Errorf("duplicate slice name %q", s.name)
		}
		byName[s.name] = s
	}
	return func(state State, a Action) (State, error) {
		var next State
		for _, s := range slices {
			sub := state[s.name]
			nextSub, err := s.reduce(sub, a)
			if err != nil {
				return state, fmt.Errorf("slice %q: %w", s.name, err)
			}
			if sameValue(nextSub, sub) {
				if next != nil {
					next[s.name] = sub
				}
				continue
			}
			if next == nil {
				next = make(State, len(slices))
				for _, prior := range slices {
					if prior == s {
						break
					}
					next[prior.name] = state[prior.name]
				}
			}
			next[s.name] = nextSub
		}
		if next == nil {
			return state, nil
		}
		return next, nil
	}, nil
}
