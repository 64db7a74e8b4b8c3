package redo

import "sort"

// Changed returns the sorted names of sub-states whose value identity
// differs between two trees. Trees produced by successive dispatches share
// unchanged sub-states by reference, so this is a per-slice pointer
// comparison, not a deep walk. Identical trees (including the no-op
// dispatch case, where the same tree reference comes back) yield nil.
func Changed(old, new State) []string {
	if sameValue(old, new) {
		return nil
	}
	var names []string
	for name, sub := range new {
		if !sameValue(sub, old[name]) {
			names = append(names, name)
		}
	}
	for name := range old {
		if _, ok := new[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
