package redo

import "reflect"

// sameValue reports whether two sub-state or selector values are the same:
// reference identity for maps, lists, pointers, funcs and channels, value
// equality for comparable primitives and structs. Values of uncomparable
// types with differing identities are never the same.
func sameValue(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Map, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Len() == vb.Len() && (va.Len() == 0 || va.Pointer() == vb.Pointer())
	}
	if !va.Type().Comparable() {
		return false
	}
	return a == b
}

// Observe registers interest in a projection of the state tree. The selector
// is evaluated immediately to seed the last-observed value, then again after
// every successful dispatch; the callback fires only when the result's
// identity changes per sameValue semantics. Because unchanged sub-states
// keep their references across dispatches, a selector that returns a stored
// value is skipped whenever only unrelated slices moved.
//
// A selector that builds a fresh composite value each call will fire on
// every dispatch under these semantics; use ObserveDeep for those.
//
// Seeding and registration happen atomically with respect to dispatch
// notifications: a dispatch concurrent with Observe is either reflected in
// the seeded value or reported through the callback, never lost between the
// two.
//
// The returned func disposes the observation and is safe to call from
// within the callback or more than once.
func Observe(s *Store, selector func(State) interface{}, callback func(interface{})) func() {
	var last interface{}
	return s.subscribeSeeded(
		func() { last = selector(s.State()) },
		func() {
			v := selector(s.State())
			if sameValue(v, last) {
				return
			}
			last = v
			callback(v)
		})
}

// ObserveDeep is Observe with deep equality (reflect.DeepEqual) instead of
// identity. An explicit opt-in for selectors that construct their result,
// paid for with a deep comparison per dispatch.
func ObserveDeep(s *Store, selector func(State) interface{}, callback func(interface{})) func() {
	var last interface{}
	return s.subscribeSeeded(
		func() { last = selector(s.State()) },
		func() {
			v := selector(s.State())
			if reflect.DeepEqual(v, last) {
				return
			}
			last = v
			callback(v)
		})
}

// BindDispatch returns the store's dispatch function, for handing to an
// outer layer without exposing the store itself.
func BindDispatch(s *Store) func(Action) (Action, error) {
	return s.Dispatch
}

// BindCreators wraps a slice's action creators so that calling one builds
// the action and dispatches it in one step, keyed by transition key.
func BindCreators(s *Store, slice *Slice) map[string]func(payload interface{}) (Action, error) {
	bound := make(map[string]func(interface{}) (Action, error), len(slice.creators))
	for key, create := range slice.creators {
		create := create
		bound[key] = func(payload interface{}) (Action, error) {
			return s.Dispatch(create(payload))
		}
	}
	return bound
}
