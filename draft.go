package redo

import "fmt"

// Draft is a copy-on-write view of one slice's sub-state, handed to
// transitions during a dispatch. Reads see the current sub-state. The first
// write makes a single shallow copy, so element references are shared with
// the previous version and everything the transition doesn't touch keeps its
// identity. A draft that was never written resolves to the original value,
// same reference out.
//
// Map ops apply to map[string]interface{} sub-states, list ops to
// []interface{} sub-states; using the wrong family panics, which the
// dispatcher reports as a ReduceFault. A nil sub-state is treated as empty
// by whichever family writes first.
type Draft struct {
	orig  interface{}
	cur   interface{}
	dirty bool
	owned bool
}

func newDraft(v interface{}) *Draft {
	return &Draft{orig: v, cur: v}
}

// resolve returns the value the framework commits: the untouched original,
// or the copied-and-mutated replacement.
func (d *Draft) resolve() interface{} {
	if !d.dirty {
		return d.orig
	}
	return d.cur
}

// Value returns the sub-state as the draft currently sees it.
func (d *Draft) Value() interface{} {
	return d.cur
}

// Replace substitutes the whole sub-state. The replacement is committed
// as-is; later map/list ops will copy it before mutating.
func (d *Draft) Replace(v interface{}) {
	d.cur = v
	d.dirty = true
	d.owned = false
}

func (d *Draft) asMap() map[string]interface{} {
	if d.cur == nil {
		return nil
	}
	m, ok := d.cur.(map[string]interface{})
	if !ok {
		panic(fmt.Sprintf("draft holds %T, not a map sub-state", d.cur))
	}
	return m
}

// mutMap returns a map safe to write, copying the shared one on first use.
func (d *Draft) mutMap() map[string]interface{} {
	m := d.asMap()
	if d.owned {
		return m
	}
	copied := make(map[string]interface{}, len(m)+1)
	for k, v := range m {
		copied[k] = v
	}
	d.cur = copied
	d.dirty = true
	d.owned = true
	return copied
}

// Get reads a field of a map sub-state.
func (d *Draft) Get(key string) (interface{}, bool) {
	v, ok := d.asMap()[key]
	return v, ok
}

// Set writes a field of a map sub-state.
func (d *Draft) Set(key string, v interface{}) {
	d.mutMap()[key] = v
}

// Delete removes a field of a map sub-state.
func (d *Draft) Delete(key string) {
	if _, ok := d.asMap()[key]; !ok {
		return
	}
	delete(d.mutMap(), key)
}

func (d *Draft) asList() []interface{} {
	if d.cur == nil {
		return nil
	}
	l, ok := d.cur.([]interface{})
	if !ok {
		panic(fmt.Sprintf("draft holds %T, not a list sub-state", d.cur))
	}
	return l
}

// mutList returns a list safe to write, copying the shared one on first use.
func (d *Draft) mutList() []interface{} {
	l := d.asList()
	if d.owned {
		return l
	}
	copied := make([]interface{}, len(l), len(l)+1)
	copy(copied, l)
	d.cur = copied
	d.dirty = true
	d.owned = true
	return copied
}

// Len returns the length of a list sub-state.
func (d *Draft) Len() int {
	return len(d.asList())
}

// At reads an element of a list sub-state.
func (d *Draft) At(i int) interface{} {
	return d.asList()[i]
}

// Append adds elements to a list sub-state.
func (d *Draft) Append(vs ...interface{}) {
	if len(vs) == 0 {
		return
	}
	l := append(d.mutList(), vs...)
	d.cur = l
}

// SetAt replaces an element of a list sub-state.
func (d *Draft) SetAt(i int, v interface{}) {
	d.mutList()[i] = v
}

// RemoveAt deletes an element of a list sub-state, preserving order.
func (d *Draft) RemoveAt(i int) {
	l := d.mutList()
	l = append(l[:i], l[i+1:]...)
	d.cur = l
}
