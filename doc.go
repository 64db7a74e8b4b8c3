/*
Package redo provides a predictable, single-process state container: one
immutable state tree, updated exclusively through pure transition functions,
with subscriptions that fire only when the part of the tree they project
actually changed.

Uses

- One source of truth for application state, evolved by dispatching actions

- Cheap change detection for observers: unchanged sub-states keep their
reference identity across versions, so "did my slice change" is a pointer
comparison

- Time travel over recent dispatches via the optional history journal


How it fits together

State is bundled into named slices.  A slice pairs initial state with a
table of transitions; defining it derives one action creator per transition
and a reducer for that slice's sub-state.  A store combines the slice
reducers into one root reducer over the whole tree.  Dispatching an action
runs the root reducer, swaps in the resulting tree, and synchronously
notifies subscribers.  Transitions never see shared state directly: they
receive a copy-on-write Draft, and a draft that was never written resolves
to the original value, unchanged reference and all.

The reduce-then-notify cycle runs to completion before Dispatch returns.
Dispatch calls from other goroutines are serialized; a dispatch nested
inside a transition or subscriber callback fails fast with
ErrReentrantDispatch instead of interleaving.

Inspiration

The structural-sharing discipline comes from persistent data structures:
producing a new version of a value while sharing everything that didn't
change makes versions cheap and equality checks honest.  The same property
is what lets Observe skip callbacks for unrelated changes.
*/
package redo
