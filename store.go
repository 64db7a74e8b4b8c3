package redo

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Config enumerates what a store is built from. Slices is required; the
// rest is optional.
type Config struct {
	// Slices are the named bundles whose sub-states make up the tree.
	// Names must be unique across the store.
	Slices []*Slice

	// Preloaded overrides initial sub-states, e.g. state hydrated by the
	// caller from wherever it keeps it. Keys must name registered slices.
	Preloaded State

	// Logger, when set, gets a debug record per dispatch (action kind,
	// changed sub-states, elapsed time), tagged with the store's id.
	Logger *slog.Logger

	// KeepHistory, when positive, journals that many recent dispatches
	// with snapshot fingerprints, enabling Restore. Zero disables history.
	KeepHistory int

	// Marshal serializes snapshots for fingerprinting. Defaults to
	// json.Marshal.
	Marshal func(interface{}) ([]byte, error)
}

type subscription struct {
	fn      func()
	removed bool
}

// Store holds the current state tree and coordinates dispatch. Create one
// per application at startup and pass it down explicitly; there is no
// package-level instance.
type Store struct {
	id      string
	slices  []*Slice
	root    rootReducer
	logger  *slog.Logger
	marshal func(interface{}) ([]byte, error)
	hist    *history

	state atomic.Value // State

	mu    sync.Mutex    // serializes dispatch and restore
	owner atomic.Uint64 // gid of the goroutine mid-dispatch, 0 otherwise

	subMu sync.Mutex // guards subs; separate lock so callbacks may (un)subscribe
	subs  []*subscription
}

// NewStore builds a store from a fixed set of slices. Duplicate slice
// names, unknown preloaded keys, and malformed config are construction
// errors; nothing can be dispatched against a store that failed to build.
func NewStore(c Config) (*Store, error) {
	if len(c.Slices) == 0 {
		return nil, fmt.Errorf("no slices")
	}
	if c.KeepHistory < 0 {
		return nil, fmt.Errorf("negative KeepHistory")
	}
	root, err := combineSlices(c.Slices)
	if err != nil {
		return nil, err
	}
	initial := make(State, len(c.Slices))
	for _, s := range c.Slices {
		initial[s.name] = s.initial
	}
	for name, sub := range c.Preloaded {
		if _, ok := initial[name]; !ok {
			return nil, fmt.Errorf("preloaded state for unknown slice %q", name)
		}
		initial[name] = sub
	}
	s := Store{
		id:      uuid.NewString(),
		slices:  c.Slices,
		root:    root,
		marshal: c.Marshal,
	}
	if s.marshal == nil {
		s.marshal = json.Marshal
	}
	if c.Logger != nil {
		s.logger = c.Logger.With("store", s.id)
	}
	if c.KeepHistory > 0 {
		s.hist, err = newHistory(c.KeepHistory, s.marshal)
		if err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
		if err := s.hist.record(Action{}, initial); err != nil {
			return nil, fmt.Errorf("history: %w", err)
		}
	}
	s.state.Store(initial)
	return &s, nil
}

// ID returns the store's instance id.
func (s *Store) ID() string {
	return s.id
}

// State returns the current state tree. O(1), never blocks. The returned
// tree is a frozen snapshot: later dispatches replace the store's tree,
// they never mutate one already handed out.
func (s *Store) State() State {
	return s.state.Load().(State)
}

// Dispatch applies the action: run the root reducer against the current
// tree, swap in the result, then synchronously invoke every subscriber
// once, in subscription order. Returns the action for chaining. On a
// ReduceFault the stored tree is untouched and no subscriber runs.
//
// Calls from other goroutines are serialized. A nested call from within a
// transition or subscriber callback returns ErrReentrantDispatch.
func (s *Store) Dispatch(a Action) (Action, error) {
	g := gid()
	if g != 0 && s.owner.Load() == g {
		return a, fmt.Errorf("%w (action %q)", ErrReentrantDispatch, a.Kind)
	}
	s.mu.Lock()
	s.owner.Store(g)
	defer func() {
		s.owner.Store(0)
		s.mu.Unlock()
	}()

	start := time.Now()
	prev := s.State()
	next, err := s.reduce(prev, a)
	if err != nil {
		return a, err
	}
	s.state.Store(next)
	if s.hist != nil {
		if err := s.hist.record(a, next); err != nil {
			// The dispatch itself succeeded; the journal is now missing
			// this seq, which must not pass silently.
			logger := s.logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("history record failed", "kind", a.Kind, "err", err)
		}
	}
	if s.logger != nil {
		s.logger.Debug("dispatch",
			"kind", a.Kind,
			"changed", Changed(prev, next),
			"elapsed", time.Since(start))
	}
	s.notify()
	return a, nil
}

// reduce runs the root reducer, converting transition errors and panics
// into a ReduceFault that carries the action. The previous tree is returned
// to the caller untouched either way.
func (s *Store) reduce(prev State, a Action) (next State, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, &ReduceFault{Action: a, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	next, rerr := s.root(prev, a)
	if rerr != nil {
		return nil, &ReduceFault{Action: a, Err: rerr}
	}
	return next, nil
}

// Subscribe registers a callback to run after every successful dispatch,
// and returns its disposer. The subscriber list is snapshotted before each
// notification pass: a callback added during the pass waits for the next
// dispatch, a callback removed during the pass is not invoked. Disposal is
// idempotent and legal from within any callback.
func (s *Store) Subscribe(callback func()) func() {
	sub := &subscription{fn: callback}
	s.subMu.Lock()
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()
	return s.disposer(sub)
}

// subscribeSeeded runs seed and registers the callback while holding the
// subscriber lock, so no notification pass can slip between the seed's read
// of the state and the registration. Observers rely on this: a dispatch
// concurrent with registration either lands in the seeded value or triggers
// the callback, never neither.
func (s *Store) subscribeSeeded(seed, callback func()) func() {
	sub := &subscription{fn: callback}
	s.subMu.Lock()
	seed()
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()
	return s.disposer(sub)
}

func (s *Store) disposer(sub *subscription) func() {
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub.removed {
			return
		}
		sub.removed = true
		for i, cur := range s.subs {
			if cur == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	snapshot := make([]*subscription, len(s.subs))
	copy(snapshot, s.subs)
	s.subMu.Unlock()
	for _, sub := range snapshot {
		s.subMu.Lock()
		removed := sub.removed
		s.subMu.Unlock()
		if !removed {
			sub.fn()
		}
	}
}
