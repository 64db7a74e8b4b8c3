package redo

import (
	"errors"
	"fmt"
)

var (
	// ErrReentrantDispatch is returned when Dispatch is called from within a
	// transition or a subscriber callback of an in-flight dispatch on the
	// same store.
	ErrReentrantDispatch = errors.New("dispatch called during dispatch")

	// ErrHistoryDisabled is returned by Restore on a store built without
	// Config.KeepHistory.
	ErrHistoryDisabled = errors.New("history not enabled")

	// ErrUnknownSeq is returned by Restore for a sequence number that was
	// never journaled.
	ErrUnknownSeq = errors.New("sequence not in history")

	// ErrSnapshotEvicted is returned by Restore when the journal still has
	// the record but the snapshot has aged out of the cache.
	ErrSnapshotEvicted = errors.New("snapshot evicted from history cache")
)

// ReduceFault reports that a transition failed (returned an error or
// panicked) while reducing the given action. The store's state is unchanged.
type ReduceFault struct {
	Action Action
	Err    error
}

func (f *ReduceFault) Error() string {
	return fmt.Sprintf("reduce %q: %v", f.Action.Kind, f.Err)
}

func (f *ReduceFault) Unwrap() error {
	return f.Err
}
