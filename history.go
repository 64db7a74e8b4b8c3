package redo

import (
	"encoding/base64"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/minio/blake2b-simd"
)

// Record is one journaled dispatch. Seq 0 is the tree the store started
// with; every successful dispatch afterward appends the next Seq. The
// fingerprint is content-addressed: equal fingerprints mean the marshaled
// trees were byte-identical.
type Record struct {
	Seq         uint64
	Action      Action
	Fingerprint string
}

// history is the bounded dispatch journal. Records age out oldest-first
// once the limit is reached; snapshots live in an ARC cache of the same
// size, so a journaled Seq can outlive its snapshot under pressure.
type history struct {
	limit   int
	marshal func(interface{}) ([]byte, error)
	cache   *lru.ARCCache

	mu      sync.Mutex
	records []Record
	nextSeq uint64
}

func newHistory(limit int, marshal func(interface{}) ([]byte, error)) (*history, error) {
	cache, err := lru.NewARC(limit)
	if err != nil {
		return nil, err
	}
	return &history{
		limit:   limit,
		marshal: marshal,
		cache:   cache,
	}, nil
}

// fingerprint hashes the marshaled tree, base64-encoded for log and test
// friendliness.
func (h *history) fingerprint(s State) (string, error) {
	encoded, err := h.marshal(s)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	hashBytes := blake2b.Sum256(encoded)
	return base64.RawURLEncoding.EncodeToString(hashBytes[:]), nil
}

func (h *history) record(a Action, s State) error {
	fp, err := h.fingerprint(s)
	if err != nil {
		return fmt.Errorf("fingerprint: %w", err)
	}
	h.mu.Lock()
	seq := h.nextSeq
	h.nextSeq++
	h.records = append(h.records, Record{Seq: seq, Action: a, Fingerprint: fp})
	if len(h.records) > h.limit {
		h.records = h.records[len(h.records)-h.limit:]
	}
	h.mu.Unlock()
	h.cache.Add(seq, s)
	return nil
}

func (h *history) list() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

func (h *history) snapshot(seq uint64) (State, error) {
	h.mu.Lock()
	journaled := false
	for _, r := range h.records {
		if r.Seq == seq {
			journaled = true
			break
		}
	}
	h.mu.Unlock()
	if !journaled {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSeq, seq)
	}
	v, ok := h.cache.Get(seq)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotEvicted, seq)
	}
	return v.(State), nil
}

// History returns the journal, oldest record first, or nil when history is
// disabled. Records are copies; mutating them changes nothing.
func (s *Store) History() []Record {
	if s.hist == nil {
		return nil
	}
	return s.hist.list()
}

// Restore swaps the journaled snapshot for seq back in as the current tree
// and notifies subscribers, under the same serialization and re-entrancy
// rules as Dispatch. The journal itself is not rewound; a restore is a
// state change like any other.
func (s *Store) Restore(seq uint64) (State, error) {
	if s.hist == nil {
		return nil, ErrHistoryDisabled
	}
	g := gid()
	if g != 0 && s.owner.Load() == g {
		return nil, fmt.Errorf("%w (restore %d)", ErrReentrantDispatch, seq)
	}
	s.mu.Lock()
	s.owner.Store(g)
	defer func() {
		s.owner.Store(0)
		s.mu.Unlock()
	}()

	snap, err := s.hist.snapshot(seq)
	if err != nil {
		return nil, err
	}
	prev := s.State()
	s.state.Store(snap)
	if s.logger != nil {
		s.logger.Debug("restore", "seq", seq, "changed", Changed(prev, snap))
	}
	s.notify()
	return snap, nil
}
