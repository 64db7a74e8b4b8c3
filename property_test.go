package redo

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/arbitrary"
	"github.com/leanovate/gopter/gen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultGopterParameters = gopter.DefaultTestParameters()

func TestNoMatchIdentityProperty(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)
	arbitraries := arbitrary.DefaultArbitraries()

	defined := map[string]bool{
		"counter/increment": true,
		"counter/add":       true,
		"flags/set":         true,
	}

	properties.Property("kinds matching no transition leave the tree reference unchanged",
		arbitraries.ForAll(
			func(kinds []string) bool {
				s := newTestStore(t, newCounterSlice(t), newFlagsSlice(t))
				ok := true
				for _, k := range kinds {
					if defined[k] {
						continue
					}
					before := s.State()
					_, err := s.Dispatch(Action{Kind: k})
					ok = ok && assert.NoError(t, err)
					ok = ok && assert.True(t, sameValue(before, s.State()),
						"kind %q should be identity", k)
				}
				return ok
			}))
	properties.TestingRun(t)
}

// dispatchOp drives one step of a model-checked dispatch sequence.
type dispatchOp struct {
	Add  int
	Flag bool
	Fail bool
}

func TestDispatchSequenceProperties(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)
	arbitraries := arbitrary.DefaultArbitraries()
	arbitraries.RegisterGen(gen.IntRange(-1000, 1000))

	properties.Property("structural sharing and fault atomicity over arbitrary sequences",
		arbitraries.ForAll(
			func(ops []dispatchOp) bool {
				return checkDispatchSequence(t, ops)
			}))
	properties.TestingRun(t)
}

// checkDispatchSequence replays ops against a store and a plain model in
// lockstep: the store must track the model exactly, failed dispatches must
// leave the previous tree reference current, and the slice an op doesn't
// touch must keep its sub-state reference.
func checkDispatchSequence(t *testing.T, ops []dispatchOp) bool {
	counter := newCounterSlice(t)
	flags := newFlagsSlice(t)
	faulty := newFaultySlice(t)
	s, err := NewStore(Config{Slices: []*Slice{counter, flags, faulty}})
	require.NoError(t, err)

	model := 0
	modelDark := false
	ok := true
	for i, op := range ops {
		before := s.State()
		switch {
		case op.Fail:
			_, err := s.Dispatch(Action{Kind: "faulty/fail"})
			ok = ok && assert.Error(t, err, "op %d", i)
			ok = ok && assert.True(t, sameValue(before, s.State()),
				"op %d: fault must not move the tree", i)
		case op.Flag:
			modelDark = !modelDark
			_, err := s.Dispatch(flags.Action("set")(map[string]interface{}{"dark": modelDark}))
			ok = ok && assert.NoError(t, err, "op %d", i)
		default:
			flagsBefore := before["flags"]
			model += op.Add
			_, err := s.Dispatch(counter.Action("add")(op.Add))
			ok = ok && assert.NoError(t, err, "op %d", i)
			ok = ok && assert.True(t, sameValue(flagsBefore, s.State()["flags"]),
				"op %d: flags sub-state must be shared across a counter change", i)
		}
		ok = ok && assert.Equal(t, model, s.State()["counter"], "op %d", i)
		ok = ok && assert.Equal(t, modelDark,
			s.State()["flags"].(map[string]interface{})["dark"], "op %d", i)
		if !ok {
			return false
		}
	}
	return ok
}

func TestHistoryFingerprintProperty(t *testing.T) {
	t.Parallel()
	properties := gopter.NewProperties(defaultGopterParameters)
	arbitraries := arbitrary.DefaultArbitraries()
	arbitraries.RegisterGen(gen.IntRange(-1000, 1000))

	properties.Property("equal counter values fingerprint equally, unequal differently",
		arbitraries.ForAll(
			func(deltas []int) bool {
				counter := newCounterSlice(t)
				s, err := NewStore(Config{
					Slices:      []*Slice{counter},
					KeepHistory: len(deltas) + 1,
				})
				require.NoError(t, err)
				sum := 0
				byValue := map[int]string{0: s.History()[0].Fingerprint}
				ok := true
				for _, delta := range deltas {
					sum += delta
					_, err := s.Dispatch(counter.Action("add")(delta))
					ok = ok && assert.NoError(t, err)
					records := s.History()
					fp := records[len(records)-1].Fingerprint
					if seen, dup := byValue[sum]; dup {
						ok = ok && assert.Equal(t, seen, fp,
							"same content, same fingerprint")
					} else {
						for _, other := range byValue {
							ok = ok && assert.NotEqual(t, other, fp)
						}
						byValue[sum] = fp
					}
				}
				return ok
			}))
	properties.TestingRun(t)
}
