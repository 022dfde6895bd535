// Package index builds and queries the transition index: the machine
// definition's lookup table from (state, input symbol) to the set of
// applicable transitions.
package index

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/supraxlab/tmsim/internal/tape"
)

// LinearThreshold is the design constant at or below which InputEntry lookup uses
// a linear scan instead of binary search. Alphabets in practice are small
// (a handful of distinct symbols per state), so the scan wins below this
// count; it is a tunable, not a correctness invariant.
const LinearThreshold = 4

// Transition is a single outgoing rule (c_out, move, q_out).
type Transition struct {
	Write Symbol
	Move  tape.Move
	Next  int
}

// Symbol aliases tape.Symbol so callers of this package don't need to
// import tape just to spell out a symbol literal.
type Symbol = tape.Symbol

// InputEntry pairs one input symbol with its (possibly nondeterministic)
// list of outgoing transitions.
type InputEntry struct {
	Input       Symbol
	Transitions []Transition
}

// State is a single machine state: the sorted list of input symbols it has
// transitions for. Accept flags are kept on the TransitionIndex, not here.
type State struct {
	Entries []InputEntry
}

// Lookup returns the transition list for sym at this state, following the
// hybrid linear/binary search contract: a linear scan for small entry
// counts, binary search once the table grows past LinearThreshold.
func (s *State) Lookup(sym Symbol) []Transition {
	n := len(s.Entries)
	if n <= LinearThreshold {
		for i := 0; i < n; i++ {
			if s.Entries[i].Input == sym {
				return s.Entries[i].Transitions
			}
		}
		return nil
	}

	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		if s.Entries[mid].Input < sym {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < n && s.Entries[lo].Input == sym {
		return s.Entries[lo].Transitions
	}
	return nil
}

// TransitionIndex is the complete machine definition: one State per number
// in [0, MaxState], plus a bitset of which states accept.
//
// Accept flags are a bitset.BitSet rather than a []bool or map[int]bool:
// the flag set is dense over a small integer range known exactly once
// MaxState is fixed, so a single word-addressed bitmap is the most compact
// representation.
type TransitionIndex struct {
	states []State
	accept *bitset.BitSet
}

// Builder accumulates transition records before the index is frozen by
// Build. It exists separately from TransitionIndex so malformed input (see
// the config loader) can stop feeding records without leaving the index in
// a half-built state.
type Builder struct {
	byState map[int]map[Symbol][]Transition
	max     int
	any     bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{byState: make(map[int]map[Symbol][]Transition)}
}

// Add accumulates one transition record. Idempotent: repeated calls with
// the same (qIn, in) extend that key's transition list rather than
// replacing it, which is how the source's nondeterministic fan-out and
// duplicate-record tolerance are expressed.
func (b *Builder) Add(qIn int, in Symbol, out Symbol, move tape.Move, qOut int) {
	b.track(qIn)
	b.track(qOut)

	row, ok := b.byState[qIn]
	if !ok {
		row = make(map[Symbol][]Transition)
		b.byState[qIn] = row
	}
	row[in] = append(row[in], Transition{Write: out, Move: move, Next: qOut})
}

func (b *Builder) track(q int) {
	if !b.any || q > b.max {
		b.max = q
	}
	b.any = true
}

// Build freezes the accumulated records into a TransitionIndex. Every state
// number in [0, MaxState] gets an entry, even ones never referenced (empty
// transition set, no accept flag); states named only as destinations are
// initialized empty, per the layout contract.
func (b *Builder) Build() *TransitionIndex {
	maxState := -1
	if b.any {
		maxState = b.max
	}

	idx := &TransitionIndex{
		states: make([]State, maxState+1),
		accept: bitset.New(uint(maxState + 1)),
	}

	for q, row := range b.byState {
		entries := make([]InputEntry, 0, len(row))
		for sym, ts := range row {
			entries = append(entries, InputEntry{Input: sym, Transitions: ts})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Input < entries[j].Input })
		idx.states[q].Entries = entries
	}

	return idx
}

// MaxState returns the highest state number referenced anywhere in the
// definition stream, or -1 if none were.
func (idx *TransitionIndex) MaxState() int {
	return len(idx.states) - 1
}

// MarkAccept flags state q as accepting. Numbers outside [0, MaxState] are
// silently ignored: such states are unreachable by construction, so the
// accept flag can never be observed.
func (idx *TransitionIndex) MarkAccept(q int) {
	if q < 0 || q > idx.MaxState() {
		return
	}
	idx.accept.Set(uint(q))
}

// IsAccept reports whether q carries the accept flag.
func (idx *TransitionIndex) IsAccept(q int) bool {
	if q < 0 || q > idx.MaxState() {
		return false
	}
	return idx.accept.Test(uint(q))
}

// Lookup returns the transition list for (q, sym), or nil if q is out of
// range or has no matching entry.
func (idx *TransitionIndex) Lookup(q int, sym Symbol) []Transition {
	if q < 0 || q > idx.MaxState() {
		return nil
	}
	return idx.states[q].Lookup(sym)
}

// HasAnyTransitions reports whether q has at least one outgoing transition
// for any input symbol. Used by the scheduler's halt-path accept check: a
// branch that halts without ever having executed a transition out of q only
// accepts if q has zero defined inputs at all, per the accept condition's
// "no outgoing transitions" clause. The scheduler's other accept check (on
// transition entry) does not consult this; it fires regardless of whether
// the destination state has further transitions.
func (idx *TransitionIndex) HasAnyTransitions(q int) bool {
	if q < 0 || q > idx.MaxState() {
		return false
	}
	return len(idx.states[q].Entries) > 0
}
