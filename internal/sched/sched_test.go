package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supraxlab/tmsim/internal/index"
	"github.com/supraxlab/tmsim/internal/tape"
	"github.com/supraxlab/tmsim/internal/trace"
)

// runOn builds a fresh root branch for input and drives it through a new
// Scheduler bound to idx/maxSteps, returning the resulting verdict character.
func runOn(idx *index.TransitionIndex, maxSteps uint64, input string) string {
	s := New(idx, maxSteps, trace.NewNoop())
	root := RootFromInput([]byte(input))
	return s.Run(root).String()
}

// m1 has an accept state (1) that keeps running on blank once reached;
// acceptance must fire the moment the branch transitions into it, not only
// when it eventually halts with no matching transition.
func m1() *index.TransitionIndex {
	b := index.NewBuilder()
	b.Add(0, 'a', 'a', tape.Right, 0)
	b.Add(0, 'b', 'b', tape.Right, 1)
	b.Add(1, tape.BLANK, tape.BLANK, tape.Stay, 1)
	idx := b.Build()
	idx.MarkAccept(1)
	return idx
}

func TestM1(t *testing.T) {
	idx := m1()
	cases := map[string]string{
		"ab":  "1",
		"aa":  "0",
		"b":   "1",
		"aab": "1",
	}
	for input, want := range cases {
		assert.Equal(t, want, runOn(idx, 100, input), "input %q", input)
	}
}

// m2 forks nondeterministically on 'a' at state 0; one sibling's path
// reaches accept state 2, which genuinely has zero outgoing transitions.
func m2() *index.TransitionIndex {
	b := index.NewBuilder()
	b.Add(0, 'a', 'a', tape.Right, 0)
	b.Add(0, 'a', 'a', tape.Right, 1)
	b.Add(1, 'b', 'b', tape.Right, 2)
	idx := b.Build()
	idx.MarkAccept(2)
	return idx
}

func TestM2(t *testing.T) {
	idx := m2()
	cases := map[string]string{
		"aab": "1",
		"aa":  "0",
		"b":   "0",
	}
	for input, want := range cases {
		assert.Equal(t, want, runOn(idx, 50, input), "input %q", input)
	}
}

// m3's only state loops on blank forever; its accept state is never reached,
// forcing preemption and an undetermined verdict once the budget runs out.
// That loop only engages when the head starts on a blank cell: on empty
// input the root's tape has no pages at all, so position 0 reads BLANK and
// the self-loop runs until preemption. On input "a", the head rewinds to
// position 0 and reads 'a', which state 0 has no transition for; the branch
// halts immediately in a non-accept state, so this case rejects rather than
// loops.
func m3() *index.TransitionIndex {
	b := index.NewBuilder()
	b.Add(0, tape.BLANK, tape.BLANK, tape.Right, 0)
	idx := b.Build()
	idx.MarkAccept(1)
	return idx
}

func TestM3(t *testing.T) {
	idx := m3()
	assert.Equal(t, "U", runOn(idx, 10, ""))
	assert.Equal(t, "0", runOn(idx, 10, "a"))
}

// Property: no branch's step counter ever reaches past maxSteps before the
// scheduler preempts it.
func TestBudgetBound(t *testing.T) {
	idx := m3()
	s := New(idx, 5, trace.NewNoop())
	root := RootFromInput([]byte(""))
	require.Equal(t, Undetermined, s.Run(root))
}

// Property: running the same machine on the same input twice, from fresh
// schedulers and fresh root branches, always yields the same verdict.
func TestVerdictDeterminism(t *testing.T) {
	idx := m2()
	first := runOn(idx, 50, "aab")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, runOn(idx, 50, "aab"))
	}
}

// Property: accept short-circuits even when a sibling branch has already
// been preempted by the step budget; a pending UNDETERMINED never
// overrides a witnessed ACCEPT.
func TestAcceptShortCircuitsOverPreemption(t *testing.T) {
	b := index.NewBuilder()
	// State 0 forks on 'a': one sibling loops on blank forever (runs out
	// the budget), the other walks straight into the accept state. LIFO
	// order pops the looping sibling first, so it is preempted before the
	// accepting sibling is ever examined.
	b.Add(0, 'a', 'a', tape.Right, 0)
	b.Add(0, 'a', 'a', tape.Right, 1)
	b.Add(0, tape.BLANK, tape.BLANK, tape.Right, 0)
	idx := b.Build()
	idx.MarkAccept(1)

	assert.Equal(t, "1", runOn(idx, 20, "a"))
}

// Property: a verdict of UNDETERMINED only ever arises when at least one
// branch was preempted by the step budget; reject never masquerades as one.
func TestUndeterminedRequiresPreemption(t *testing.T) {
	// A machine with no transitions at all halts immediately in a
	// non-accept state: REJECT, never UNDETERMINED, regardless of budget.
	idx := index.NewBuilder().Build()
	assert.Equal(t, "0", runOn(idx, 1000, "a"))
}
