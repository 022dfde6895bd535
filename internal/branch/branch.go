// Package branch holds the per-path computation state of the
// nondeterministic simulation: the value pushed around the scheduler's run
// queue.
package branch

import (
	"github.com/supraxlab/tmsim/internal/index"
	"github.com/supraxlab/tmsim/internal/tape"
)

// Branch is a single NTM computation path. It is a plain value moved around
// the scheduler's run queue: no callbacks, no continuations, matching the
// message-passing style the design notes call for.
type Branch struct {
	State int
	Tape  *tape.Tape
	Head  *tape.TapePage
	Pos   int
	Steps uint64

	// Pending is the transition chosen for the next step; HasPending is
	// false when the branch still needs to look one up from the current
	// cell.
	Pending    index.Transition
	HasPending bool
}

// NewRoot builds a fresh root branch in state 0 with an empty tape and no
// pending transition.
func NewRoot() *Branch {
	return &Branch{
		State: 0,
		Tape:  tape.NewEmpty(),
	}
}

// Fork produces a child branch that shares the parent's tape handle
// (incrementing its reference count), copies state/head/steps, and commits
// to the given sibling transition. The fork does not eagerly copy the tape

func (b *Branch) Fork(t index.Transition) *Branch {
	return &Branch{
		State:      b.State,
		Tape:       tape.Share(b.Tape),
		Head:       b.Head,
		Pos:        b.Pos,
		Steps:      b.Steps,
		Pending:    t,
		HasPending: true,
	}
}

// Destroy releases the branch's hold on its tape. Callers must not use b
// again afterward.
func (b *Branch) Destroy() {
	tape.Release(b.Tape)
}

// Read returns the symbol under the head.
func (b *Branch) Read() tape.Symbol {
	return tape.Read(b.Head, b.Pos)
}

// Write writes c under the head, applying CoW privatization if the tape is
// currently shared and the write would actually change the cell.
func (b *Branch) Write(c tape.Symbol) {
	t, head, _ := tape.Write(b.Tape, b.Head, b.Pos, c)
	b.Tape = t
	b.Head = head
}

// Move applies head motion m, allocating a boundary page if necessary.
func (b *Branch) Move(m tape.Move) {
	b.Head, b.Pos = tape.MoveHead(b.Tape, b.Head, b.Pos, m)
}

// WriteInput writes sym under the head and advances right, used while
// seeding a root branch's tape from the input string. Input symbols equal
// to BLANK are still written, matching the source's unconditional write.
func (b *Branch) WriteInput(sym tape.Symbol) {
	t, head, _ := tape.Write(b.Tape, b.Head, b.Pos, sym)
	b.Tape = t
	b.Head = head
	b.Move(tape.Right)
}

// Rewind resets the head to the first page at position 0, used once the
// input string has been written onto a fresh root branch's tape.
func (b *Branch) Rewind() {
	b.Head = tape.FirstPage(b.Tape)
	b.Pos = 0
}
