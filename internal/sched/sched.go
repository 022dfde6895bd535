// Package sched implements the branch scheduler: the run queue that drives
// nondeterministic branches to completion, enforces the per-branch step
// budget, and reduces the branch tree's outcomes to a single tri-valued
// verdict.
//
// The queue discipline is LIFO (push to head, pop from head), giving
// depth-first exploration, the same choice the source made. Order only
// affects which verdict is witnessed first when both accept and
// undetermined are reachable; the set of reachable verdicts does not
// depend on it.
package sched

import (
	"github.com/supraxlab/tmsim/internal/branch"
	"github.com/supraxlab/tmsim/internal/index"
	"github.com/supraxlab/tmsim/internal/tape"
	"github.com/supraxlab/tmsim/internal/trace"
)

// Verdict is the tri-valued result of one run.
type Verdict int

const (
	Reject Verdict = iota
	Accept
	Undetermined
)

// String renders the single output character described in §6.
func (v Verdict) String() string {
	switch v {
	case Accept:
		return "1"
	case Undetermined:
		return "U"
	default:
		return "0"
	}
}

// Scheduler holds the run queue for one machine definition. A single
// Scheduler is reused across every input string; only the queue contents
// change between runs.
type Scheduler struct {
	idx      *index.TransitionIndex
	maxSteps uint64
	log      trace.Logger
	queue    []*branch.Branch
}

// New builds a Scheduler bound to idx and maxSteps. A nil log is replaced
// with a no-op logger so callers never need to nil-check it.
func New(idx *index.TransitionIndex, maxSteps uint64, log trace.Logger) *Scheduler {
	if log == nil {
		log = trace.NewNoop()
	}
	return &Scheduler{idx: idx, maxSteps: maxSteps, log: log}
}

// push adds b to the top of the LIFO run queue.
func (s *Scheduler) push(b *branch.Branch) {
	s.queue = append(s.queue, b)
}

// pop removes and returns the top of the run queue.
func (s *Scheduler) pop() *branch.Branch {
	n := len(s.queue)
	b := s.queue[n-1]
	s.queue[n-1] = nil
	s.queue = s.queue[:n-1]
	return b
}

// drain destroys every branch still queued, used on early ACCEPT
// short-circuit; on normal queue exhaustion the queue is already empty.
func (s *Scheduler) drain() {
	for len(s.queue) > 0 {
		s.pop().Destroy()
	}
}

// Run drives root (and any branches it forks) to completion and returns the
// verdict for the input already written onto root's tape. root is enqueued
// by Run; the caller must not touch it again afterward.
func (s *Scheduler) Run(root *branch.Branch) Verdict {
	s.queue = s.queue[:0]
	s.push(root)

	preempted := false

	for len(s.queue) > 0 {
		b := s.pop()

		// 1. Budget check.
		if b.Steps == s.maxSteps {
			s.log.Preempted(b.State, b.Steps)
			b.Destroy()
			preempted = true
			continue
		}

		// 2. Execute the pending transition, if any.
		if b.HasPending {
			t := b.Pending
			b.Write(t.Write)
			b.Move(t.Move)
			b.Steps++
			b.State = t.Next
			b.HasPending = false

			// Accept the moment a branch transitions into an accept
			// state, regardless of whether that state has further
			// outgoing transitions (see DESIGN.md's decision on the
			// accept-condition open question). A state landed on this
			// way and later found to have zero entries would also have
			// been caught by the halt-based check below, but checking
			// here additionally covers accept states that keep running
			// (e.g. an absorbing state with a harmless self-loop).
			if s.idx.IsAccept(b.State) {
				s.log.Verdict(Accept.String(), b.Steps)
				b.Destroy()
				s.drain()
				return Accept
			}
		}

		// 3. Look up the next step from the current cell.
		c := b.Read()
		ts := s.idx.Lookup(b.State, c)

		switch len(ts) {
		case 0:
			// B halts in b.State with no matching transition for c. This
			// is the only way a branch starting (and staying) in the
			// initial state can accept on empty/unmatched input, since
			// the root starts in state 0 without passing through the
			// transition-entry check above. Per the accept condition's "no outgoing transitions"
			// clause, a halting state only accepts if it has no defined
			// inputs at all, not merely no match for c.
			if s.idx.IsAccept(b.State) && !s.idx.HasAnyTransitions(b.State) {
				s.log.Verdict(Accept.String(), b.Steps)
				b.Destroy()
				s.drain()
				return Accept
			}
			b.Destroy()

		case 1:
			s.log.Transition(b.State, c, ts[0].Next, 0)
			b.Pending = ts[0]
			b.HasPending = true
			s.push(b)

		default:
			s.log.Transition(b.State, c, ts[0].Next, len(ts)-1)
			for _, t := range ts[1:] {
				s.push(b.Fork(t))
			}
			b.Pending = ts[0]
			b.HasPending = true
			s.push(b)
		}
	}

	if preempted {
		s.log.Verdict(Undetermined.String(), 0)
		return Undetermined
	}
	s.log.Verdict(Reject.String(), 0)
	return Reject
}

// RootFromInput builds a fresh root branch in state 0, writes input onto its
// tape (advancing the head right after each symbol, per §4.5 step 2), then
// rewinds the head to the tape's first page at position 0.
func RootFromInput(input []byte) *branch.Branch {
	b := branch.NewRoot()
	for _, c := range input {
		b.WriteInput(tape.Symbol(c))
	}
	b.Rewind()
	return b
}
